package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
)

// DriverOutput holds both passes' records and errors in anchor order.
type DriverOutput struct {
	Sites           []entities.SiteRecord
	Subsystems      []entities.SubsystemRecord
	SiteErrors      []entities.ErrorEntry
	SubsystemErrors []entities.ErrorEntry
}

// ErrorCount returns the number of errors over both passes.
func (o DriverOutput) ErrorCount() int {
	return len(o.SiteErrors) + len(o.SubsystemErrors)
}

// ExtractionDriver runs the site pass and the subsystem pass over an LX
// buffer. The passes share only the read-only line slice and run
// concurrently.
type ExtractionDriver struct {
	sites      *SiteAssembler
	subsystems *SubsystemAssembler
}

// NewExtractionDriver creates a driver for the given options.
func NewExtractionDriver(opts ExtractionOptions) *ExtractionDriver {
	decoder := NewPlanDecoder(opts.Strict)
	return &ExtractionDriver{
		sites:      NewSiteAssembler(opts, decoder),
		subsystems: NewSubsystemAssembler(opts, decoder),
	}
}

// Run extracts all records from lines. The records gathered so far are
// returned with any error. A site-pass failure is reported ahead of a
// subsystem-pass failure, as if the passes had run in sequence.
func (d *ExtractionDriver) Run(ctx context.Context, lines []string) (DriverOutput, error) {
	var (
		out               DriverOutput
		siteErr, subErr   error
		subCtx, cancelSub = context.WithCancel(ctx)
	)
	defer cancelSub()

	var g errgroup.Group
	g.Go(func() error {
		siteErr = d.sitePass(ctx, lines, &out)
		if siteErr != nil {
			cancelSub()
		}
		return siteErr
	})
	g.Go(func() error {
		subErr = d.subsystemPass(subCtx, lines, &out)
		return subErr
	})
	_ = g.Wait()

	if siteErr != nil {
		return out, siteErr
	}
	return out, subErr
}

func (d *ExtractionDriver) sitePass(ctx context.Context, lines []string, out *DriverOutput) error {
	for i, line := range lines {
		if !d.sites.IsAnchor(line) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		asm, err := d.sites.Assemble(lines, i)
		out.SiteErrors = append(out.SiteErrors, asm.Errors...)
		if err != nil {
			return err
		}
		if !asm.Skipped {
			out.Sites = append(out.Sites, asm.Record)
		}
	}
	return nil
}

func (d *ExtractionDriver) subsystemPass(ctx context.Context, lines []string, out *DriverOutput) error {
	for i, line := range lines {
		if !d.subsystems.IsAnchor(i, line) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		asm, err := d.subsystems.Assemble(lines, i)
		out.SubsystemErrors = append(out.SubsystemErrors, asm.Errors...)
		if err != nil {
			return err
		}
		if !asm.Skipped {
			out.Subsystems = append(out.Subsystems, asm.Record)
		}
	}
	return nil
}
