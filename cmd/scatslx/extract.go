package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/infrastructure/config"
	"github.com/reglet-dev/scatslx/internal/infrastructure/lxfile"
	"github.com/reglet-dev/scatslx/internal/infrastructure/output"
	"github.com/reglet-dev/scatslx/internal/version"
)

// extractOptions are the flags of extract that are not settings keys.
type extractOptions struct {
	common       CommonOptions
	filterExpr   string
	failOnErrors bool
}

func newExtractCmd(v *viper.Viper) *cobra.Command {
	opts := &extractOptions{common: DefaultCommonOptions()}
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "extract <file.lx>",
		Short: "Extract site and subsystem records from an LX file",
		Long: `Scan an LX file for site and subsystem blocks, decode their plan tokens,
and join sites with their subsystem.

Records that cannot be parsed are reported in the error lists and skipped.
With --strict the first non-numeric site, subsystem or linked-site id
aborts the run instead.

Filtering:
  --filter "has_subsystem && lp_linked"   Keep rows matching an expression
  Variables: site_id, subsystem_id, has_subsystem, pp_linked, lp_linked`,
		Example: `  scatslx extract site.lx
  scatslx extract site.lx --sites sites.csv --format msgpack -o site.msgpack
  scatslx extract site.lx --strict --format sarif -o audit.sarif`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(v, func(cc *CommandContext, cmd *cobra.Command, args []string) error {
			return runExtract(cc, cmd, args[0], opts)
		}),
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", defaults.Output.Format, "Output format: table, json, yaml, sarif, msgpack")
	flags.StringP("output", "o", "", "Output file path (default: stdout)")
	flags.String("sites", "", "Site-location CSV; enables the link graph")
	flags.String("db", "", "SQLite database to store the run in")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile")
	flags.String("encoding", defaults.Input.Encoding,
		"LX file encoding: "+strings.Join(lxfile.SupportedEncodings(), ", "))
	flags.Bool("strict", false, "Abort on the first non-numeric id")
	flags.Int("search-limit", defaults.SearchLimit, "Lines to search around each anchor")
	flags.Int("skip-initial-lines", defaults.SkipInitialLines, "Header lines ignored by the subsystem pass")
	flags.StringVar(&opts.filterExpr, "filter", "", "Filter expression over joined rows")
	flags.BoolVar(&opts.failOnErrors, "fail-on-errors", false, "Exit non-zero when any error entry is reported")
	opts.common.RegisterFlags(cmd)

	bindFlag(v, cmd, "output.format", "format")
	bindFlag(v, cmd, "output.path", "output")
	bindFlag(v, cmd, "sites.path", "sites")
	bindFlag(v, cmd, "output.db", "db")
	bindFlag(v, cmd, "output.metrics_file", "metrics-file")
	bindFlag(v, cmd, "input.encoding", "encoding")
	bindFlag(v, cmd, "strict", "strict")
	bindFlag(v, cmd, "search_limit", "search-limit")
	bindFlag(v, cmd, "skip_initial_lines", "skip-initial-lines")

	return cmd
}

func runExtract(cc *CommandContext, cmd *cobra.Command, path string, opts *extractOptions) error {
	settings := cc.Settings
	factory := cc.Container.Formatters()
	format := settings.Output.Format
	if err := validateFormat(factory, format); err != nil {
		return err
	}

	ctx, cancel := opts.common.ApplyToContext(cc.Context)
	defer cancel()

	req := dto.ExtractRequest{
		SourcePath: path,
		Metadata: dto.RequestMetadata{
			RequestID:   uuid.NewString(),
			ToolVersion: version.Get().Version,
		},
		Locations:  settings.LocationOptions(),
		Filters:    dto.FilterOptions{FilterExpression: opts.filterExpr},
		Extraction: settings.ExtractionOptions(),
	}

	resp, err := cc.Container.ExtractLXUseCase().Execute(ctx, req)
	if err != nil {
		return err
	}
	for _, w := range resp.Diagnostics.Warnings {
		cc.Logger.Warn(w)
	}
	if resp.Diagnostics.FilteredOut > 0 {
		cc.Logger.Info("rows filtered out", "count", resp.Diagnostics.FilteredOut)
	}

	if err := writeResult(cmd.OutOrStdout(), settings, factory, resp.Result); err != nil {
		return err
	}

	if err := cc.Container.WriteMetrics(); err != nil {
		return err
	}

	if opts.failOnErrors && resp.Result.HasErrors() {
		return fmt.Errorf("extraction reported %d error entries", len(resp.Result.Errors()))
	}
	return nil
}

// writeResult writes the result to settings.Output.Path, or to stdout.
func writeResult(stdout io.Writer, settings *config.Settings, factory *output.FormatterFactory, result *extraction.Result) error {
	format := settings.Output.Format
	writer := stdout
	isTTY := isTerminal(stdout)

	if settings.Output.Path != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(settings.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = file.Close() // Best-effort cleanup
		}()
		writer = file
		isTTY = false
	} else if isTTY && factory.IsBinary(format) {
		return fmt.Errorf("refusing to write %s to a terminal; use --output", format)
	}

	formatter, err := factory.Create(format, writer, output.Options{
		SourcePath:  result.SourcePath,
		ToolVersion: result.ToolVersion,
		Indent:      true,
		Color:       isTTY,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(result); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: fd fits in int
}
