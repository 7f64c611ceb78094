package services

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// SubsystemAssembly is the outcome of assembling one subsystem-data anchor.
type SubsystemAssembly struct {
	Errors  []entities.ErrorEntry
	Record  entities.SubsystemRecord
	Skipped bool
}

// SubsystemAssembler builds SubsystemRecords from subsystem-data anchors.
type SubsystemAssembler struct {
	decoder *PlanDecoder
	opts    ExtractionOptions
}

// NewSubsystemAssembler creates a subsystem assembler.
func NewSubsystemAssembler(opts ExtractionOptions, decoder *PlanDecoder) *SubsystemAssembler {
	return &SubsystemAssembler{opts: opts, decoder: decoder}
}

// IsAnchor reports whether the line at index carries a subsystem-data tag
// outside the leading header region.
func (a *SubsystemAssembler) IsAnchor(index int, line string) bool {
	return index >= a.opts.SkipInitialLines && strings.Contains(line, a.opts.Tags.SubsystemData)
}

// Assemble builds the subsystem anchored at lines[anchor].
func (a *SubsystemAssembler) Assemble(lines []string, anchor int) (SubsystemAssembly, error) {
	var out SubsystemAssembly
	lineNo := anchor + 1

	rawID, _ := fieldValue(lines[anchor], a.opts.Tags.SubsystemData)
	id, err := values.ParseSubsystemID(rawID)
	if err != nil {
		fe := &entities.FieldError{
			Err:      err,
			Kind:     values.ErrNonNumericSubsystemID,
			EntityID: rawID,
			Field:    "subsystem_id",
			Value:    rawID,
			Line:     lineNo,
		}
		if a.opts.Strict {
			return out, fe
		}
		out.Errors = append(out.Errors, fe.Entry())
		out.Skipped = true
		return out, nil
	}

	entity := id.String()
	out.Record = entities.SubsystemRecord{SubsystemID: id, Line: lineNo}
	window := LineWindow{Anchor: anchor, Limit: a.opts.SearchLimit}
	names := slotNames[values.PlanKindLink]

	for n := 1; n <= values.PlansPerRecord; n++ {
		out.Record.Links[n-1] = entities.EmptySlot(names[n-1])

		tag := a.opts.Tags.linkPlanTag(n)
		match, found := window.Find(lines, tag)
		if !found {
			out.Errors = append(out.Errors, entities.ErrorEntry{
				EntityID: entity,
				Kind:     values.ErrAnchorNotFound,
				Message:  fmt.Sprintf("%s not found within %d lines", names[n-1], window.Limit),
				Line:     lineNo,
			})
			continue
		}

		token, _ := fieldValue(match.Line, tag)
		slot, errs, err := decodeSlot(a.decoder, values.PlanKindLink, names[n-1], token, entity, match.Index+1)
		if err != nil {
			return out, err
		}
		out.Record.Links[n-1] = slot
		out.Errors = append(out.Errors, errs...)
	}

	return out, nil
}
