package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// phasePlanPairs are reported two per line: PP1 with PP2, PP3 with PP4.
var phasePlanPairs = [2][2]int{{1, 2}, {3, 4}}

// SiteAssembly is the outcome of assembling one site anchor.
// Record is meaningless when Skipped is true.
type SiteAssembly struct {
	Errors  []entities.ErrorEntry
	Record  entities.SiteRecord
	Skipped bool
}

// SiteAssembler builds SiteRecords from site anchor lines.
type SiteAssembler struct {
	decoder *PlanDecoder
	opts    ExtractionOptions
}

// NewSiteAssembler creates a site assembler.
func NewSiteAssembler(opts ExtractionOptions, decoder *PlanDecoder) *SiteAssembler {
	return &SiteAssembler{opts: opts, decoder: decoder}
}

// IsAnchor reports whether line carries a site id tag.
func (a *SiteAssembler) IsAnchor(line string) bool {
	return strings.Contains(line, a.opts.Tags.Site)
}

// Assemble builds the site anchored at lines[anchor]. In strict mode a
// non-numeric site, subsystem or linked id returns a *entities.FieldError.
func (a *SiteAssembler) Assemble(lines []string, anchor int) (SiteAssembly, error) {
	var out SiteAssembly
	lineNo := anchor + 1

	rawID, _ := fieldValue(lines[anchor], a.opts.Tags.Site)
	siteID, err := values.ParseSiteID(rawID)
	if err != nil {
		fe := &entities.FieldError{
			Err:      err,
			Kind:     values.ErrNonNumericSiteID,
			EntityID: rawID,
			Field:    "site_id",
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

	entity := siteID.String()
	out.Record = entities.SiteRecord{SiteID: siteID, Line: lineNo}
	window := LineWindow{Anchor: anchor, Limit: a.opts.SearchLimit}

	subsystemID, errs, err := a.findSubsystem(lines, window, entity)
	out.Errors = append(out.Errors, errs...)
	if err != nil {
		return out, err
	}
	out.Record.SubsystemID = subsystemID

	for _, pair := range phasePlanPairs {
		errs, err := a.fillPair(&out.Record, lines, window, entity, pair)
		out.Errors = append(out.Errors, errs...)
		if err != nil {
			return out, err
		}
	}

	return out, nil
}

// findSubsystem searches the window for a valid subsystem id. A
// non-numeric id is recorded and the search continues past it.
func (a *SiteAssembler) findSubsystem(lines []string, window LineWindow, entity string) (*values.SubsystemID, []entities.ErrorEntry, error) {
	var errs []entities.ErrorEntry
	tag := a.opts.Tags.Subsystem

	from := window.Anchor
	for {
		match, found := window.FindFrom(lines, from, tag)
		if !found {
			errs = append(errs, entities.ErrorEntry{
				EntityID: entity,
				Kind:     values.ErrAnchorNotFound,
				Message:  fmt.Sprintf("subsystem %q not found within %d lines", tag, window.Limit),
				Line:     window.Anchor + 1,
			})
			return nil, errs, nil
		}

		raw, _ := fieldValue(match.Line, tag)
		id, err := values.ParseSubsystemID(raw)
		if err == nil {
			return &id, errs, nil
		}

		fe := &entities.FieldError{
			Err:      err,
			Kind:     values.ErrNonNumericSubsystemID,
			EntityID: entity,
			Field:    "subsystem_id",
			Value:    raw,
			Line:     match.Index + 1,
		}
		if a.opts.Strict {
			return nil, errs, fe
		}
		errs = append(errs, fe.Entry())
		from = match.Index + 1
	}
}

// fillPair locates the line carrying both plans of a pair and decodes each.
func (a *SiteAssembler) fillPair(rec *entities.SiteRecord, lines []string, window LineWindow, entity string, pair [2]int) ([]entities.ErrorEntry, error) {
	names := slotNames[values.PlanKindPhase]
	for _, n := range pair {
		rec.Plans[n-1] = entities.EmptySlot(names[n-1])
	}

	lead := a.opts.Tags.phasePlanTag(pair[0])
	match, found := window.Find(lines, lead)
	if !found {
		return []entities.ErrorEntry{{
			EntityID: entity,
			Kind:     values.ErrAnchorNotFound,
			Message:  fmt.Sprintf("%s/%s not found within %d lines", names[pair[0]-1], names[pair[1]-1], window.Limit),
			Line:     window.Anchor + 1,
		}}, nil
	}

	var errs []entities.ErrorEntry
	for _, n := range pair {
		tag := a.opts.Tags.phasePlanTag(n)
		token, ok := fieldValue(match.Line, tag)
		if !ok {
			errs = append(errs, entities.ErrorEntry{
				EntityID: entity,
				Kind:     values.ErrAnchorNotFound,
				Message:  fmt.Sprintf("%s not found on the %s line", names[n-1], names[pair[0]-1]),
				Line:     match.Index + 1,
			})
			continue
		}

		slot, slotErrs, err := decodeSlot(a.decoder, values.PlanKindPhase, names[n-1], token, entity, match.Index+1)
		if err != nil {
			return errs, err
		}
		rec.Plans[n-1] = slot
		errs = append(errs, slotErrs...)
	}
	return errs, nil
}

// decodeSlot decodes one token into a filled PlanSlot, converting decoder
// issues into ErrorEntries and a strict linkage failure into a FieldError.
func decodeSlot(decoder *PlanDecoder, kind values.PlanKind, name, token, entity string, lineNo int) (entities.PlanSlot, []entities.ErrorEntry, error) {
	decoded, err := decoder.Decode(kind, token)
	if err != nil {
		kindOfErr := values.ErrMalformedPlanToken
		if errors.Is(err, ErrNonNumericLinkage) {
			kindOfErr = values.ErrNonNumericLinkage
		}
		return entities.PlanSlot{}, nil, &entities.FieldError{
			Err:      err,
			Kind:     kindOfErr,
			EntityID: entity,
			Field:    name,
			Value:    token,
			Line:     lineNo,
		}
	}

	var errs []entities.ErrorEntry
	for _, issue := range decoded.Issues {
		errs = append(errs, entities.ErrorEntry{
			EntityID: entity,
			Kind:     issue.Kind,
			Message:  name + ": " + issue.Message,
			Line:     lineNo,
		})
	}

	return entities.PlanSlot{
		Name:   name,
		Raw:    token,
		Offset: decoded.Offset,
		Found:  true,
	}, errs, nil
}
