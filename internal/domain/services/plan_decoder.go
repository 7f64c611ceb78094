package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ErrNonNumericLinkage is returned by a strict decoder when the decoded
// linked site is not a non-negative integer.
var ErrNonNumericLinkage = errors.New("non-numeric linked site")

// errMalformedToken marks a token that could not be split by the grammar.
var errMalformedToken = errors.New("malformed plan token")

// Reserved plan-token markers.
const (
	offsetSeparator = ","
	startOfPhase    = "^"
	slavedMarker    = "SL"
)

// Issue is a degradation noted while decoding a single token.
type Issue struct {
	Kind    values.ErrorKind
	Message string
}

// Decoded is the outcome of decoding one plan token. Offset is always a
// usable record; Issues lists what was substituted to make it so.
type Decoded struct {
	Issues []Issue
	Offset entities.PlanOffset
}

// Degraded reports whether any part of the token was substituted.
func (d Decoded) Degraded() bool {
	return len(d.Issues) > 0
}

// PlanDecoder decodes PP and LP plan tokens. It holds no state besides
// the strict flag and is safe for concurrent use.
type PlanDecoder struct {
	strict bool
}

// NewPlanDecoder creates a decoder. A strict decoder fails on a
// non-numeric linked site instead of recording the invalid sentinel.
func NewPlanDecoder(strict bool) *PlanDecoder {
	return &PlanDecoder{strict: strict}
}

// Strict reports whether non-numeric linkage is a hard failure.
func (d *PlanDecoder) Strict() bool {
	return d.strict
}

// Decode decodes a token of the given kind. The token is the text after
// TAG= with the trailing '!' already removed.
func (d *PlanDecoder) Decode(kind values.PlanKind, token string) (Decoded, error) {
	if err := kind.Validate(); err != nil {
		return Decoded{}, err
	}

	raw, err := splitPlanToken(kind, token)
	switch {
	case errors.Is(err, errNoLinks):
		return Decoded{Offset: entities.NoLinksFallback()}, nil
	case err != nil:
		return Decoded{
			Offset: entities.ErrorFallback(),
			Issues: []Issue{{
				Kind:    values.ErrMalformedPlanToken,
				Message: fmt.Sprintf("%s token %q: %v", kind, token, err),
			}},
		}, nil
	}

	offset := entities.PlanOffset{
		OffsetLow:    raw.low,
		OffsetHigh:   raw.high,
		Phase:        raw.phase,
		StartOfPhase: raw.start,
		Slaved:       raw.slaved,
		Link:         values.Unlinked(),
	}
	if !raw.hasLink {
		return Decoded{Offset: offset}, nil
	}

	id, parseErr := values.ParseSiteID(raw.link)
	if parseErr == nil {
		offset.Link = values.LinkedTo(id)
		return Decoded{Offset: offset}, nil
	}
	if d.strict {
		return Decoded{}, fmt.Errorf("%w %q: %w", ErrNonNumericLinkage, raw.link, parseErr)
	}

	offset.Link = values.InvalidLinkage()
	return Decoded{
		Offset: offset,
		Issues: []Issue{{
			Kind:    values.ErrNonNumericLinkage,
			Message: fmt.Sprintf("%s token %q: non-numeric linked site %q", kind, token, raw.link),
		}},
	}, nil
}

// DecodePhasePlan decodes a PP token.
func (d *PlanDecoder) DecodePhasePlan(token string) (Decoded, error) {
	return d.Decode(values.PlanKindPhase, token)
}

// DecodeLinkPlan decodes an LP token.
func (d *PlanDecoder) DecodeLinkPlan(token string) (Decoded, error) {
	return d.Decode(values.PlanKindLink, token)
}

// rawPlan is a split token before linkage validation. hasLink is false
// for branches that never carry a linked site.
type rawPlan struct {
	low, high, phase, link string
	start, slaved, hasLink bool
}

// errNoLinks is the LP outcome for a bare token without a slaved marker.
var errNoLinks = errors.New("no links")

func splitPlanToken(kind values.PlanKind, token string) (rawPlan, error) {
	parts := strings.Split(token, offsetSeparator)
	if len(parts) == 1 {
		if !strings.Contains(token, slavedMarker) {
			if kind == values.PlanKindLink {
				return rawPlan{}, errNoLinks
			}
			return rawPlan{}, fmt.Errorf("%w: no offset separator or slaved marker", errMalformedToken)
		}
		return splitSlaved(token)
	}

	if kind == values.PlanKindPhase {
		return splitPhaseOffsets(parts[0], parts[1])
	}
	return splitLinkOffsets(parts[0], parts[1])
}

// splitSlaved handles "<offset>SL<site><phase>" and "<offset>SL<site>^<phase>".
func splitSlaved(token string) (rawPlan, error) {
	parts := strings.Split(token, slavedMarker)
	prefix, suffix := parts[0], parts[1]
	raw := rawPlan{low: prefix, high: prefix, slaved: true, hasLink: true}

	if strings.Contains(suffix, startOfPhase) {
		marked := strings.Split(suffix, startOfPhase)
		raw.link, raw.phase, raw.start = marked[0], marked[1], true
		return raw, nil
	}

	body, last, ok := cutLastRune(suffix)
	if !ok {
		return rawPlan{}, fmt.Errorf("%w: empty slaved suffix", errMalformedToken)
	}
	raw.link, raw.phase = body, last
	return raw, nil
}

// splitPhaseOffsets handles "<low>,<high><phase>" and "<low>,<high>^<phase>".
func splitPhaseOffsets(low, rest string) (rawPlan, error) {
	raw := rawPlan{low: low}

	if strings.Contains(rest, startOfPhase) {
		marked := strings.Split(rest, startOfPhase)
		raw.high, raw.phase, raw.start = marked[0], marked[1], true
		return raw, nil
	}

	body, last, ok := cutLastRune(rest)
	if !ok {
		return rawPlan{}, fmt.Errorf("%w: nothing after offset separator", errMalformedToken)
	}
	raw.high, raw.phase = body, last
	return raw, nil
}

// splitLinkOffsets handles "<low>,<high>^<phase><site>" and the compact
// "<low>,<high><phase><site>" where the phase is the first non-numeric rune.
func splitLinkOffsets(low, rest string) (rawPlan, error) {
	raw := rawPlan{low: low, hasLink: true}

	if strings.Contains(rest, startOfPhase) {
		marked := strings.Split(rest, startOfPhase)
		phase, link, ok := cutFirstRune(marked[1])
		if !ok {
			return rawPlan{}, fmt.Errorf("%w: no phase after start-of-phase marker", errMalformedToken)
		}
		raw.high, raw.phase, raw.link, raw.start = marked[0], phase, link, true
		return raw, nil
	}

	if rest == "" {
		return rawPlan{}, fmt.Errorf("%w: nothing after offset separator", errMalformedToken)
	}

	// Without a non-numeric rune the phase is taken from the first position.
	at := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsNumber(r) })
	if at < 0 {
		at = 0
	}
	phase, link, _ := cutFirstRune(rest[at:])
	raw.high, raw.phase, raw.link = rest[:at], phase, link
	return raw, nil
}

func cutLastRune(s string) (body, last string, ok bool) {
	r, size := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError && size == 0 {
		return "", "", false
	}
	return s[:len(s)-size], s[len(s)-size:], true
}

func cutFirstRune(s string) (first, rest string, ok bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size == 0 {
		return "", "", false
	}
	return s[:size], s[size:], true
}
