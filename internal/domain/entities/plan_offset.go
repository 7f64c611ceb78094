// Package entities contains the records produced by an LX extraction.
package entities

import (
	"fmt"
	"strconv"

	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Fallback marks a PlanOffset that was substituted instead of decoded.
type Fallback uint8

const (
	// FallbackNone is a normally decoded offset.
	FallbackNone Fallback = iota
	// FallbackError replaces a token that did not fit the grammar.
	FallbackError
	// FallbackNoLinks is the LP record for a bare token without a slaved marker.
	FallbackNoLinks
)

// String returns the fallback name, empty for FallbackNone.
func (f Fallback) String() string {
	switch f {
	case FallbackError:
		return "error"
	case FallbackNoLinks:
		return "no_links"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler
func (f Fallback) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Fallback) UnmarshalText(data []byte) error {
	switch string(data) {
	case "":
		*f = FallbackNone
	case "error":
		*f = FallbackError
	case "no_links":
		*f = FallbackNoLinks
	default:
		return fmt.Errorf("invalid fallback: %s", data)
	}
	return nil
}

// Legacy flat forms of the two fallback records.
var (
	errorTuple   = [5]string{"-1", "-1", "-1", "ERR", "-1"}
	noLinksTuple = [5]string{"0", "0", "0", "0", "0"}
)

// PlanOffset is one decoded PP or LP plan token.
type PlanOffset struct {
	OffsetLow    string         `json:"offset_low" yaml:"offset_low"`
	OffsetHigh   string         `json:"offset_high" yaml:"offset_high"`
	Phase        string         `json:"phase" yaml:"phase"`
	Link         values.Linkage `json:"linked_site_id" yaml:"linked_site_id"`
	StartOfPhase bool           `json:"offset_start_flag" yaml:"offset_start_flag"`
	Slaved       bool           `json:"slaved_link" yaml:"slaved_link"`
	Fallback     Fallback       `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// ErrorFallback returns the record substituted for a malformed token.
func ErrorFallback() PlanOffset {
	return PlanOffset{
		OffsetLow:  "-1",
		OffsetHigh: "-1",
		Phase:      "ERR",
		Link:       values.Unlinked(),
		Fallback:   FallbackError,
	}
}

// NoLinksFallback returns the LP record for a bare token without links.
func NoLinksFallback() PlanOffset {
	return PlanOffset{
		OffsetLow:  "0",
		OffsetHigh: "0",
		Phase:      "0",
		Link:       values.Unlinked(),
		Fallback:   FallbackNoLinks,
	}
}

// IsFallback reports whether the offset was substituted rather than decoded.
func (p PlanOffset) IsFallback() bool {
	return p.Fallback != FallbackNone
}

// Tuple returns the legacy five-field form:
// offset1, offset2, phase start, phase, linked site.
func (p PlanOffset) Tuple() [5]string {
	switch p.Fallback {
	case FallbackError:
		return errorTuple
	case FallbackNoLinks:
		return noLinksTuple
	}

	start := "0"
	if p.StartOfPhase {
		start = "1"
	}
	return [5]string{p.OffsetLow, p.OffsetHigh, start, p.Phase, strconv.Itoa(p.Link.Sentinel())}
}

// LegacyLink returns the fifth tuple field as an integer. Fallback records
// use their fixed tuple value rather than the Link sentinel.
func (p PlanOffset) LegacyLink() int {
	switch p.Fallback {
	case FallbackError:
		return values.UnlinkedSentinel
	case FallbackNoLinks:
		return 0
	}
	return p.Link.Sentinel()
}

// PlanSlot pairs a decoded offset with the raw token it came from.
type PlanSlot struct {
	Name   string     `json:"name" yaml:"name"`
	Raw    string     `json:"raw" yaml:"raw"`
	Offset PlanOffset `json:"offset" yaml:"offset"`
	Found  bool       `json:"found" yaml:"found"`
}

// EmptySlot returns a slot whose tag was not located.
func EmptySlot(name string) PlanSlot {
	return PlanSlot{Name: name}
}
