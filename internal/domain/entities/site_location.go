package entities

import (
	"strconv"

	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Point is a plain coordinate pair. No reference system is implied.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SiteLocation is one row of the site-location table.
type SiteLocation struct {
	Point Point         `json:"point" yaml:"point"`
	ID    values.SiteID `json:"id" yaml:"id"`
}

// EdgeKind distinguishes link-plan edges from slaved phase-plan edges.
type EdgeKind string

const (
	// EdgeLink is drawn from a subsystem link plan (LPn).
	EdgeLink EdgeKind = "LP"
	// EdgeSlaved is drawn from a slaved phase plan (PPn).
	EdgeSlaved EdgeKind = "SL"
)

// LinkEdge is one line of the site-linkage graph.
type LinkEdge struct {
	Kind      EdgeKind      `json:"kind" yaml:"kind"`
	FromPoint Point         `json:"from_point" yaml:"from_point"`
	ToPoint   Point         `json:"to_point" yaml:"to_point"`
	Plan      int           `json:"plan" yaml:"plan"`
	From      values.SiteID `json:"from" yaml:"from"`
	To        values.SiteID `json:"to" yaml:"to"`
}

// Layer returns the legacy layer name, e.g. "LP2" or "SL4".
func (e LinkEdge) Layer() string {
	return string(e.Kind) + strconv.Itoa(e.Plan)
}
