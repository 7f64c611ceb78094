package services

import (
	"fmt"

	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Tags are the field markers an LX dialect uses.
type Tags struct {
	Site          string
	Subsystem     string
	PhasePlan     string
	SubsystemData string
	LinkPlan      string
}

// DefaultTags returns the markers of a standard SCATS LX export.
func DefaultTags() Tags {
	return Tags{
		Site:          "INT=",
		Subsystem:     "S#=",
		PhasePlan:     "PP",
		SubsystemData: "SS=",
		LinkPlan:      "LP",
	}
}

// phasePlanTag returns the search tag for phase plan n, e.g. "PP3=".
func (t Tags) phasePlanTag(n int) string {
	return fmt.Sprintf("%s%d=", t.PhasePlan, n)
}

// linkPlanTag returns the search tag for link plan n, e.g. "LP1=".
func (t Tags) linkPlanTag(n int) string {
	return fmt.Sprintf("%s%d=", t.LinkPlan, n)
}

// ExtractionOptions configures both extraction passes.
type ExtractionOptions struct {
	Tags             Tags
	SearchLimit      int
	SkipInitialLines int
	Strict           bool
}

// DefaultExtractionOptions returns the standard window sizes and tags.
func DefaultExtractionOptions() ExtractionOptions {
	return ExtractionOptions{
		Tags:             DefaultTags(),
		SearchLimit:      20,
		SkipInitialLines: 10,
	}
}

// Validate checks the options before a run.
func (o ExtractionOptions) Validate() error {
	if o.SearchLimit <= 0 {
		return fmt.Errorf("search limit must be positive, got %d", o.SearchLimit)
	}
	if o.SkipInitialLines < 0 {
		return fmt.Errorf("skip initial lines must not be negative, got %d", o.SkipInitialLines)
	}
	for name, tag := range map[string]string{
		"site":           o.Tags.Site,
		"subsystem":      o.Tags.Subsystem,
		"phase plan":     o.Tags.PhasePlan,
		"subsystem data": o.Tags.SubsystemData,
		"link plan":      o.Tags.LinkPlan,
	} {
		if tag == "" {
			return fmt.Errorf("%s tag must not be empty", name)
		}
	}
	return nil
}

// slotNames are the canonical names of the four plan slots of each kind.
var slotNames = map[values.PlanKind][values.PlansPerRecord]string{
	values.PlanKindPhase: {"PP1", "PP2", "PP3", "PP4"},
	values.PlanKindLink:  {"LP1", "LP2", "LP3", "LP4"},
}
