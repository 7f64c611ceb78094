package values

import (
	"fmt"
	"strings"
)

// PlanKind selects the plan-token grammar variant.
type PlanKind string

const (
	// PlanKindPhase is a site Phase Plan (PP), reported two per line.
	PlanKindPhase PlanKind = "PP"
	// PlanKindLink is a subsystem Link Plan (LP), reported one per line.
	PlanKindLink PlanKind = "LP"
)

// PlansPerRecord is the number of PP slots on a site and LP slots on a subsystem.
const PlansPerRecord = 4

// ParsePlanKind parses "pp" / "lp" case-insensitively
func ParsePlanKind(s string) (PlanKind, error) {
	switch PlanKind(strings.ToUpper(strings.TrimSpace(s))) {
	case PlanKindPhase:
		return PlanKindPhase, nil
	case PlanKindLink:
		return PlanKindLink, nil
	default:
		return "", fmt.Errorf("invalid plan kind: %s (valid: pp, lp)", s)
	}
}

// Validate returns an error if the kind is unknown
func (k PlanKind) Validate() error {
	switch k {
	case PlanKindPhase, PlanKindLink:
		return nil
	default:
		return fmt.Errorf("invalid plan kind: %s", k)
	}
}

// SlotName returns the field name of plan slot n (1-based), e.g. "PP3".
func (k PlanKind) SlotName(n int) string {
	return fmt.Sprintf("%s%d", k, n)
}
