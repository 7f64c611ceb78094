package services

import (
	"fmt"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// EncodePlan renders a decoded offset back into its token form. Fallback
// records and offsets with an invalid linkage have no token form.
func EncodePlan(kind values.PlanKind, offset entities.PlanOffset) (string, error) {
	if offset.IsFallback() {
		return "", fmt.Errorf("cannot encode %s fallback record", offset.Fallback)
	}
	if offset.Link.State() == values.LinkageInvalid {
		return "", fmt.Errorf("cannot encode invalid linkage")
	}

	link := ""
	if id, ok := offset.Link.Target(); ok {
		link = id.String()
	}

	if offset.Slaved {
		if offset.StartOfPhase {
			return offset.OffsetLow + slavedMarker + link + startOfPhase + offset.Phase, nil
		}
		return offset.OffsetLow + slavedMarker + link + offset.Phase, nil
	}

	token := offset.OffsetLow + offsetSeparator + offset.OffsetHigh
	switch kind {
	case values.PlanKindPhase:
		if offset.StartOfPhase {
			return token + startOfPhase + offset.Phase, nil
		}
		return token + offset.Phase, nil
	case values.PlanKindLink:
		if offset.StartOfPhase {
			return token + startOfPhase + offset.Phase + link, nil
		}
		return token + offset.Phase + link, nil
	default:
		return "", fmt.Errorf("invalid plan kind: %s", kind)
	}
}
