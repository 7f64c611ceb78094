package output

import (
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// missingValue fills columns of slots that were not located or of a
// site without a subsystem.
const missingValue = "-1"

// FlatRow is one joined row in the legacy column layout: site_id,
// subsystem_id, then PPn_/LPn_ data, offset1, offset2, phaseStart, phase
// and slaved for n = 1..4.
type FlatRow map[string]any

// FlattenRow converts a joined row to its legacy column layout.
func FlattenRow(row entities.JoinedRecord) FlatRow {
	flat := FlatRow{
		"site_id":      row.Site.SiteID.Int(),
		"subsystem_id": values.UnlinkedSentinel,
	}
	if row.Site.SubsystemID != nil {
		flat["subsystem_id"] = row.Site.SubsystemID.Int()
	}

	for n := 1; n <= values.PlansPerRecord; n++ {
		flat.putSlot(values.PlanKindPhase.SlotName(n), row.Site.Plan(n), true)

		if row.Subsystem == nil {
			flat.putSlot(values.PlanKindLink.SlotName(n), entities.PlanSlot{}, false)
			continue
		}
		flat.putSlot(values.PlanKindLink.SlotName(n), row.Subsystem.Link(n), true)
	}
	return flat
}

func (r FlatRow) putSlot(prefix string, slot entities.PlanSlot, present bool) {
	if !present || !slot.Found {
		r[prefix+"_data"] = missingValue
		r[prefix+"_offset1"] = missingValue
		r[prefix+"_offset2"] = missingValue
		r[prefix+"_phaseStart"] = missingValue
		r[prefix+"_phase"] = missingValue
		r[prefix+"_slaved"] = values.UnlinkedSentinel
		return
	}

	tuple := slot.Offset.Tuple()
	r[prefix+"_data"] = slot.Raw
	r[prefix+"_offset1"] = tuple[0]
	r[prefix+"_offset2"] = tuple[1]
	r[prefix+"_phaseStart"] = tuple[2]
	r[prefix+"_phase"] = tuple[3]
	r[prefix+"_slaved"] = slot.Offset.LegacyLink()
}
