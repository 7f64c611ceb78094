package entities

import (
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// SiteRecord is one site anchor with its subsystem and four phase plans.
type SiteRecord struct {
	SubsystemID *values.SubsystemID             `json:"subsystem_id" yaml:"subsystem_id"`
	Plans       [values.PlansPerRecord]PlanSlot `json:"plans" yaml:"plans"`
	SiteID      values.SiteID                   `json:"site_id" yaml:"site_id"`
	Line        int                             `json:"line" yaml:"line"`
}

// HasSubsystem reports whether a valid subsystem id was located.
func (r SiteRecord) HasSubsystem() bool {
	return r.SubsystemID != nil
}

// Plan returns phase plan n (1-based).
func (r SiteRecord) Plan(n int) PlanSlot {
	return r.Plans[n-1]
}

// SubsystemRecord is one subsystem-data anchor with its four link plans.
type SubsystemRecord struct {
	Links       [values.PlansPerRecord]PlanSlot `json:"links" yaml:"links"`
	SubsystemID values.SubsystemID              `json:"subsystem_id" yaml:"subsystem_id"`
	Line        int                             `json:"line" yaml:"line"`
}

// Link returns link plan n (1-based).
func (r SubsystemRecord) Link(n int) PlanSlot {
	return r.Links[n-1]
}

// JoinedRecord is a site left-joined with its subsystem.
// Subsystem is nil when the site has no matching subsystem record.
type JoinedRecord struct {
	Subsystem *SubsystemRecord `json:"subsystem,omitempty" yaml:"subsystem,omitempty"`
	Site      SiteRecord       `json:"site" yaml:"site"`
}

// PhaseLink returns the linkage of phase plan n.
func (j JoinedRecord) PhaseLink(n int) values.Linkage {
	slot := j.Site.Plan(n)
	if !slot.Found {
		return values.Unlinked()
	}
	return slot.Offset.Link
}

// LinkPlanLink returns the linkage of link plan n, Unlinked without a subsystem.
func (j JoinedRecord) LinkPlanLink(n int) values.Linkage {
	if j.Subsystem == nil {
		return values.Unlinked()
	}
	slot := j.Subsystem.Link(n)
	if !slot.Found {
		return values.Unlinked()
	}
	return slot.Offset.Link
}

// HasPhaseEdge reports whether any phase plan is slaved to another site.
func (j JoinedRecord) HasPhaseEdge() bool {
	for n := 1; n <= values.PlansPerRecord; n++ {
		if j.PhaseLink(n).IsEdge() {
			return true
		}
	}
	return false
}

// HasLinkEdge reports whether any link plan references another site.
func (j JoinedRecord) HasLinkEdge() bool {
	for n := 1; n <= values.PlansPerRecord; n++ {
		if j.LinkPlanLink(n).IsEdge() {
			return true
		}
	}
	return false
}
