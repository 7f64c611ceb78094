package services

import (
	"cmp"
	"slices"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// JoinRecords left-joins sites with subsystems on subsystem id, one row
// per matching subsystem, sorted by site id. A site without a match
// yields a single row with no subsystem.
func JoinRecords(sites []entities.SiteRecord, subsystems []entities.SubsystemRecord) []entities.JoinedRecord {
	bySubsystem := make(map[values.SubsystemID][]int, len(subsystems))
	for i, sub := range subsystems {
		bySubsystem[sub.SubsystemID] = append(bySubsystem[sub.SubsystemID], i)
	}

	rows := make([]entities.JoinedRecord, 0, len(sites))
	for _, site := range sites {
		var matches []int
		if site.SubsystemID != nil {
			matches = bySubsystem[*site.SubsystemID]
		}
		if len(matches) == 0 {
			rows = append(rows, entities.JoinedRecord{Site: site})
			continue
		}
		for _, i := range matches {
			rows = append(rows, entities.JoinedRecord{Site: site, Subsystem: &subsystems[i]})
		}
	}

	slices.SortStableFunc(rows, func(a, b entities.JoinedRecord) int {
		return cmp.Compare(a.Site.SiteID, b.Site.SiteID)
	})
	return rows
}
