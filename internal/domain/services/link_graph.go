package services

import (
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// LinkGraph is the site-linkage graph of an extraction.
type LinkGraph struct {
	// Edges are ordered by plan, then row, with LP before SL.
	Edges []entities.LinkEdge
	// Unlocated lists rows whose site has no location, in row order.
	Unlocated []entities.JoinedRecord
}

// EdgesForPlan returns the edges of plan n.
func (g LinkGraph) EdgesForPlan(n int) []entities.LinkEdge {
	var edges []entities.LinkEdge
	for _, e := range g.Edges {
		if e.Plan == n {
			edges = append(edges, e)
		}
	}
	return edges
}

// BuildLinkGraph derives LP and SL edges for each located row. An edge
// exists when the linked site is a positive id with a known location.
func BuildLinkGraph(rows []entities.JoinedRecord, locations []entities.SiteLocation) LinkGraph {
	points := make(map[values.SiteID]entities.Point, len(locations))
	for _, loc := range locations {
		points[loc.ID] = loc.Point
	}

	var g LinkGraph
	var located []entities.JoinedRecord
	for _, row := range rows {
		if _, ok := points[row.Site.SiteID]; !ok {
			g.Unlocated = append(g.Unlocated, row)
			continue
		}
		located = append(located, row)
	}

	for n := 1; n <= values.PlansPerRecord; n++ {
		for _, row := range located {
			from := row.Site.SiteID
			if e, ok := edgeTo(points, entities.EdgeLink, n, from, row.LinkPlanLink(n)); ok {
				g.Edges = append(g.Edges, e)
			}
		}
		for _, row := range located {
			from := row.Site.SiteID
			if e, ok := edgeTo(points, entities.EdgeSlaved, n, from, row.PhaseLink(n)); ok {
				g.Edges = append(g.Edges, e)
			}
		}
	}
	return g
}

func edgeTo(points map[values.SiteID]entities.Point, kind entities.EdgeKind, plan int, from values.SiteID, link values.Linkage) (entities.LinkEdge, bool) {
	if !link.IsEdge() {
		return entities.LinkEdge{}, false
	}
	to, _ := link.Target()
	toPoint, ok := points[to]
	if !ok {
		return entities.LinkEdge{}, false
	}
	return entities.LinkEdge{
		Kind:      kind,
		Plan:      plan,
		From:      from,
		To:        to,
		FromPoint: points[from],
		ToPoint:   toPoint,
	}, true
}
