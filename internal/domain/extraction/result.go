// Package extraction provides the aggregate of one LX extraction run.
package extraction

import (
	"time"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Result is the complete outcome of extracting one LX file.
type Result struct {
	StartTime       time.Time                  `json:"start_time" yaml:"start_time"`
	EndTime         time.Time                  `json:"end_time" yaml:"end_time"`
	ErrorsByKind    map[values.ErrorKind]int   `json:"-" yaml:"-"`
	SourcePath      string                     `json:"source_path" yaml:"source_path"`
	ToolVersion     string                     `json:"tool_version,omitempty" yaml:"tool_version,omitempty"`
	Filter          string                     `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sites           []entities.SiteRecord      `json:"sites" yaml:"sites"`
	Subsystems      []entities.SubsystemRecord `json:"subsystems" yaml:"subsystems"`
	Rows            []entities.JoinedRecord    `json:"rows" yaml:"rows"`
	Edges           []entities.LinkEdge        `json:"edges,omitempty" yaml:"edges,omitempty"`
	Unlocated       []values.SiteID            `json:"unlocated_sites,omitempty" yaml:"unlocated_sites,omitempty"`
	SiteErrors      []entities.ErrorEntry      `json:"site_errors" yaml:"site_errors"`
	SubsystemErrors []entities.ErrorEntry      `json:"subsystem_errors" yaml:"subsystem_errors"`
	LocationErrors  []entities.ErrorEntry      `json:"location_errors,omitempty" yaml:"location_errors,omitempty"`
	Summary         Summary                    `json:"summary" yaml:"summary"`
	Version         int                        `json:"version" yaml:"version"`
	Duration        time.Duration              `json:"duration_ms" yaml:"duration_ms"`
	ExtractionID    values.ExtractionID        `json:"extraction_id" yaml:"extraction_id"`
	Strict          bool                       `json:"strict" yaml:"strict"`
	LocationsLoaded bool                       `json:"locations_loaded" yaml:"locations_loaded"`
}

// Summary provides aggregate counts of a run.
type Summary struct {
	Sites           int `json:"sites" yaml:"sites"`
	Subsystems      int `json:"subsystems" yaml:"subsystems"`
	Rows            int `json:"rows" yaml:"rows"`
	Edges           int `json:"edges" yaml:"edges"`
	UnlocatedSites  int `json:"unlocated_sites" yaml:"unlocated_sites"`
	SiteErrors      int `json:"site_errors" yaml:"site_errors"`
	SubsystemErrors int `json:"subsystem_errors" yaml:"subsystem_errors"`
	LocationErrors  int `json:"location_errors" yaml:"location_errors"`
	DegradedPlans   int `json:"degraded_plans" yaml:"degraded_plans"`
}

// NewResult creates a result for the given LX file.
func NewResult(sourcePath string, strict bool) *Result {
	return NewResultWithID(values.NewExtractionID(), sourcePath, strict)
}

// NewResultWithID creates a result with a specific ID.
func NewResultWithID(id values.ExtractionID, sourcePath string, strict bool) *Result {
	return &Result{
		ExtractionID: id,
		SourcePath:   sourcePath,
		Strict:       strict,
		StartTime:    time.Now(),
		Version:      1,
	}
}

// GetID returns the extraction ID.
func (r *Result) GetID() values.ExtractionID {
	return r.ExtractionID
}

// GetVersion returns the optimistic locking version.
func (r *Result) GetVersion() int {
	return r.Version
}

// IncrementVersion increments the version counter.
func (r *Result) IncrementVersion() {
	r.Version++
}

// Errors returns site, subsystem and location errors in that order.
func (r *Result) Errors() []entities.ErrorEntry {
	all := make([]entities.ErrorEntry, 0, len(r.SiteErrors)+len(r.SubsystemErrors)+len(r.LocationErrors))
	all = append(all, r.SiteErrors...)
	all = append(all, r.SubsystemErrors...)
	all = append(all, r.LocationErrors...)
	return all
}

// HasErrors reports whether anything was degraded or skipped.
func (r *Result) HasErrors() bool {
	return len(r.SiteErrors)+len(r.SubsystemErrors)+len(r.LocationErrors) > 0
}

// Finalize stamps the end time and computes the summary.
func (r *Result) Finalize() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.calculateSummary()
}

func (r *Result) calculateSummary() {
	r.Summary = Summary{
		Sites:           len(r.Sites),
		Subsystems:      len(r.Subsystems),
		Rows:            len(r.Rows),
		Edges:           len(r.Edges),
		UnlocatedSites:  len(r.Unlocated),
		SiteErrors:      len(r.SiteErrors),
		SubsystemErrors: len(r.SubsystemErrors),
		LocationErrors:  len(r.LocationErrors),
	}

	r.ErrorsByKind = make(map[values.ErrorKind]int)
	for _, e := range r.Errors() {
		r.ErrorsByKind[e.Kind]++
	}

	for _, site := range r.Sites {
		for _, slot := range site.Plans {
			if slot.Found && slot.Offset.IsFallback() {
				r.Summary.DegradedPlans++
			}
		}
	}
	for _, sub := range r.Subsystems {
		for _, slot := range sub.Links {
			if slot.Found && slot.Offset.Fallback == entities.FallbackError {
				r.Summary.DegradedPlans++
			}
		}
	}
}
