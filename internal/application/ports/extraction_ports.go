// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/scatslx/internal/application/dto"
	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
)

// LXSource loads an LX file as an ordered sequence of lines.
type LXSource interface {
	ReadLines(ctx context.Context, path string) ([]string, error)
}

// SiteLocationLoader loads the site-location table. Unusable rows are
// returned as error entries rather than failing the load.
type SiteLocationLoader interface {
	LoadLocations(ctx context.Context, opts dto.LocationOptions) ([]entities.SiteLocation, []entities.ErrorEntry, error)
}

// OutputFormatter formats extraction results.
type OutputFormatter interface {
	Format(result *extraction.Result) error
}

// MetricsRecorder records per-run metrics.
type MetricsRecorder interface {
	RecordExtraction(result *extraction.Result) error
}

// Closer is a common interface for resources that need cleanup.
type Closer interface {
	io.Closer
}
