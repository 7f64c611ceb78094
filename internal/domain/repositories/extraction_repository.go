// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ExtractionRepository defines the interface for persisting extraction runs.
type ExtractionRepository interface {
	// Save persists an extraction result.
	Save(ctx context.Context, result *extraction.Result) error

	// FindByID retrieves an extraction result by its unique ID.
	FindByID(ctx context.Context, id values.ExtractionID) (*extraction.Result, error)

	// FindBySource retrieves recent runs over the same LX file, newest first.
	FindBySource(ctx context.Context, sourcePath string, limit int) ([]*extraction.Result, error)

	// FindBetween retrieves runs over an LX file started within a time range.
	FindBetween(ctx context.Context, sourcePath string, start, end time.Time) ([]*extraction.Result, error)
}

// ErrExtractionNotFound is returned by FindByID for an unknown id.
var ErrExtractionNotFound = errors.New("extraction not found")
