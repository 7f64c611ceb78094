// Package memory provides in-memory implementations of domain repositories.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/repositories"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.ExtractionRepository = (*ExtractionRepository)(nil)

// ExtractionRepository keeps extraction results in memory.
// Used when no database is configured, and in tests.
type ExtractionRepository struct {
	results map[values.ExtractionID]*extraction.Result
	mu      sync.RWMutex
}

// NewExtractionRepository creates a new in-memory repository.
func NewExtractionRepository() *ExtractionRepository {
	return &ExtractionRepository{
		results: make(map[values.ExtractionID]*extraction.Result),
	}
}

// Save persists an extraction result. The pointer is stored as is;
// callers must not modify the result after saving.
func (r *ExtractionRepository) Save(_ context.Context, result *extraction.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results[result.GetID()] = result
	return nil
}

// FindByID retrieves an extraction result by its unique ID.
func (r *ExtractionRepository) FindByID(_ context.Context, id values.ExtractionID) (*extraction.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.results[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repositories.ErrExtractionNotFound, id)
	}
	return result, nil
}

// FindBySource retrieves recent runs over one LX file, newest first.
func (r *ExtractionRepository) FindBySource(_ context.Context, sourcePath string, limit int) ([]*extraction.Result, error) {
	matches := r.collect(func(res *extraction.Result) bool {
		return res.SourcePath == sourcePath
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// FindBetween retrieves runs over one LX file started within [start, end].
func (r *ExtractionRepository) FindBetween(_ context.Context, sourcePath string, start, end time.Time) ([]*extraction.Result, error) {
	return r.collect(func(res *extraction.Result) bool {
		return res.SourcePath == sourcePath &&
			!res.StartTime.Before(start) && !res.StartTime.After(end)
	}), nil
}

func (r *ExtractionRepository) collect(keep func(*extraction.Result) bool) []*extraction.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*extraction.Result
	for _, res := range r.results {
		if keep(res) {
			matches = append(matches, res)
		}
	}

	// Newest first
	slices.SortFunc(matches, func(a, b *extraction.Result) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return matches
}
