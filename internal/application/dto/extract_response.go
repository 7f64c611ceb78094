package dto

import (
	"time"

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ExtractResponse contains the result of extracting an LX file.
type ExtractResponse struct {
	// Result contains the records, errors and link graph
	Result *extraction.Result

	// Metadata contains response metadata
	Metadata ResponseMetadata

	// Diagnostics contains additional diagnostic information
	Diagnostics Diagnostics
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// Diagnostics contains diagnostic information about the run.
type Diagnostics struct {
	// Warnings are non-fatal issues outside the error lists
	Warnings []string

	// LineCount is the number of lines read from the LX file
	LineCount int

	// FilteredOut is the number of joined rows the filter removed
	FilteredOut int
}

// DecodeResponse is the outcome of a single-token decode.
type DecodeResponse struct {
	Kind      values.PlanKind       `json:"kind" yaml:"kind"`
	Token     string                `json:"token" yaml:"token"`
	Canonical string                `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Offset    entities.PlanOffset   `json:"offset" yaml:"offset"`
	Tuple     [5]string             `json:"tuple" yaml:"tuple"`
	Issues    []entities.ErrorEntry `json:"issues,omitempty" yaml:"issues,omitempty"`
}
