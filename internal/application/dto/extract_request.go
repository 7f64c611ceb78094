// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"github.com/reglet-dev/scatslx/internal/domain/services"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ExtractRequest encapsulates all inputs needed to extract an LX file.
type ExtractRequest struct {
	SourcePath string
	Metadata   RequestMetadata
	Locations  LocationOptions
	Filters    FilterOptions
	Extraction services.ExtractionOptions
}

// LocationOptions points at the site-location table.
// An empty Path disables the link graph.
type LocationOptions struct {
	Path     string
	IDColumn string
	XColumn  string
	YColumn  string
}

// FilterOptions selects joined rows.
type FilterOptions struct {
	FilterExpression string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string

	// ToolVersion is stamped on the stored result
	ToolVersion string
}

// DecodeRequest encapsulates a single-token decode.
type DecodeRequest struct {
	Kind   values.PlanKind
	Token  string
	Strict bool
}
