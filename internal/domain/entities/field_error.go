package entities

import (
	"fmt"

	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// ErrorEntry is a recorded, tolerated extraction problem.
type ErrorEntry struct {
	EntityID string           `json:"entity_id" yaml:"entity_id"`
	Kind     values.ErrorKind `json:"kind" yaml:"kind"`
	Message  string           `json:"message" yaml:"message"`
	Line     int              `json:"line,omitempty" yaml:"line,omitempty"`
}

// FieldError is the hard failure strict mode raises for a non-numeric id.
// It names the entity and the field that triggered it.
type FieldError struct {
	Err      error
	Kind     values.ErrorKind
	EntityID string
	Field    string
	Value    string
	Line     int
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: entity %s field %s has value %q", e.Kind, e.EntityID, e.Field, e.Value)
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Entry converts the failure into the ErrorEntry a non-strict run would record.
func (e *FieldError) Entry() ErrorEntry {
	return ErrorEntry{
		EntityID: e.EntityID,
		Kind:     e.Kind,
		Message:  fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err),
		Line:     e.Line,
	}
}
