// Package values contains domain value objects that wrap the primitive
// fields of an LX extraction with validation.
package values

import (
	"fmt"

	"github.com/google/uuid"
)

// ExtractionID uniquely identifies one extraction run over an LX file.
type ExtractionID struct {
	value uuid.UUID
}

// NewExtractionID creates a new random extraction ID
func NewExtractionID() ExtractionID {
	return ExtractionID{value: uuid.New()}
}

// ParseExtractionID parses a string into an ExtractionID
func ParseExtractionID(s string) (ExtractionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ExtractionID{}, fmt.Errorf("invalid extraction ID: %w", err)
	}
	return ExtractionID{value: id}, nil
}

// MustParseExtractionID parses a string or panics (for tests only)
func MustParseExtractionID(s string) ExtractionID {
	id, err := ParseExtractionID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (e ExtractionID) String() string {
	return e.value.String()
}

// UUID returns the underlying uuid.UUID
func (e ExtractionID) UUID() uuid.UUID {
	return e.value
}

// IsZero returns true if this is the zero value
func (e ExtractionID) IsZero() bool {
	return e.value == uuid.Nil
}

// Equals checks if two ExtractionIDs are equal
func (e ExtractionID) Equals(other ExtractionID) bool {
	return e.value == other.value
}

// MarshalText implements encoding.TextMarshaler so the ID renders as a
// plain string in JSON, YAML and msgpack alike.
func (e ExtractionID) MarshalText() ([]byte, error) {
	return []byte(e.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (e *ExtractionID) UnmarshalText(data []byte) error {
	id, err := ParseExtractionID(string(data))
	if err != nil {
		return err
	}
	*e = id
	return nil
}
