package values

import (
	"fmt"
	"strconv"
	"strings"
)

// SiteID identifies a SCATS site (intersection controller).
// Site IDs are non-negative integers; the LX file carries them as text.
type SiteID int

// SubsystemID identifies a SCATS subsystem, a coordination group of sites.
type SubsystemID int

// ParseSiteID parses the text of an id field into a SiteID.
// Surrounding whitespace is ignored; anything else that is not a
// non-negative decimal integer is rejected.
func ParseSiteID(s string) (SiteID, error) {
	n, err := parseID(s)
	if err != nil {
		return 0, err
	}
	return SiteID(n), nil
}

// MustParseSiteID parses a SiteID or panics (for tests/constants)
func MustParseSiteID(s string) SiteID {
	id, err := ParseSiteID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseSubsystemID parses the text of a subsystem id field.
func ParseSubsystemID(s string) (SubsystemID, error) {
	n, err := parseID(s)
	if err != nil {
		return 0, err
	}
	return SubsystemID(n), nil
}

func parseID(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("non-numeric id %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative id %q", s)
	}
	return n, nil
}

// Int returns the id as a plain int
func (id SiteID) Int() int {
	return int(id)
}

// String returns the decimal representation
func (id SiteID) String() string {
	return strconv.Itoa(int(id))
}

// Int returns the id as a plain int
func (id SubsystemID) Int() int {
	return int(id)
}

// String returns the decimal representation
func (id SubsystemID) String() string {
	return strconv.Itoa(int(id))
}
