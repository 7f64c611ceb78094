package values

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// LinkageState is the discriminator of a Linkage.
type LinkageState uint8

const (
	// LinkageUnlinked means the plan is not referenced against another site.
	LinkageUnlinked LinkageState = iota
	// LinkageInvalid means a linked site was present but could not be parsed.
	LinkageInvalid
	// LinkageLinked means the plan references another site.
	LinkageLinked
)

// Legacy sentinels used by flat exports in place of a linked site id.
const (
	UnlinkedSentinel = -1
	InvalidSentinel  = -2
)

// Linkage is the site a plan offset is referenced against.
// The zero value is Unlinked.
type Linkage struct {
	target SiteID
	state  LinkageState
}

// Unlinked returns a Linkage with no linked site
func Unlinked() Linkage {
	return Linkage{state: LinkageUnlinked}
}

// InvalidLinkage returns a Linkage recording a malformed linked site
func InvalidLinkage() Linkage {
	return Linkage{state: LinkageInvalid}
}

// LinkedTo returns a Linkage to the given site
func LinkedTo(id SiteID) Linkage {
	return Linkage{state: LinkageLinked, target: id}
}

// LinkageFromSentinel converts a flat-export integer back into a Linkage.
func LinkageFromSentinel(n int) (Linkage, error) {
	switch {
	case n == UnlinkedSentinel:
		return Unlinked(), nil
	case n == InvalidSentinel:
		return InvalidLinkage(), nil
	case n >= 0:
		return LinkedTo(SiteID(n)), nil
	default:
		return Linkage{}, fmt.Errorf("invalid linkage sentinel: %d", n)
	}
}

// State returns the discriminator
func (l Linkage) State() LinkageState {
	return l.state
}

// Target returns the linked site and true when the state is LinkageLinked.
func (l Linkage) Target() (SiteID, bool) {
	if l.state != LinkageLinked {
		return 0, false
	}
	return l.target, true
}

// IsLinked reports whether the linkage references a site
func (l Linkage) IsLinked() bool {
	return l.state == LinkageLinked
}

// IsEdge reports whether the linkage is a drawable edge: a linked,
// strictly positive site id.
func (l Linkage) IsEdge() bool {
	return l.state == LinkageLinked && l.target > 0
}

// Sentinel returns the legacy integer form: the site id, -1 or -2.
func (l Linkage) Sentinel() int {
	switch l.state {
	case LinkageLinked:
		return int(l.target)
	case LinkageInvalid:
		return InvalidSentinel
	default:
		return UnlinkedSentinel
	}
}

// Equals checks if two linkages are equal
func (l Linkage) Equals(other Linkage) bool {
	return l == other
}

// String returns a human-readable form
func (l Linkage) String() string {
	switch l.state {
	case LinkageLinked:
		return l.target.String()
	case LinkageInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// MarshalJSON renders the legacy integer form
func (l Linkage) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(l.Sentinel())), nil
}

// UnmarshalJSON parses the legacy integer form
func (l *Linkage) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid linkage JSON: %w", err)
	}
	parsed, err := LinkageFromSentinel(n)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// MarshalYAML renders the legacy integer form
func (l Linkage) MarshalYAML() (interface{}, error) {
	return l.Sentinel(), nil
}
