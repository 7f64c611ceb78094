package values

// ErrorKind classifies an extraction problem.
type ErrorKind string

const (
	// ErrMalformedPlanToken: a plan token did not fit the grammar and was
	// replaced by the error fallback record.
	ErrMalformedPlanToken ErrorKind = "malformed_plan_token"
	// ErrNonNumericSiteID: a site anchor's id failed integer parsing.
	ErrNonNumericSiteID ErrorKind = "non_numeric_site_id"
	// ErrNonNumericSubsystemID: a subsystem id failed integer parsing.
	ErrNonNumericSubsystemID ErrorKind = "non_numeric_subsystem_id"
	// ErrNonNumericLinkage: a decoded linked site failed integer parsing.
	ErrNonNumericLinkage ErrorKind = "non_numeric_linkage"
	// ErrAnchorNotFound: a tagged line was not found inside the search window.
	ErrAnchorNotFound ErrorKind = "anchor_not_found"
	// ErrInvalidSiteLocation: a site-location row could not be used.
	ErrInvalidSiteLocation ErrorKind = "invalid_site_location"
)

// AllErrorKinds lists every kind in reporting order.
func AllErrorKinds() []ErrorKind {
	return []ErrorKind{
		ErrMalformedPlanToken,
		ErrNonNumericSiteID,
		ErrNonNumericSubsystemID,
		ErrNonNumericLinkage,
		ErrAnchorNotFound,
		ErrInvalidSiteLocation,
	}
}

// Promotable reports whether strict mode turns this kind into a hard failure.
// Missing anchors and malformed tokens always degrade.
func (k ErrorKind) Promotable() bool {
	switch k {
	case ErrNonNumericSiteID, ErrNonNumericSubsystemID, ErrNonNumericLinkage:
		return true
	default:
		return false
	}
}

// String returns the kind name
func (k ErrorKind) String() string {
	return string(k)
}
