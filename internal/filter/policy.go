package filter

// Policy holds the MIME allow and deny lists. A nil list is "not configured";
// a non-nil empty list is configured and matches nothing.
type Policy struct {
	Allow []string
	Deny  []string
}

const (
	ReasonNotAllowed = "not_allowed"
	ReasonDenied     = "denied"
)

type Decision struct {
	Allowed bool
	Reason  string
}

// Decide runs the allow stage, then the deny stage. The deny list is only
// consulted for candidates that passed the allow stage.
func Decide(mime string, p Policy) Decision {
	if p.Allow != nil && !Matches(mime, p.Allow, ExactOrWildcard) {
		return Decision{Allowed: false, Reason: ReasonNotAllowed}
	}
	if p.Deny != nil && Matches(mime, p.Deny, ExactOrWildcard) {
		return Decision{Allowed: false, Reason: ReasonDenied}
	}
	return Decision{Allowed: true}
}

// Validate reports whether mime is admitted by the allow and deny lists.
func Validate(mime string, allow, deny []string) bool {
	return Decide(mime, Policy{Allow: allow, Deny: deny}).Allowed
}
