// Package access implements the role model and the access decision engine.
// Everything in here is pure: verdicts are recomputed on every check and
// never persisted.
package access

// Role is the viewer's tier, resolved externally (auth) and passed in as a
// value. RoleAnonymous is the zero value for unauthenticated viewers.
type Role string

const (
	RoleAnonymous Role = ""
	RoleFree      Role = "free"
	RolePremium   Role = "premium"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a raw role string from auth metadata. The empty string
// maps to RoleAnonymous; unknown values are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAnonymous, RoleFree, RolePremium, RoleAdmin:
		return Role(s), true
	}
	return RoleAnonymous, false
}

// RoleSatisfies reports whether actual meets the required role. Access math
// is rule-based, not rank-based: a premium requirement is satisfied exactly
// by {premium, admin}, not by anything "higher" in the abstract.
func RoleSatisfies(required, actual Role) bool {
	switch required {
	case RoleAnonymous, RoleFree:
		return true
	case RolePremium:
		return actual == RolePremium || actual == RoleAdmin
	case RoleAdmin:
		return actual == RoleAdmin
	}
	return false
}

// RoleRank orders roles for display purposes only (free < premium < admin).
// Never use this for access decisions; use RoleSatisfies or CheckAccess.
func RoleRank(r Role) int {
	switch r {
	case RoleFree:
		return 1
	case RolePremium:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}
