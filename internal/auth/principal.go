// Package auth resolves credentials into principals and makes allow/deny
// authorization decisions for capabilities requested against catalog
// resources.
package auth

// SystemRole is a platform-wide role, independent of any specific resource.
type SystemRole string

const (
	// SystemRoleAdmin bypasses all resource-membership checks.
	SystemRoleAdmin SystemRole = "admin"
	// SystemRoleConsumer is the default role for authenticated users.
	SystemRoleConsumer SystemRole = "consumer"
	// SystemRolePublic is an unauthenticated or anonymous caller.
	SystemRolePublic SystemRole = "public"
)

// ParseSystemRole converts a stored role string to a SystemRole, defaulting
// to consumer for unknown values.
func ParseSystemRole(s string) SystemRole {
	switch SystemRole(s) {
	case SystemRoleAdmin, SystemRoleConsumer, SystemRolePublic:
		return SystemRole(s)
	}
	return SystemRoleConsumer
}

// Principal is the resolved identity and permission context of the current
// caller. It is constructed fresh per request from either JWT claims or a
// validated API token and threaded explicitly through every call; there is
// no ambient "current user".
type Principal struct {
	UserID     string
	Email      string
	Name       string
	SystemRole SystemRole

	// IsAPIToken is true when the principal was resolved from an API token.
	// TokenID, TokenScopeType and TokenScopes are only meaningful then.
	IsAPIToken     bool
	TokenID        string
	TokenScopeType ScopeType
	TokenScopes    []string
}

// IsAdmin reports whether the principal holds the system admin role.
func (p Principal) IsAdmin() bool {
	return p.SystemRole == SystemRoleAdmin
}
