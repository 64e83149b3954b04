package auth

import "strings"

// ScopeType controls how a token's scopes restrict the owning user's
// permissions.
type ScopeType string

const (
	// ScopeInheritUser applies no restriction; the token carries the full
	// permission of its owner.
	ScopeInheritUser ScopeType = "inherit_user"
	// ScopeExplicit restricts the token to its scope patterns.
	ScopeExplicit ScopeType = "explicit_scope"
	// ScopeHybrid requires both the user-level check and the scope patterns
	// to allow a capability independently (intersection, never union).
	ScopeHybrid ScopeType = "hybrid"
)

// ParseScopeType converts a stored scope type string to a ScopeType.
func ParseScopeType(s string) (ScopeType, bool) {
	switch ScopeType(s) {
	case ScopeInheritUser, ScopeExplicit, ScopeHybrid:
		return ScopeType(s), true
	}
	return "", false
}

// MatchScope reports whether one scope pattern covers the requested action
// on a resource. Patterns have the form "action:resourceType[:resourceId]"
// with "*" as a wildcard at each segment. A pattern that omits the trailing
// resourceId segment covers every resource of that type.
func MatchScope(pattern, action string, resource Resource) bool {
	segments := strings.Split(pattern, ":")
	if len(segments) == 0 || len(segments) > 3 {
		return false
	}

	targets := []string{action, string(resource.Type), resource.ID}
	for i, seg := range segments {
		if seg != "*" && seg != targets[i] {
			return false
		}
	}
	return true
}

// ScopesAllow reports whether any of the scope patterns covers the
// capability on the resource.
func ScopesAllow(scopes []string, c Capability, resource Resource) bool {
	action := scopeAction(c)
	for _, pattern := range scopes {
		if MatchScope(pattern, action, resource) {
			return true
		}
	}
	return false
}

// ScopeNarrows reports whether the principal's token configuration applies a
// scope restriction at all. False for non-token principals and for
// inherit_user tokens.
func ScopeNarrows(p Principal) bool {
	if !p.IsAPIToken {
		return false
	}
	return p.TokenScopeType == ScopeExplicit || p.TokenScopeType == ScopeHybrid
}

// EffectiveScopeAllows applies the token-scope dimension of a permission
// check. When the principal is not an API token, or the token inherits the
// user's permission, this is a no-op returning true. For explicit-scope and
// hybrid tokens the capability must be covered by a scope pattern; the
// user-level half of the hybrid intersection is the engine's membership
// check, which runs regardless of scope type.
func EffectiveScopeAllows(p Principal, c Capability, resource Resource) bool {
	if !ScopeNarrows(p) {
		return true
	}
	return ScopesAllow(p.TokenScopes, c, resource)
}
