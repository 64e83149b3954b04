package auth

import (
	"context"
	"fmt"
)

// DecisionReason explains why a decision came out the way it did. Reasons
// are stable strings suitable for logs and metrics labels.
type DecisionReason string

const (
	// ReasonAdminBypass: system admin, membership check skipped.
	ReasonAdminBypass DecisionReason = "admin_bypass"
	// ReasonGrantedByRole: the caller's resource role includes the capability.
	ReasonGrantedByRole DecisionReason = "granted_by_role"
	// ReasonNoMembership: no membership record exists for the caller.
	ReasonNoMembership DecisionReason = "no_membership"
	// ReasonRoleLacksCapability: a membership exists but its role does not
	// include the capability. Covers the admin-only capabilities
	// (manage_members, delete), which no resource role grants.
	ReasonRoleLacksCapability DecisionReason = "role_lacks_capability"
	// ReasonTokenScopeDenied: the membership dimension allowed the
	// capability but the API token's scopes do not cover it.
	ReasonTokenScopeDenied DecisionReason = "token_scope_denied"
)

// Decision is the outcome of one authorization check. Denial is a value,
// not an error; the API layer decides how to surface it.
type Decision struct {
	Allowed bool
	Reason  DecisionReason
}

func allow(reason DecisionReason) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason DecisionReason) Decision  { return Decision{Allowed: false, Reason: reason} }

// MembershipStore looks up the role a user holds on a resource. Implemented
// by the storage layer; injected so the engine stays a pure decision
// function over stored state.
type MembershipStore interface {
	FindRole(ctx context.Context, resourceType, resourceID, userID string) (role string, found bool, err error)
}

// Engine makes deterministic allow/deny decisions for "can principal P
// perform capability C on resource R". One engine serves every resource
// type; the role hierarchy is data, not per-type code.
type Engine struct {
	memberships MembershipStore
}

// NewEngine creates an authorization engine backed by the given membership
// store.
func NewEngine(memberships MembershipStore) *Engine {
	return &Engine{memberships: memberships}
}

// Authorize evaluates the decision in order, short-circuiting:
//
//  1. System admin: allow without a membership lookup. The bypass covers
//     the membership dimension only; an admin-owned API token with
//     explicit or hybrid scopes is still narrowed in step 4.
//  2. No membership record: deny.
//  3. Role hierarchy table: deny if the role lacks the capability.
//  4. Token scope narrowing for API-token principals.
//
// The error return carries infrastructure failures (membership lookup)
// only; it is never used for denial.
func (e *Engine) Authorize(ctx context.Context, p Principal, c Capability, resource Resource) (Decision, error) {
	if p.IsAdmin() {
		if !EffectiveScopeAllows(p, c, resource) {
			return deny(ReasonTokenScopeDenied), nil
		}
		return allow(ReasonAdminBypass), nil
	}

	roleStr, found, err := e.memberships.FindRole(ctx, string(resource.Type), resource.ID, p.UserID)
	if err != nil {
		return Decision{}, fmt.Errorf("membership lookup: %w", err)
	}
	if !found {
		return deny(ReasonNoMembership), nil
	}

	role, ok := ParseRole(roleStr)
	if !ok || !RoleAllows(role, c) {
		return deny(ReasonRoleLacksCapability), nil
	}

	if !EffectiveScopeAllows(p, c, resource) {
		return deny(ReasonTokenScopeDenied), nil
	}

	return allow(ReasonGrantedByRole), nil
}
