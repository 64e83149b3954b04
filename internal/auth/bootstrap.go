package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// BootstrapUserID is the synthetic principal ID for bootstrap admin access.
const BootstrapUserID = "bootstrap"

// AdminExistsStore answers whether any admin user has been provisioned yet.
type AdminExistsStore interface {
	HasAnyAdminUser(ctx context.Context) (bool, error)
}

// BootstrapGate grants one-off admin access from a configured secret while
// the system has no admin user. Once an admin exists the gate locks out
// permanently; the secret itself is only ever held as a bcrypt hash.
type BootstrapGate struct {
	store AdminExistsStore
	hash  []byte
}

// NewBootstrapGate creates a gate for the given bcrypt hash. An empty hash
// disables bootstrap access entirely.
func NewBootstrapGate(store AdminExistsStore, bcryptHash string) *BootstrapGate {
	return &BootstrapGate{store: store, hash: []byte(bcryptHash)}
}

// Matches reports whether the secret matches the configured hash.
func (g *BootstrapGate) Matches(secret string) bool {
	if len(g.hash) == 0 || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(g.hash, []byte(secret)) == nil
}

// Allowed reports whether bootstrap access is still open.
func (g *BootstrapGate) Allowed(ctx context.Context) (bool, error) {
	if len(g.hash) == 0 {
		return false, nil
	}
	hasAdmin, err := g.store.HasAnyAdminUser(ctx)
	if err != nil {
		return false, err
	}
	return !hasAdmin, nil
}

// Validate checks the secret and the lockout state together.
func (g *BootstrapGate) Validate(ctx context.Context, secret string) (bool, error) {
	if !g.Matches(secret) {
		return false, nil
	}
	return g.Allowed(ctx)
}

// BootstrapPrincipal is the principal used for requests authenticated with
// the bootstrap secret.
func BootstrapPrincipal() Principal {
	return Principal{
		UserID:     BootstrapUserID,
		Email:      "bootstrap@localhost",
		SystemRole: SystemRoleAdmin,
	}
}
