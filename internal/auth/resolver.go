package auth

import (
	"context"
	"errors"
	"strings"
)

// SecretPrefix is the fixed prefix convention for API token secrets.
const SecretPrefix = "dli_"

// TokenValidator validates a raw API token secret and resolves its owning
// user. Implemented by the token service; injected here to avoid a
// dependency cycle. The boolean result is deliberately reason-free: callers
// must not learn which validity check failed.
type TokenValidator interface {
	ValidateSecret(ctx context.Context, rawSecret, remoteIP string) (Principal, bool)
}

// Resolver turns an inbound credential into a Principal. It recognizes
// three credential forms: API token secrets by their dli_ prefix, the
// bootstrap admin secret while the gate is open, and JWTs for everything
// else.
type Resolver struct {
	jwt       *Verifier
	tokens    TokenValidator
	bootstrap *BootstrapGate
}

// NewResolver creates a Resolver. bootstrap may be nil when no bootstrap
// secret is configured.
func NewResolver(jwt *Verifier, tokens TokenValidator, bootstrap *BootstrapGate) *Resolver {
	return &Resolver{jwt: jwt, tokens: tokens, bootstrap: bootstrap}
}

// Resolve validates the credential and returns the caller's Principal.
// Failure is always one of the auth sentinel errors; it never reveals which
// specific check rejected an API token.
func (r *Resolver) Resolve(ctx context.Context, credential, remoteIP string) (Principal, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Principal{}, ErrMissingCredential
	}

	if strings.HasPrefix(credential, SecretPrefix) {
		p, ok := r.tokens.ValidateSecret(ctx, credential, remoteIP)
		if !ok {
			return Principal{}, ErrInvalidCredential
		}
		return p, nil
	}

	p, err := r.jwt.Resolve(credential)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrInvalidCredential) {
		return Principal{}, err
	}

	// Not a valid JWT; as a last resort check the bootstrap secret.
	if r.bootstrap != nil {
		ok, berr := r.bootstrap.Validate(ctx, credential)
		if berr == nil && ok {
			return BootstrapPrincipal(), nil
		}
	}

	return Principal{}, ErrInvalidCredential
}
