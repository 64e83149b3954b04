package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-0123456789abcdef")

// TestVerifier_RoundTrip signs a token and resolves it back to a principal.
func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	signed, err := v.Sign("user-1", "alice@example.com", []string{"catalog-user"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	p, err := v.Resolve(signed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", p.UserID)
	}
	if p.Email != "alice@example.com" {
		t.Errorf("expected email claim to be mapped, got %q", p.Email)
	}
	if p.SystemRole != SystemRoleConsumer {
		t.Errorf("expected consumer role, got %s", p.SystemRole)
	}
	if p.IsAPIToken {
		t.Errorf("JWT principal must not be marked as API token")
	}
}

// TestVerifier_AdminRoleCaseInsensitive checks the admin claim detection.
func TestVerifier_AdminRoleCaseInsensitive(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	for _, role := range []string{"admin", "ADMIN", "Admin"} {
		signed, err := v.Sign("user-1", "a@b.c", []string{"other", role}, time.Hour)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		p, err := v.Resolve(signed)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if p.SystemRole != SystemRoleAdmin {
			t.Errorf("realm role %q: expected admin system role, got %s", role, p.SystemRole)
		}
	}
}

// TestVerifier_MissingSubject fails fast with the missing-claim error.
func TestVerifier_MissingSubject(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	claims := Claims{Email: "a@b.c"}
	claims.Issuer = "dataline"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = v.Resolve(signed)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("expected ErrMissingClaim, got %v", err)
	}
}

// TestVerifier_PreferredUsernameFallback uses preferred_username when email
// is absent.
func TestVerifier_PreferredUsernameFallback(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	claims := Claims{PreferredUsername: "alice"}
	claims.Subject = "user-1"
	claims.Issuer = "dataline"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p, err := v.Resolve(signed)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p.Email != "alice" {
		t.Errorf("expected preferred_username fallback, got %q", p.Email)
	}
}

// TestVerifier_MissingIdentityClaims rejects tokens without email or
// preferred_username.
func TestVerifier_MissingIdentityClaims(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	claims := Claims{}
	claims.Subject = "user-1"
	claims.Issuer = "dataline"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = v.Resolve(signed)
	if !errors.Is(err, ErrMissingClaim) {
		t.Errorf("expected ErrMissingClaim, got %v", err)
	}
}

// TestVerifier_RejectsBadTokens covers signature, issuer and expiry
// failures; all collapse to ErrInvalidCredential.
func TestVerifier_RejectsBadTokens(t *testing.T) {
	t.Parallel()
	v := NewVerifier(testSecret, "dataline")

	// Wrong secret
	other := NewVerifier([]byte("wrong-secret-wrong-secret"), "dataline")
	signed, err := other.Sign("user-1", "a@b.c", nil, time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := v.Resolve(signed); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("wrong signature: expected ErrInvalidCredential, got %v", err)
	}

	// Wrong issuer
	foreign := NewVerifier(testSecret, "someone-else")
	signed, err = foreign.Sign("user-1", "a@b.c", nil, time.Hour)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := v.Resolve(signed); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("wrong issuer: expected ErrInvalidCredential, got %v", err)
	}

	// Garbage
	if _, err := v.Resolve("not-a-jwt"); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("garbage: expected ErrInvalidCredential, got %v", err)
	}

	// Empty
	if _, err := v.Resolve(""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("empty: expected ErrMissingCredential, got %v", err)
	}
}
