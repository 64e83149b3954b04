// Package token issues, validates and revokes long-lived API tokens.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/dataline/accessgate/internal/auth"
)

// prefixLen is how much of the secret is kept for display. Long enough to
// tell tokens apart in a list, far too short to reconstruct the secret.
const prefixLen = 12

// GenerateSecret returns a fresh token secret: the dli_ prefix followed by
// 256 bits of crypto/rand entropy, hex encoded.
func GenerateSecret() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return auth.SecretPrefix + hex.EncodeToString(raw), nil
}

// HashSecret computes the SHA-256 hash of a secret for storage lookup.
// SHA-256 (rather than bcrypt) keeps validation a single indexed query by
// hash instead of a scan over all stored tokens; the secret's entropy makes
// offline guessing infeasible without the slow hash.
func HashSecret(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}

// DisplayPrefix returns the short non-secret identifier shown in token
// lists.
func DisplayPrefix(secret string) string {
	if len(secret) <= prefixLen {
		return secret
	}
	return secret[:prefixLen]
}
