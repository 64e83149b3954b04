package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims AccessGate understands. Realm roles follow the
// realm_access.roles convention of the identity provider.
type Claims struct {
	Email             string `json:"email,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	FullName          string `json:"name,omitempty"`
	RealmAccess       struct {
		Roles []string `json:"roles,omitempty"`
	} `json:"realm_access,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 JWTs and maps their claims onto a Principal.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a Verifier for tokens signed with secret by issuer.
func NewVerifier(secret []byte, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer}
}

// Resolve verifies the token and constructs a Principal from its claims.
// The claim mapping is fixed: subject is required, email falls back to
// preferred_username, and the system role is admin iff a realm role equals
// "admin" case-insensitively.
func (v *Verifier) Resolve(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Principal{}, ErrMissingCredential
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidCredential
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, ErrInvalidCredential
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidCredential
	}

	return principalFromClaims(claims)
}

// principalFromClaims is the single place where claim names map to Principal
// fields. Fails fast on missing required claims.
func principalFromClaims(claims *Claims) (Principal, error) {
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Principal{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		email = strings.TrimSpace(claims.PreferredUsername)
	}
	if email == "" {
		return Principal{}, fmt.Errorf("%w: email or preferred_username", ErrMissingClaim)
	}

	role := SystemRoleConsumer
	for _, r := range claims.RealmAccess.Roles {
		if strings.EqualFold(r, "admin") {
			role = SystemRoleAdmin
			break
		}
	}

	return Principal{
		UserID:     subject,
		Email:      email,
		Name:       claims.FullName,
		SystemRole: role,
	}, nil
}

// Sign issues an HS256 JWT for the given subject. Used by tests and by the
// local development login path.
func (v *Verifier) Sign(subject, email string, realmRoles []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be greater than zero")
	}

	now := time.Now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	claims.RealmAccess.Roles = realmRoles

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
