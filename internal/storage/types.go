package storage

import (
	"database/sql"
	"time"
)

// User is the minimal owner record behind every issued token.
type User struct {
	ID          string
	Email       string
	DisplayName string
	SystemRole  string // "admin", "consumer" or "public"
	CreatedAt   time.Time
	DeletedAt   sql.NullTime
}

// APIToken is a long-lived credential scoped to a user. The plaintext secret
// is never stored; only its SHA-256 hash and a short display prefix are.
type APIToken struct {
	ID          string
	UserID      string
	Name        string
	Description string
	TokenHash   string
	TokenPrefix string
	ScopeType   string // "inherit_user", "explicit_scope" or "hybrid"
	Scopes      []string
	ExpiresAt   sql.NullTime
	LastUsedAt  sql.NullTime
	LastUsedIP  string
	RevokedAt   sql.NullTime
	RevokedBy   string
	CreatedAt   time.Time
	DeletedAt   sql.NullTime
}

// Membership maps (resourceType, resourceID, userID) to a resource role.
// Membership rows are consumed read-only by the authorization engine; they
// are owned by the catalog service proper.
type Membership struct {
	ResourceType string // "team" or "project"
	ResourceID   string
	UserID       string
	Role         string // "owner", "editor" or "viewer"
	CreatedAt    time.Time
}
