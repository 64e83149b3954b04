// Package storage handles all database operations for AccessGate.
package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		// users table: owner records for issued tokens
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			system_role TEXT NOT NULL DEFAULT 'consumer',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at INTEGER
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email) WHERE deleted_at IS NULL`,

		// api_tokens table: hashed credentials plus scope configuration.
		// Nullable instants (expires_at, last_used_at, revoked_at, deleted_at)
		// are stored as unix nanoseconds so expiry comparisons keep full
		// precision across the round trip.
		`CREATE TABLE IF NOT EXISTS api_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			token_hash TEXT NOT NULL UNIQUE,
			token_prefix TEXT NOT NULL,
			scope_type TEXT NOT NULL,
			scopes TEXT NOT NULL DEFAULT '[]',
			expires_at INTEGER,
			last_used_at INTEGER,
			last_used_ip TEXT NOT NULL DEFAULT '',
			revoked_at INTEGER,
			revoked_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			deleted_at INTEGER,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,

		// Index on token_hash for fast validation lookups
		`CREATE INDEX IF NOT EXISTS idx_api_tokens_hash ON api_tokens(token_hash)`,

		`CREATE INDEX IF NOT EXISTS idx_api_tokens_user ON api_tokens(user_id)`,

		// memberships table: resource role per (resource, user)
		`CREATE TABLE IF NOT EXISTS memberships (
			resource_type TEXT NOT NULL,
			resource_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (resource_type, resource_id, user_id)
		)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
