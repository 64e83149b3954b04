package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const tokenColumns = `id, user_id, name, description, token_hash, token_prefix,
	scope_type, scopes, expires_at, last_used_at, last_used_ip,
	revoked_at, revoked_by, created_at, deleted_at`

// CreateAPIToken persists a new token row. The token's Scopes are
// JSON-encoded for storage.
// Returns ErrDuplicate if a token with the same hash already exists.
func (s *SQLiteStorage) CreateAPIToken(ctx context.Context, t *APIToken) error {
	scopesJSON, err := json.Marshal(t.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO api_tokens (id, user_id, name, description, token_hash, token_prefix, scope_type, scopes, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Description, t.TokenHash, t.TokenPrefix,
		t.ScopeType, string(scopesJSON), nullTimeNS(t.ExpiresAt))

	if err != nil {
		if isConstraintErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create api token: %w", err)
	}

	return nil
}

// isConstraintErr reports whether err is a UNIQUE constraint violation.
// The extended error code for UNIQUE constraint is 2067; the base
// constraint error code is 19.
func isConstraintErr(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == 2067 || (sqliteErr.Code()&0xFF) == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// GetAPITokenByHash retrieves a token by its SHA-256 hash.
// This is the validation-path lookup; it intentionally does not filter on
// revocation or expiry so the caller can evaluate validity in one place.
// Soft-deleted rows are excluded. Returns ErrNotFound if the hash is unknown.
func (s *SQLiteStorage) GetAPITokenByHash(ctx context.Context, tokenHash string) (*APIToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE token_hash = ? AND deleted_at IS NULL`,
		tokenHash)

	t, err := scanAPIToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}

	return t, nil
}

// GetAPITokenByID retrieves a token by ID, excluding soft-deleted rows.
// Returns ErrNotFound if the token doesn't exist.
func (s *SQLiteStorage) GetAPITokenByID(ctx context.Context, id string) (*APIToken, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE id = ? AND deleted_at IS NULL`,
		id)

	t, err := scanAPIToken(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token by ID: %w", err)
	}

	return t, nil
}

// ListAPITokensForUser returns the user's non-revoked, non-deleted tokens,
// newest first. Returns empty slice if none exist.
func (s *SQLiteStorage) ListAPITokensForUser(ctx context.Context, userID string) ([]*APIToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens
		 WHERE user_id = ? AND revoked_at IS NULL AND deleted_at IS NULL
		 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var tokens []*APIToken
	for rows.Next() {
		t, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	// Return empty slice instead of nil
	if tokens == nil {
		tokens = make([]*APIToken, 0)
	}

	return tokens, nil
}

// RevokeAPIToken marks a token revoked. The update only fires while
// revoked_at is still NULL, so a second revocation leaves the original
// revoked_at and revoked_by untouched. Returns ErrNotFound if no live row
// matches the ID; an already-revoked token is not an error.
func (s *SQLiteStorage) RevokeAPIToken(ctx context.Context, id, revokedBy string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET revoked_at = ?, revoked_by = ?
		 WHERE id = ? AND revoked_at IS NULL AND deleted_at IS NULL`,
		at.UnixNano(), revokedBy, id)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Either the token never existed or it is already revoked.
		if _, err := s.GetAPITokenByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}

// TouchAPIToken records when and from where a token was last used.
// Concurrent touches race harmlessly; last writer wins.
func (s *SQLiteStorage) TouchAPIToken(ctx context.Context, id string, at time.Time, ip string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET last_used_at = ?, last_used_ip = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		at.UnixNano(), ip, id)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

// DeleteAPIToken soft-deletes a token. The row is kept for audit purposes.
// Returns ErrNotFound if the token doesn't exist or was already deleted.
func (s *SQLiteStorage) DeleteAPIToken(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		at.UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAPIToken(row scanner) (*APIToken, error) {
	var (
		t          APIToken
		scopesJSON string
		expires    sql.NullInt64
		lastUsed   sql.NullInt64
		revoked    sql.NullInt64
		deleted    sql.NullInt64
	)

	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.TokenHash,
		&t.TokenPrefix, &t.ScopeType, &scopesJSON, &expires, &lastUsed,
		&t.LastUsedIP, &revoked, &t.RevokedBy, &t.CreatedAt, &deleted)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scopesJSON), &t.Scopes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scopes: %w", err)
	}

	t.ExpiresAt = timeFromNS(expires)
	t.LastUsedAt = timeFromNS(lastUsed)
	t.RevokedAt = timeFromNS(revoked)
	t.DeletedAt = timeFromNS(deleted)

	return &t, nil
}

// nullTimeNS converts a nullable time to unix nanoseconds for storage.
func nullTimeNS(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time.UnixNano()
}

// timeFromNS converts stored unix nanoseconds back to a nullable time.
func timeFromNS(ns sql.NullInt64) sql.NullTime {
	if !ns.Valid {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Unix(0, ns.Int64), Valid: true}
}
