package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateUser inserts a user record.
// Returns ErrDuplicate if the email is already taken by a live user.
func (s *SQLiteStorage) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, system_role) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.SystemRole)
	if err != nil {
		if isConstraintErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a live user by ID.
// Returns ErrNotFound if the user doesn't exist or is soft-deleted.
func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*User, error) {
	var (
		u       User
		deleted sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, system_role, created_at, deleted_at
		 FROM users WHERE id = ? AND deleted_at IS NULL`,
		id).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.SystemRole, &u.CreatedAt, &deleted)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	u.DeletedAt = timeFromNS(deleted)
	return &u, nil
}

// HasAnyAdminUser reports whether at least one live admin user exists.
// Used by the bootstrap lockout check.
func (s *SQLiteStorage) HasAnyAdminUser(ctx context.Context) (bool, error) {
	var count int64

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE system_role = 'admin' AND deleted_at IS NULL`).
		Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check admin users: %w", err)
	}

	return count > 0, nil
}
