package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// FindRole returns the role a user holds on a resource, or found=false when
// no membership record exists. This is the read path used by the
// authorization engine; memberships are never mutated here outside of
// ReplaceMembership.
func (s *SQLiteStorage) FindRole(ctx context.Context, resourceType, resourceID, userID string) (string, bool, error) {
	var role string

	err := s.db.QueryRowContext(ctx,
		`SELECT role FROM memberships WHERE resource_type = ? AND resource_id = ? AND user_id = ?`,
		resourceType, resourceID, userID).
		Scan(&role)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to find role: %w", err)
	}

	return role, true, nil
}

// ReplaceMembership inserts or updates a membership record. Membership is
// owned by the catalog service; this write path exists for synchronization
// and for tests.
func (s *SQLiteStorage) ReplaceMembership(ctx context.Context, m *Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (resource_type, resource_id, user_id, role) VALUES (?, ?, ?, ?)
		 ON CONFLICT(resource_type, resource_id, user_id) DO UPDATE SET role = excluded.role`,
		m.ResourceType, m.ResourceID, m.UserID, m.Role)
	if err != nil {
		return fmt.Errorf("failed to replace membership: %w", err)
	}
	return nil
}
