// Package memstore provides a configurable in-memory implementation of the
// storage interfaces for testing.
//
// The MemStore type uses function fields for each method, allowing tests to
// customize behavior as needed while providing an in-memory default backed
// by plain maps for methods that aren't customized.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dataline/accessgate/internal/storage"
)

// MemStore implements token.Store, auth.MembershipStore and
// auth.AdminExistsStore. Each method can be overridden by setting the
// corresponding function field; otherwise the in-memory maps are used.
type MemStore struct {
	mu      sync.Mutex
	tokens  map[string]*storage.APIToken // keyed by ID
	users   map[string]*storage.User
	roles   map[string]string // "type/id/user" -> role
	touched int               // number of TouchAPIToken calls

	CreateAPITokenFunc       func(ctx context.Context, t *storage.APIToken) error
	GetAPITokenByHashFunc    func(ctx context.Context, hash string) (*storage.APIToken, error)
	GetAPITokenByIDFunc      func(ctx context.Context, id string) (*storage.APIToken, error)
	ListAPITokensForUserFunc func(ctx context.Context, userID string) ([]*storage.APIToken, error)
	RevokeAPITokenFunc       func(ctx context.Context, id, revokedBy string, at time.Time) error
	TouchAPITokenFunc        func(ctx context.Context, id string, at time.Time, ip string) error
	GetUserByIDFunc          func(ctx context.Context, id string) (*storage.User, error)
	FindRoleFunc             func(ctx context.Context, resourceType, resourceID, userID string) (string, bool, error)
	HasAnyAdminUserFunc      func(ctx context.Context) (bool, error)
}

// New creates an empty MemStore.
func New() *MemStore {
	return &MemStore{
		tokens: make(map[string]*storage.APIToken),
		users:  make(map[string]*storage.User),
		roles:  make(map[string]string),
	}
}

// AddUser seeds a user record.
func (m *MemStore) AddUser(u *storage.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// SetRole seeds a membership record.
func (m *MemStore) SetRole(resourceType, resourceID, userID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[resourceType+"/"+resourceID+"/"+userID] = role
}

// Token returns the stored token row by ID, or nil.
func (m *MemStore) Token(id string) *storage.APIToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[id]
}

// TouchCount reports how many times TouchAPIToken ran.
func (m *MemStore) TouchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touched
}

// CreateAPIToken stores a token row, enforcing hash uniqueness.
func (m *MemStore) CreateAPIToken(ctx context.Context, t *storage.APIToken) error {
	if m.CreateAPITokenFunc != nil {
		return m.CreateAPITokenFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tokens {
		if existing.TokenHash == t.TokenHash && !existing.DeletedAt.Valid {
			return storage.ErrDuplicate
		}
	}
	cp := *t
	cp.CreatedAt = time.Now()
	m.tokens[t.ID] = &cp
	return nil
}

// GetAPITokenByHash looks a token up by hash.
func (m *MemStore) GetAPITokenByHash(ctx context.Context, hash string) (*storage.APIToken, error) {
	if m.GetAPITokenByHashFunc != nil {
		return m.GetAPITokenByHashFunc(ctx, hash)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.TokenHash == hash && !t.DeletedAt.Valid {
			cp := *t
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetAPITokenByID looks a token up by ID.
func (m *MemStore) GetAPITokenByID(ctx context.Context, id string) (*storage.APIToken, error) {
	if m.GetAPITokenByIDFunc != nil {
		return m.GetAPITokenByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.DeletedAt.Valid {
		return nil, storage.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// ListAPITokensForUser returns the user's live tokens.
func (m *MemStore) ListAPITokensForUser(ctx context.Context, userID string) ([]*storage.APIToken, error) {
	if m.ListAPITokensForUserFunc != nil {
		return m.ListAPITokensForUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*storage.APIToken, 0)
	for _, t := range m.tokens {
		if t.UserID == userID && !t.RevokedAt.Valid && !t.DeletedAt.Valid {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

// RevokeAPIToken marks a token revoked, preserving an earlier revocation.
func (m *MemStore) RevokeAPIToken(ctx context.Context, id, revokedBy string, at time.Time) error {
	if m.RevokeAPITokenFunc != nil {
		return m.RevokeAPITokenFunc(ctx, id, revokedBy, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[id]
	if !ok || t.DeletedAt.Valid {
		return storage.ErrNotFound
	}
	if t.RevokedAt.Valid {
		return nil
	}
	t.RevokedAt.Time = at
	t.RevokedAt.Valid = true
	t.RevokedBy = revokedBy
	return nil
}

// TouchAPIToken records last-use metadata.
func (m *MemStore) TouchAPIToken(ctx context.Context, id string, at time.Time, ip string) error {
	if m.TouchAPITokenFunc != nil {
		return m.TouchAPITokenFunc(ctx, id, at, ip)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched++
	if t, ok := m.tokens[id]; ok {
		t.LastUsedAt.Time = at
		t.LastUsedAt.Valid = true
		t.LastUsedIP = ip
	}
	return nil
}

// GetUserByID returns a seeded user.
func (m *MemStore) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// FindRole returns a seeded membership role.
func (m *MemStore) FindRole(ctx context.Context, resourceType, resourceID, userID string) (string, bool, error) {
	if m.FindRoleFunc != nil {
		return m.FindRoleFunc(ctx, resourceType, resourceID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.roles[resourceType+"/"+resourceID+"/"+userID]
	return role, ok, nil
}

// HasAnyAdminUser reports whether a seeded admin user exists.
func (m *MemStore) HasAnyAdminUser(ctx context.Context) (bool, error) {
	if m.HasAnyAdminUserFunc != nil {
		return m.HasAnyAdminUserFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.SystemRole == "admin" && !u.DeletedAt.Valid {
			return true, nil
		}
	}
	return false, nil
}

// Ping always succeeds.
func (m *MemStore) Ping(ctx context.Context) error { return nil }
