package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *SQLiteStorage, id string) {
	t.Helper()
	err := s.CreateUser(context.Background(), &User{
		ID:         id,
		Email:      id + "@example.com",
		SystemRole: "consumer",
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

func testToken(id, userID, hash string) *APIToken {
	return &APIToken{
		ID:          id,
		UserID:      userID,
		Name:        "test token",
		TokenHash:   hash,
		TokenPrefix: "dli_12345678",
		ScopeType:   "inherit_user",
		Scopes:      []string{},
	}
}

func TestCreateAndGetAPIToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	tok := testToken("tok-1", "user-1", "hash-1")
	tok.Description = "for the ci pipeline"
	tok.ScopeType = "explicit_scope"
	tok.Scopes = []string{"read:project:42", "execute:project:42"}
	if err := s.CreateAPIToken(ctx, tok); err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}

	got, err := s.GetAPITokenByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetAPITokenByHash failed: %v", err)
	}
	if got.ID != "tok-1" || got.UserID != "user-1" {
		t.Errorf("unexpected token: %+v", got)
	}
	if got.Description != "for the ci pipeline" {
		t.Errorf("description not persisted: %q", got.Description)
	}
	if got.ScopeType != "explicit_scope" || len(got.Scopes) != 2 || got.Scopes[0] != "read:project:42" {
		t.Errorf("scopes not round-tripped: %s %v", got.ScopeType, got.Scopes)
	}
	if got.RevokedAt.Valid || got.ExpiresAt.Valid || got.DeletedAt.Valid {
		t.Errorf("fresh token must have no revoked/expires/deleted instants: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at must be set by the database")
	}

	byID, err := s.GetAPITokenByID(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAPITokenByID failed: %v", err)
	}
	if byID.TokenHash != "hash-1" {
		t.Errorf("unexpected token by ID: %+v", byID)
	}
}

func TestCreateAPIToken_DuplicateHash(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if err := s.CreateAPIToken(ctx, testToken("tok-1", "user-1", "same-hash")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := s.CreateAPIToken(ctx, testToken("tok-2", "user-1", "same-hash"))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetAPIToken_NotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.GetAPITokenByHash(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound by hash, got %v", err)
	}
	if _, err := s.GetAPITokenByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound by ID, got %v", err)
	}
}

// TestExpiresAtPrecision checks nanosecond instants survive the round trip.
// Expiry comparisons rely on exact equality at the boundary.
func TestExpiresAtPrecision(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	tok := testToken("tok-1", "user-1", "hash-1")
	tok.ExpiresAt.Time = expiry
	tok.ExpiresAt.Valid = true
	if err := s.CreateAPIToken(ctx, tok); err != nil {
		t.Fatalf("CreateAPIToken failed: %v", err)
	}

	got, err := s.GetAPITokenByID(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAPITokenByID failed: %v", err)
	}
	if !got.ExpiresAt.Valid {
		t.Fatal("expected expires_at to be set")
	}
	if !got.ExpiresAt.Time.Equal(expiry) {
		t.Errorf("expires_at lost precision: want %v, got %v", expiry, got.ExpiresAt.Time)
	}
}

func TestListAPITokensForUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")
	seedUser(t, s, "user-2")

	// IDs chosen so the created_at tiebreak orders tok-b before tok-a.
	for _, id := range []string{"tok-a", "tok-b"} {
		if err := s.CreateAPIToken(ctx, testToken(id, "user-1", "hash-"+id)); err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}
	if err := s.CreateAPIToken(ctx, testToken("tok-other", "user-2", "hash-other")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tokens, err := s.ListAPITokensForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAPITokensForUser failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].ID != "tok-b" || tokens[1].ID != "tok-a" {
		t.Errorf("expected newest first, got %s, %s", tokens[0].ID, tokens[1].ID)
	}

	// Revoked tokens drop out of the listing.
	if err := s.RevokeAPIToken(ctx, "tok-b", "user-1", time.Now()); err != nil {
		t.Fatalf("RevokeAPIToken failed: %v", err)
	}
	tokens, err = s.ListAPITokensForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAPITokensForUser failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].ID != "tok-a" {
		t.Errorf("expected only tok-a after revocation, got %+v", tokens)
	}

	// No tokens yields an empty slice, not nil.
	tokens, err = s.ListAPITokensForUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("ListAPITokensForUser failed: %v", err)
	}
	if tokens == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestRevokeAPIToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if err := s.CreateAPIToken(ctx, testToken("tok-1", "user-1", "hash-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	at := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	if err := s.RevokeAPIToken(ctx, "tok-1", "admin-1", at); err != nil {
		t.Fatalf("RevokeAPIToken failed: %v", err)
	}

	got, err := s.GetAPITokenByID(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAPITokenByID failed: %v", err)
	}
	if !got.RevokedAt.Valid || !got.RevokedAt.Time.Equal(at) {
		t.Errorf("unexpected revoked_at: %+v", got.RevokedAt)
	}
	if got.RevokedBy != "admin-1" {
		t.Errorf("unexpected revoked_by: %q", got.RevokedBy)
	}

	// A second revocation is a no-op that keeps the original instants.
	if err := s.RevokeAPIToken(ctx, "tok-1", "user-1", at.Add(time.Hour)); err != nil {
		t.Fatalf("second revoke must not error: %v", err)
	}
	got, err = s.GetAPITokenByID(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAPITokenByID failed: %v", err)
	}
	if !got.RevokedAt.Time.Equal(at) || got.RevokedBy != "admin-1" {
		t.Errorf("second revoke must not overwrite: %+v", got)
	}

	if err := s.RevokeAPIToken(ctx, "no-such-token", "user-1", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown ID, got %v", err)
	}
}

func TestTouchAPIToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if err := s.CreateAPIToken(ctx, testToken("tok-1", "user-1", "hash-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	at := time.Date(2026, 2, 1, 9, 30, 0, 42, time.UTC)
	if err := s.TouchAPIToken(ctx, "tok-1", at, "203.0.113.7"); err != nil {
		t.Fatalf("TouchAPIToken failed: %v", err)
	}

	got, err := s.GetAPITokenByID(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAPITokenByID failed: %v", err)
	}
	if !got.LastUsedAt.Valid || !got.LastUsedAt.Time.Equal(at) {
		t.Errorf("unexpected last_used_at: %+v", got.LastUsedAt)
	}
	if got.LastUsedIP != "203.0.113.7" {
		t.Errorf("unexpected last_used_ip: %q", got.LastUsedIP)
	}
}

func TestDeleteAPIToken(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	seedUser(t, s, "user-1")

	if err := s.CreateAPIToken(ctx, testToken("tok-1", "user-1", "hash-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.DeleteAPIToken(ctx, "tok-1", time.Now()); err != nil {
		t.Fatalf("DeleteAPIToken failed: %v", err)
	}

	// Soft-deleted rows are invisible to every read path.
	if _, err := s.GetAPITokenByID(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound by ID, got %v", err)
	}
	if _, err := s.GetAPITokenByHash(ctx, "hash-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound by hash, got %v", err)
	}
	tokens, err := s.ListAPITokensForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAPITokensForUser failed: %v", err)
	}
	if len(tokens) != 0 {
		t.Errorf("expected no listed tokens, got %d", len(tokens))
	}

	if err := s.DeleteAPIToken(ctx, "tok-1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
