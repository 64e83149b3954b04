package storage

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	u := &User{ID: "user-1", Email: "alice@example.com", DisplayName: "Alice", SystemRole: "consumer"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := s.GetUserByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.Email != "alice@example.com" || got.DisplayName != "Alice" || got.SystemRole != "consumer" {
		t.Errorf("unexpected user: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at must be set by the database")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, &User{ID: "user-1", Email: "same@example.com"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := s.CreateUser(ctx, &User{ID: "user-2", Email: "same@example.com"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetUserByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHasAnyAdminUser(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	has, err := s.HasAnyAdminUser(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdminUser failed: %v", err)
	}
	if has {
		t.Error("empty database must report no admin")
	}

	if err := s.CreateUser(ctx, &User{ID: "user-1", Email: "a@b.c", SystemRole: "consumer"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	has, err = s.HasAnyAdminUser(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdminUser failed: %v", err)
	}
	if has {
		t.Error("a consumer user must not count as admin")
	}

	if err := s.CreateUser(ctx, &User{ID: "admin-1", Email: "root@b.c", SystemRole: "admin"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	has, err = s.HasAnyAdminUser(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdminUser failed: %v", err)
	}
	if !has {
		t.Error("expected admin to be detected")
	}
}
