package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/ids"
	"github.com/dataline/accessgate/internal/storage"
)

const maxNameLength = 255

// Errors surfaced by token service operations.
var (
	// ErrValidation indicates malformed input to a mutating operation.
	// Wrapped with a description of the failing field.
	ErrValidation = errors.New("token: invalid input")
	// ErrNotFound indicates the token doesn't exist or isn't visible to the
	// caller. Ownership is an existence condition here: a foreign token ID
	// looks exactly like an unknown one.
	ErrNotFound = errors.New("token: not found")
)

// Store is the persistence surface the service needs. Implemented by
// *storage.SQLiteStorage.
type Store interface {
	CreateAPIToken(ctx context.Context, t *storage.APIToken) error
	GetAPITokenByHash(ctx context.Context, tokenHash string) (*storage.APIToken, error)
	GetAPITokenByID(ctx context.Context, id string) (*storage.APIToken, error)
	ListAPITokensForUser(ctx context.Context, userID string) ([]*storage.APIToken, error)
	RevokeAPIToken(ctx context.Context, id, revokedBy string, at time.Time) error
	TouchAPIToken(ctx context.Context, id string, at time.Time, ip string) error
	GetUserByID(ctx context.Context, id string) (*storage.User, error)
}

// Service implements the API token lifecycle: issue, validate, list,
// revoke. It also implements auth.TokenValidator.
type Service struct {
	store  Store
	logger *slog.Logger

	// now is replaceable for expiry boundary tests.
	now func() time.Time
}

// NewService creates a token service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// IssueRequest carries the parameters for Issue.
type IssueRequest struct {
	UserID      string
	Name        string
	Description string
	ScopeType   auth.ScopeType
	Scopes      []string
	ExpiresAt   *time.Time
}

// Summary is token metadata safe to return to callers: never the secret,
// never the hash.
type Summary struct {
	ID          string
	Name        string
	Description string
	TokenPrefix string
	ScopeType   auth.ScopeType
	Scopes      []string
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	CreatedAt   time.Time
}

// Issue generates a secret, persists its hash, and returns the stored
// metadata along with the plaintext secret. The secret is unrecoverable
// after this call. On the astronomically unlikely hash collision the insert
// is retried once with a fresh secret.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*Summary, string, error) {
	if err := validateIssueRequest(req, s.now()); err != nil {
		return nil, "", err
	}

	scopes := req.Scopes
	if scopes == nil {
		scopes = []string{}
	}

	var row *storage.APIToken
	var secret string
	for attempt := 0; attempt < 2; attempt++ {
		var err error
		secret, err = GenerateSecret()
		if err != nil {
			return nil, "", err
		}

		row = &storage.APIToken{
			ID:          ids.New(),
			UserID:      req.UserID,
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Description),
			TokenHash:   HashSecret(secret),
			TokenPrefix: DisplayPrefix(secret),
			ScopeType:   string(req.ScopeType),
			Scopes:      scopes,
			ExpiresAt:   nullTime(req.ExpiresAt),
		}

		err = s.store.CreateAPIToken(ctx, row)
		if err == nil {
			row.CreatedAt = s.now()
			s.logger.Info("api token issued",
				"token_id", row.ID,
				"user_id", row.UserID,
				"scope_type", row.ScopeType)
			return summaryOf(row), secret, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, "", err
		}
		s.logger.Warn("token hash collision, retrying with fresh secret", "user_id", req.UserID)
	}

	return nil, "", fmt.Errorf("failed to issue token: %w", storage.ErrDuplicate)
}

func validateIssueRequest(req IssueRequest, now time.Time) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrValidation, maxNameLength)
	}
	if _, ok := auth.ParseScopeType(string(req.ScopeType)); !ok {
		return fmt.Errorf("%w: unknown scope type %q", ErrValidation, req.ScopeType)
	}
	if req.ScopeType == auth.ScopeExplicit && len(req.Scopes) == 0 {
		return fmt.Errorf("%w: explicit_scope requires at least one scope", ErrValidation)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return fmt.Errorf("%w: expires_at must be in the future", ErrValidation)
	}
	return nil
}

// ValidateSecret recomputes the secret's hash, looks the token up, and
// checks validity. On success it loads the owning user and returns their
// Principal with the token's scope configuration attached. Any failure —
// unknown hash, revoked, expired, deleted owner — yields the same negative
// result; the caller never learns which check failed.
//
// A successful validation records last-used metadata best-effort: a failed
// touch is logged and never fails the request.
func (s *Service) ValidateSecret(ctx context.Context, rawSecret, remoteIP string) (auth.Principal, bool) {
	row, err := s.store.GetAPITokenByHash(ctx, HashSecret(rawSecret))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("token lookup failed", "error", err)
		}
		return auth.Principal{}, false
	}

	now := s.now()
	if !IsValid(row, now) {
		return auth.Principal{}, false
	}

	user, err := s.store.GetUserByID(ctx, row.UserID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("token owner lookup failed", "error", err, "token_id", row.ID)
		}
		return auth.Principal{}, false
	}

	if err := s.store.TouchAPIToken(ctx, row.ID, now, remoteIP); err != nil {
		s.logger.Warn("failed to record token use", "error", err, "token_id", row.ID)
	}

	scopeType, _ := auth.ParseScopeType(row.ScopeType)
	return auth.Principal{
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.DisplayName,
		SystemRole:     auth.ParseSystemRole(user.SystemRole),
		IsAPIToken:     true,
		TokenID:        row.ID,
		TokenScopeType: scopeType,
		TokenScopes:    row.Scopes,
	}, true
}

// List returns the caller-visible metadata of a user's live tokens.
func (s *Service) List(ctx context.Context, userID string) ([]*Summary, error) {
	rows, err := s.store.ListAPITokensForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, len(rows))
	for i, row := range rows {
		summaries[i] = summaryOf(row)
	}
	return summaries, nil
}

// Revoke terminates a token. Only the owner or a system admin may revoke;
// anyone else gets ErrNotFound, indistinguishable from an unknown ID.
// Revoking an already-revoked token is an idempotent no-op that preserves
// the original revoked_at.
func (s *Service) Revoke(ctx context.Context, tokenID string, caller auth.Principal) error {
	row, err := s.store.GetAPITokenByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if row.UserID != caller.UserID && !caller.IsAdmin() {
		return ErrNotFound
	}

	if row.RevokedAt.Valid {
		return nil
	}

	if err := s.store.RevokeAPIToken(ctx, tokenID, caller.UserID, s.now()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.logger.Info("api token revoked", "token_id", tokenID, "revoked_by", caller.UserID)
	return nil
}

// IsValid reports whether a token row is usable at the given instant.
// A token expiring exactly at now is already expired.
func IsValid(t *storage.APIToken, now time.Time) bool {
	if t.DeletedAt.Valid || t.RevokedAt.Valid {
		return false
	}
	if t.ExpiresAt.Valid && !t.ExpiresAt.Time.After(now) {
		return false
	}
	return true
}

func summaryOf(row *storage.APIToken) *Summary {
	scopeType, _ := auth.ParseScopeType(row.ScopeType)
	return &Summary{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		TokenPrefix: row.TokenPrefix,
		ScopeType:   scopeType,
		Scopes:      row.Scopes,
		ExpiresAt:   timePtr(row.ExpiresAt),
		LastUsedAt:  timePtr(row.LastUsedAt),
		CreatedAt:   row.CreatedAt,
	}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
