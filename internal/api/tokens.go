package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/metrics"
	"github.com/dataline/accessgate/internal/token"
)

// CreateTokenRequest is the request body for POST /api/tokens.
type CreateTokenRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ScopeType   string     `json:"scope_type"`
	Scopes      []string   `json:"scopes,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// TokenResponse is token metadata in API responses. The secret and hash are
// never included.
type TokenResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TokenPrefix string     `json:"token_prefix"`
	ScopeType   string     `json:"scope_type"`
	Scopes      []string   `json:"scopes"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateTokenResponse includes the plaintext secret, shown exactly once.
type CreateTokenResponse struct {
	TokenResponse
	Token string `json:"token"`
}

// HandleCreateToken issues a new API token for the caller.
// POST /api/tokens
func (h *Handler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}

	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	summary, secret, err := h.tokens.Issue(r.Context(), token.IssueRequest{
		UserID:      principal.UserID,
		Name:        req.Name,
		Description: req.Description,
		ScopeType:   auth.ScopeType(req.ScopeType),
		Scopes:      req.Scopes,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, token.ErrValidation) {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		h.logger.Error("failed to issue token", "error", err, "user_id", principal.UserID)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	metrics.RecordTokenIssued()

	writeJSON(w, http.StatusCreated, CreateTokenResponse{
		TokenResponse: tokenResponse(summary),
		Token:         secret, // plaintext, unrecoverable after this response
	})
}

// HandleListTokens lists the caller's live tokens. System admins may list
// another user's tokens via ?user_id=.
// GET /api/tokens
func (h *Handler) HandleListTokens(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}

	userID := principal.UserID
	if requested := r.URL.Query().Get("user_id"); requested != "" && requested != principal.UserID {
		if !principal.IsAdmin() {
			WriteError(w, http.StatusForbidden, ErrCodeAdminRequired, "only admins may list other users' tokens")
			return
		}
		userID = requested
	}

	summaries, err := h.tokens.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list tokens", "error", err, "user_id", userID)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	response := make([]TokenResponse, len(summaries))
	for i, s := range summaries {
		response[i] = tokenResponse(s)
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleRevokeToken revokes a token by ID. Revocation is terminal and
// idempotent: repeating the call returns 204 again. Foreign token IDs yield
// 404 so existence is not leaked.
// DELETE /api/tokens/{id}
func (h *Handler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.tokens.Revoke(r.Context(), id, principal); err != nil {
		if errors.Is(err, token.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "token not found")
			return
		}
		h.logger.Error("failed to revoke token", "error", err, "token_id", id)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
		return
	}

	metrics.RecordTokenRevoked()
	w.WriteHeader(http.StatusNoContent)
}

func tokenResponse(s *token.Summary) TokenResponse {
	scopes := s.Scopes
	if scopes == nil {
		scopes = []string{}
	}
	return TokenResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		TokenPrefix: s.TokenPrefix,
		ScopeType:   string(s.ScopeType),
		Scopes:      scopes,
		ExpiresAt:   s.ExpiresAt,
		LastUsedAt:  s.LastUsedAt,
		CreatedAt:   s.CreatedAt,
	}
}
