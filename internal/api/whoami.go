package api

import (
	"net/http"

	"github.com/dataline/accessgate/internal/auth"
)

// WhoamiResponse echoes the resolved principal.
type WhoamiResponse struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email,omitempty"`
	Name        string   `json:"name,omitempty"`
	SystemRole  string   `json:"system_role"`
	IsAPIToken  bool     `json:"is_api_token"`
	TokenID     string   `json:"token_id,omitempty"`
	ScopeType   string   `json:"scope_type,omitempty"`
	TokenScopes []string `json:"token_scopes,omitempty"`
}

// HandleWhoami returns the caller's resolved identity.
// GET /api/whoami
func (h *Handler) HandleWhoami(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}

	resp := WhoamiResponse{
		UserID:     principal.UserID,
		Email:      principal.Email,
		Name:       principal.Name,
		SystemRole: string(principal.SystemRole),
		IsAPIToken: principal.IsAPIToken,
	}
	if principal.IsAPIToken {
		resp.TokenID = principal.TokenID
		resp.ScopeType = string(principal.TokenScopeType)
		resp.TokenScopes = principal.TokenScopes
	}

	writeJSON(w, http.StatusOK, resp)
}
