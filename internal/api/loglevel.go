package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dataline/accessgate/internal/auth"
)

// SetLogLevelRequest is the request body for POST /api/loglevel.
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes the runtime log level. Admin only.
// POST /api/loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthenticated, "no principal")
		return
	}
	if !principal.IsAdmin() {
		WriteError(w, http.StatusForbidden, ErrCodeAdminRequired, "admin role required")
		return
	}

	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid level (must be: debug, info, warn, error)")
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", req.Level, "changed_by", principal.UserID)

	writeJSON(w, http.StatusOK, map[string]string{"level": req.Level})
}
