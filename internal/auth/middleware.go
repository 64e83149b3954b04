package auth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/dataline/accessgate/internal/metrics"
)

// Middleware returns chi-compatible middleware that resolves the request
// credential into a Principal and stores it in the request context.
// Credentials are read from "Authorization: Bearer <credential>" or from a
// dedicated X-API-Token header. Requests without a resolvable principal get
// a 401 and never reach the handler.
func Middleware(r *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			credential := extractCredential(req)
			if credential == "" {
				metrics.RecordAuthFailure("missing_credential")
				writeJSONError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			principal, err := r.Resolve(req.Context(), credential, clientIP(req))
			if err != nil {
				metrics.RecordAuthFailure("invalid_credential")
				writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			ctx := ContextWithPrincipal(req.Context(), principal)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// extractCredential prefers the X-API-Token header, then the Authorization
// bearer value.
func extractCredential(r *http.Request) string {
	if token := r.Header.Get("X-API-Token"); token != "" {
		return token
	}

	authz := r.Header.Get("Authorization")
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// clientIP returns the caller address, honoring the first X-Forwarded-For
// entry when present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSONError writes a JSON error response
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(map[string]string{"error": message})
	if err != nil {
		// Encoding errors are not critical for error responses
		_ = err
	}
}
