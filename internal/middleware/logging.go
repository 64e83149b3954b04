package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dataline/accessgate/internal/logging"
)

// RequestLogger logs one line per request. Credential headers are masked
// before they reach the log; the full values never leave the request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
			}
			if authz := r.Header.Get("Authorization"); authz != "" {
				attrs = append(attrs, "authorization", logging.MaskHeader("Authorization", authz))
			}
			if tok := r.Header.Get("X-API-Token"); tok != "" {
				attrs = append(attrs, "x_api_token", logging.MaskHeader("X-API-Token", tok))
			}

			logger.Info("http request", attrs...)
		})
	}
}
