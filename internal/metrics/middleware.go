package metrics

import (
	"net/http"
	"regexp"
	"time"
)

// idSegment matches identifier-shaped path segments (ULIDs, UUIDs, numbers)
// so they can be collapsed into a single metric label value.
var idSegment = regexp.MustCompile(`/([0-9A-HJKMNP-TV-Z]{26}|[0-9a-fA-F-]{36}|\d+)(/|$)`)

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Middleware returns an HTTP middleware that records request count and
// latency for each request with a cardinality-safe path label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		startTime := time.Now()
		next.ServeHTTP(recorder, r)
		duration := time.Since(startTime).Seconds()

		normalizedPath := normalizePath(r.URL.Path)
		statusStr := http.StatusText(recorder.statusCode)
		if statusStr == "" {
			statusStr = "UNKNOWN"
		}

		RecordRequest(r.Method, normalizedPath, statusStr)
		RecordRequestDuration(r.Method, normalizedPath, statusStr, duration)
	})
}

// normalizePath collapses identifier segments to :id so unique token IDs do
// not explode label cardinality, e.g. /api/tokens/01J... -> /api/tokens/:id.
func normalizePath(path string) string {
	return idSegment.ReplaceAllString(path, "/:id$2")
}
