// Package metrics provides Prometheus metrics collection for AccessGate.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics - used by the application
	// Using atomic.Pointer for lock-free initialization checks on hot path metrics.
	requestsTotal       atomic.Pointer[prometheus.CounterVec]
	requestDuration     atomic.Pointer[prometheus.HistogramVec]
	authFailuresTotal   atomic.Pointer[prometheus.CounterVec]
	authzDecisionsTotal atomic.Pointer[prometheus.CounterVec]
	tokensIssuedTotal   atomic.Pointer[prometheus.Counter]
	tokensRevokedTotal  atomic.Pointer[prometheus.Counter]
)

// Init initializes all Prometheus metrics and registers them with the provided registry.
// This should be called once at application startup.
func Init(reg prometheus.Registerer) error {
	requestsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accessgate",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestsTotalVec); err != nil {
		return fmt.Errorf("failed to register requestsTotal: %w", err)
	}

	requestDurationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "accessgate",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(requestDurationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	authFailuresTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accessgate",
			Name:      "auth_failures_total",
			Help:      "Total number of authentication failures",
		},
		[]string{"reason"},
	)
	if err := reg.Register(authFailuresTotalVec); err != nil {
		return fmt.Errorf("failed to register authFailuresTotal: %w", err)
	}

	authzDecisionsTotalVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "accessgate",
			Name:      "authz_decisions_total",
			Help:      "Authorization decisions by resource type, capability and outcome",
		},
		[]string{"resource_type", "capability", "outcome"},
	)
	if err := reg.Register(authzDecisionsTotalVec); err != nil {
		return fmt.Errorf("failed to register authzDecisionsTotal: %w", err)
	}

	tokensIssued := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "accessgate",
		Name:      "tokens_issued_total",
		Help:      "Total number of API tokens issued",
	})
	if err := reg.Register(tokensIssued); err != nil {
		return fmt.Errorf("failed to register tokensIssued: %w", err)
	}

	tokensRevoked := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "accessgate",
		Name:      "tokens_revoked_total",
		Help:      "Total number of API tokens revoked",
	})
	if err := reg.Register(tokensRevoked); err != nil {
		return fmt.Errorf("failed to register tokensRevoked: %w", err)
	}

	// Store metrics in atomics for lock-free access in record functions
	requestsTotal.Store(requestsTotalVec)
	requestDuration.Store(requestDurationVec)
	authFailuresTotal.Store(authFailuresTotalVec)
	authzDecisionsTotal.Store(authzDecisionsTotalVec)
	tokensIssuedTotal.Store(&tokensIssued)
	tokensRevokedTotal.Store(&tokensRevoked)

	return nil
}

// RecordRequest increments the requests counter for the given method, path, and status code.
// The path should be normalized (e.g., "/api/tokens/:id" instead of a raw ID).
func RecordRequest(method, path, statusCode string) {
	if counter := requestsTotal.Load(); counter != nil {
		counter.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordRequestDuration records the latency for a request in seconds.
func RecordRequestDuration(method, path, statusCode string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, statusCode).Observe(durationSeconds)
	}
}

// RecordAuthFailure increments the auth failures counter for the given reason.
// Common reasons: "missing_credential", "invalid_credential", "rate_limited"
func RecordAuthFailure(reason string) {
	if counter := authFailuresTotal.Load(); counter != nil {
		counter.WithLabelValues(reason).Inc()
	}
}

// RecordAuthzDecision counts one authorization engine decision.
func RecordAuthzDecision(resourceType, capability string, allowed bool) {
	if counter := authzDecisionsTotal.Load(); counter != nil {
		outcome := "deny"
		if allowed {
			outcome = "allow"
		}
		counter.WithLabelValues(resourceType, capability, outcome).Inc()
	}
}

// RecordTokenIssued counts one successful token issuance.
func RecordTokenIssued() {
	if counter := tokensIssuedTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordTokenRevoked counts one token revocation.
func RecordTokenRevoked() {
	if counter := tokensRevokedTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// Handler returns an HTTP handler for Prometheus metrics in text format.
// This handler should be registered at /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
