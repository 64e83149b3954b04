// Package main provides the entry point for the AccessGate server.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dataline/accessgate/internal/api"
	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/config"
	"github.com/dataline/accessgate/internal/metrics"
	"github.com/dataline/accessgate/internal/middleware"
	"github.com/dataline/accessgate/internal/storage"
	"github.com/dataline/accessgate/internal/token"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "accessgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logLevel := new(slog.LevelVar)
	logLevel.Set(parseLogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := metrics.Init(prometheus.DefaultRegisterer); err != nil {
		return err
	}

	tokens := token.NewService(store, logger)
	engine := auth.NewEngine(store)
	verifier := auth.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)

	var bootstrap *auth.BootstrapGate
	if cfg.BootstrapAdminHash != "" {
		bootstrap = auth.NewBootstrapGate(store, cfg.BootstrapAdminHash)
		logger.Info("bootstrap admin access configured")
	}
	resolver := auth.NewResolver(verifier, tokens, bootstrap)

	handler := api.NewHandler(tokens, engine, resolver, store, logger, logLevel)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	router := handler.NewRouter(limiter)

	// Metrics on a separate listener so it can stay off the public network.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		logger.Info("metrics listener starting", "addr", cfg.MetricsListenAddr)
		if err := http.ListenAndServe(cfg.MetricsListenAddr, mux); err != nil {
			logger.Error("metrics listener failed", "error", err)
		}
	}()

	logger.Info("accessgate starting", "version", version, "addr", cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, router)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
