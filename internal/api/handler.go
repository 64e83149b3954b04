// Package api exposes the token management and authorization HTTP surface.
package api

import (
	"context"
	"log/slog"

	"github.com/dataline/accessgate/internal/auth"
	"github.com/dataline/accessgate/internal/token"
)

// Pinger is the readiness check dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler bundles the dependencies of all HTTP handlers.
type Handler struct {
	tokens   *token.Service
	engine   *auth.Engine
	resolver *auth.Resolver
	db       Pinger
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// NewHandler creates the API handler.
func NewHandler(tokens *token.Service, engine *auth.Engine, resolver *auth.Resolver, db Pinger, logger *slog.Logger, logLevel *slog.LevelVar) *Handler {
	return &Handler{
		tokens:   tokens,
		engine:   engine,
		resolver: resolver,
		db:       db,
		logger:   logger,
		logLevel: logLevel,
	}
}
