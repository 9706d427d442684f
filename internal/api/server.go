// Copyright (c) 2026 Klustra. All rights reserved.
// Author: platform@klustra.io

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/klustra/klustra/internal/auth"
	"github.com/klustra/klustra/internal/kafka/audit"
	"github.com/klustra/klustra/internal/kafka/cluster"
	"github.com/klustra/klustra/internal/kafka/consumergroup"
	"github.com/klustra/klustra/internal/kafka/topic"
	"github.com/klustra/klustra/internal/platform/config"
	"github.com/klustra/klustra/internal/platform/constants"
	"github.com/klustra/klustra/internal/platform/middleware"
	"github.com/klustra/klustra/internal/tenants"
	"github.com/klustra/klustra/internal/users"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the authentication lifecycle (login, refresh, register).
	Auth *auth.Handler

	// Tenants handles platform-operator tenant management.
	Tenants *tenants.Handler

	// Users handles tenant-scoped user administration.
	Users *users.Handler

	// Clusters handles Kafka cluster registration and health probes.
	Clusters *cluster.Handler

	// Topics handles Kafka topic administration.
	Topics *topic.Handler

	// Groups handles consumer group tracking and lag sampling.
	Groups *consumergroup.Handler

	// Audit handles the append-only audit trail and CSV exports.
	Audit *audit.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution. TenantResolver must
	// run after Authenticate so principal claims are available as the
	// resolution fallback.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.TenantResolver())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/tenants", h.Tenants.Routes())

		// Everything below operates inside the resolved tenant.
		api.Group(func(scoped chi.Router) {
			scoped.Use(middleware.RequireAuth())

			scoped.Mount("/users", h.Users.Routes())
			scoped.Mount("/kafka/clusters", h.Clusters.Routes())
			scoped.Mount("/kafka/clusters/{clusterID}/topics", h.Topics.ClusterRoutes())
			scoped.Mount("/kafka/clusters/{clusterID}/groups", h.Groups.ClusterRoutes())
			scoped.Mount("/kafka/topics", h.Topics.Routes())
			scoped.Mount("/kafka/groups", h.Groups.Routes())
			scoped.Mount("/audit", h.Audit.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
		},
	}
}

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
