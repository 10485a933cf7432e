// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writeit-dev/writeit/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	workspaceHandler *handlers.WorkspaceHandler,
	configHandler *handlers.ConfigHandler,
	pipelineHandler *handlers.PipelineHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Workspace lifecycle. The "active" route must precede "{id}" so chi
		// does not treat the literal as an ID.
		r.Get("/workspaces", workspaceHandler.List)
		r.Post("/workspaces", workspaceHandler.Create)
		r.Get("/workspaces/active", workspaceHandler.Active)
		r.Get("/workspaces/{id}", workspaceHandler.Get)
		r.Patch("/workspaces/{id}", workspaceHandler.Update)
		r.Delete("/workspaces/{id}", workspaceHandler.Delete)
		r.Post("/workspaces/{id}/activate", workspaceHandler.Activate)
		r.Get("/workspaces/{id}/stats", workspaceHandler.Stats)

		// Workspace-scoped configuration.
		r.Get("/workspaces/{id}/config", configHandler.Resolve)
		r.Get("/workspaces/{id}/config/{key}", configHandler.Get)
		r.Put("/workspaces/{id}/config/{key}", configHandler.Set)
		r.Delete("/workspaces/{id}/config/{key}", configHandler.Unset)

		// Global configuration and schema.
		r.Get("/config", configHandler.Global)
		r.Get("/config/schema", configHandler.Schema)
		r.Put("/config/{key}", configHandler.SetGlobal)
		r.Delete("/config/{key}", configHandler.UnsetGlobal)

		// Pipeline authoring and execution.
		r.Get("/workspaces/{id}/pipelines", pipelineHandler.List)
		r.Post("/workspaces/{id}/pipelines", pipelineHandler.Create)
		r.Get("/pipelines/{id}", pipelineHandler.Get)
		r.Patch("/pipelines/{id}", pipelineHandler.Update)
		r.Delete("/pipelines/{id}", pipelineHandler.Delete)
		r.Post("/pipelines/{id}/run", pipelineHandler.Run)
		r.Get("/pipelines/{id}/runs", pipelineHandler.Runs)

		// Cross-workspace analytics.
		r.Get("/overview", workspaceHandler.Overview)
	})

	return r
}
