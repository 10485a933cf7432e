package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writeit-dev/writeit/internal/adapters/http/dto"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// WorkspaceHandler handles workspace lifecycle HTTP endpoints.
type WorkspaceHandler struct {
	service   ports.WorkspaceService
	analytics ports.AnalyticsService
}

// NewWorkspaceHandler creates a WorkspaceHandler over the workspace and
// analytics service ports.
func NewWorkspaceHandler(service ports.WorkspaceService, analytics ports.AnalyticsService) *WorkspaceHandler {
	return &WorkspaceHandler{service: service, analytics: analytics}
}

// List handles GET /api/v1/workspaces. Supports ?active_only=true and
// ?prefix=<name-prefix> filters.
func (h *WorkspaceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := workspace.Filter{
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
		NamePrefix: r.URL.Query().Get("prefix"),
	}

	workspaces, err := h.service.List(r.Context(), filter)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWorkspaceListResponse(workspaces))
}

// Create handles POST /api/v1/workspaces.
func (h *WorkspaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWorkspaceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ws, err := h.service.Create(r.Context(), &workspace.Workspace{
		Name:        req.Name,
		Root:        req.Root,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToWorkspaceResponse(ws))
}

// Get handles GET /api/v1/workspaces/{id}.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Active handles GET /api/v1/workspaces/active.
func (h *WorkspaceHandler) Active(w http.ResponseWriter, r *http.Request) {
	ws, err := h.service.Active(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Update handles PATCH /api/v1/workspaces/{id}.
func (h *WorkspaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWorkspaceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := &workspace.Workspace{Metadata: req.Metadata}
	if req.Name != nil {
		patch.Name = *req.Name
	}
	if req.Description != nil {
		patch.Description = *req.Description
	}

	ws, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Delete handles DELETE /api/v1/workspaces/{id}. Deleting the active
// workspace requires ?force=true.
func (h *WorkspaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), force); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /api/v1/workspaces/{id}/activate.
func (h *WorkspaceHandler) Activate(w http.ResponseWriter, r *http.Request) {
	ws, err := h.service.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWorkspaceResponse(ws))
}

// Stats handles GET /api/v1/workspaces/{id}/stats.
func (h *WorkspaceHandler) Stats(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToOverviewItemResponse(overview))
}

// Overview handles GET /api/v1/overview.
func (h *WorkspaceHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overviews, err := h.analytics.Overview(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToOverviewResponse(overviews))
}
