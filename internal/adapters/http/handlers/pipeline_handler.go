package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writeit-dev/writeit/internal/adapters/http/dto"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/ports"
)

// PipelineHandler handles pipeline authoring and execution HTTP endpoints.
type PipelineHandler struct {
	service ports.PipelineService
}

// NewPipelineHandler creates a PipelineHandler over the pipeline service port.
func NewPipelineHandler(service ports.PipelineService) *PipelineHandler {
	return &PipelineHandler{service: service}
}

// List handles GET /api/v1/workspaces/{id}/pipelines.
func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	pipelines, err := h.service.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPipelineListResponse(pipelines))
}

// Create handles POST /api/v1/workspaces/{id}/pipelines.
func (h *PipelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePipelineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), &pipeline.Pipeline{
		WorkspaceID: chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Steps:       mapStepRequests(req.Steps),
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.ToPipelineResponse(p))
}

// Get handles GET /api/v1/pipelines/{id}.
func (h *PipelineHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPipelineResponse(p))
}

// Update handles PATCH /api/v1/pipelines/{id}.
func (h *PipelineHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePipelineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := &pipeline.Pipeline{}
	if req.Name != nil {
		patch.Name = *req.Name
	}
	if req.Description != nil {
		patch.Description = *req.Description
	}
	if req.Steps != nil {
		patch.Steps = mapStepRequests(req.Steps)
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToPipelineResponse(p))
}

// Delete handles DELETE /api/v1/pipelines/{id}.
func (h *PipelineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run handles POST /api/v1/pipelines/{id}/run. A failed run still returns
// the recorded run body, with a status reflecting the failure cause.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunPipelineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	run, err := h.service.Run(r.Context(), chi.URLParam(r, "id"), req.Input)
	if err != nil {
		if run == nil {
			dto.WriteErrorResponse(w, r, err)
			return
		}
		// The run was recorded but a step failed. Surface the recorded run
		// with the error's mapped status.
		resp := dto.NewErrorResponse(r, err)
		writeJSON(w, resp.Status, dto.ToRunResponse(run))
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRunResponse(run))
}

// Runs handles GET /api/v1/pipelines/{id}/runs. Supports ?limit=<n>.
func (h *PipelineHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	runs, err := h.service.Runs(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToRunListResponse(runs))
}
