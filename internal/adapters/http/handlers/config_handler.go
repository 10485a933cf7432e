package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/writeit-dev/writeit/internal/adapters/http/dto"
	"github.com/writeit-dev/writeit/internal/ports"
)

// ConfigHandler handles typed configuration HTTP endpoints for the global
// and workspace scopes.
type ConfigHandler struct {
	service ports.ConfigService
}

// NewConfigHandler creates a ConfigHandler over the config service port.
func NewConfigHandler(service ports.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// Schema handles GET /api/v1/config/schema.
func (h *ConfigHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ToSchemaResponse(h.service.Describe(r.Context())))
}

// Global handles GET /api/v1/config.
func (h *ConfigHandler) Global(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Global(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToSettingsListResponse(settings))
}

// SetGlobal handles PUT /api/v1/config/{key}.
func (h *ConfigHandler) SetGlobal(w http.ResponseWriter, r *http.Request) {
	var req dto.SetSettingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := chi.URLParam(r, "key")
	v, err := h.service.SetGlobal(r.Context(), key, req.Value)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettingResponse{
		Key:   key,
		Kind:  v.Kind().String(),
		Value: v.Interface(),
	})
}

// UnsetGlobal handles DELETE /api/v1/config/{key}.
func (h *ConfigHandler) UnsetGlobal(w http.ResponseWriter, r *http.Request) {
	if err := h.service.UnsetGlobal(r.Context(), chi.URLParam(r, "key")); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Resolve handles GET /api/v1/workspaces/{id}/config, returning the
// workspace's effective settings (defaults, global, workspace merged).
func (h *ConfigHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToSettingsListResponse(settings))
}

// Get handles GET /api/v1/workspaces/{id}/config/{key}, returning the key
// from the workspace's own layer only.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), key)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettingResponse{
		Key:   key,
		Kind:  v.Kind().String(),
		Value: v.Interface(),
	})
}

// Set handles PUT /api/v1/workspaces/{id}/config/{key}.
func (h *ConfigHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req dto.SetSettingRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := chi.URLParam(r, "key")
	v, err := h.service.Set(r.Context(), chi.URLParam(r, "id"), key, req.Value)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettingResponse{
		Key:   key,
		Kind:  v.Kind().String(),
		Value: v.Interface(),
	})
}

// Unset handles DELETE /api/v1/workspaces/{id}/config/{key}.
func (h *ConfigHandler) Unset(w http.ResponseWriter, r *http.Request) {
	err := h.service.Unset(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "key"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
