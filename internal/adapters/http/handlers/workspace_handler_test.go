package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/writeit-dev/writeit/internal/adapters/http/dto"
	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

func sampleWorkspace(id, name string) *workspace.Workspace {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return &workspace.Workspace{
		ID:        id,
		Name:      name,
		Root:      "/data/" + name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestWorkspaceHandler_List(t *testing.T) {
	t.Parallel()

	svc := &mockWorkspaceService{}
	svc.On("List", mock.Anything, workspace.Filter{ActiveOnly: true, NamePrefix: "bl"}).
		Return([]*workspace.Workspace{sampleWorkspace("ws-1", "blog")}, nil)
	h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces?active_only=true&prefix=bl", nil)
	w := httptest.NewRecorder()
	h.List(w, r)

	requireStatus(t, w, http.StatusOK)
	var resp dto.WorkspaceListResponse
	decodeJSON(t, w, &resp)
	if resp.Count != 1 || resp.Workspaces[0].Name != "blog" {
		t.Errorf("List response = %+v, want one blog workspace", resp)
	}
	svc.AssertExpectations(t)
}

func TestWorkspaceHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Create", mock.Anything, mock.MatchedBy(func(ws *workspace.Workspace) bool {
			return ws.Name == "blog" && ws.Description == "posts"
		})).Return(sampleWorkspace("ws-1", "blog"), nil)
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		body := jsonBody(t, dto.CreateWorkspaceRequest{Name: "blog", Description: "posts"})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", body)
		w := httptest.NewRecorder()
		h.Create(w, r)

		requireStatus(t, w, http.StatusCreated)
		var resp dto.WorkspaceResponse
		decodeJSON(t, w, &resp)
		if resp.ID != "ws-1" {
			t.Errorf("Create response ID = %q, want ws-1", resp.ID)
		}
		svc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		h.Create(w, r)

		requireStatus(t, w, http.StatusBadRequest)
		if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("Content-Type = %q, want problem+json", ct)
		}
		svc.AssertNotCalled(t, "Create")
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", jsonBody(t, dto.CreateWorkspaceRequest{}))
		w := httptest.NewRecorder()
		h.Create(w, r)

		requireStatus(t, w, http.StatusBadRequest)
		var resp dto.ErrorResponse
		decodeJSON(t, w, &resp)
		if len(resp.Errors) != 1 || resp.Errors[0].Location != "body.name" {
			t.Errorf("error details = %+v, want body.name entry", resp.Errors)
		}
	})

	t.Run("name conflict", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("workspace name %q: %w", "blog", domain.ErrConflict))
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		body := jsonBody(t, dto.CreateWorkspaceRequest{Name: "blog"})
		r := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", body)
		w := httptest.NewRecorder()
		h.Create(w, r)

		requireStatus(t, w, http.StatusConflict)
	})
}

func TestWorkspaceHandler_Get(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Get", mock.Anything, "ws-1").Return(sampleWorkspace("ws-1", "blog"), nil)
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/ws-1", nil),
			map[string]string{"id": "ws-1"})
		w := httptest.NewRecorder()
		h.Get(w, r)

		requireStatus(t, w, http.StatusOK)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Get", mock.Anything, "ws-404").
			Return(nil, fmt.Errorf("workspace ws-404: %w", domain.ErrNotFound))
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/ws-404", nil),
			map[string]string{"id": "ws-404"})
		w := httptest.NewRecorder()
		h.Get(w, r)

		requireStatus(t, w, http.StatusNotFound)
	})
}

func TestWorkspaceHandler_Active(t *testing.T) {
	t.Parallel()

	svc := &mockWorkspaceService{}
	svc.On("Active", mock.Anything).
		Return(nil, fmt.Errorf("no active workspace: %w", domain.ErrNotFound))
	h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/active", nil)
	w := httptest.NewRecorder()
	h.Active(w, r)

	requireStatus(t, w, http.StatusNotFound)
}

func TestWorkspaceHandler_Update(t *testing.T) {
	t.Parallel()

	svc := &mockWorkspaceService{}
	svc.On("Update", mock.Anything, "ws-1", mock.MatchedBy(func(ws *workspace.Workspace) bool {
		// Omitted fields stay zero so the service treats them as unchanged.
		return ws.Name == "" && ws.Description == "updated"
	})).Return(sampleWorkspace("ws-1", "blog"), nil)
	h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

	desc := "updated"
	body := jsonBody(t, dto.UpdateWorkspaceRequest{Description: &desc})
	r := withChiParams(httptest.NewRequest(http.MethodPatch, "/api/v1/workspaces/ws-1", body),
		map[string]string{"id": "ws-1"})
	w := httptest.NewRecorder()
	h.Update(w, r)

	requireStatus(t, w, http.StatusOK)
	svc.AssertExpectations(t)
}

func TestWorkspaceHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("force flag forwarded", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Delete", mock.Anything, "ws-1", true).Return(nil)
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := withChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/workspaces/ws-1?force=true", nil),
			map[string]string{"id": "ws-1"})
		w := httptest.NewRecorder()
		h.Delete(w, r)

		requireStatus(t, w, http.StatusNoContent)
		svc.AssertExpectations(t)
	})

	t.Run("active workspace refused", func(t *testing.T) {
		t.Parallel()
		svc := &mockWorkspaceService{}
		svc.On("Delete", mock.Anything, "ws-1", false).
			Return(fmt.Errorf("workspace ws-1 is active: %w", domain.ErrForbidden))
		h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

		r := withChiParams(httptest.NewRequest(http.MethodDelete, "/api/v1/workspaces/ws-1", nil),
			map[string]string{"id": "ws-1"})
		w := httptest.NewRecorder()
		h.Delete(w, r)

		requireStatus(t, w, http.StatusForbidden)
	})
}

func TestWorkspaceHandler_Activate(t *testing.T) {
	t.Parallel()

	svc := &mockWorkspaceService{}
	svc.On("Activate", mock.Anything, "ws-2").Return(sampleWorkspace("ws-2", "drafts"), nil)
	h := NewWorkspaceHandler(svc, &mockAnalyticsService{})

	r := withChiParams(httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/ws-2/activate", nil),
		map[string]string{"id": "ws-2"})
	w := httptest.NewRecorder()
	h.Activate(w, r)

	requireStatus(t, w, http.StatusOK)
	var resp dto.WorkspaceResponse
	decodeJSON(t, w, &resp)
	if !resp.Active {
		t.Error("Activate response should be active")
	}
}

func TestWorkspaceHandler_Overview(t *testing.T) {
	t.Parallel()

	analytics := &mockAnalyticsService{}
	analytics.On("Overview", mock.Anything).Return([]ports.WorkspaceOverview{
		{
			Workspace:      sampleWorkspace("ws-1", "blog"),
			PipelineCount:  2,
			RunCount:       5,
			LastRunAt:      time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
			OverriddenKeys: []string{"style"},
		},
	}, nil)
	h := NewWorkspaceHandler(&mockWorkspaceService{}, analytics)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/overview", nil)
	w := httptest.NewRecorder()
	h.Overview(w, r)

	requireStatus(t, w, http.StatusOK)
	var resp dto.OverviewResponse
	decodeJSON(t, w, &resp)
	if resp.Count != 1 {
		t.Fatalf("Overview count = %d, want 1", resp.Count)
	}
	item := resp.Workspaces[0]
	if item.PipelineCount != 2 || item.RunCount != 5 || item.LastRunAt == "" {
		t.Errorf("Overview item = %+v, want populated summary", item)
	}
}

func TestWorkspaceHandler_Stats(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		analytics := &mockAnalyticsService{}
		analytics.On("Stats", mock.Anything, "ws-1").Return(ports.WorkspaceOverview{
			Workspace:     sampleWorkspace("ws-1", "blog"),
			PipelineCount: 3,
			RunCount:      7,
		}, nil)
		h := NewWorkspaceHandler(&mockWorkspaceService{}, analytics)

		r := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/ws-1/stats", nil),
			map[string]string{"id": "ws-1"})
		w := httptest.NewRecorder()
		h.Stats(w, r)

		requireStatus(t, w, http.StatusOK)
		var resp dto.OverviewItemResponse
		decodeJSON(t, w, &resp)
		if resp.PipelineCount != 3 || resp.RunCount != 7 {
			t.Errorf("Stats response = %+v, want counts 3/7", resp)
		}
	})

	t.Run("missing workspace", func(t *testing.T) {
		t.Parallel()

		analytics := &mockAnalyticsService{}
		analytics.On("Stats", mock.Anything, "ws-missing").
			Return(ports.WorkspaceOverview{}, domain.ErrNotFound)
		h := NewWorkspaceHandler(&mockWorkspaceService{}, analytics)

		r := withChiParams(httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/ws-missing/stats", nil),
			map[string]string{"id": "ws-missing"})
		w := httptest.NewRecorder()
		h.Stats(w, r)

		requireStatus(t, w, http.StatusNotFound)
	})
}
