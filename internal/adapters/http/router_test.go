package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/writeit-dev/writeit/internal/adapters/http/handlers"
	"github.com/writeit-dev/writeit/internal/adapters/store/inmem"
	"github.com/writeit-dev/writeit/internal/app"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/platform/health"
	"github.com/writeit-dev/writeit/internal/ports"
)

// echoCompletion satisfies ports.CompletionClient without a network.
type echoCompletion struct{}

func (echoCompletion) Complete(_ context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	return &ports.CompletionResponse{Text: "echo: " + req.Prompt, PromptTokens: 1, OutputTokens: 1}, nil
}

// newTestRouter wires a router over real services backed by the in-memory
// store, so routing tests exercise the full inbound path.
func newTestRouter(t *testing.T, middlewares ...func(http.Handler) http.Handler) http.Handler {
	t.Helper()

	store := inmem.NewStore()
	logger := slog.New(slog.DiscardHandler)

	workspaceSvc := app.NewWorkspaceService(store.Workspaces, t.TempDir(), logger)
	configSvc := app.NewConfigService(configset.DefaultSchema(), store.Workspaces, store.Settings, logger)
	pipelineSvc := app.NewPipelineService(store.Pipelines, store.Workspaces, configSvc, echoCompletion{}, nil, logger)
	analyticsSvc := app.NewAnalyticsService(store.Workspaces, store.Pipelines, logger)

	return NewRouter(
		handlers.NewWorkspaceHandler(workspaceSvc, analyticsSvc),
		handlers.NewConfigHandler(configSvc),
		handlers.NewPipelineHandler(pipelineSvc),
		handlers.NewHealthHandler(health.New()),
		middlewares...,
	)
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"liveness outside api prefix", http.MethodGet, "/health/live", http.StatusOK},
		{"readiness outside api prefix", http.MethodGet, "/health/ready", http.StatusOK},
		{"workspace list", http.MethodGet, "/api/v1/workspaces", http.StatusOK},
		{"no active workspace yet", http.MethodGet, "/api/v1/workspaces/active", http.StatusNotFound},
		{"workspace by id", http.MethodGet, "/api/v1/workspaces/ws-missing", http.StatusNotFound},
		{"workspace stats", http.MethodGet, "/api/v1/workspaces/ws-missing/stats", http.StatusNotFound},
		{"schema", http.MethodGet, "/api/v1/config/schema", http.StatusOK},
		{"global config", http.MethodGet, "/api/v1/config", http.StatusOK},
		{"overview", http.MethodGet, "/api/v1/overview", http.StatusOK},
		{"pipeline by id", http.MethodGet, "/api/v1/pipelines/pl-missing", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/api/v2/workspaces", http.StatusNotFound},
		{"wrong method", http.MethodPut, "/api/v1/workspaces", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d (body: %s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRouterActiveLiteralRouting(t *testing.T) {
	t.Parallel()

	// With no active workspace the literal route must reach the handler and
	// return a problem+json 404 from the service layer, not a chi routing
	// miss that would have treated "active" as a workspace ID.
	router := newTestRouter(t)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/active", nil))

	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want problem+json from handler", ct)
	}
	if !strings.Contains(w.Body.String(), "active") {
		t.Errorf("body = %q, want service-level no-active-workspace detail", w.Body.String())
	}
}

func TestRouterAppliesMiddleware(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Test-Middleware", "applied")
			next.ServeHTTP(w, r)
		})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if w.Header().Get("X-Test-Middleware") != "applied" {
		t.Error("global middleware not applied to health route")
	}
}

func TestRouterWorkspaceLifecycleEndToEnd(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	create := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces",
		strings.NewReader(`{"name":"blog"}`))
	create.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/active", nil))
	if w.Code != http.StatusOK {
		t.Errorf("active status = %d, want 200 after first create", w.Code)
	}

	// Schema-checked config write through the full path.
	set := httptest.NewRequest(http.MethodPut, "/api/v1/config/style",
		strings.NewReader(`{"value":"concise"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, set)
	if w.Code != http.StatusOK {
		t.Errorf("set global status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	// A value outside the schema enum is rejected end to end.
	bad := httptest.NewRequest(http.MethodPut, "/api/v1/config/style",
		strings.NewReader(`{"value":"baroque"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, bad)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad set global status = %d, want 400", w.Code)
	}
}
