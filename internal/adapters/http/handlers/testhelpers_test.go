package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// withChiParams attaches chi URL parameters to the request context so
// handlers can be exercised without a full router.
func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonBody encodes v as a JSON request body.
func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	return bytes.NewReader(b)
}

// decodeJSON decodes the recorded response body into dst.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response body %q: %v", w.Body.String(), err)
	}
}

// requireStatus fails the test immediately when the recorded status differs.
func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

// mockWorkspaceService is a testify mock of ports.WorkspaceService.
type mockWorkspaceService struct {
	mock.Mock
}

var _ ports.WorkspaceService = (*mockWorkspaceService)(nil)

func (m *mockWorkspaceService) Create(ctx context.Context, ws *workspace.Workspace) (*workspace.Workspace, error) {
	args := m.Called(ctx, ws)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) Get(ctx context.Context, id string) (*workspace.Workspace, error) {
	args := m.Called(ctx, id)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) GetByName(ctx context.Context, name string) (*workspace.Workspace, error) {
	args := m.Called(ctx, name)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) List(ctx context.Context, filter workspace.Filter) ([]*workspace.Workspace, error) {
	args := m.Called(ctx, filter)
	if wss, ok := args.Get(0).([]*workspace.Workspace); ok {
		return wss, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) Update(ctx context.Context, id string, ws *workspace.Workspace) (*workspace.Workspace, error) {
	args := m.Called(ctx, id, ws)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) Delete(ctx context.Context, id string, force bool) error {
	return m.Called(ctx, id, force).Error(0)
}

func (m *mockWorkspaceService) Activate(ctx context.Context, id string) (*workspace.Workspace, error) {
	args := m.Called(ctx, id)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWorkspaceService) Active(ctx context.Context) (*workspace.Workspace, error) {
	args := m.Called(ctx)
	if ws, ok := args.Get(0).(*workspace.Workspace); ok {
		return ws, args.Error(1)
	}
	return nil, args.Error(1)
}

// mockConfigService is a testify mock of ports.ConfigService.
type mockConfigService struct {
	mock.Mock
}

var _ ports.ConfigService = (*mockConfigService)(nil)

func (m *mockConfigService) Describe(ctx context.Context) []configset.Field {
	args := m.Called(ctx)
	if fields, ok := args.Get(0).([]configset.Field); ok {
		return fields
	}
	return nil
}

func (m *mockConfigService) Resolve(ctx context.Context, workspaceID string) (configset.Settings, error) {
	args := m.Called(ctx, workspaceID)
	if s, ok := args.Get(0).(configset.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConfigService) Get(ctx context.Context, workspaceID, key string) (configset.Value, error) {
	args := m.Called(ctx, workspaceID, key)
	return args.Get(0).(configset.Value), args.Error(1)
}

func (m *mockConfigService) Set(ctx context.Context, workspaceID, key string, raw any) (configset.Value, error) {
	args := m.Called(ctx, workspaceID, key, raw)
	return args.Get(0).(configset.Value), args.Error(1)
}

func (m *mockConfigService) Unset(ctx context.Context, workspaceID, key string) error {
	return m.Called(ctx, workspaceID, key).Error(0)
}

func (m *mockConfigService) Global(ctx context.Context) (configset.Settings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(configset.Settings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockConfigService) SetGlobal(ctx context.Context, key string, raw any) (configset.Value, error) {
	args := m.Called(ctx, key, raw)
	return args.Get(0).(configset.Value), args.Error(1)
}

func (m *mockConfigService) UnsetGlobal(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// mockPipelineService is a testify mock of ports.PipelineService.
type mockPipelineService struct {
	mock.Mock
}

var _ ports.PipelineService = (*mockPipelineService)(nil)

func (m *mockPipelineService) Create(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	args := m.Called(ctx, p)
	if p, ok := args.Get(0).(*pipeline.Pipeline); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineService) Get(ctx context.Context, id string) (*pipeline.Pipeline, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*pipeline.Pipeline); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineService) List(ctx context.Context, workspaceID string) ([]*pipeline.Pipeline, error) {
	args := m.Called(ctx, workspaceID)
	if ps, ok := args.Get(0).([]*pipeline.Pipeline); ok {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineService) Update(ctx context.Context, id string, p *pipeline.Pipeline) (*pipeline.Pipeline, error) {
	args := m.Called(ctx, id, p)
	if p, ok := args.Get(0).(*pipeline.Pipeline); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPipelineService) Run(ctx context.Context, pipelineID, input string) (*pipeline.Run, error) {
	args := m.Called(ctx, pipelineID, input)
	if run, ok := args.Get(0).(*pipeline.Run); ok {
		return run, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPipelineService) Runs(ctx context.Context, pipelineID string, limit int) ([]*pipeline.Run, error) {
	args := m.Called(ctx, pipelineID, limit)
	if runs, ok := args.Get(0).([]*pipeline.Run); ok {
		return runs, args.Error(1)
	}
	return nil, args.Error(1)
}

// mockAnalyticsService is a testify mock of ports.AnalyticsService.
type mockAnalyticsService struct {
	mock.Mock
}

var _ ports.AnalyticsService = (*mockAnalyticsService)(nil)

func (m *mockAnalyticsService) Overview(ctx context.Context) ([]ports.WorkspaceOverview, error) {
	args := m.Called(ctx)
	if o, ok := args.Get(0).([]ports.WorkspaceOverview); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAnalyticsService) Stats(ctx context.Context, workspaceID string) (ports.WorkspaceOverview, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(ports.WorkspaceOverview), args.Error(1)
}
