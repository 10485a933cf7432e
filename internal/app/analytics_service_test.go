package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/writeit-dev/writeit/internal/adapters/store/inmem"
	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

func TestAnalyticsService_Overview(t *testing.T) {
	t.Parallel()

	t.Run("empty store", func(t *testing.T) {
		t.Parallel()
		store := inmem.NewStore()
		svc := NewAnalyticsService(store.Workspaces, store.Pipelines, discardLogger())

		overviews, err := svc.Overview(context.Background())
		if err != nil {
			t.Fatalf("Overview() error = %v", err)
		}
		if len(overviews) != 0 {
			t.Errorf("Overview() = %d entries, want 0", len(overviews))
		}
	})

	t.Run("summarizes pipelines, runs, and overridden keys", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := inmem.NewStore()

		wsSvc := NewWorkspaceService(store.Workspaces, t.TempDir(), discardLogger())
		configSvc := NewConfigService(configset.DefaultSchema(), store.Workspaces, store.Settings, discardLogger())
		completion := &mockCompletionClient{}
		plSvc := NewPipelineService(store.Pipelines, store.Workspaces, configSvc, completion, nil, discardLogger())

		busy, err := wsSvc.Create(ctx, &workspace.Workspace{Name: "busy"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		_, err = wsSvc.Create(ctx, &workspace.Workspace{Name: "idle"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		if _, err := configSvc.Set(ctx, busy.ID, "style", "concise"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		p, err := plSvc.Create(ctx, &pipeline.Pipeline{
			WorkspaceID: busy.ID,
			Name:        "article",
			Steps:       []pipeline.Step{{Name: "draft", Prompt: "write {{input}}"}},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		completion.On("Complete", mock.Anything, mock.Anything).
			Return(&ports.CompletionResponse{Text: "out", PromptTokens: 1, OutputTokens: 1}, nil)
		if _, err := plSvc.Run(ctx, p.ID, "x"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if _, err := plSvc.Run(ctx, p.ID, "y"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		svc := NewAnalyticsService(store.Workspaces, store.Pipelines, discardLogger())
		overviews, err := svc.Overview(ctx)
		if err != nil {
			t.Fatalf("Overview() error = %v", err)
		}
		if len(overviews) != 2 {
			t.Fatalf("Overview() = %d entries, want 2", len(overviews))
		}

		byName := make(map[string]ports.WorkspaceOverview, len(overviews))
		for _, o := range overviews {
			byName[o.Workspace.Name] = o
		}

		busyOverview := byName["busy"]
		if busyOverview.PipelineCount != 1 || busyOverview.RunCount != 2 {
			t.Errorf("busy overview = %d pipelines / %d runs, want 1/2",
				busyOverview.PipelineCount, busyOverview.RunCount)
		}
		if busyOverview.LastRunAt.IsZero() {
			t.Error("busy overview LastRunAt is zero")
		}
		if len(busyOverview.OverriddenKeys) != 1 || busyOverview.OverriddenKeys[0] != "style" {
			t.Errorf("busy overview overridden keys = %v, want [style]", busyOverview.OverriddenKeys)
		}

		idleOverview := byName["idle"]
		if idleOverview.PipelineCount != 0 || idleOverview.RunCount != 0 {
			t.Errorf("idle overview = %d pipelines / %d runs, want 0/0",
				idleOverview.PipelineCount, idleOverview.RunCount)
		}
	})
}

func TestAnalyticsService_Stats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := inmem.NewStore()

	wsSvc := NewWorkspaceService(store.Workspaces, t.TempDir(), discardLogger())
	ws, err := wsSvc.Create(ctx, &workspace.Workspace{Name: "blog"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Pipelines.Create(ctx, &pipeline.Pipeline{
		WorkspaceID: ws.ID,
		Name:        "article",
		Steps:       []pipeline.Step{{Name: "draft", Prompt: "write"}},
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	svc := NewAnalyticsService(store.Workspaces, store.Pipelines, discardLogger())

	stats, err := svc.Stats(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.PipelineCount != 1 || stats.RunCount != 0 {
		t.Errorf("Stats() = %d pipelines / %d runs, want 1/0", stats.PipelineCount, stats.RunCount)
	}
	if stats.Workspace == nil || stats.Workspace.Name != "blog" {
		t.Errorf("Stats() workspace = %+v, want blog", stats.Workspace)
	}

	if _, err := svc.Stats(ctx, "ws-missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Stats(missing) = %v, want ErrNotFound", err)
	}
}
