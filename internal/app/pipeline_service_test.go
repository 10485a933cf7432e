package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/writeit-dev/writeit/internal/adapters/store/inmem"
	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// mockCompletionClient is a hand-rolled testify mock for the completion port.
type mockCompletionClient struct {
	mock.Mock
}

func (m *mockCompletionClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*ports.CompletionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// pipelineFixture wires a PipelineService over the in-memory store with one
// workspace and one two-step pipeline.
type pipelineFixture struct {
	svc        *PipelineService
	config     *ConfigService
	completion *mockCompletionClient
	ws         *workspace.Workspace
	p          *pipeline.Pipeline
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	ctx := context.Background()
	store := inmem.NewStore()

	wsSvc := NewWorkspaceService(store.Workspaces, t.TempDir(), discardLogger())
	ws, err := wsSvc.Create(ctx, &workspace.Workspace{Name: "blog"})
	if err != nil {
		t.Fatalf("creating fixture workspace: %v", err)
	}

	configSvc := NewConfigService(configset.DefaultSchema(), store.Workspaces, store.Settings, discardLogger())
	completion := &mockCompletionClient{}

	svc := NewPipelineService(store.Pipelines, store.Workspaces, configSvc, completion, nil, discardLogger())
	p, err := svc.Create(ctx, &pipeline.Pipeline{
		WorkspaceID: ws.ID,
		Name:        "article",
		Steps: []pipeline.Step{
			{Name: "outline", Prompt: "Outline an article about {{input}}"},
			{Name: "draft", Prompt: "Write the article from {{steps.outline}}"},
		},
	})
	if err != nil {
		t.Fatalf("creating fixture pipeline: %v", err)
	}

	return &pipelineFixture{svc: svc, config: configSvc, completion: completion, ws: ws, p: p}
}

func completionResponse(text string, tokens int) *ports.CompletionResponse {
	return &ports.CompletionResponse{Text: text, PromptTokens: tokens, OutputTokens: tokens}
}

func TestPipelineService_Create(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown workspace", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)

		_, err := f.svc.Create(context.Background(), &pipeline.Pipeline{
			WorkspaceID: "ws-missing",
			Name:        "orphan",
			Steps:       []pipeline.Step{{Name: "s", Prompt: "p"}},
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Create() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects duplicate name within workspace", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)

		_, err := f.svc.Create(context.Background(), &pipeline.Pipeline{
			WorkspaceID: f.ws.ID,
			Name:        "article",
			Steps:       []pipeline.Step{{Name: "s", Prompt: "p"}},
		})
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("Create() error = %v, want ErrConflict", err)
		}
	})

	t.Run("rejects invalid pipeline", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)

		_, err := f.svc.Create(context.Background(), &pipeline.Pipeline{
			WorkspaceID: f.ws.ID,
			Name:        "empty",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("Create() error = %v, want ErrValidation", err)
		}
	})
}

func TestPipelineService_Run(t *testing.T) {
	t.Parallel()

	t.Run("chains step outputs and records the run", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)
		ctx := context.Background()

		var requests []ports.CompletionRequest
		f.completion.On("Complete", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				requests = append(requests, args.Get(1).(ports.CompletionRequest))
			}).
			Return(completionResponse("I. Intro", 10), nil).Once()
		f.completion.On("Complete", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				requests = append(requests, args.Get(1).(ports.CompletionRequest))
			}).
			Return(completionResponse("Full article", 20), nil).Once()

		run, err := f.svc.Run(ctx, f.p.ID, "coffee")
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}

		if run.Status != pipeline.RunSucceeded {
			t.Errorf("Run() status = %v, want succeeded", run.Status)
		}
		if run.Output() != "Full article" {
			t.Errorf("Run() output = %q, want final step output", run.Output())
		}
		if run.TotalTokens != 60 {
			t.Errorf("Run() total tokens = %d, want 60", run.TotalTokens)
		}

		if len(requests) != 2 {
			t.Fatalf("completion calls = %d, want 2", len(requests))
		}
		if !strings.Contains(requests[0].Prompt, "coffee") {
			t.Errorf("first prompt = %q, want rendered input", requests[0].Prompt)
		}
		if !strings.Contains(requests[1].Prompt, "I. Intro") {
			t.Errorf("second prompt = %q, want first step output", requests[1].Prompt)
		}

		// The run is persisted in the history.
		runs, err := f.svc.Runs(ctx, f.p.ID, 0)
		if err != nil {
			t.Fatalf("Runs() error = %v", err)
		}
		if len(runs) != 1 || runs[0].ID != run.ID {
			t.Errorf("Runs() = %d entries, want the recorded run", len(runs))
		}
	})

	t.Run("applies effective settings and step overrides", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)
		ctx := context.Background()

		if _, err := f.config.Set(ctx, f.ws.ID, "model", "workspace-model"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if _, err := f.config.Set(ctx, f.ws.ID, "temperature", 0.2); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		p, err := f.svc.Create(ctx, &pipeline.Pipeline{
			WorkspaceID: f.ws.ID,
			Name:        "override",
			Steps: []pipeline.Step{
				{Name: "default-model", Prompt: "a {{input}}"},
				{Name: "custom-model", Prompt: "b", Model: "step-model", MaxTokens: 64},
			},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		var requests []ports.CompletionRequest
		f.completion.On("Complete", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				requests = append(requests, args.Get(1).(ports.CompletionRequest))
			}).
			Return(completionResponse("out", 1), nil).Twice()

		if _, err := f.svc.Run(ctx, p.ID, "x"); err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if requests[0].Model != "workspace-model" {
			t.Errorf("step without model used %q, want workspace setting", requests[0].Model)
		}
		if requests[0].MaxTokens != 2048 {
			t.Errorf("step without budget used %d, want schema default 2048", requests[0].MaxTokens)
		}
		if requests[0].Temperature != 0.2 {
			t.Errorf("temperature = %v, want workspace setting 0.2", requests[0].Temperature)
		}
		if requests[1].Model != "step-model" || requests[1].MaxTokens != 64 {
			t.Errorf("step overrides not applied: %+v", requests[1])
		}
	})

	t.Run("failed step records a failed run", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)
		ctx := context.Background()

		f.completion.On("Complete", mock.Anything, mock.Anything).
			Return(completionResponse("I. Intro", 5), nil).Once()
		f.completion.On("Complete", mock.Anything, mock.Anything).
			Return(nil, domain.ErrUnavailable).Once()

		run, err := f.svc.Run(ctx, f.p.ID, "coffee")
		if err == nil {
			t.Fatal("Run() error = nil, want step failure")
		}
		if run == nil {
			t.Fatal("Run() returned nil run for a recorded failure")
		}
		if run.Status != pipeline.RunFailed {
			t.Errorf("Run() status = %v, want failed", run.Status)
		}
		if !strings.Contains(run.Error, "draft") {
			t.Errorf("Run() error field = %q, want failing step name", run.Error)
		}
		if len(run.Steps) != 1 {
			t.Errorf("Run() completed steps = %d, want 1", len(run.Steps))
		}

		// Failed runs still land in the history.
		runs, err := f.svc.Runs(ctx, f.p.ID, 0)
		if err != nil {
			t.Fatalf("Runs() error = %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("Runs() = %d entries, want 1", len(runs))
		}
	})

	t.Run("auto-saves final output under the workspace root", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)
		ctx := context.Background()

		f.completion.On("Complete", mock.Anything, mock.Anything).
			Return(completionResponse("saved text", 1), nil).Twice()

		run, err := f.svc.Run(ctx, f.p.ID, "coffee")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		path := filepath.Join(f.ws.Root, "runs", run.ID+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading auto-saved run: %v", err)
		}
		if string(data) != "saved text" {
			t.Errorf("auto-saved content = %q, want final output", data)
		}
	})

	t.Run("auto-save disabled leaves no file", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)
		ctx := context.Background()

		if _, err := f.config.Set(ctx, f.ws.ID, "auto_save", false); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		f.completion.On("Complete", mock.Anything, mock.Anything).
			Return(completionResponse("text", 1), nil).Twice()

		run, err := f.svc.Run(ctx, f.p.ID, "coffee")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		if _, err := os.Stat(filepath.Join(f.ws.Root, "runs", run.ID+".md")); !os.IsNotExist(err) {
			t.Errorf("auto-save file exists with auto_save=false: %v", err)
		}
	})

	t.Run("unknown pipeline", func(t *testing.T) {
		t.Parallel()
		f := newPipelineFixture(t)

		_, err := f.svc.Run(context.Background(), "pl-missing", "x")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Run() error = %v, want ErrNotFound", err)
		}
	})
}

func TestPipelineService_Runs(t *testing.T) {
	t.Parallel()

	f := newPipelineFixture(t)
	ctx := context.Background()

	f.completion.On("Complete", mock.Anything, mock.Anything).
		Return(completionResponse("out", 1), nil)

	first, err := f.svc.Run(ctx, f.p.ID, "one")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := f.svc.Run(ctx, f.p.ID, "two")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	runs, err := f.svc.Runs(ctx, f.p.ID, 0)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Runs() = %d entries, want 2", len(runs))
	}
	if runs[0].ID != second.ID || runs[1].ID != first.ID {
		t.Error("Runs() not ordered most recent first")
	}

	limited, err := f.svc.Runs(ctx, f.p.ID, 1)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("Runs(limit=1) = %d entries, want the latest run", len(limited))
	}
}

func TestPipelineService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	f := newPipelineFixture(t)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, f.p.ID, &pipeline.Pipeline{
		Description: "three-act article pipeline",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Description != "three-act article pipeline" {
		t.Errorf("Update() description = %q", updated.Description)
	}
	if len(updated.Steps) != 2 {
		t.Errorf("Update() replaced steps unexpectedly: %d", len(updated.Steps))
	}

	if err := f.svc.Delete(ctx, f.p.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := f.svc.Get(ctx, f.p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
