package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
)

// PipelineRepository is a thread-safe in-memory implementation of
// ports.PipelineRepository.
type PipelineRepository struct {
	mu        sync.RWMutex
	pipelines map[string]*pipeline.Pipeline
	runs      map[string][]*pipeline.Run // keyed by pipeline ID, append order
}

func NewPipelineRepository() *PipelineRepository {
	return &PipelineRepository{
		pipelines: make(map[string]*pipeline.Pipeline),
		runs:      make(map[string][]*pipeline.Run),
	}
}

func clonePipeline(p *pipeline.Pipeline) *pipeline.Pipeline {
	cp := *p
	cp.Steps = make([]pipeline.Step, len(p.Steps))
	copy(cp.Steps, p.Steps)
	return &cp
}

func cloneRun(run *pipeline.Run) *pipeline.Run {
	cp := *run
	cp.Steps = make([]pipeline.StepResult, len(run.Steps))
	copy(cp.Steps, run.Steps)
	return &cp
}

func (r *PipelineRepository) Create(_ context.Context, p *pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.pipelines {
		if existing.WorkspaceID == p.WorkspaceID && existing.Name == p.Name {
			return fmt.Errorf("pipeline name %q in workspace %s: %w", p.Name, p.WorkspaceID, domain.ErrConflict)
		}
	}

	if p.ID == "" {
		p.ID = "pl-" + uuid.NewString()
	}
	r.pipelines[p.ID] = clonePipeline(p)
	return nil
}

func (r *PipelineRepository) Get(_ context.Context, id string) (*pipeline.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pipelines[id]
	if !ok {
		return nil, fmt.Errorf("pipeline %s: %w", id, domain.ErrNotFound)
	}
	return clonePipeline(p), nil
}

func (r *PipelineRepository) GetByName(_ context.Context, workspaceID, name string) (*pipeline.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.pipelines {
		if p.WorkspaceID == workspaceID && p.Name == name {
			return clonePipeline(p), nil
		}
	}
	return nil, fmt.Errorf("pipeline %q in workspace %s: %w", name, workspaceID, domain.ErrNotFound)
}

func (r *PipelineRepository) ListByWorkspace(_ context.Context, workspaceID string) ([]*pipeline.Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*pipeline.Pipeline, 0)
	for _, p := range r.pipelines {
		if p.WorkspaceID == workspaceID {
			out = append(out, clonePipeline(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PipelineRepository) Update(_ context.Context, p *pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.pipelines[p.ID]
	if !ok {
		return fmt.Errorf("pipeline %s: %w", p.ID, domain.ErrNotFound)
	}

	for id, other := range r.pipelines {
		if id != p.ID && other.WorkspaceID == existing.WorkspaceID && other.Name == p.Name {
			return fmt.Errorf("pipeline name %q: %w", p.Name, domain.ErrConflict)
		}
	}

	cp := clonePipeline(p)
	cp.WorkspaceID = existing.WorkspaceID
	cp.CreatedAt = existing.CreatedAt
	r.pipelines[p.ID] = cp
	return nil
}

func (r *PipelineRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pipelines[id]; !ok {
		return fmt.Errorf("pipeline %s: %w", id, domain.ErrNotFound)
	}
	delete(r.pipelines, id)
	delete(r.runs, id)
	return nil
}

func (r *PipelineRepository) RecordRun(_ context.Context, run *pipeline.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = "run-" + uuid.NewString()
	}
	r.runs[run.PipelineID] = append(r.runs[run.PipelineID], cloneRun(run))
	return nil
}

func (r *PipelineRepository) ListRuns(_ context.Context, pipelineID string, limit int) ([]*pipeline.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.runs[pipelineID]
	out := make([]*pipeline.Run, 0, len(history))
	// Most recent first.
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, cloneRun(history[i]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
