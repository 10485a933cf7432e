package rdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/pipeline"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time interface check.
var _ ports.PipelineRepository = (*PipelineRepository)(nil)

// PipelineRepository is a GORM-backed implementation of
// ports.PipelineRepository.
type PipelineRepository struct {
	db *gorm.DB
}

// NewPipelineRepository creates a pipeline repository over the given DB.
func NewPipelineRepository(db *gorm.DB) *PipelineRepository {
	return &PipelineRepository{db: db}
}

func pipelineToRecord(p *pipeline.Pipeline) (*PipelineRecord, error) {
	steps, err := json.Marshal(p.Steps)
	if err != nil {
		return nil, fmt.Errorf("encoding steps: %w", err)
	}

	return &PipelineRecord{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: p.Description,
		Steps:       string(steps),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func pipelineToModel(rec *PipelineRecord) (*pipeline.Pipeline, error) {
	var steps []pipeline.Step
	if err := decodeJSON(rec.Steps, &steps); err != nil {
		return nil, fmt.Errorf("decoding steps for pipeline %s: %w", rec.ID, err)
	}

	return &pipeline.Pipeline{
		ID:          rec.ID,
		WorkspaceID: rec.WorkspaceID,
		Name:        rec.Name,
		Description: rec.Description,
		Steps:       steps,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

func runToRecord(run *pipeline.Run) (*RunRecord, error) {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return nil, fmt.Errorf("encoding step results: %w", err)
	}

	return &RunRecord{
		ID:          run.ID,
		PipelineID:  run.PipelineID,
		WorkspaceID: run.WorkspaceID,
		Status:      string(run.Status),
		Input:       run.Input,
		Steps:       string(steps),
		TotalTokens: run.TotalTokens,
		StartedAt:   run.StartedAt,
		DurationNS:  int64(run.Duration),
		Error:       run.Error,
	}, nil
}

func runToModel(rec *RunRecord) (*pipeline.Run, error) {
	var steps []pipeline.StepResult
	if err := decodeJSON(rec.Steps, &steps); err != nil {
		return nil, fmt.Errorf("decoding step results for run %s: %w", rec.ID, err)
	}

	return &pipeline.Run{
		ID:          rec.ID,
		PipelineID:  rec.PipelineID,
		WorkspaceID: rec.WorkspaceID,
		Status:      pipeline.RunStatus(rec.Status),
		Input:       rec.Input,
		Steps:       steps,
		TotalTokens: rec.TotalTokens,
		StartedAt:   rec.StartedAt,
		Duration:    time.Duration(rec.DurationNS),
		Error:       rec.Error,
	}, nil
}

// Create persists a new pipeline, assigning an ID when empty.
func (r *PipelineRepository) Create(ctx context.Context, p *pipeline.Pipeline) error {
	rec, err := pipelineToRecord(p)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = "pl-" + uuid.NewString()
		p.ID = rec.ID
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("pipeline name %q in workspace %s: %w", p.Name, p.WorkspaceID, domain.ErrConflict)
		}
		return err
	}
	return nil
}

// Get returns a pipeline by ID.
func (r *PipelineRepository) Get(ctx context.Context, id string) (*pipeline.Pipeline, error) {
	var rec PipelineRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pipeline %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return pipelineToModel(&rec)
}

// GetByName returns a workspace's pipeline by name.
func (r *PipelineRepository) GetByName(ctx context.Context, workspaceID, name string) (*pipeline.Pipeline, error) {
	var rec PipelineRecord
	err := r.db.WithContext(ctx).
		First(&rec, "workspace_id = ? AND name = ?", workspaceID, name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pipeline %q in workspace %s: %w", name, workspaceID, domain.ErrNotFound)
		}
		return nil, err
	}
	return pipelineToModel(&rec)
}

// ListByWorkspace returns a workspace's pipelines ordered by creation time.
func (r *PipelineRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*pipeline.Pipeline, error) {
	var recs []PipelineRecord
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]*pipeline.Pipeline, 0, len(recs))
	for i := range recs {
		p, err := pipelineToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Update persists changes to an existing pipeline.
func (r *PipelineRepository) Update(ctx context.Context, p *pipeline.Pipeline) error {
	rec, err := pipelineToRecord(p)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&PipelineRecord{}).
		Where("id = ?", rec.ID).
		Select("*").Omit("id", "workspace_id", "created_at").
		Updates(rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("pipeline name %q: %w", p.Name, domain.ErrConflict)
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pipeline %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a pipeline and its run history in one transaction.
func (r *PipelineRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&PipelineRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("pipeline %s: %w", id, domain.ErrNotFound)
		}
		return tx.Delete(&RunRecord{}, "pipeline_id = ?", id).Error
	})
}

// RecordRun appends a run to the pipeline's history, assigning an ID when
// empty.
func (r *PipelineRepository) RecordRun(ctx context.Context, run *pipeline.Run) error {
	rec, err := runToRecord(run)
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = "run-" + uuid.NewString()
		run.ID = rec.ID
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// ListRuns returns a pipeline's runs, most recent first, capped at limit
// (0 means no cap).
func (r *PipelineRepository) ListRuns(ctx context.Context, pipelineID string, limit int) ([]*pipeline.Run, error) {
	q := r.db.WithContext(ctx).
		Where("pipeline_id = ?", pipelineID).
		Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []RunRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	out := make([]*pipeline.Run, 0, len(recs))
	for i := range recs {
		run, err := runToModel(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}
