package app

import (
	"context"
	"log/slog"

	"github.com/writeit-dev/writeit/internal/app/fanout"
	"github.com/writeit-dev/writeit/internal/domain/workspace"
	"github.com/writeit-dev/writeit/internal/ports"
)

// Compile-time check that AnalyticsService implements ports.AnalyticsService.
var _ ports.AnalyticsService = (*AnalyticsService)(nil)

// overviewWorkers bounds the concurrent per-workspace summary fan-out.
const overviewWorkers = 4

// AnalyticsService implements ports.AnalyticsService by aggregating
// per-workspace statistics. Summaries are gathered concurrently; a failed
// summary degrades to zero values instead of failing the whole overview.
type AnalyticsService struct {
	workspaces ports.WorkspaceRepository
	pipelines  ports.PipelineRepository
	logger     *slog.Logger
}

// NewAnalyticsService creates an AnalyticsService over the given stores.
func NewAnalyticsService(
	workspaces ports.WorkspaceRepository,
	pipelines ports.PipelineRepository,
	logger *slog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		workspaces: workspaces,
		pipelines:  pipelines,
		logger:     logger,
	}
}

// Overview summarizes all workspaces. Only the workspace listing can fail
// outright; per-workspace summary errors are logged and produce a summary
// with zero counts.
func (s *AnalyticsService) Overview(ctx context.Context) ([]ports.WorkspaceOverview, error) {
	workspaces, err := s.workspaces.List(ctx, workspace.Filter{})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list workspaces",
			slog.String("operation", "Overview"),
			slog.Any("error", err),
		)
		return nil, err
	}

	results := fanout.Run(ctx, overviewWorkers, workspaces, s.summarize)

	overviews := make([]ports.WorkspaceOverview, len(results))
	for i, r := range results {
		if r.Err != nil {
			s.logger.WarnContext(ctx, "workspace summary degraded",
				slog.String("operation", "Overview"),
				slog.String("workspace_id", workspaces[i].ID),
				slog.Any("error", r.Err),
			)
			overviews[i] = ports.WorkspaceOverview{Workspace: workspaces[i]}
			continue
		}
		overviews[i] = r.Value
	}
	return overviews, nil
}

// Stats summarizes a single workspace. Unlike Overview, a summary failure
// here is surfaced to the caller.
func (s *AnalyticsService) Stats(ctx context.Context, workspaceID string) (ports.WorkspaceOverview, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get workspace",
			slog.String("operation", "Stats"),
			slog.String("workspace_id", workspaceID),
			slog.Any("error", err),
		)
		return ports.WorkspaceOverview{}, err
	}
	return s.summarize(ctx, ws)
}

// summarize builds one workspace's overview: pipeline count, run count,
// most recent run time, and which schema keys the workspace overrides.
func (s *AnalyticsService) summarize(ctx context.Context, ws *workspace.Workspace) (ports.WorkspaceOverview, error) {
	overview := ports.WorkspaceOverview{
		Workspace:      ws,
		OverriddenKeys: ws.Settings.Keys(),
	}

	pipelines, err := s.pipelines.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		return ports.WorkspaceOverview{}, err
	}
	overview.PipelineCount = len(pipelines)

	for _, p := range pipelines {
		runs, err := s.pipelines.ListRuns(ctx, p.ID, 0)
		if err != nil {
			return ports.WorkspaceOverview{}, err
		}
		overview.RunCount += len(runs)
		for _, run := range runs {
			if run.StartedAt.After(overview.LastRunAt) {
				overview.LastRunAt = run.StartedAt
			}
		}
	}

	return overview, nil
}
