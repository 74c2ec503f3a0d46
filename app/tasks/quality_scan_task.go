package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/ideas"
)

// QualityScanTask runs the content quality rules over the whole
// collection and logs the aggregate. Observability only: it never
// mutates records.
type QualityScanTask struct {
	Task
	ideaRepo database.IdeaRepository
	monitor  *ideas.QualityMonitor
}

func NewQualityScanTask(ideaRepo database.IdeaRepository, monitor *ideas.QualityMonitor) *QualityScanTask {
	return &QualityScanTask{
		Task:     NewTask(TaskTypeQualityScan, "all"),
		ideaRepo: ideaRepo,
		monitor:  monitor,
	}
}

func (t *QualityScanTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	all, err := t.ideaRepo.ListIdeas(database.IdeaFilter{})
	if err != nil {
		return fmt.Errorf("failed to list ideas: %w", err)
	}

	_, summary := t.monitor.Validate(all)

	slog.Info("Task completed",
		"type", "QualityScan",
		"duration", t.GetDuration(),
		"total", summary.Total,
		"valid", summary.Valid,
		"errors", summary.ErrorCount,
		"warnings", summary.WarningCount)

	return nil
}
