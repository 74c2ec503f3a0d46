package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideaoasis/ideaoasis/app/ideas"
)

type EnrichAllTask struct {
	Task
	enricher *ideas.Enricher
}

func NewEnrichAllTask(enricher *ideas.Enricher) *EnrichAllTask {
	return &EnrichAllTask{
		Task:     NewTask(TaskTypeEnrichAll, "all"),
		enricher: enricher,
	}
}

func (t *EnrichAllTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	summaries, err := t.enricher.EnrichAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to enrich all ideas: %w", err)
	}

	succeeded := 0
	degraded := 0
	failed := 0
	for _, summary := range summaries {
		switch {
		case !summary.OK:
			failed++
		case summary.Degraded:
			degraded++
		default:
			succeeded++
		}
	}

	slog.Info("Task completed",
		"type", "EnrichAll",
		"duration", t.GetDuration(),
		"total", len(summaries),
		"succeeded", succeeded,
		"degraded", degraded,
		"failed", failed)

	return nil
}
