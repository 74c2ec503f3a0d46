package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ideaoasis/ideaoasis/app/ideas"
)

type EnrichIdeaTask struct {
	Task
	enricher *ideas.Enricher
}

func NewEnrichIdeaTask(ideaID string, enricher *ideas.Enricher) *EnrichIdeaTask {
	return &EnrichIdeaTask{
		Task:     NewTask(TaskTypeEnrichIdea, ideaID),
		enricher: enricher,
	}
}

func (t *EnrichIdeaTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	idea, detail, err := t.enricher.EnrichOne(ctx, t.Subject, nil)
	if err != nil {
		// Another trigger won the race; the idea is being handled.
		if errors.Is(err, ideas.ErrEnrichmentInFlight) {
			slog.Debug("Enrichment already in flight, skipping", "idea", t.Subject)
			return nil
		}
		if errors.Is(err, ideas.ErrIdeaNotFound) {
			slog.Warn("Idea vanished before enrichment", "idea", t.Subject)
			return nil
		}
		return fmt.Errorf("failed to enrich idea: %w", err)
	}

	slog.Info("Task completed",
		"type", "EnrichIdea",
		"idea", t.Subject,
		"title", idea.Title,
		"duration", t.GetDuration(),
		"korea_fit", formatScore(idea.KoreaFit),
		"degraded", detail.TrendDegraded)

	return nil
}

func formatScore(score *float64) float64 {
	if score == nil {
		return 0
	}
	return *score
}
