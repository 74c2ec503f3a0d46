package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideaoasis/ideaoasis/app/ideas"
	"github.com/ideaoasis/ideaoasis/app/sources"
)

type FetchSourceTask struct {
	Task
	SourceConfig *sources.Config
	fetcher      *sources.Fetcher
	normalizer   *ideas.Normalizer
}

func NewFetchSourceTask(config *sources.Config, fetcher *sources.Fetcher, normalizer *ideas.Normalizer) *FetchSourceTask {
	return &FetchSourceTask{
		Task:         NewTask(TaskTypeFetchSource, config.Name),
		SourceConfig: config,
		fetcher:      fetcher,
		normalizer:   normalizer,
	}
}

func (t *FetchSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.SourceConfig.Settings.Enabled {
		slog.Debug("Source disabled, skipping", "source", t.Subject)
		return nil
	}

	candidates, err := t.fetcher.Run(ctx, t.SourceConfig)
	if err != nil {
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	_, summary := t.normalizer.IngestBatch(candidates)

	slog.Info("Task completed",
		"type", "FetchSource",
		"source", t.Subject,
		"duration", t.GetDuration(),
		"candidates", summary.Received,
		"created", summary.Created,
		"updated", summary.Updated,
		"failed", summary.Failed)

	return nil
}
