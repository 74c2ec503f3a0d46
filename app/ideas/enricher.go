package ideas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/trends"
)

var (
	ErrIdeaNotFound       = errors.New("idea not found")
	ErrEnrichmentInFlight = errors.New("enrichment already in flight for this idea")
)

// TrendAnalyzer resolves an idea's keyword signal and scores it.
type TrendAnalyzer interface {
	Run(ctx context.Context, idea database.Idea) (trends.AnalysisResult, error)
}

var _ TrendAnalyzer = (*trends.Analyzer)(nil)

// Enricher composes the analyzers per idea and writes the merged
// result back through the repository: read, compute, then a single
// terminal write, so no partially enriched state is ever visible.
type Enricher struct {
	repo     database.IdeaRepository
	koreaFit *KoreaFitAnalyzer
	trends   TrendAnalyzer
	roadmap  *RoadmapGenerator

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewEnricher(repo database.IdeaRepository, koreaFit *KoreaFitAnalyzer,
	trendAnalyzer TrendAnalyzer, roadmap *RoadmapGenerator) *Enricher {
	return &Enricher{
		repo:     repo,
		koreaFit: koreaFit,
		trends:   trendAnalyzer,
		roadmap:  roadmap,
		inflight: make(map[string]struct{}),
	}
}

// EnrichOne enriches a single idea with the requested features
// (DefaultFeatures when none are given). Unrequested features leave
// the corresponding fields untouched. At most one enrichment per idea
// id runs at a time; concurrent triggers get ErrEnrichmentInFlight.
func (e *Enricher) EnrichOne(ctx context.Context, id string, features []Feature) (*database.Idea, *EnrichmentDetail, error) {
	requested, err := normalizeFeatures(features)
	if err != nil {
		return nil, nil, err
	}

	if !e.acquire(id) {
		return nil, nil, ErrEnrichmentInFlight
	}
	defer e.release(id)

	idea, err := e.repo.GetIdea(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load idea: %w", err)
	}
	if idea == nil {
		return nil, nil, ErrIdeaNotFound
	}

	working := *idea
	detail := &EnrichmentDetail{Features: requested}

	// Features run in canonical order so the Korea-Fit metrics exist
	// before trend analysis refreshes the timing score.
	for _, feature := range requested {
		switch feature {
		case FeatureKoreaFit:
			result := e.koreaFit.Run(working)
			score := result.Score
			working.KoreaFit = &score
			working.Metrics = MetricsFromKoreaFit(result, working.Metrics)
			detail.KoreaFit = &result

		case FeatureTrend:
			result, err := e.trends.Run(ctx, working)
			if err != nil {
				return nil, nil, fmt.Errorf("trend analysis failed: %w", err)
			}
			working.Trend = &database.TrendData{
				Keyword:      result.Keyword,
				Growth:       result.Growth,
				SearchVolume: result.SearchVolume,
				TrendScore:   result.TrendScore,
				UpdatedAt:    result.RetrievedAt,
			}
			if working.Metrics != nil {
				metrics := *working.Metrics
				metrics.TimingScore = round1(clamp(result.TrendScore/10, 0, 10))
				working.Metrics = &metrics
			}
			detail.TrendDegraded = result.Degraded

		case FeatureRoadmap:
			working.Roadmap = e.roadmap.Run(working)
			detail.RoadmapStepsLen = len(working.Roadmap)
		}
	}

	detail.EnrichedAt = time.Now().UTC()
	working.UpdatedAt = detail.EnrichedAt

	if err := e.repo.UpdateIdea(&working); err != nil {
		return nil, nil, fmt.Errorf("failed to persist enriched idea: %w", err)
	}

	return &working, detail, nil
}

// EnrichAll enriches every stored idea with the default features.
// Result order matches the repository's stable listing order, and a
// failing idea never aborts the rest of the batch.
func (e *Enricher) EnrichAll(ctx context.Context) ([]EnrichmentSummary, error) {
	ideas, err := e.repo.ListIdeas(database.IdeaFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}

	summaries := make([]EnrichmentSummary, 0, len(ideas))
	for _, idea := range ideas {
		summary := EnrichmentSummary{ID: idea.ID, Title: idea.Title}

		_, detail, err := e.EnrichOne(ctx, idea.ID, nil)
		if err != nil {
			summary.Error = err.Error()
			slog.Warn("Idea enrichment failed", "idea", idea.ID, "error", err)
		} else {
			summary.OK = true
			summary.Degraded = detail.TrendDegraded
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (e *Enricher) acquire(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[id]; busy {
		return false
	}
	e.inflight[id] = struct{}{}
	return true
}

func (e *Enricher) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, id)
}

// normalizeFeatures validates and orders the requested features into
// the canonical processing order, defaulting when empty.
func normalizeFeatures(features []Feature) ([]Feature, error) {
	if len(features) == 0 {
		return DefaultFeatures, nil
	}

	requested := make(map[Feature]bool, len(features))
	for _, f := range features {
		switch f {
		case FeatureKoreaFit, FeatureTrend, FeatureRoadmap:
			requested[f] = true
		default:
			return nil, fmt.Errorf("unknown enrichment feature: %q", f)
		}
	}

	var ordered []Feature
	for _, f := range DefaultFeatures {
		if requested[f] {
			ordered = append(ordered, f)
		}
	}

	return ordered, nil
}
