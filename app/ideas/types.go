package ideas

import (
	"time"
)

// Enrichment features. Unrequested features leave the corresponding
// idea fields untouched.
type Feature string

const (
	FeatureKoreaFit Feature = "koreaFit"
	FeatureTrend    Feature = "trendAnalysis"
	FeatureRoadmap  Feature = "roadmap"
)

// DefaultFeatures is the feature set applied when a caller does not
// select features explicitly.
var DefaultFeatures = []Feature{FeatureKoreaFit, FeatureTrend, FeatureRoadmap}

// KoreaFitResult is the outcome of a Korea-Fit analysis pass. It is
// ephemeral: the orchestrator projects it into Idea.KoreaFit and
// Idea.Metrics.
type KoreaFitResult struct {
	Score           float64
	Factors         KoreaFitFactors
	Recommendations []string
}

// KoreaFitFactors is the per-factor breakdown, each component in [0,10].
type KoreaFitFactors struct {
	MarketReadiness        float64
	BusinessInfrastructure float64
	CulturalAlignment      float64
	RegulatoryFriendliness float64
	CompetitionIntensity   float64
}

// EnrichmentDetail describes what a single enrichment pass computed.
type EnrichmentDetail struct {
	Features        []Feature       `json:"features"`
	KoreaFit        *KoreaFitResult `json:"koreaFit,omitempty"`
	TrendDegraded   bool            `json:"trendDegraded,omitempty"`
	RoadmapStepsLen int             `json:"roadmapSteps,omitempty"`
	EnrichedAt      time.Time       `json:"enrichedAt"`
}

// EnrichmentSummary is the per-idea outcome of a batch enrichment run.
type EnrichmentSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	OK       bool   `json:"ok"`
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Candidate is a raw incoming idea record prior to normalization.
type Candidate struct {
	SourceURL     string     `json:"sourceUrl"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary,omitempty"`
	Sector        string     `json:"sector,omitempty"`
	TargetUser    string     `json:"targetUser,omitempty"`
	BusinessModel string     `json:"businessModel,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	UploadedAt    *time.Time `json:"uploadedAt,omitempty"`
}

// Ingestion actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// Outcome is the per-candidate result of a batch ingestion.
type Outcome struct {
	OK        bool   `json:"ok"`
	Action    string `json:"action,omitempty"`
	ID        string `json:"id,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchSummary aggregates a batch ingestion run.
type BatchSummary struct {
	Received int `json:"received"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// Quality issue severities. Errors block downstream batch writes,
// warnings are informational.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// QualityIssue is a single rule violation on an idea record.
type QualityIssue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// QualityReport is the validation outcome for one idea.
type QualityReport struct {
	IdeaID string         `json:"ideaId"`
	Title  string         `json:"title"`
	Valid  bool           `json:"valid"`
	Issues []QualityIssue `json:"issues,omitempty"`
}

// QualitySummary aggregates validation over a batch of ideas.
type QualitySummary struct {
	Total        int `json:"total"`
	Valid        int `json:"valid"`
	ErrorCount   int `json:"errors"`
	WarningCount int `json:"warnings"`
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// neutralFactor is the contribution of a missing optional attribute:
// mid-scale, so absent data never skews a score.
const neutralFactor = 5.0
