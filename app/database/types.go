package database

import (
	"time"
)

// Idea workflow statuses. New records always enter as pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxTags is the upper bound on the tags list of a stored idea.
const MaxTags = 20

// Idea represents a curated business-concept record under evaluation
// for the Korean market.
type Idea struct {
	ID        string // Database UUID
	SourceURL string // Canonicalized source URL, natural dedup key

	// Descriptive attributes
	Title         string
	Summary       string
	Sector        string
	TargetUser    string
	BusinessModel string
	Tags          []string
	Badges        []string
	UseCases      []string
	TechStack     []string

	// Derived attributes, owned by the enrichment pipeline
	KoreaFit *float64 // 0-10
	Metrics  *Metrics
	Trend    *TrendData
	Roadmap  []RoadmapStep

	// Workflow attributes
	Status      string
	AdminReview string
	VotesUp     int
	VotesDown   int

	UploadedAt time.Time
	UpdatedAt  time.Time
	CreatedAt  time.Time
}

// Metrics is the per-idea scoring breakdown, each component in [0,10].
type Metrics struct {
	MarketOpportunity   float64 `json:"marketOpportunity"`
	ExecutionDifficulty float64 `json:"executionDifficulty"`
	RevenuePotential    float64 `json:"revenuePotential"`
	TimingScore         float64 `json:"timingScore"`
	RegulatoryRisk      float64 `json:"regulatoryRisk"`
}

// TrendData is the persisted projection of a trend analysis pass.
type TrendData struct {
	Keyword      string    `json:"keyword"`
	Growth       string    `json:"growth"`
	SearchVolume string    `json:"searchVolume"`
	TrendScore   float64   `json:"trendScore"` // 0-100
	UpdatedAt    time.Time `json:"lastUpdated"`
}

// Roadmap step categories, in canonical phase order.
const (
	PhaseValidation  = "Validation"
	PhaseLegal       = "Legal"
	PhasePartnership = "Partnership"
	PhaseTechnical   = "Technical"
	PhaseMarketing   = "Marketing"
	PhaseFunding     = "Funding"
)

// RoadmapStep is a single step of an idea's execution roadmap.
// Ordering within the roadmap is meaningful: earlier steps are
// logical prerequisites for later ones.
type RoadmapStep struct {
	Title     string `json:"title"`
	Category  string `json:"category"`
	Timeframe string `json:"timeframe"`
	Priority  string `json:"priority"` // high, medium, low
}

// IdeaFilter narrows idea listings. Zero values mean no constraint.
type IdeaFilter struct {
	Status string
	Sector string
	Limit  int
}
