package trends

import (
	"time"
)

// Competition levels reported by the keyword-signal source.
const (
	CompetitionLow    = "low"
	CompetitionMedium = "medium"
	CompetitionHigh   = "high"
)

// Signal is a raw keyword market signal from the external source.
type Signal struct {
	Keyword          string   `json:"keyword"`
	SearchVolume     int64    `json:"search_volume"`
	GrowthRate       float64  `json:"growth_rate"` // percent, negative means decline
	CompetitionLevel string   `json:"competition_level"`
	RelatedKeywords  []string `json:"related_keywords"`
}

// AnalysisResult is the outcome of one trend analysis pass. Ephemeral;
// the orchestrator projects it into the idea's trend data.
type AnalysisResult struct {
	Keyword      string
	Signal       Signal
	TrendScore   float64 // 0-100
	Growth       string  // formatted, e.g. "+12.5%"
	SearchVolume string  // formatted, e.g. "12.5K"
	Degraded     bool    // true when the fallback estimate was used
	RetrievedAt  time.Time
}
