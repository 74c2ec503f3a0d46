package trends

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// Degraded fallback signal used when the external source is
// unavailable: neutral volume and growth, medium competition.
const (
	fallbackSearchVolume = 1000
	fallbackGrowthRate   = 0.0
)

// maxKeywordLen bounds the derived lookup keyword.
const maxKeywordLen = 64

// Analyzer computes a market-trend score for an idea's derived keyword.
type Analyzer struct {
	source SignalSource
}

func NewAnalyzer(source SignalSource) *Analyzer {
	return &Analyzer{source: source}
}

// Run resolves the idea's keyword signal and scores it. A source
// failure or timeout is not an error: the analyzer falls back to the
// degraded estimate and flags the result. The only hard failure is
// caller cancellation.
func (a *Analyzer) Run(ctx context.Context, idea database.Idea) (AnalysisResult, error) {
	keyword := DeriveKeyword(idea)

	signal, err := a.source.Lookup(ctx, keyword)
	degraded := false
	if err != nil {
		if ctx.Err() != nil {
			return AnalysisResult{}, ctx.Err()
		}

		slog.Debug("Keyword signal lookup failed, using degraded estimate", "keyword", keyword, "error", err)
		signal = Signal{
			Keyword:          keyword,
			SearchVolume:     fallbackSearchVolume,
			GrowthRate:       fallbackGrowthRate,
			CompetitionLevel: CompetitionMedium,
		}
		degraded = true
	}

	return AnalysisResult{
		Keyword:      keyword,
		Signal:       signal,
		TrendScore:   Score(signal),
		Growth:       FormatGrowth(signal.GrowthRate),
		SearchVolume: FormatVolume(signal.SearchVolume),
		Degraded:     degraded,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

// Score maps a signal to [0,100]. Monotonic in log-scaled search volume
// and in growth rate (clamped to ±30 points), suppressed by competition.
func Score(signal Signal) float64 {
	volumeTerm := 8 * math.Log10(1+float64(max64(signal.SearchVolume, 0)))
	growthTerm := clampF(0.3*signal.GrowthRate, -30, 30)

	raw := volumeTerm + growthTerm

	switch strings.ToLower(signal.CompetitionLevel) {
	case CompetitionLow:
		// no suppression
	case CompetitionHigh:
		raw *= 0.7
	default:
		raw *= 0.85
	}

	return math.Round(clampF(raw, 0, 100)*10) / 10
}

var keywordCaser = cases.Lower(language.Korean)

// DeriveKeyword builds the lookup keyword from the idea's title,
// falling back to its sector. NFC-normalized and lowercased so the
// lookup is stable across submissions of the same idea.
func DeriveKeyword(idea database.Idea) string {
	keyword := strings.TrimSpace(norm.NFC.String(idea.Title))
	if keyword == "" {
		keyword = strings.TrimSpace(norm.NFC.String(idea.Sector))
	}

	keyword = keywordCaser.String(keyword)
	keyword = strings.Join(strings.Fields(keyword), " ")

	if runes := []rune(keyword); len(runes) > maxKeywordLen {
		keyword = strings.TrimSpace(string(runes[:maxKeywordLen]))
	}

	return keyword
}

// FormatVolume renders a raw search volume the way listings display it.
func FormatVolume(volume int64) string {
	switch {
	case volume >= 1_000_000:
		return trimZero(fmt.Sprintf("%.1fM", float64(volume)/1_000_000))
	case volume >= 1_000:
		return trimZero(fmt.Sprintf("%.1fK", float64(volume)/1_000))
	default:
		return fmt.Sprintf("%d", volume)
	}
}

// FormatGrowth renders a growth rate with an explicit sign.
func FormatGrowth(rate float64) string {
	return trimZero(fmt.Sprintf("%+.1f%%", rate))
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
