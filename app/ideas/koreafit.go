package ideas

import (
	"math"
	"sort"
	"strings"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// Factor weights of the Korea-Fit aggregate. Fixed constants; the
// weighted mean of factors in [0,10] stays in [0,10].
const (
	weightMarketReadiness        = 0.25
	weightBusinessInfrastructure = 0.20
	weightCulturalAlignment      = 0.20
	weightRegulatoryFriendliness = 0.20
	weightCompetitionIntensity   = 0.15
)

// KoreaFitAnalyzer scores how well an idea suits Korean market
// conditions. Pure and deterministic: same idea attributes, same result.
type KoreaFitAnalyzer struct{}

func NewKoreaFitAnalyzer() *KoreaFitAnalyzer {
	return &KoreaFitAnalyzer{}
}

func (a *KoreaFitAnalyzer) Run(idea database.Idea) KoreaFitResult {
	factors := KoreaFitFactors{
		MarketReadiness:        a.marketReadiness(idea),
		BusinessInfrastructure: a.businessInfrastructure(idea),
		CulturalAlignment:      a.culturalAlignment(idea),
		RegulatoryFriendliness: a.regulatoryFriendliness(idea),
		CompetitionIntensity:   a.competitionIntensity(idea),
	}

	score := factors.MarketReadiness*weightMarketReadiness +
		factors.BusinessInfrastructure*weightBusinessInfrastructure +
		factors.CulturalAlignment*weightCulturalAlignment +
		factors.RegulatoryFriendliness*weightRegulatoryFriendliness +
		factors.CompetitionIntensity*weightCompetitionIntensity

	return KoreaFitResult{
		Score:           round1(clamp(score, 0, 10)),
		Factors:         factors,
		Recommendations: a.recommendations(factors),
	}
}

// marketReadiness estimates demand maturity for the idea's segment.
func (a *KoreaFitAnalyzer) marketReadiness(idea database.Idea) float64 {
	if idea.Sector == "" && idea.BusinessModel == "" {
		return neutralFactor
	}

	text := fieldText(idea.Sector, idea.BusinessModel)
	score := neutralFactor

	score += matchBoost(text, 2.5, "ecommerce", "e-commerce", "commerce", "retail", "delivery")
	score += matchBoost(text, 2.0, "saas", "software", "ai", "fintech", "gaming")
	score += matchBoost(text, 1.5, "education", "edtech", "beauty", "entertainment")
	score += matchBoost(text, -1.5, "agriculture", "mining", "timeshare")
	score += matchBoost(text, 0.5, "subscription", "marketplace")

	return clamp(score, 0, 10)
}

// businessInfrastructure estimates how well Korea's commercial and
// technical infrastructure supports execution.
func (a *KoreaFitAnalyzer) businessInfrastructure(idea database.Idea) float64 {
	if idea.Sector == "" && len(idea.TechStack) == 0 {
		return neutralFactor
	}

	text := fieldText(append([]string{idea.Sector, idea.BusinessModel}, idea.TechStack...)...)
	score := neutralFactor

	score += matchBoost(text, 1.0, "mobile", "app")
	score += matchBoost(text, 1.0, "cloud", "api", "web")
	score += matchBoost(text, 1.0, "payments", "logistics")
	score += matchBoost(text, -1.5, "hardware", "manufacturing", "factory")
	score += matchBoost(text, -1.0, "cold chain", "warehousing")

	return clamp(score, 0, 10)
}

// culturalAlignment estimates fit with Korean consumer behavior.
func (a *KoreaFitAnalyzer) culturalAlignment(idea database.Idea) float64 {
	parts := append([]string{idea.Title, idea.Summary, idea.TargetUser}, idea.Tags...)
	parts = append(parts, idea.UseCases...)
	text := fieldText(parts...)
	if strings.TrimSpace(text) == "" {
		return neutralFactor
	}

	score := neutralFactor

	score += matchBoost(text, 1.5, "mobile", "community", "social")
	score += matchBoost(text, 1.0, "convenience", "delivery", "fast")
	score += matchBoost(text, 1.0, "beauty", "food", "gaming", "education")
	score += matchBoost(text, -1.5, "tipping", "diy", "garage")
	score += matchBoost(text, -1.0, "suburban", "lawn")

	return clamp(score, 0, 10)
}

// regulatoryFriendliness estimates licensing and compliance drag.
// Regulated verticals score low; plain software scores high.
func (a *KoreaFitAnalyzer) regulatoryFriendliness(idea database.Idea) float64 {
	if idea.Sector == "" && idea.BusinessModel == "" {
		return neutralFactor
	}

	text := fieldText(idea.Sector, idea.BusinessModel, idea.Summary)
	score := neutralFactor

	score += matchBoost(text, 1.5, "saas", "software", "content", "education")
	score += matchBoost(text, -2.5, "fintech", "lending", "insurance")
	score += matchBoost(text, -3.0, "healthcare", "medical", "pharma")
	score += matchBoost(text, -3.5, "crypto", "blockchain")
	score += matchBoost(text, -2.5, "mobility", "ridesharing", "ride-hailing")
	score += matchBoost(text, -4.5, "gambling")

	return clamp(score, 0, 10)
}

// competitionIntensity scores headroom: high means the segment is not
// already saturated by domestic incumbents.
func (a *KoreaFitAnalyzer) competitionIntensity(idea database.Idea) float64 {
	if idea.Sector == "" && len(idea.Tags) == 0 {
		return neutralFactor
	}

	text := fieldText(append([]string{idea.Sector, idea.BusinessModel}, idea.Tags...)...)
	score := neutralFactor

	score += matchBoost(text, -2.0, "ecommerce", "e-commerce", "delivery", "chat", "messenger", "social")
	score += matchBoost(text, -1.0, "food", "grocery")
	score += matchBoost(text, 2.0, "b2b", "deeptech", "climate", "robotics")
	score += matchBoost(text, 1.0, "niche", "vertical")

	return clamp(score, 0, 10)
}

type factorScore struct {
	name   string
	value  float64
	advice string
}

// recommendations returns short advisories ranked by which factor most
// depresses the aggregate, lowest factor first.
func (a *KoreaFitAnalyzer) recommendations(factors KoreaFitFactors) []string {
	scores := []factorScore{
		{"marketReadiness", factors.MarketReadiness,
			"Validate demand with a focused pilot before committing to the segment"},
		{"businessInfrastructure", factors.BusinessInfrastructure,
			"Plan for local infrastructure gaps: payments, logistics, and hosting partners"},
		{"culturalAlignment", factors.CulturalAlignment,
			"Localize the product beyond translation; adapt to Korean consumer habits"},
		{"regulatoryFriendliness", factors.RegulatoryFriendliness,
			"Engage local regulatory counsel early; licensing is likely on the critical path"},
		{"competitionIntensity", factors.CompetitionIntensity,
			"Differentiate sharply; domestic incumbents dominate this segment"},
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].value < scores[j].value
	})

	var recs []string
	for _, s := range scores {
		if s.value < 6.0 {
			recs = append(recs, s.advice)
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Strong Korea fit across all factors; prioritize speed to market")
	}

	return recs
}

// MetricsFromKoreaFit projects a Korea-Fit result into the persisted
// metrics breakdown. The timing score is owned by trend analysis and
// carried over from prior, defaulting to neutral.
func MetricsFromKoreaFit(result KoreaFitResult, prior *database.Metrics) *database.Metrics {
	timing := neutralFactor
	if prior != nil {
		timing = prior.TimingScore
	}

	return &database.Metrics{
		MarketOpportunity:   round1(clamp(result.Factors.MarketReadiness, 0, 10)),
		ExecutionDifficulty: round1(clamp(10-result.Factors.BusinessInfrastructure, 0, 10)),
		RevenuePotential:    round1(clamp((result.Factors.MarketReadiness+result.Factors.CulturalAlignment)/2, 0, 10)),
		TimingScore:         round1(clamp(timing, 0, 10)),
		RegulatoryRisk:      round1(clamp(10-result.Factors.RegulatoryFriendliness, 0, 10)),
	}
}

func fieldText(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

// matchBoost applies the adjustment once if any keyword matches.
func matchBoost(text string, boost float64, keywords ...string) float64 {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return boost
		}
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
