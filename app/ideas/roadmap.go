package ideas

import (
	"sort"
	"strings"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// phaseOrder is the canonical roadmap phase sequence. It never varies
// with idea content.
var phaseOrder = []string{
	database.PhaseValidation,
	database.PhaseLegal,
	database.PhasePartnership,
	database.PhaseTechnical,
	database.PhaseMarketing,
	database.PhaseFunding,
}

// maxStepsPerPhase bounds roadmap length to 3 steps per phase
// (18 steps total).
const maxStepsPerPhase = 3

// RoadmapGenerator produces a phased execution plan from idea
// attributes. Pure and idempotent: regenerating from unchanged
// attributes yields an identical ordered sequence.
type RoadmapGenerator struct{}

func NewRoadmapGenerator() *RoadmapGenerator {
	return &RoadmapGenerator{}
}

func (g *RoadmapGenerator) Run(idea database.Idea) []database.RoadmapStep {
	byPhase := make(map[string][]database.RoadmapStep, len(phaseOrder))

	for _, step := range baseSteps {
		byPhase[step.Category] = append(byPhase[step.Category], step)
	}

	text := fieldText(idea.Sector, idea.BusinessModel)
	for _, extra := range sectorSteps {
		if matchBoost(text, 1, extra.keywords...) != 0 {
			byPhase[extra.step.Category] = append(byPhase[extra.step.Category], extra.step)
		}
	}

	var roadmap []database.RoadmapStep
	for _, phase := range phaseOrder {
		steps := byPhase[phase]

		// Priority high to medium to low; ties keep insertion order.
		sort.SliceStable(steps, func(i, j int) bool {
			return priorityRank(steps[i].Priority) > priorityRank(steps[j].Priority)
		})

		if len(steps) > maxStepsPerPhase {
			steps = steps[:maxStepsPerPhase]
		}

		roadmap = append(roadmap, steps...)
	}

	return roadmap
}

func priorityRank(priority string) int {
	switch strings.ToLower(priority) {
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	default:
		return 0
	}
}

// baseSteps apply to every idea regardless of sector, one or more per
// phase, so a roadmap always covers all six phases.
var baseSteps = []database.RoadmapStep{
	{Title: "Customer discovery interviews with the target segment", Category: database.PhaseValidation, Timeframe: "Weeks 1-4", Priority: "high"},
	{Title: "Landing-page smoke test with Korean copy", Category: database.PhaseValidation, Timeframe: "Weeks 2-6", Priority: "medium"},
	{Title: "Business registration and baseline compliance review", Category: database.PhaseLegal, Timeframe: "Month 1", Priority: "high"},
	{Title: "Identify local distribution and channel partners", Category: database.PhasePartnership, Timeframe: "Months 2-3", Priority: "medium"},
	{Title: "Build a Korean-localized MVP", Category: database.PhaseTechnical, Timeframe: "Months 2-4", Priority: "high"},
	{Title: "Establish Naver and Kakao channel presence", Category: database.PhaseMarketing, Timeframe: "Months 3-5", Priority: "medium"},
	{Title: "Apply for government startup programs (TIPS) or raise seed", Category: database.PhaseFunding, Timeframe: "Months 4-6", Priority: "medium"},
}

type sectorStep struct {
	keywords []string
	step     database.RoadmapStep
}

// sectorSteps are added when the idea's sector or business model
// matches; evaluation order is fixed so output stays deterministic.
var sectorSteps = []sectorStep{
	{
		keywords: []string{"fintech", "lending", "insurance", "payments"},
		step:     database.RoadmapStep{Title: "Financial services licensing assessment (FSC)", Category: database.PhaseLegal, Timeframe: "Months 1-3", Priority: "high"},
	},
	{
		keywords: []string{"healthcare", "medical", "pharma"},
		step:     database.RoadmapStep{Title: "Medical device and telehealth regulation review (MFDS)", Category: database.PhaseLegal, Timeframe: "Months 1-4", Priority: "high"},
	},
	{
		keywords: []string{"ecommerce", "e-commerce", "commerce", "retail"},
		step:     database.RoadmapStep{Title: "Integrate domestic logistics and 3PL fulfillment", Category: database.PhasePartnership, Timeframe: "Months 2-4", Priority: "high"},
	},
	{
		keywords: []string{"ecommerce", "e-commerce", "commerce", "marketplace"},
		step:     database.RoadmapStep{Title: "Integrate KakaoPay, Naver Pay, and Toss checkout", Category: database.PhaseTechnical, Timeframe: "Months 2-3", Priority: "high"},
	},
	{
		keywords: []string{"saas", "b2b"},
		step:     database.RoadmapStep{Title: "Pilot agreements with two to three enterprise design partners", Category: database.PhaseValidation, Timeframe: "Months 1-3", Priority: "high"},
	},
	{
		keywords: []string{"subscription", "content", "media"},
		step:     database.RoadmapStep{Title: "Retention and churn instrumentation before paid acquisition", Category: database.PhaseMarketing, Timeframe: "Months 3-4", Priority: "high"},
	},
	{
		keywords: []string{"ai", "deeptech", "robotics"},
		step:     database.RoadmapStep{Title: "Evaluate deep-tech R&D grants and matching funds", Category: database.PhaseFunding, Timeframe: "Months 2-5", Priority: "high"},
	},
}
