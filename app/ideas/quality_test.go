package ideas

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ideaoasis/ideaoasis/app/database"
)

func validIdea() database.Idea {
	return database.Idea{
		ID:        "idea-1",
		SourceURL: "https://example.com/posts/1",
		Title:     "AI tutoring platform",
		Summary:   "Personalized education for students",
		Sector:    "edtech",
		Status:    database.StatusPending,
	}
}

func TestQualityMonitor_Validate_ValidIdea(t *testing.T) {
	monitor := NewQualityMonitor()

	reports, summary := monitor.Validate([]database.Idea{validIdea()})

	if len(reports) != 1 {
		t.Fatalf("Expected 1 report, got %d", len(reports))
	}
	if !reports[0].Valid {
		t.Errorf("Expected valid report, got issues: %+v", reports[0].Issues)
	}
	if summary.Valid != 1 || summary.ErrorCount != 0 {
		t.Errorf("Expected summary with 1 valid and 0 errors, got %+v", summary)
	}
}

func TestQualityMonitor_Validate_MissingRequiredFields(t *testing.T) {
	monitor := NewQualityMonitor()

	reports, summary := monitor.Validate([]database.Idea{{Status: database.StatusPending}})

	if reports[0].Valid {
		t.Error("Expected idea without title and source URL to be invalid")
	}
	if summary.ErrorCount < 2 {
		t.Errorf("Expected at least 2 errors (title, sourceUrl), got %d", summary.ErrorCount)
	}

	fields := make(map[string]bool)
	for _, issue := range reports[0].Issues {
		if issue.Severity == SeverityError {
			fields[issue.Field] = true
		}
	}
	if !fields["title"] || !fields["sourceUrl"] {
		t.Errorf("Expected errors on title and sourceUrl, got fields: %v", fields)
	}
}

func TestQualityMonitor_Validate_EmptySummaryIsWarning(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := validIdea()
	idea.Summary = ""

	reports, summary := monitor.Validate([]database.Idea{idea})

	if !reports[0].Valid {
		t.Error("Warnings alone should not make an idea invalid")
	}
	if summary.WarningCount == 0 {
		t.Error("Expected a warning for the empty summary")
	}
}

func TestQualityMonitor_Validate_MetricIssuesInStableOrder(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := validIdea()
	idea.Metrics = &database.Metrics{
		MarketOpportunity:   -1,
		ExecutionDifficulty: 11,
		RevenuePotential:    -3,
		TimingScore:         12,
		RegulatoryRisk:      99,
	}

	want := []string{
		"metrics.marketOpportunity",
		"metrics.executionDifficulty",
		"metrics.revenuePotential",
		"metrics.timingScore",
		"metrics.regulatoryRisk",
	}

	// Reports feed the quality-check endpoint, so issue order must be
	// stable across runs.
	for run := 0; run < 3; run++ {
		reports, _ := monitor.Validate([]database.Idea{idea})

		var fields []string
		for _, issue := range reports[0].Issues {
			if strings.HasPrefix(issue.Field, "metrics.") {
				fields = append(fields, issue.Field)
			}
		}

		if len(fields) != len(want) {
			t.Fatalf("Expected %d metric issues, got %v", len(want), fields)
		}
		for i := range want {
			if fields[i] != want[i] {
				t.Fatalf("Run %d: expected metric issues %v, got %v", run, want, fields)
			}
		}
	}
}

func TestQualityMonitor_Validate_TrendScoreWithoutKeyword(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := validIdea()
	idea.Trend = &database.TrendData{TrendScore: 42.0}

	reports, _ := monitor.Validate([]database.Idea{idea})

	if reports[0].Valid {
		t.Error("Trend data without a keyword should be an error")
	}
}

func TestQualityMonitor_AutoFix_TruncatesTags(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := validIdea()
	for i := 0; i < 25; i++ {
		idea.Tags = append(idea.Tags, fmt.Sprintf("tag-%d", i))
	}

	reports, _ := monitor.Validate([]database.Idea{idea})
	if reports[0].Valid {
		t.Fatal("Expected 25 tags to be flagged before auto-fix")
	}

	fixed, changed := monitor.AutoFix(idea)
	if !changed {
		t.Error("Expected AutoFix to report a change")
	}
	if len(fixed.Tags) != database.MaxTags {
		t.Errorf("Expected tags truncated to %d, got %d", database.MaxTags, len(fixed.Tags))
	}

	reports, _ = monitor.Validate([]database.Idea{fixed})
	if !reports[0].Valid {
		t.Errorf("Expected fixed idea to validate, got issues: %+v", reports[0].Issues)
	}
}

func TestQualityMonitor_AutoFix_ClampsNumerics(t *testing.T) {
	monitor := NewQualityMonitor()

	koreaFit := 12.5
	idea := validIdea()
	idea.KoreaFit = &koreaFit
	idea.Metrics = &database.Metrics{MarketOpportunity: -2.0, TimingScore: 11.0}
	idea.Trend = &database.TrendData{Keyword: "ai tutoring", TrendScore: 140.0}

	fixed, changed := monitor.AutoFix(idea)

	if !changed {
		t.Error("Expected AutoFix to report a change")
	}
	if *fixed.KoreaFit != 10.0 {
		t.Errorf("Expected koreaFit clamped to 10.0, got %v", *fixed.KoreaFit)
	}
	if fixed.Metrics.MarketOpportunity != 0.0 {
		t.Errorf("Expected market opportunity clamped to 0.0, got %v", fixed.Metrics.MarketOpportunity)
	}
	if fixed.Metrics.TimingScore != 10.0 {
		t.Errorf("Expected timing score clamped to 10.0, got %v", fixed.Metrics.TimingScore)
	}
	if fixed.Trend.TrendScore != 100.0 {
		t.Errorf("Expected trend score clamped to 100.0, got %v", fixed.Trend.TrendScore)
	}

	// The original must not be mutated.
	if *idea.KoreaFit != 12.5 || idea.Metrics.MarketOpportunity != -2.0 || idea.Trend.TrendScore != 140.0 {
		t.Error("AutoFix mutated its input")
	}
}

func TestQualityMonitor_AutoFix_FillsEmptySummary(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := validIdea()
	idea.Summary = "  "

	fixed, changed := monitor.AutoFix(idea)

	if !changed {
		t.Error("Expected AutoFix to report a change")
	}
	if fixed.Summary != placeholderSummary {
		t.Errorf("Expected placeholder summary, got %q", fixed.Summary)
	}
}

func TestQualityMonitor_AutoFix_LeavesUnrepairableDefects(t *testing.T) {
	monitor := NewQualityMonitor()

	idea := database.Idea{ID: "idea-2", Status: "published"}

	fixed, _ := monitor.AutoFix(idea)

	if fixed.Title != "" {
		t.Errorf("AutoFix must not invent a title, got %q", fixed.Title)
	}
	if fixed.SourceURL != "" {
		t.Errorf("AutoFix must not invent a source URL, got %q", fixed.SourceURL)
	}
	if fixed.Status != "published" {
		t.Errorf("AutoFix must not rewrite status, got %q", fixed.Status)
	}

	reports, _ := monitor.Validate([]database.Idea{fixed})
	if reports[0].Valid {
		t.Error("Unrepairable defects should still fail validation after auto-fix")
	}
}

func TestQualityMonitor_AutoFix_NoChangeForValidIdea(t *testing.T) {
	monitor := NewQualityMonitor()

	_, changed := monitor.AutoFix(validIdea())

	if changed {
		t.Error("Expected no change for an already valid idea")
	}
}

func TestQualityMonitor_GenerateReport(t *testing.T) {
	monitor := NewQualityMonitor()

	ideas := []database.Idea{validIdea(), {ID: "idea-2", Status: database.StatusPending}}
	reports, summary := monitor.Validate(ideas)

	report := monitor.GenerateReport(reports, summary)

	if !strings.Contains(report, "2 ideas checked") {
		t.Errorf("Expected report header with totals, got: %s", report)
	}
	if !strings.Contains(report, "title is required") {
		t.Errorf("Expected report to list the missing title issue, got: %s", report)
	}
}
