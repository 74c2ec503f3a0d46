package ideas

import (
	"fmt"
	"strings"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// placeholderSummary fills an empty optional summary during auto-fix.
const placeholderSummary = "No summary provided yet."

// QualityMonitor validates idea records against completeness and
// consistency rules and deterministically repairs a fixed subset of
// defects.
type QualityMonitor struct{}

func NewQualityMonitor() *QualityMonitor {
	return &QualityMonitor{}
}

// Validate checks every idea and returns per-idea reports plus an
// aggregate summary. Report order matches input order.
func (m *QualityMonitor) Validate(ideas []database.Idea) ([]QualityReport, QualitySummary) {
	reports := make([]QualityReport, 0, len(ideas))
	summary := QualitySummary{Total: len(ideas)}

	for _, idea := range ideas {
		report := m.validateIdea(idea)
		reports = append(reports, report)

		if report.Valid {
			summary.Valid++
		}
		for _, issue := range report.Issues {
			switch issue.Severity {
			case SeverityError:
				summary.ErrorCount++
			case SeverityWarning:
				summary.WarningCount++
			}
		}
	}

	return reports, summary
}

func (m *QualityMonitor) validateIdea(idea database.Idea) QualityReport {
	var issues []QualityIssue

	addError := func(field, message string) {
		issues = append(issues, QualityIssue{Field: field, Message: message, Severity: SeverityError})
	}
	addWarning := func(field, message string) {
		issues = append(issues, QualityIssue{Field: field, Message: message, Severity: SeverityWarning})
	}

	if strings.TrimSpace(idea.Title) == "" {
		addError("title", "title is required")
	}
	if strings.TrimSpace(idea.SourceURL) == "" {
		addError("sourceUrl", "source URL is required")
	}
	if strings.TrimSpace(idea.Summary) == "" {
		addWarning("summary", "summary is empty")
	}
	if strings.TrimSpace(idea.Sector) == "" {
		addWarning("sector", "sector is empty")
	}

	if len(idea.Tags) > database.MaxTags {
		addError("tags", fmt.Sprintf("tags exceed the limit of %d (got %d)", database.MaxTags, len(idea.Tags)))
	}

	if idea.KoreaFit != nil && (*idea.KoreaFit < 0 || *idea.KoreaFit > 10) {
		addError("koreaFit", fmt.Sprintf("koreaFit %.2f outside [0,10]", *idea.KoreaFit))
	}

	if idea.Metrics != nil {
		metricChecks := []struct {
			field string
			value float64
		}{
			{"metrics.marketOpportunity", idea.Metrics.MarketOpportunity},
			{"metrics.executionDifficulty", idea.Metrics.ExecutionDifficulty},
			{"metrics.revenuePotential", idea.Metrics.RevenuePotential},
			{"metrics.timingScore", idea.Metrics.TimingScore},
			{"metrics.regulatoryRisk", idea.Metrics.RegulatoryRisk},
		}
		for _, check := range metricChecks {
			if check.value < 0 || check.value > 10 {
				addError(check.field, fmt.Sprintf("%s %.2f outside [0,10]", check.field, check.value))
			}
		}
	}

	if idea.Trend != nil {
		if idea.Trend.TrendScore < 0 || idea.Trend.TrendScore > 100 {
			addError("trendData.trendScore", fmt.Sprintf("trend score %.2f outside [0,100]", idea.Trend.TrendScore))
		}
		if idea.Trend.Keyword == "" {
			addError("trendData.keyword", "trend score present without a keyword")
		}
	}

	if idea.VotesUp < 0 || idea.VotesDown < 0 {
		addError("votes", "vote counts must be non-negative")
	}

	switch idea.Status {
	case database.StatusPending, database.StatusApproved, database.StatusRejected:
	default:
		addError("status", fmt.Sprintf("unknown status %q", idea.Status))
	}

	valid := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			valid = false
			break
		}
	}

	return QualityReport{
		IdeaID: idea.ID,
		Title:  idea.Title,
		Valid:  valid,
		Issues: issues,
	}
}

// AutoFix repairs the fixed set of deterministically repairable defects:
// clamps out-of-range numerics, truncates over-length tag lists, trims
// surrounding whitespace, and fills an empty summary with a placeholder.
// Fields it cannot repair deterministically (missing title, missing
// source URL, unknown status) are left untouched and stay flagged.
// Returns the repaired copy and whether anything changed.
func (m *QualityMonitor) AutoFix(idea database.Idea) (database.Idea, bool) {
	fixed := idea
	changed := false

	if trimmed := strings.TrimSpace(fixed.Title); trimmed != fixed.Title {
		fixed.Title = trimmed
		changed = true
	}
	if trimmed := strings.TrimSpace(fixed.Summary); trimmed != fixed.Summary {
		fixed.Summary = trimmed
		changed = true
	}
	if fixed.Summary == "" && fixed.Title != "" {
		fixed.Summary = placeholderSummary
		changed = true
	}

	if len(fixed.Tags) > database.MaxTags {
		fixed.Tags = append([]string(nil), fixed.Tags[:database.MaxTags]...)
		changed = true
	}

	if fixed.KoreaFit != nil {
		if clamped := clamp(*fixed.KoreaFit, 0, 10); clamped != *fixed.KoreaFit {
			fixed.KoreaFit = &clamped
			changed = true
		}
	}

	if fixed.Metrics != nil {
		clampedMetrics := database.Metrics{
			MarketOpportunity:   clamp(fixed.Metrics.MarketOpportunity, 0, 10),
			ExecutionDifficulty: clamp(fixed.Metrics.ExecutionDifficulty, 0, 10),
			RevenuePotential:    clamp(fixed.Metrics.RevenuePotential, 0, 10),
			TimingScore:         clamp(fixed.Metrics.TimingScore, 0, 10),
			RegulatoryRisk:      clamp(fixed.Metrics.RegulatoryRisk, 0, 10),
		}
		if clampedMetrics != *fixed.Metrics {
			fixed.Metrics = &clampedMetrics
			changed = true
		}
	}

	if fixed.Trend != nil {
		if clamped := clamp(fixed.Trend.TrendScore, 0, 100); clamped != fixed.Trend.TrendScore {
			trend := *fixed.Trend
			trend.TrendScore = clamped
			fixed.Trend = &trend
			changed = true
		}
	}

	return fixed, changed
}

// GenerateReport renders a human-readable aggregate of a validation
// run. Observability output only, never used for control flow.
func (m *QualityMonitor) GenerateReport(reports []QualityReport, summary QualitySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Content quality report: %d ideas checked, %d valid, %d errors, %d warnings\n",
		summary.Total, summary.Valid, summary.ErrorCount, summary.WarningCount)

	for _, report := range reports {
		if len(report.Issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s):\n", report.Title, report.IdeaID)
		for _, issue := range report.Issues {
			fmt.Fprintf(&b, "    [%s] %s: %s\n", issue.Severity, issue.Field, issue.Message)
		}
	}

	return b.String()
}
