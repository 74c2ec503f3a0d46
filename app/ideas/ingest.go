package ideas

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/text/unicode/norm"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// BatchLimit is the hard per-request cap on ingested candidates.
// Items beyond the cap are explicitly rejected, not silently dropped.
const BatchLimit = 100

// trackingParams are stripped from source URLs during canonicalization.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"fbclid":       true,
	"gclid":        true,
}

// CanonicalURL normalizes a source URL into the dedup key: lowercased,
// fragment removed, tracking query parameters stripped, and a single
// trailing slash dropped from a non-root path. Unparsable input falls
// back to the trimmed, lowercased literal; it never fails.
func CanonicalURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(trimmed)
	}

	u.Fragment = ""

	query := u.Query()
	for param := range query {
		if trackingParams[strings.ToLower(param)] {
			query.Del(param)
		}
	}
	u.RawQuery = query.Encode()

	if len(u.Path) > 1 {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	return strings.ToLower(u.String())
}

// Normalizer deduplicates incoming idea candidates by canonical URL and
// upserts them as new or merged records.
type Normalizer struct {
	repo database.IdeaRepository
}

func NewNormalizer(repo database.IdeaRepository) *Normalizer {
	return &Normalizer{repo: repo}
}

// IngestBatch processes up to BatchLimit candidates, one outcome per
// candidate in input order. A failing candidate never aborts the rest
// of the batch.
func (n *Normalizer) IngestBatch(candidates []Candidate) ([]Outcome, BatchSummary) {
	outcomes := make([]Outcome, 0, len(candidates))
	summary := BatchSummary{Received: len(candidates)}

	for i, candidate := range candidates {
		var outcome Outcome
		if i >= BatchLimit {
			outcome = Outcome{
				OK:    false,
				Error: fmt.Sprintf("batch limit exceeded (%d items max)", BatchLimit),
			}
		} else {
			outcome = n.ingestOne(candidate)
		}

		if !outcome.OK {
			summary.Failed++
		} else if outcome.Action == ActionCreated {
			summary.Created++
		} else {
			summary.Updated++
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, summary
}

func (n *Normalizer) ingestOne(candidate Candidate) Outcome {
	if strings.TrimSpace(candidate.SourceURL) == "" {
		return Outcome{OK: false, Error: "sourceUrl is required"}
	}

	canonical := CanonicalURL(candidate.SourceURL)

	existing, err := n.repo.GetIdeaByURL(canonical)
	if err != nil {
		return Outcome{OK: false, SourceURL: canonical, Error: fmt.Sprintf("lookup failed: %v", err)}
	}

	if existing == nil {
		idea := n.buildIdea(candidate, canonical)
		err := n.repo.CreateIdea(idea)
		if err == nil {
			return Outcome{OK: true, Action: ActionCreated, ID: idea.ID, SourceURL: canonical}
		}

		// A concurrent ingest of the same URL may have won the insert;
		// the unique index turns that into a merge-update.
		if !isUniqueViolation(err) {
			return Outcome{OK: false, SourceURL: canonical, Error: fmt.Sprintf("create failed: %v", err)}
		}

		existing, err = n.repo.GetIdeaByURL(canonical)
		if err != nil || existing == nil {
			return Outcome{OK: false, SourceURL: canonical, Error: "create failed: duplicate race could not be resolved"}
		}
		slog.Debug("Ingest create lost a duplicate race, merging instead", "source_url", canonical)
	}

	merged := mergeCandidate(*existing, candidate)
	merged.UpdatedAt = time.Now().UTC()

	if err := n.repo.UpdateIdea(&merged); err != nil {
		return Outcome{OK: false, SourceURL: canonical, Error: fmt.Sprintf("update failed: %v", err)}
	}

	return Outcome{OK: true, Action: ActionUpdated, ID: merged.ID, SourceURL: canonical}
}

func (n *Normalizer) buildIdea(candidate Candidate, canonical string) *database.Idea {
	now := time.Now().UTC()

	uploadedAt := now
	if candidate.UploadedAt != nil {
		uploadedAt = candidate.UploadedAt.UTC()
	}

	return &database.Idea{
		SourceURL:     canonical,
		Title:         normalizeText(candidate.Title),
		Summary:       normalizeText(candidate.Summary),
		Sector:        normalizeText(candidate.Sector),
		TargetUser:    normalizeText(candidate.TargetUser),
		BusinessModel: normalizeText(candidate.BusinessModel),
		Tags:          normalizeTags(candidate.Tags),
		Status:        database.StatusPending,
		UploadedAt:    uploadedAt,
		UpdatedAt:     now,
	}
}

// mergeCandidate overlays the candidate's present fields onto the
// existing record; absent fields are preserved.
func mergeCandidate(existing database.Idea, candidate Candidate) database.Idea {
	merged := existing

	if title := normalizeText(candidate.Title); title != "" {
		merged.Title = title
	}
	if summary := normalizeText(candidate.Summary); summary != "" {
		merged.Summary = summary
	}
	if sector := normalizeText(candidate.Sector); sector != "" {
		merged.Sector = sector
	}
	if targetUser := normalizeText(candidate.TargetUser); targetUser != "" {
		merged.TargetUser = targetUser
	}
	if businessModel := normalizeText(candidate.BusinessModel); businessModel != "" {
		merged.BusinessModel = businessModel
	}
	if len(candidate.Tags) > 0 {
		merged.Tags = normalizeTags(candidate.Tags)
	}
	if candidate.UploadedAt != nil {
		merged.UploadedAt = candidate.UploadedAt.UTC()
	}

	return merged
}

// normalizeText applies NFC normalization and trims whitespace; Korean
// titles arrive in mixed composed and decomposed forms.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = normalizeText(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == database.MaxTags {
			break
		}
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
