package ideas

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/ideaoasis/ideaoasis/app/database"
)

// fakeIdeaRepo is an in-memory IdeaRepository used across the package
// tests. Listing order follows insertion order.
type fakeIdeaRepo struct {
	ideas       map[string]*database.Idea
	order       []string
	nextID      int
	createErr   error
	onCreate    func()
	updateErrBy map[string]error
}

func newFakeIdeaRepo() *fakeIdeaRepo {
	return &fakeIdeaRepo{
		ideas:       make(map[string]*database.Idea),
		updateErrBy: make(map[string]error),
	}
}

func (r *fakeIdeaRepo) GetIdea(id string) (*database.Idea, error) {
	idea, ok := r.ideas[id]
	if !ok {
		return nil, nil
	}
	copied := *idea
	return &copied, nil
}

func (r *fakeIdeaRepo) GetIdeaByURL(canonicalURL string) (*database.Idea, error) {
	for _, id := range r.order {
		if r.ideas[id].SourceURL == canonicalURL {
			copied := *r.ideas[id]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeIdeaRepo) ListIdeas(filter database.IdeaFilter) ([]database.Idea, error) {
	var out []database.Idea
	for _, id := range r.order {
		idea := r.ideas[id]
		if filter.Status != "" && idea.Status != filter.Status {
			continue
		}
		if filter.Sector != "" && idea.Sector != filter.Sector {
			continue
		}
		out = append(out, *idea)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeIdeaRepo) ListIdeasNeedingEnrichment(limit int) ([]database.Idea, error) {
	var out []database.Idea
	for _, id := range r.order {
		if r.ideas[id].KoreaFit == nil {
			out = append(out, *r.ideas[id])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeIdeaRepo) GetIdeaCount() (int, error) {
	return len(r.ideas), nil
}

func (r *fakeIdeaRepo) GetStatusCounts() (map[string]int, error) {
	counts := make(map[string]int)
	for _, idea := range r.ideas {
		counts[idea.Status]++
	}
	return counts, nil
}

func (r *fakeIdeaRepo) CreateIdea(idea *database.Idea) error {
	if r.onCreate != nil {
		r.onCreate()
	}
	if r.createErr != nil {
		return r.createErr
	}
	if idea.ID == "" {
		r.nextID++
		idea.ID = fmt.Sprintf("idea-%d", r.nextID)
	}
	copied := *idea
	r.ideas[idea.ID] = &copied
	r.order = append(r.order, idea.ID)
	return nil
}

func (r *fakeIdeaRepo) UpdateIdea(idea *database.Idea) error {
	if err := r.updateErrBy[idea.ID]; err != nil {
		return err
	}
	if _, ok := r.ideas[idea.ID]; !ok {
		return fmt.Errorf("idea %s not found", idea.ID)
	}
	copied := *idea
	r.ideas[idea.ID] = &copied
	return nil
}

func (r *fakeIdeaRepo) SetReview(id string, status string, note string) error {
	idea, ok := r.ideas[id]
	if !ok {
		return fmt.Errorf("idea %s not found", id)
	}
	idea.Status = status
	idea.AdminReview = note
	return nil
}

func TestCanonicalURL_StripsTrackingAndFragment(t *testing.T) {
	got := CanonicalURL("https://Example.com/a?utm_source=fb#section")
	want := "https://example.com/a"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCanonicalURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://Example.com/Path/?utm_campaign=x&q=1#frag",
		"HTTPS://NEWS.SITE.KR/ideas/42?ref=twitter",
		"https://example.com/",
		"not a url at all",
	}

	for _, input := range inputs {
		once := CanonicalURL(input)
		twice := CanonicalURL(once)
		if once != twice {
			t.Errorf("CanonicalURL not idempotent for %q: %q vs %q", input, once, twice)
		}
	}
}

func TestCanonicalURL_TrailingSlash(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"https://example.com/path/", "https://example.com/path"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com", "https://example.com"},
	}

	for _, tc := range cases {
		if got := CanonicalURL(tc.input); got != tc.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestCanonicalURL_KeepsNonTrackingParams(t *testing.T) {
	got := CanonicalURL("https://example.com/a?page=2&utm_medium=email")
	want := "https://example.com/a?page=2"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCanonicalURL_UnparsableInput(t *testing.T) {
	got := CanonicalURL("  Just Some Text  ")
	want := "just some text"

	if got != want {
		t.Errorf("Expected fallback %q, got %q", want, got)
	}
}

func TestNormalizer_IngestBatch_CreatesThenUpdates(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	first := []Candidate{{SourceURL: "https://example.com/idea?utm_source=fb", Title: "Idea one"}}
	outcomes, summary := normalizer.IngestBatch(first)

	if summary.Created != 1 || summary.Updated != 0 || summary.Failed != 0 {
		t.Fatalf("Expected 1 created, got %+v", summary)
	}
	if outcomes[0].Action != ActionCreated {
		t.Errorf("Expected created action, got %q", outcomes[0].Action)
	}
	if outcomes[0].SourceURL != "https://example.com/idea" {
		t.Errorf("Expected canonical URL in outcome, got %q", outcomes[0].SourceURL)
	}

	// Same canonical URL with a different tracking wrapper merges.
	second := []Candidate{{SourceURL: "https://EXAMPLE.com/idea#ref", Title: "Idea one, revised", Sector: "saas"}}
	outcomes, summary = normalizer.IngestBatch(second)

	if summary.Created != 0 || summary.Updated != 1 {
		t.Fatalf("Expected 1 updated, got %+v", summary)
	}
	if outcomes[0].ID == "" {
		t.Error("Expected outcome to carry the merged idea's id")
	}

	stored, _ := repo.GetIdea(outcomes[0].ID)
	if stored.Title != "Idea one, revised" {
		t.Errorf("Expected merged title, got %q", stored.Title)
	}
	if stored.Sector != "saas" {
		t.Errorf("Expected merged sector, got %q", stored.Sector)
	}
	if len(repo.order) != 1 {
		t.Errorf("Expected a single stored idea, got %d", len(repo.order))
	}
}

func TestNormalizer_IngestBatch_MergePreservesAbsentFields(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/idea",
		Title:     "Original",
		Summary:   "Original summary",
		Tags:      []string{"a", "b"},
	}})

	outcomes, _ := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/idea",
		Title:     "Updated",
	}})

	stored, _ := repo.GetIdea(outcomes[0].ID)
	if stored.Title != "Updated" {
		t.Errorf("Expected updated title, got %q", stored.Title)
	}
	if stored.Summary != "Original summary" {
		t.Errorf("Absent summary should be preserved, got %q", stored.Summary)
	}
	if len(stored.Tags) != 2 {
		t.Errorf("Absent tags should be preserved, got %v", stored.Tags)
	}
}

func TestNormalizer_IngestBatch_MissingSourceURL(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	outcomes, summary := normalizer.IngestBatch([]Candidate{
		{Title: "No URL"},
		{SourceURL: "https://example.com/ok", Title: "Fine"},
	})

	if summary.Failed != 1 || summary.Created != 1 {
		t.Fatalf("Expected 1 failed and 1 created, got %+v", summary)
	}
	if outcomes[0].OK {
		t.Error("Expected first outcome to fail without a source URL")
	}
	if !strings.Contains(outcomes[0].Error, "sourceUrl") {
		t.Errorf("Expected error naming sourceUrl, got %q", outcomes[0].Error)
	}
	if !outcomes[1].OK {
		t.Errorf("Failure must not abort the rest of the batch: %q", outcomes[1].Error)
	}
}

func TestNormalizer_IngestBatch_RejectsBeyondLimit(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	candidates := make([]Candidate, BatchLimit+5)
	for i := range candidates {
		candidates[i] = Candidate{
			SourceURL: fmt.Sprintf("https://example.com/idea-%d", i),
			Title:     fmt.Sprintf("Idea %d", i),
		}
	}

	outcomes, summary := normalizer.IngestBatch(candidates)

	if len(outcomes) != BatchLimit+5 {
		t.Fatalf("Expected an outcome per candidate, got %d", len(outcomes))
	}
	if summary.Created != BatchLimit {
		t.Errorf("Expected %d created, got %d", BatchLimit, summary.Created)
	}
	if summary.Failed != 5 {
		t.Errorf("Expected 5 rejected beyond the limit, got %d", summary.Failed)
	}
	for i := BatchLimit; i < len(outcomes); i++ {
		if outcomes[i].OK {
			t.Errorf("Outcome %d beyond the limit should be rejected", i)
		}
		if !strings.Contains(outcomes[i].Error, "batch limit") {
			t.Errorf("Expected batch limit error, got %q", outcomes[i].Error)
		}
	}
}

func TestNormalizer_IngestBatch_NormalizesText(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	outcomes, _ := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/kr",
		Title:     "  한국 시장 아이디어  ",
		Tags:      []string{" ai ", "", "fintech"},
	}})

	stored, _ := repo.GetIdea(outcomes[0].ID)
	if stored.Title != "한국 시장 아이디어" {
		t.Errorf("Expected trimmed title, got %q", stored.Title)
	}
	if len(stored.Tags) != 2 || stored.Tags[0] != "ai" || stored.Tags[1] != "fintech" {
		t.Errorf("Expected trimmed non-empty tags, got %v", stored.Tags)
	}
	if stored.Status != database.StatusPending {
		t.Errorf("New ideas should start pending, got %q", stored.Status)
	}
}

func TestNormalizer_IngestBatch_DuplicateInsertRaceMerges(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	// A concurrent ingest of the same URL commits between our lookup
	// and our insert; the unique index rejects the insert and the
	// candidate merges into the winner's record.
	repo.onCreate = func() {
		winner := database.Idea{
			ID:        "winner",
			SourceURL: "https://example.com/contested",
			Title:     "Winner title",
			Summary:   "Winner summary",
			Status:    database.StatusPending,
		}
		repo.ideas[winner.ID] = &winner
		repo.order = append(repo.order, winner.ID)
	}
	repo.createErr = &pq.Error{Code: "23505"}

	outcomes, summary := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/contested",
		Title:     "Loser title",
	}})

	if summary.Created != 0 || summary.Updated != 1 || summary.Failed != 0 {
		t.Fatalf("Expected the lost insert to resolve as an update, got %+v", summary)
	}
	if !outcomes[0].OK || outcomes[0].Action != ActionUpdated {
		t.Errorf("Expected updated outcome, got %+v", outcomes[0])
	}
	if outcomes[0].ID != "winner" {
		t.Errorf("Expected outcome to carry the winner's id, got %q", outcomes[0].ID)
	}

	stored, _ := repo.GetIdea("winner")
	if stored.Title != "Loser title" {
		t.Errorf("Expected merged title, got %q", stored.Title)
	}
	if stored.Summary != "Winner summary" {
		t.Errorf("Absent summary should be preserved, got %q", stored.Summary)
	}
	if len(repo.order) != 1 {
		t.Errorf("Expected a single stored idea, got %d", len(repo.order))
	}
}

func TestNormalizer_IngestBatch_CreateFailure(t *testing.T) {
	repo := newFakeIdeaRepo()
	repo.createErr = errors.New("connection reset")
	normalizer := NewNormalizer(repo)

	outcomes, summary := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/fails",
		Title:     "Doomed",
	}})

	if summary.Failed != 1 {
		t.Fatalf("Expected 1 failed, got %+v", summary)
	}
	if outcomes[0].OK || !strings.Contains(outcomes[0].Error, "create failed") {
		t.Errorf("Expected create failure outcome, got %+v", outcomes[0])
	}
	if len(repo.order) != 0 {
		t.Errorf("Failed create must not store a record, got %d", len(repo.order))
	}
}

func TestNormalizer_IngestBatch_UpdateFailure(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	outcomes, _ := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/idea",
		Title:     "Original",
	}})
	repo.updateErrBy[outcomes[0].ID] = errors.New("write refused")

	outcomes, summary := normalizer.IngestBatch([]Candidate{{
		SourceURL: "https://example.com/idea",
		Title:     "Revised",
	}})

	if summary.Failed != 1 || summary.Updated != 0 {
		t.Fatalf("Expected 1 failed, got %+v", summary)
	}
	if outcomes[0].OK || !strings.Contains(outcomes[0].Error, "update failed") {
		t.Errorf("Expected update failure outcome, got %+v", outcomes[0])
	}
}

func TestNormalizer_IngestBatch_SetsUploadedAt(t *testing.T) {
	repo := newFakeIdeaRepo()
	normalizer := NewNormalizer(repo)

	published := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	outcomes, _ := normalizer.IngestBatch([]Candidate{{
		SourceURL:  "https://example.com/dated",
		Title:      "Dated idea",
		UploadedAt: &published,
	}})

	stored, _ := repo.GetIdea(outcomes[0].ID)
	if !stored.UploadedAt.Equal(published) {
		t.Errorf("Expected uploadedAt %v, got %v", published, stored.UploadedAt)
	}
}
