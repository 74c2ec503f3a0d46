package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ IdeaRepository = (*ideaRepository)(nil)

type ideaRepository struct {
	db *DB
}

func NewIdeaRepository(db *DB) IdeaRepository {
	return &ideaRepository{db: db}
}

const ideaColumns = `id, source_url, title, summary, sector, target_user, business_model,
	tags, badges, use_cases, tech_stack,
	korea_fit, market_opportunity, execution_difficulty, revenue_potential, timing_score, regulatory_risk,
	trend_keyword, trend_growth, trend_search_volume, trend_score, trend_updated_at,
	roadmap, status, admin_review, votes_up, votes_down,
	uploaded_at, updated_at, created_at`

func (r *ideaRepository) GetIdea(id string) (*Idea, error) {
	row := r.db.QueryRow(`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`, id)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea: %w", err)
	}

	return idea, nil
}

func (r *ideaRepository) GetIdeaByURL(canonicalURL string) (*Idea, error) {
	row := r.db.QueryRow(`SELECT `+ideaColumns+` FROM ideas WHERE source_url = $1`, canonicalURL)

	idea, err := scanIdea(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idea by URL: %w", err)
	}

	return idea, nil
}

// ListIdeas returns ideas in stable enumeration order (created_at, id),
// optionally narrowed by status and sector.
func (r *ideaRepository) ListIdeas(filter IdeaFilter) ([]Idea, error) {
	q := psql.Select(ideaColumns).From("ideas").OrderBy("created_at ASC", "id ASC")

	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Sector != "" {
		q = q.Where(sq.Eq{"sector": filter.Sector})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build idea list query: %w", err)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	return collectIdeas(rows)
}

// ListIdeasNeedingEnrichment returns ideas that have never been scored,
// oldest first.
func (r *ideaRepository) ListIdeasNeedingEnrichment(limit int) ([]Idea, error) {
	rows, err := r.db.Query(`
		SELECT `+ideaColumns+`
		FROM ideas
		WHERE korea_fit IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas needing enrichment: %w", err)
	}
	defer rows.Close()

	return collectIdeas(rows)
}

func (r *ideaRepository) GetIdeaCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM ideas").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get idea count: %w", err)
	}
	return count, nil
}

func (r *ideaRepository) GetStatusCounts() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM ideas GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status count rows: %w", err)
	}

	return counts, nil
}

// CreateIdea inserts a new idea. A missing ID is minted here. The unique
// index on source_url rejects a duplicate canonical URL.
func (r *ideaRepository) CreateIdea(idea *Idea) error {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}

	roadmap, err := marshalRoadmap(idea.Roadmap)
	if err != nil {
		return err
	}

	koreaFit, metrics := metricsColumns(idea)
	trendKeyword, trendGrowth, trendVolume, trendScore, trendUpdatedAt := trendColumns(idea)

	_, err = r.db.Exec(`
		INSERT INTO ideas (
			id, source_url, title, summary, sector, target_user, business_model,
			tags, badges, use_cases, tech_stack,
			korea_fit, market_opportunity, execution_difficulty, revenue_potential, timing_score, regulatory_risk,
			trend_keyword, trend_growth, trend_search_volume, trend_score, trend_updated_at,
			roadmap, status, admin_review, votes_up, votes_down, uploaded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28
		)
	`, idea.ID, idea.SourceURL, idea.Title, idea.Summary, idea.Sector, idea.TargetUser, idea.BusinessModel,
		pq.Array(idea.Tags), pq.Array(idea.Badges), pq.Array(idea.UseCases), pq.Array(idea.TechStack),
		koreaFit, metrics[0], metrics[1], metrics[2], metrics[3], metrics[4],
		trendKeyword, trendGrowth, trendVolume, trendScore, trendUpdatedAt,
		roadmap, idea.Status, idea.AdminReview, idea.VotesUp, idea.VotesDown, idea.UploadedAt)

	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}

	return nil
}

// UpdateIdea writes a full idea row. Callers follow a read-merge-write
// discipline, so a single terminal write carries the whole record.
func (r *ideaRepository) UpdateIdea(idea *Idea) error {
	roadmap, err := marshalRoadmap(idea.Roadmap)
	if err != nil {
		return err
	}

	koreaFit, metrics := metricsColumns(idea)
	trendKeyword, trendGrowth, trendVolume, trendScore, trendUpdatedAt := trendColumns(idea)

	_, err = r.db.Exec(`
		UPDATE ideas SET
			source_url = $2, title = $3, summary = $4, sector = $5, target_user = $6, business_model = $7,
			tags = $8, badges = $9, use_cases = $10, tech_stack = $11,
			korea_fit = $12, market_opportunity = $13, execution_difficulty = $14,
			revenue_potential = $15, timing_score = $16, regulatory_risk = $17,
			trend_keyword = $18, trend_growth = $19, trend_search_volume = $20,
			trend_score = $21, trend_updated_at = $22,
			roadmap = $23, status = $24, admin_review = $25,
			uploaded_at = $26, updated_at = $27
		WHERE id = $1
	`, idea.ID, idea.SourceURL, idea.Title, idea.Summary, idea.Sector, idea.TargetUser, idea.BusinessModel,
		pq.Array(idea.Tags), pq.Array(idea.Badges), pq.Array(idea.UseCases), pq.Array(idea.TechStack),
		koreaFit, metrics[0], metrics[1], metrics[2], metrics[3], metrics[4],
		trendKeyword, trendGrowth, trendVolume, trendScore, trendUpdatedAt,
		roadmap, idea.Status, idea.AdminReview, idea.UploadedAt, idea.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}

	return nil
}

func (r *ideaRepository) SetReview(id string, status string, note string) error {
	_, err := r.db.Exec(`
		UPDATE ideas
		SET status = $2, admin_review = $3, updated_at = NOW()
		WHERE id = $1
	`, id, status, note)

	if err != nil {
		return fmt.Errorf("failed to set idea review: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIdea(row rowScanner) (*Idea, error) {
	var idea Idea
	var koreaFit, marketOpportunity, executionDifficulty, revenuePotential, timingScore, regulatoryRisk sql.NullFloat64
	var trendKeyword, trendGrowth, trendVolume string
	var trendScore sql.NullFloat64
	var trendUpdatedAt sql.NullTime
	var roadmap []byte

	err := row.Scan(
		&idea.ID, &idea.SourceURL, &idea.Title, &idea.Summary, &idea.Sector, &idea.TargetUser, &idea.BusinessModel,
		pq.Array(&idea.Tags), pq.Array(&idea.Badges), pq.Array(&idea.UseCases), pq.Array(&idea.TechStack),
		&koreaFit, &marketOpportunity, &executionDifficulty, &revenuePotential, &timingScore, &regulatoryRisk,
		&trendKeyword, &trendGrowth, &trendVolume, &trendScore, &trendUpdatedAt,
		&roadmap, &idea.Status, &idea.AdminReview, &idea.VotesUp, &idea.VotesDown,
		&idea.UploadedAt, &idea.UpdatedAt, &idea.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if koreaFit.Valid {
		idea.KoreaFit = &koreaFit.Float64
	}

	if marketOpportunity.Valid {
		idea.Metrics = &Metrics{
			MarketOpportunity:   marketOpportunity.Float64,
			ExecutionDifficulty: executionDifficulty.Float64,
			RevenuePotential:    revenuePotential.Float64,
			TimingScore:         timingScore.Float64,
			RegulatoryRisk:      regulatoryRisk.Float64,
		}
	}

	if trendKeyword != "" && trendScore.Valid {
		idea.Trend = &TrendData{
			Keyword:      trendKeyword,
			Growth:       trendGrowth,
			SearchVolume: trendVolume,
			TrendScore:   trendScore.Float64,
		}
		if trendUpdatedAt.Valid {
			idea.Trend.UpdatedAt = trendUpdatedAt.Time
		}
	}

	if len(roadmap) > 0 {
		if err := json.Unmarshal(roadmap, &idea.Roadmap); err != nil {
			return nil, fmt.Errorf("failed to decode roadmap: %w", err)
		}
	}

	return &idea, nil
}

func collectIdeas(rows *sql.Rows) ([]Idea, error) {
	var ideas []Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea row: %w", err)
		}
		ideas = append(ideas, *idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating idea rows: %w", err)
	}

	return ideas, nil
}

func marshalRoadmap(steps []RoadmapStep) ([]byte, error) {
	if steps == nil {
		steps = []RoadmapStep{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roadmap: %w", err)
	}
	return data, nil
}

func metricsColumns(idea *Idea) (interface{}, [5]interface{}) {
	var koreaFit interface{}
	if idea.KoreaFit != nil {
		koreaFit = *idea.KoreaFit
	}

	var metrics [5]interface{}
	if idea.Metrics != nil {
		metrics = [5]interface{}{
			idea.Metrics.MarketOpportunity,
			idea.Metrics.ExecutionDifficulty,
			idea.Metrics.RevenuePotential,
			idea.Metrics.TimingScore,
			idea.Metrics.RegulatoryRisk,
		}
	}

	return koreaFit, metrics
}

func trendColumns(idea *Idea) (string, string, string, interface{}, interface{}) {
	if idea.Trend == nil {
		return "", "", "", nil, nil
	}
	return idea.Trend.Keyword, idea.Trend.Growth, idea.Trend.SearchVolume,
		idea.Trend.TrendScore, idea.Trend.UpdatedAt
}
