package database

import (
	"fmt"
)

var _ EngagementRepository = (*engagementRepository)(nil)

// engagementRepository stores votes and bookmarks as keyed records
// (idea id + user id) so engagement survives restarts.
type engagementRepository struct {
	db *DB
}

func NewEngagementRepository(db *DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// CastVote records or flips a user's vote and refreshes the denormalized
// counters on the idea row. Returns the updated counters.
func (r *engagementRepository) CastVote(ideaID, userID string, up bool) (int, int, error) {
	direction := "down"
	if up {
		direction = "up"
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO idea_votes (idea_id, user_id, direction)
		VALUES ($1, $2, $3)
		ON CONFLICT (idea_id, user_id) DO UPDATE SET
			direction = EXCLUDED.direction,
			updated_at = NOW()
	`, ideaID, userID, direction)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to record vote: %w", err)
	}

	var votesUp, votesDown int
	err = tx.QueryRow(`
		UPDATE ideas SET
			votes_up = (SELECT COUNT(*) FROM idea_votes WHERE idea_id = $1 AND direction = 'up'),
			votes_down = (SELECT COUNT(*) FROM idea_votes WHERE idea_id = $1 AND direction = 'down')
		WHERE id = $1
		RETURNING votes_up, votes_down
	`, ideaID).Scan(&votesUp, &votesDown)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to refresh vote counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit vote transaction: %w", err)
	}

	return votesUp, votesDown, nil
}

func (r *engagementRepository) SetBookmark(ideaID, userID string, on bool) error {
	var err error
	if on {
		_, err = r.db.Exec(`
			INSERT INTO idea_bookmarks (idea_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (idea_id, user_id) DO NOTHING
		`, ideaID, userID)
	} else {
		_, err = r.db.Exec(`
			DELETE FROM idea_bookmarks WHERE idea_id = $1 AND user_id = $2
		`, ideaID, userID)
	}

	if err != nil {
		return fmt.Errorf("failed to set bookmark: %w", err)
	}

	return nil
}

func (r *engagementRepository) GetBookmarkCount(ideaID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM idea_bookmarks WHERE idea_id = $1", ideaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get bookmark count: %w", err)
	}
	return count, nil
}
