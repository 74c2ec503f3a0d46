package database

type IdeaRepository interface {
	GetIdea(id string) (*Idea, error)
	GetIdeaByURL(canonicalURL string) (*Idea, error)
	ListIdeas(filter IdeaFilter) ([]Idea, error)
	ListIdeasNeedingEnrichment(limit int) ([]Idea, error)
	GetIdeaCount() (int, error)
	GetStatusCounts() (map[string]int, error)

	CreateIdea(idea *Idea) error
	UpdateIdea(idea *Idea) error
	SetReview(id string, status string, note string) error
}

type EngagementRepository interface {
	CastVote(ideaID, userID string, up bool) (votesUp, votesDown int, err error)
	SetBookmark(ideaID, userID string, on bool) error
	GetBookmarkCount(ideaID string) (int, error)
}
