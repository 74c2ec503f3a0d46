package api

import (
	"time"

	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/ideas"
)

type Handler struct {
	ideaRepo       database.IdeaRepository
	engagementRepo database.EngagementRepository
	enricher       *ideas.Enricher
	monitor        *ideas.QualityMonitor
	normalizer     *ideas.Normalizer
}

type enhanceRequest struct {
	IdeaID   string   `json:"ideaId"`
	Features []string `json:"features"`
}

type ingestRequest struct {
	Items []ideas.Candidate `json:"items"`
}

type voteRequest struct {
	UserID    string `json:"userId"`
	Direction string `json:"direction"` // up or down
}

type bookmarkRequest struct {
	UserID string `json:"userId"`
	On     *bool  `json:"on"` // defaults to true
}

type reviewRequest struct {
	Status string `json:"status"` // approved or rejected
	Note   string `json:"note"`
}

// ideaView is the JSON projection of a stored idea.
type ideaView struct {
	ID            string                 `json:"id"`
	SourceURL     string                 `json:"sourceUrl"`
	Title         string                 `json:"title"`
	Summary       string                 `json:"summary,omitempty"`
	Sector        string                 `json:"sector,omitempty"`
	TargetUser    string                 `json:"targetUser,omitempty"`
	BusinessModel string                 `json:"businessModel,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
	Badges        []string               `json:"badges,omitempty"`
	UseCases      []string               `json:"useCases,omitempty"`
	TechStack     []string               `json:"techStack,omitempty"`
	KoreaFit      *float64               `json:"koreaFit,omitempty"`
	Metrics       *database.Metrics      `json:"metrics,omitempty"`
	TrendData     *database.TrendData    `json:"trendData,omitempty"`
	Roadmap       []database.RoadmapStep `json:"executionRoadmap,omitempty"`
	Status        string                 `json:"status"`
	AdminReview   string                 `json:"adminReview,omitempty"`
	VotesUp       int                    `json:"votesUp"`
	VotesDown     int                    `json:"votesDown"`
	UploadedAt    time.Time              `json:"uploadedAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

func newIdeaView(idea database.Idea) ideaView {
	return ideaView{
		ID:            idea.ID,
		SourceURL:     idea.SourceURL,
		Title:         idea.Title,
		Summary:       idea.Summary,
		Sector:        idea.Sector,
		TargetUser:    idea.TargetUser,
		BusinessModel: idea.BusinessModel,
		Tags:          idea.Tags,
		Badges:        idea.Badges,
		UseCases:      idea.UseCases,
		TechStack:     idea.TechStack,
		KoreaFit:      idea.KoreaFit,
		Metrics:       idea.Metrics,
		TrendData:     idea.Trend,
		Roadmap:       idea.Roadmap,
		Status:        idea.Status,
		AdminReview:   idea.AdminReview,
		VotesUp:       idea.VotesUp,
		VotesDown:     idea.VotesDown,
		UploadedAt:    idea.UploadedAt,
		UpdatedAt:     idea.UpdatedAt,
	}
}
