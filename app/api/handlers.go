package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ideaoasis/ideaoasis/app/database"
	"github.com/ideaoasis/ideaoasis/app/ideas"
)

func NewHandler(ideaRepo database.IdeaRepository, engagementRepo database.EngagementRepository,
	enricher *ideas.Enricher, monitor *ideas.QualityMonitor, normalizer *ideas.Normalizer) *Handler {
	return &Handler{
		ideaRepo:       ideaRepo,
		engagementRepo: engagementRepo,
		enricher:       enricher,
		monitor:        monitor,
		normalizer:     normalizer,
	}
}

// EnhanceIdea enriches a single idea with the requested features.
func (h *Handler) EnhanceIdea(c *gin.Context) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.IdeaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ideaId is required"})
		return
	}

	features := make([]ideas.Feature, 0, len(req.Features))
	for _, f := range req.Features {
		features = append(features, ideas.Feature(f))
	}

	idea, detail, err := h.enricher.EnrichOne(c.Request.Context(), req.IdeaID, features)
	if err != nil {
		switch {
		case errors.Is(err, ideas.ErrIdeaNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
		case errors.Is(err, ideas.ErrEnrichmentInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "enrichment already in progress for this idea"})
		default:
			slog.Error("Enrichment failed", "idea", req.IdeaID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"idea":   newIdeaView(*idea),
		"detail": detail,
	})
}

// EnhanceAll batch-enriches every stored idea. A failing idea never
// blocks the rest; the envelope carries per-idea outcomes.
func (h *Handler) EnhanceAll(c *gin.Context) {
	summaries, err := h.enricher.EnrichAll(c.Request.Context())
	if err != nil {
		slog.Error("Batch enrichment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	succeeded := 0
	failed := 0
	degraded := 0
	for _, summary := range summaries {
		switch {
		case !summary.OK:
			failed++
		case summary.Degraded:
			degraded++
		default:
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"results": summaries,
		"summary": gin.H{
			"total":     len(summaries),
			"succeeded": succeeded,
			"degraded":  degraded,
			"failed":    failed,
		},
	})
}

// IngestBulk accepts a batch of raw idea candidates. Guarded by the
// configured ingest token; always replies with per-item outcomes.
func (h *Handler) IngestBulk(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items must be an array of candidates"})
		return
	}

	if req.Items == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items is required"})
		return
	}

	outcomes, summary := h.normalizer.IngestBatch(req.Items)

	c.JSON(http.StatusOK, gin.H{
		"results": outcomes,
		"summary": summary,
	})
}

// QualityCheck validates every idea, read-only.
func (h *Handler) QualityCheck(c *gin.Context) {
	all, err := h.ideaRepo.ListIdeas(database.IdeaFilter{})
	if err != nil {
		slog.Error("Database error", "operation", "list_ideas", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	reports, summary := h.monitor.Validate(all)

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"summary": summary,
		"report":  h.monitor.GenerateReport(reports, summary),
	})
}

// QualityFix applies deterministic auto-repair and persists the
// changed records. Succeeds only when no errors remain.
func (h *Handler) QualityFix(c *gin.Context) {
	all, err := h.ideaRepo.ListIdeas(database.IdeaFilter{})
	if err != nil {
		slog.Error("Database error", "operation", "list_ideas", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	fixedCount := 0
	repaired := make([]database.Idea, 0, len(all))
	for _, idea := range all {
		fixed, changed := h.monitor.AutoFix(idea)
		if changed {
			fixed.UpdatedAt = time.Now().UTC()
			if err := h.ideaRepo.UpdateIdea(&fixed); err != nil {
				slog.Error("Failed to persist auto-fixed idea", "idea", idea.ID, "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist fixes"})
				return
			}
			fixedCount++
		}
		repaired = append(repaired, fixed)
	}

	reports, summary := h.monitor.Validate(repaired)

	if summary.ErrorCount > 0 {
		var failing []ideas.QualityReport
		for _, report := range reports {
			if !report.Valid {
				failing = append(failing, report)
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"fixed":   fixedCount,
			"errors":  failing,
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fixed":   fixedCount,
		"summary": summary,
	})
}

// ListIdeas is the public listing read path.
func (h *Handler) ListIdeas(c *gin.Context) {
	filter := database.IdeaFilter{
		Status: c.Query("status"),
		Sector: c.Query("sector"),
		Limit:  100,
	}

	list, err := h.ideaRepo.ListIdeas(filter)
	if err != nil {
		slog.Error("Database error", "operation", "list_ideas", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	views := make([]ideaView, 0, len(list))
	for _, idea := range list {
		views = append(views, newIdeaView(idea))
	}

	c.JSON(http.StatusOK, gin.H{
		"ideas": views,
		"total": len(views),
	})
}

func (h *Handler) GetIdea(c *gin.Context) {
	id := c.Param("id")

	idea, err := h.ideaRepo.GetIdea(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_idea", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if idea == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
		return
	}

	c.JSON(http.StatusOK, newIdeaView(*idea))
}

// VoteIdea records a per-user vote and returns the refreshed counters.
func (h *Handler) VoteIdea(c *gin.Context) {
	id := c.Param("id")

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if req.Direction != "up" && req.Direction != "down" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be 'up' or 'down'"})
		return
	}

	idea, err := h.ideaRepo.GetIdea(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_idea", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if idea == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
		return
	}

	votesUp, votesDown, err := h.engagementRepo.CastVote(id, req.UserID, req.Direction == "up")
	if err != nil {
		slog.Error("Failed to cast vote", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"votesUp":   votesUp,
		"votesDown": votesDown,
	})
}

// BookmarkIdea toggles a per-user bookmark.
func (h *Handler) BookmarkIdea(c *gin.Context) {
	id := c.Param("id")

	var req bookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	on := true
	if req.On != nil {
		on = *req.On
	}

	idea, err := h.ideaRepo.GetIdea(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_idea", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if idea == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
		return
	}

	if err := h.engagementRepo.SetBookmark(id, req.UserID, on); err != nil {
		slog.Error("Failed to set bookmark", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set bookmark"})
		return
	}

	count, err := h.engagementRepo.GetBookmarkCount(id)
	if err != nil {
		slog.Error("Failed to count bookmarks", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count bookmarks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarked": on,
		"bookmarks":  count,
	})
}

// ReviewIdea records an admin status transition.
func (h *Handler) ReviewIdea(c *gin.Context) {
	id := c.Param("id")

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Status != database.StatusApproved && req.Status != database.StatusRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'approved' or 'rejected'"})
		return
	}

	idea, err := h.ideaRepo.GetIdea(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_idea", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if idea == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
		return
	}

	if err := h.ideaRepo.SetReview(id, req.Status, req.Note); err != nil {
		slog.Error("Failed to set review", "idea", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"status": req.Status,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.ideaRepo.GetIdeaCount(); err == nil {
		health["ideas"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	total, err := h.ideaRepo.GetIdeaCount()
	if err != nil {
		slog.Error("Database error", "operation", "idea_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	statusCounts, err := h.ideaRepo.GetStatusCounts()
	if err != nil {
		slog.Error("Database error", "operation", "status_counts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"by_status": statusCounts,
	})
}
