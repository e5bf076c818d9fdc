package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/queue"
)

type QueueService interface {
	PlayFromControlPanel(ctx context.Context, showToken, sequence string) (*models.Show, error)
	EnqueueViewerRequest(ctx context.Context, showToken, sequence string) (*models.Show, error)
	CastViewerVote(ctx context.Context, showToken, sequence string) (*models.Show, error)
	DeleteRequestAtPosition(ctx context.Context, showToken string, position int) (*models.Show, error)
	DeleteAllRequests(ctx context.Context, showToken string) (*models.Show, error)
	ResetAllVotes(ctx context.Context, showToken string) (*models.Show, error)
	PlayNow(ctx context.Context, showToken string, playing queue.NowPlaying) (*models.Show, error)
	ClearNowPlaying(ctx context.Context, showToken string) (*models.Show, error)
	UpdatePreferences(ctx context.Context, showToken string, prefs models.Preferences) (*models.Show, error)
	UpdateSequences(ctx context.Context, showToken string, sequences []models.Sequence) (*models.Show, error)
	UpdateSequenceGroups(ctx context.Context, showToken string, groups []models.SequenceGroup) (*models.Show, error)
}

type QueueHandler struct {
	svc    QueueService
	logger *zap.Logger
}

func NewQueueHandler(svc QueueService, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{svc: svc, logger: logger}
}

type sequenceRequest struct {
	Sequence string `json:"sequence" binding:"required"`
}

// queueView is what every queue endpoint answers with: the live lists in
// play and rank order, plus the display fields.
type queueView struct {
	Mode                    models.ViewerControlMode `json:"viewer_control_mode"`
	PlayingNow              string                   `json:"playing_now"`
	PlayingNext             string                   `json:"playing_next"`
	PlayingNextFromSchedule string                   `json:"playing_next_from_schedule"`
	Requests                []models.Request         `json:"requests"`
	Votes                   []models.Vote            `json:"votes"`
}

func newQueueView(show *models.Show) queueView {
	return queueView{
		Mode:                    show.Preferences.ViewerControlMode,
		PlayingNow:              show.PlayingNow,
		PlayingNext:             show.PlayingNext,
		PlayingNextFromSchedule: show.PlayingNextFromSchedule,
		Requests:                queue.SortedRequests(show.Requests),
		Votes:                   queue.RankVotes(show.Votes),
	}
}

func (h *QueueHandler) withSequence(fn func(ctx context.Context, showToken, sequence string) (*models.Show, error), fallback string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sequenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		show, err := fn(c.Request.Context(), middleware.GetShowToken(c), req.Sequence)
		if err != nil {
			respondError(c, h.logger, err, fallback)
			return
		}
		c.JSON(http.StatusOK, newQueueView(show))
	}
}

// Play handles POST /v1/queue/play
func (h *QueueHandler) Play() gin.HandlerFunc {
	return h.withSequence(h.svc.PlayFromControlPanel, "failed to play sequence")
}

// Request handles POST /v1/viewer/requests
func (h *QueueHandler) Request() gin.HandlerFunc {
	return h.withSequence(h.svc.EnqueueViewerRequest, "failed to request sequence")
}

// Vote handles POST /v1/viewer/votes
func (h *QueueHandler) Vote() gin.HandlerFunc {
	return h.withSequence(h.svc.CastViewerVote, "failed to cast vote")
}

// DeleteRequest handles DELETE /v1/queue/requests/:position
func (h *QueueHandler) DeleteRequest(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil || position < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid position"})
		return
	}

	show, err := h.svc.DeleteRequestAtPosition(c.Request.Context(), middleware.GetShowToken(c), position)
	if err != nil {
		respondError(c, h.logger, err, "failed to delete request")
		return
	}
	c.JSON(http.StatusOK, newQueueView(show))
}

// DeleteAllRequests handles DELETE /v1/queue/requests
func (h *QueueHandler) DeleteAllRequests(c *gin.Context) {
	show, err := h.svc.DeleteAllRequests(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to delete requests")
		return
	}
	c.JSON(http.StatusOK, newQueueView(show))
}

// ResetAllVotes handles DELETE /v1/queue/votes
func (h *QueueHandler) ResetAllVotes(c *gin.Context) {
	show, err := h.svc.ResetAllVotes(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to reset votes")
		return
	}
	c.JSON(http.StatusOK, newQueueView(show))
}

// PlayNow handles POST /v1/queue/now-playing
func (h *QueueHandler) PlayNow(c *gin.Context) {
	var req queue.NowPlaying
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.svc.PlayNow(c.Request.Context(), middleware.GetShowToken(c), req)
	if err != nil {
		respondError(c, h.logger, err, "failed to set now playing")
		return
	}
	c.JSON(http.StatusOK, newQueueView(show))
}

// ClearNowPlaying handles DELETE /v1/queue/now-playing
func (h *QueueHandler) ClearNowPlaying(c *gin.Context) {
	show, err := h.svc.ClearNowPlaying(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to clear now playing")
		return
	}
	c.JSON(http.StatusOK, newQueueView(show))
}

// UpdatePreferences handles PUT /v1/preferences
func (h *QueueHandler) UpdatePreferences(c *gin.Context) {
	var req models.Preferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.svc.UpdatePreferences(c.Request.Context(), middleware.GetShowToken(c), req)
	if err != nil {
		respondError(c, h.logger, err, "failed to update preferences")
		return
	}
	c.JSON(http.StatusOK, show.Preferences)
}

// UpdateSequences handles PUT /v1/sequences. The body is the full catalog.
func (h *QueueHandler) UpdateSequences(c *gin.Context) {
	var req []models.Sequence
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.svc.UpdateSequences(c.Request.Context(), middleware.GetShowToken(c), req)
	if err != nil {
		respondError(c, h.logger, err, "failed to update sequences")
		return
	}
	c.JSON(http.StatusOK, show.Sequences)
}

// UpdateSequenceGroups handles PUT /v1/sequence-groups
func (h *QueueHandler) UpdateSequenceGroups(c *gin.Context) {
	var req []models.SequenceGroup
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	show, err := h.svc.UpdateSequenceGroups(c.Request.Context(), middleware.GetShowToken(c), req)
	if err != nil {
		respondError(c, h.logger, err, "failed to update sequence groups")
		return
	}
	c.JSON(http.StatusOK, show.SequenceGroups)
}
