package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
)

type StatsService interface {
	RecordPageView(ctx context.Context, showToken string) error
	RecordVoteWin(ctx context.Context, showToken, sequence string) error
	Purge(ctx context.Context, showToken string) (int, error)
	DeleteWithinRange(ctx context.Context, showToken string, start, end time.Time) (int, error)
}

type StatsHandler struct {
	svc    StatsService
	logger *zap.Logger
}

func NewStatsHandler(svc StatsService, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, logger: logger}
}

// PageView handles POST /v1/stats/page-view
func (h *StatsHandler) PageView(c *gin.Context) {
	if err := h.svc.RecordPageView(c.Request.Context(), middleware.GetShowToken(c)); err != nil {
		respondError(c, h.logger, err, "failed to record page view")
		return
	}
	c.Status(http.StatusNoContent)
}

// VoteWin handles POST /v1/stats/vote-win
func (h *StatsHandler) VoteWin(c *gin.Context) {
	var req sequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.RecordVoteWin(c.Request.Context(), middleware.GetShowToken(c), req.Sequence); err != nil {
		respondError(c, h.logger, err, "failed to record vote win")
		return
	}
	c.Status(http.StatusNoContent)
}

// Purge handles POST /v1/stats/purge
func (h *StatsHandler) Purge(c *gin.Context) {
	removed, err := h.svc.Purge(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to purge stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// DeleteWithinRange handles DELETE /v1/stats?start=<ms>&end=<ms>
func (h *StatsHandler) DeleteWithinRange(c *gin.Context) {
	start, err := parseEpochMillis(c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	end, err := parseEpochMillis(c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
		return
	}

	removed, err := h.svc.DeleteWithinRange(c.Request.Context(), middleware.GetShowToken(c), start, end)
	if err != nil {
		respondError(c, h.logger, err, "failed to delete stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func parseEpochMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
