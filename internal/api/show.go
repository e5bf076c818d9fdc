package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
	"github.com/lalith-99/controlpanel/internal/queue"
	"github.com/lalith-99/controlpanel/internal/repository"
)

type ShowHandler struct {
	shows  repository.ShowRepository
	logger *zap.Logger
}

func NewShowHandler(shows repository.ShowRepository, logger *zap.Logger) *ShowHandler {
	return &ShowHandler{shows: shows, logger: logger}
}

// Get handles GET /v1/show. The queue comes back in play order and the
// votes in rank order; notifications are served by their own endpoint.
func (h *ShowHandler) Get(c *gin.Context) {
	show, err := h.shows.GetByToken(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to get show")
		return
	}

	show.Requests = queue.SortedRequests(show.Requests)
	show.Votes = queue.RankVotes(show.Votes)
	show.PasswordHash = ""
	show.ShowNotifications = nil
	show.PurgedNotifications = nil

	c.JSON(http.StatusOK, show)
}
