package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
	"github.com/lalith-99/controlpanel/internal/notifications"
	"github.com/lalith-99/controlpanel/internal/queue"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/lalith-99/controlpanel/internal/stats"
)

// respondError maps a service error onto a status code. Anything it does
// not recognise is logged and returned as a 500 with fallback as message.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var qerr *queue.Error
	switch {
	case errors.As(err, &qerr):
		c.JSON(queueStatus(qerr.Code), gin.H{"error": string(qerr.Code), "message": qerr.Error()})
	case errors.Is(err, repository.ErrShowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "show not found"})
	case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, repository.ErrLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "show was modified concurrently, retry"})
	case errors.Is(err, notifications.ErrInvalidType),
		errors.Is(err, notifications.ErrMissingSubject),
		errors.Is(err, stats.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback,
			zap.String("show_token", middleware.GetShowToken(c)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func queueStatus(code queue.Code) int {
	switch code {
	case queue.CodeSequenceNotFound:
		return http.StatusNotFound
	case queue.CodeInvalidMode:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}
