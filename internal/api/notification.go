package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
	"github.com/lalith-99/controlpanel/internal/models"
)

type NotificationService interface {
	List(ctx context.Context, showToken string) ([]models.ShowNotification, error)
	MarkRead(ctx context.Context, showToken string, ids []uuid.UUID) error
	DeleteForShow(ctx context.Context, showToken string, id uuid.UUID) error
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type NotificationHandler struct {
	svc    NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List handles GET /v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	visible, err := h.svc.List(c.Request.Context(), middleware.GetShowToken(c))
	if err != nil {
		respondError(c, h.logger, err, "failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, visible)
}

type markReadRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

// MarkRead handles POST /v1/notifications/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), middleware.GetShowToken(c), req.IDs); err != nil {
		respondError(c, h.logger, err, "failed to mark notifications read")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteForShow handles DELETE /v1/notifications/:id
func (h *NotificationHandler) DeleteForShow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.svc.DeleteForShow(c.Request.Context(), middleware.GetShowToken(c), id); err != nil {
		respondError(c, h.logger, err, "failed to delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}

type createNotificationRequest struct {
	Type    models.NotificationType `json:"type"`
	Subject string                  `json:"subject" binding:"required"`
	Preview string                  `json:"preview"`
	Message string                  `json:"message"`
}

// Create handles POST /v1/admin/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	n, err := h.svc.Create(c.Request.Context(), models.Notification{
		Type:    req.Type,
		Subject: req.Subject,
		Preview: req.Preview,
		Message: req.Message,
	})
	if err != nil {
		respondError(c, h.logger, err, "failed to create notification")
		return
	}
	c.JSON(http.StatusCreated, n)
}

// Delete handles DELETE /v1/admin/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete notification")
		return
	}
	c.Status(http.StatusNoContent)
}
