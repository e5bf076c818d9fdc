package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/middleware"
	"github.com/lalith-99/controlpanel/internal/repository"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	JWTSecret     string
	Shows         repository.ShowRepository
	Notifications NotificationService
	Queue         QueueService
	Stats         StatsService
	Accounts      AccountService
	// Health reports whether the backing store is reachable. Optional.
	Health func(ctx context.Context) error
	Logger *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	srv := gin.New()
	srv.Use(gin.Recovery(), requestLogger(d.Logger))

	// Public: load balancers hit this without a token.
	srv.GET("/v1/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(d.Accounts, d.JWTSecret, d.Logger)
	public := srv.Group("/v1/auth")
	public.POST("/signup", authHandler.Signup)
	public.POST("/login", authHandler.Login)

	showHandler := NewShowHandler(d.Shows, d.Logger)
	notificationHandler := NewNotificationHandler(d.Notifications, d.Logger)
	queueHandler := NewQueueHandler(d.Queue, d.Logger)
	statsHandler := NewStatsHandler(d.Stats, d.Logger)

	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(d.JWTSecret))

	v1.GET("/show", showHandler.Get)

	v1.GET("/notifications", notificationHandler.List)
	v1.POST("/notifications/read", notificationHandler.MarkRead)
	v1.DELETE("/notifications/:id", notificationHandler.DeleteForShow)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/notifications", notificationHandler.Create)
	admin.DELETE("/notifications/:id", notificationHandler.Delete)

	v1.POST("/queue/play", queueHandler.Play())
	v1.DELETE("/queue/requests/:position", queueHandler.DeleteRequest)
	v1.DELETE("/queue/requests", queueHandler.DeleteAllRequests)
	v1.DELETE("/queue/votes", queueHandler.ResetAllVotes)
	v1.POST("/queue/now-playing", queueHandler.PlayNow)
	v1.DELETE("/queue/now-playing", queueHandler.ClearNowPlaying)
	v1.PUT("/preferences", queueHandler.UpdatePreferences)
	v1.PUT("/sequences", queueHandler.UpdateSequences)
	v1.PUT("/sequence-groups", queueHandler.UpdateSequenceGroups)

	v1.POST("/viewer/requests", queueHandler.Request())
	v1.POST("/viewer/votes", queueHandler.Vote())

	v1.POST("/stats/page-view", statsHandler.PageView)
	v1.POST("/stats/vote-win", statsHandler.VoteWin)
	v1.POST("/stats/purge", statsHandler.Purge)
	v1.DELETE("/stats", statsHandler.DeleteWithinRange)

	return srv
}

// requestLogger writes one zap line per request in place of gin.Logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("show_token", middleware.GetShowToken(c)),
		)
	}
}
