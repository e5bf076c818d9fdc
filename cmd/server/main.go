package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/account"
	"github.com/lalith-99/controlpanel/internal/api"
	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/config"
	"github.com/lalith-99/controlpanel/internal/db"
	"github.com/lalith-99/controlpanel/internal/events"
	"github.com/lalith-99/controlpanel/internal/heartbeat"
	"github.com/lalith-99/controlpanel/internal/lock"
	"github.com/lalith-99/controlpanel/internal/notifications"
	"github.com/lalith-99/controlpanel/internal/observ"
	"github.com/lalith-99/controlpanel/internal/queue"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/lalith-99/controlpanel/internal/repository/postgres"
	"github.com/lalith-99/controlpanel/internal/repository/sqlite"
	"github.com/lalith-99/controlpanel/internal/stats"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type stores struct {
	shows         repository.ShowRepository
	notifications repository.NotificationRepository
	health        func(ctx context.Context) error
	close         func()
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Open the show store
	// ---------------------------------------------------------------
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// ---------------------------------------------------------------
	// 4. Per-show lock. Without Redis the version check alone
	//    rejects concurrent writers.
	// ---------------------------------------------------------------
	var locker repository.Locker = repository.NopLocker{}
	if cfg.RedisURL != "" {
		client, err := lock.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		locker = lock.NewRedisLocker(client, cfg.LockTTL, logger)
		logger.Info("redis show lock enabled", zap.Duration("ttl", cfg.LockTTL))
	}

	// ---------------------------------------------------------------
	// 5. Stat publisher
	// ---------------------------------------------------------------
	var publisher stats.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	// ---------------------------------------------------------------
	// 6. Services
	// ---------------------------------------------------------------
	clk := clock.Real{}
	recorder := stats.NewRecorder(clk, publisher, logger)

	notificationService := notifications.NewService(st.shows, st.notifications, locker, clk, logger)
	queueManager := queue.NewManager(st.shows, locker, recorder, clk, logger)
	statsService := stats.NewService(st.shows, locker, recorder, clk, logger)
	accountService := account.NewService(st.shows, logger)

	// ---------------------------------------------------------------
	// 7. Heartbeat sweeper, stopped with ctx
	// ---------------------------------------------------------------
	sweeper := heartbeat.NewSweeper(st.shows, locker, clk, logger, cfg.HeartbeatInterval, cfg.HeartbeatStaleAfter)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	// ---------------------------------------------------------------
	// 8. HTTP server
	// ---------------------------------------------------------------
	router := api.NewRouter(api.Deps{
		JWTSecret:     cfg.JWTSecret,
		Shows:         st.shows,
		Notifications: notificationService,
		Queue:         queueManager,
		Stats:         statsService,
		Accounts:      accountService,
		Health:        st.health,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting control panel",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-sweepDone
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-sweepDone
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Store == "sqlite" {
		sqlDB, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Info("sqlite store opened", zap.String("path", cfg.SQLitePath))
		return &stores{
			shows:         sqlite.NewShowStore(sqlDB),
			notifications: sqlite.NewNotificationStore(sqlDB),
			health:        sqlDB.PingContext,
			close:         func() { sqlDB.Close() },
		}, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	pool := database.Pool()
	return &stores{
		shows:         postgres.NewShowStore(pool),
		notifications: postgres.NewNotificationStore(pool),
		health:        database.Health,
		close:         database.Close,
	}, nil
}
