// Package heartbeat alerts show owners whose FPP plugin stopped checking in.
package heartbeat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/notifications"
	"github.com/lalith-99/controlpanel/internal/observ"
	"github.com/lalith-99/controlpanel/internal/repository"
)

const Subject = "FPP Plugin Health"

// errSkip aborts a Mutate without saving when a show no longer needs an
// alert by the time it is locked.
var errSkip = errors.New("heartbeat alert not needed")

// Sweeper periodically attaches an FPP_HEALTH notification to every show
// whose plugin has been silent for longer than StaleAfter.
type Sweeper struct {
	shows  repository.ShowRepository
	locker repository.Locker
	clock  clock.Clock
	logger *zap.Logger

	Interval   time.Duration
	StaleAfter time.Duration
}

func NewSweeper(shows repository.ShowRepository, locker repository.Locker, clk clock.Clock, logger *zap.Logger, interval, staleAfter time.Duration) *Sweeper {
	return &Sweeper{
		shows:      shows,
		locker:     locker,
		clock:      clk,
		logger:     logger,
		Interval:   interval,
		StaleAfter: staleAfter,
	}
}

// Run sweeps every Interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.logger.Info("heartbeat sweeper started",
		zap.Duration("interval", s.Interval),
		zap.Duration("stale_after", s.StaleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("heartbeat sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("heartbeat sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce runs one pass and returns the tokens of shows that were
// alerted. A failure on one show is logged and does not stop the pass.
func (s *Sweeper) SweepOnce(ctx context.Context) ([]string, error) {
	now := s.clock.Now()

	tokens, err := s.shows.ListHeartbeatOverdue(ctx, now.Add(-s.StaleAfter))
	if err != nil {
		return nil, fmt.Errorf("list overdue shows: %w", err)
	}

	var alerted []string
	for _, token := range tokens {
		if ctx.Err() != nil {
			return alerted, ctx.Err()
		}

		_, err := repository.Mutate(ctx, s.shows, s.locker, token, func(show *models.Show) error {
			if !s.due(show, now) {
				return errSkip
			}
			minutes := int(now.Sub(*show.LastFppHeartbeat).Minutes())
			notifications.AddToShow(show, Alert(minutes), models.NotificationTypeFppHealth, now)
			show.Preferences.NotificationPreferences.FppHeartbeatLastNotification = &now
			return nil
		})
		log := observ.ForShow(s.logger, token)
		switch {
		case err == nil:
			alerted = append(alerted, token)
			log.Info("sent FPP heartbeat notification")
		case errors.Is(err, errSkip):
		default:
			log.Warn("failed to alert show", zap.Error(err))
		}
	}

	return alerted, nil
}

// due re-checks the show under the lock. The query that found it may be
// stale, and the renotify and viewer-control rules live in the document.
func (s *Sweeper) due(show *models.Show, now time.Time) bool {
	prefs := show.Preferences.NotificationPreferences
	if !prefs.EnableFppHeartbeat || show.LastFppHeartbeat == nil {
		return false
	}
	if !show.LastFppHeartbeat.Before(now.Add(-s.StaleAfter)) {
		return false
	}
	if prefs.FppHeartbeatLastNotification != nil {
		quiet := time.Duration(prefs.FppHeartbeatRenotifyAfterMinutes-1) * time.Minute
		if prefs.FppHeartbeatLastNotification.After(now.Add(-quiet)) {
			return false
		}
	}
	if prefs.FppHeartbeatIfControlEnabled && !show.Preferences.ViewerControlEnabled {
		return false
	}
	return true
}

// Alert builds the notification text for a plugin silent for minutes.
func Alert(minutes int) models.Notification {
	checkedIn := fmt.Sprintf("FPP Plugin last checked in %d minutes ago", minutes)
	return models.Notification{
		Subject: Subject,
		Preview: checkedIn,
		Message: checkedIn + ". Either the plugin has been stopped or FPPD is not running.\n\n" +
			"This notification will be deleted after 24 hours.",
	}
}
