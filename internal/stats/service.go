package stats

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

var ErrInvalidRange = errors.New("stats range start must be before end")

// Service exposes the stat operations that stand on their own, outside
// the queue operations that record stats as a side effect.
type Service struct {
	shows    repository.ShowRepository
	locker   repository.Locker
	recorder *Recorder
	clock    clock.Clock
	logger   *zap.Logger
}

func NewService(shows repository.ShowRepository, locker repository.Locker, recorder *Recorder, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{
		shows:    shows,
		locker:   locker,
		recorder: recorder,
		clock:    clk,
		logger:   logger,
	}
}

func (s *Service) RecordPageView(ctx context.Context, showToken string) error {
	return s.record(ctx, showToken, models.StatKindPage, ActionView, "")
}

func (s *Service) RecordVoteWin(ctx context.Context, showToken, sequence string) error {
	return s.record(ctx, showToken, models.StatKindVoteWin, ActionWin, sequence)
}

func (s *Service) record(ctx context.Context, showToken string, kind models.StatKind, action, sequence string) error {
	var stat models.Stat
	_, err := repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		stat, _ = s.recorder.Append(show, kind, action, sequence, false)
		return nil
	})
	if err != nil {
		return err
	}
	s.recorder.Publish(ctx, showToken, stat)
	return nil
}

// Purge removes records past the retention window.
func (s *Service) Purge(ctx context.Context, showToken string) (int, error) {
	removed := 0
	_, err := repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		removed = Purge(show, s.clock.Now())
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stats purged",
		zap.String("show_token", showToken),
		zap.Int("removed", removed),
	)
	return removed, nil
}

func (s *Service) DeleteWithinRange(ctx context.Context, showToken string, start, end time.Time) (int, error) {
	if !start.Before(end) {
		return 0, ErrInvalidRange
	}

	removed := 0
	_, err := repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		removed = DeleteWithinRange(show, start, end)
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stats deleted within range",
		zap.String("show_token", showToken),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("removed", removed),
	)
	return removed, nil
}
