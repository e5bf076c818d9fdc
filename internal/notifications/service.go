package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/observ"
	"github.com/lalith-99/controlpanel/internal/repository"
)

var (
	ErrInvalidType    = errors.New("invalid notification type")
	ErrMissingSubject = errors.New("notification subject is required")
)

// Service runs the notification operations of one show, or of the shared
// catalog for the admin ones. Show operations go through repository.Mutate.
type Service struct {
	shows   repository.ShowRepository
	catalog repository.NotificationRepository
	locker  repository.Locker
	clock   clock.Clock
	logger  *zap.Logger
}

func NewService(shows repository.ShowRepository, catalog repository.NotificationRepository, locker repository.Locker, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{
		shows:   shows,
		catalog: catalog,
		locker:  locker,
		clock:   clk,
		logger:  logger,
	}
}

// List reconciles the show against the catalog, stores the merged overlay
// and returns the visible view.
func (s *Service) List(ctx context.Context, showToken string) ([]models.ShowNotification, error) {
	catalog, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	var visible []models.ShowNotification
	_, err = repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		garbled := 0
		for _, entry := range show.ShowNotifications {
			if entry.Notification == nil {
				garbled++
			}
		}
		if garbled > 0 {
			observ.ForShow(s.logger, showToken).Debug("dropping garbled show notifications",
				zap.Int("count", garbled),
			)
		}

		result := Reconcile(catalog, show.ShowNotifications, show.PurgedNotifications, s.clock.Now())
		show.ShowNotifications = result.Merged
		show.PurgedNotifications = result.Purged
		visible = result.Visible
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visible, nil
}

// MarkRead flags the given notifications as read. Unknown ids are ignored.
func (s *Service) MarkRead(ctx context.Context, showToken string, ids []uuid.UUID) error {
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	_, err := repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		for i := range show.ShowNotifications {
			n := show.ShowNotifications[i].Notification
			if n == nil {
				continue
			}
			if _, ok := wanted[n.UUID]; ok {
				show.ShowNotifications[i].Read = true
			}
		}
		return nil
	})
	return err
}

// DeleteForShow marks one notification deleted for this show only. The
// next reconciliation applies the type's retention policy to it.
func (s *Service) DeleteForShow(ctx context.Context, showToken string, id uuid.UUID) error {
	_, err := repository.Mutate(ctx, s.shows, s.locker, showToken, func(show *models.Show) error {
		for i := range show.ShowNotifications {
			n := show.ShowNotifications[i].Notification
			if n != nil && n.UUID == id {
				show.ShowNotifications[i].Deleted = true
			}
		}
		return nil
	})
	return err
}

// Create adds an entry to the shared catalog. UUID and CreatedDate are
// filled in when absent; an empty type means ADMIN.
func (s *Service) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.Type == "" {
		n.Type = models.NotificationTypeAdmin
	}
	if _, ok := retentionPolicies[n.Type]; !ok {
		return models.Notification{}, fmt.Errorf("%w: %q", ErrInvalidType, n.Type)
	}
	if strings.TrimSpace(n.Subject) == "" {
		return models.Notification{}, ErrMissingSubject
	}
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedDate == nil {
		now := s.clock.Now()
		n.CreatedDate = &now
	}

	if err := s.catalog.Create(ctx, n); err != nil {
		return models.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	s.logger.Info("notification created",
		zap.String("uuid", n.UUID.String()),
		zap.String("type", string(n.Type)),
	)
	return n, nil
}

// Delete removes an entry from the shared catalog. Shows drop their
// overlay entry for it on their next reconciliation.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.catalog.DeleteByUUID(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	s.logger.Info("notification deleted", zap.String("uuid", id.String()))
	return nil
}

// AddToShow attaches a show-local notification that never lives in the
// catalog. It only mutates show; the caller saves it.
func AddToShow(show *models.Show, n models.Notification, typ models.NotificationType, now time.Time) models.Notification {
	n.Type = typ
	if n.UUID == uuid.Nil {
		n.UUID = uuid.New()
	}
	if n.CreatedDate == nil {
		n.CreatedDate = &now
	}
	show.ShowNotifications = append(show.ShowNotifications, models.ShowNotification{
		Notification: snapshot(n),
	})
	return n
}
