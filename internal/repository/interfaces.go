package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/controlpanel/internal/models"
)

// Every method takes ctx first: all implementations talk to a database.
//
// Shows are addressed by show token, never by an ambient "current user".
// The HTTP layer pulls the token out of the JWT and passes it down
// explicitly.

// ShowRepository loads and saves the Show aggregate as a single document.
type ShowRepository interface {
	// GetByToken returns the show. Returns ErrShowNotFound if there is none.
	GetByToken(ctx context.Context, showToken string) (*models.Show, error)

	// GetByEmail returns the show owned by email. Returns ErrShowNotFound
	// if there is none.
	GetByEmail(ctx context.Context, email string) (*models.Show, error)

	// Create stores a brand-new show with Version 1. Returns ErrShowExists
	// if the token, email or subdomain is taken.
	Create(ctx context.Context, show *models.Show) error

	// Save writes the show back only if the stored version still equals
	// show.Version, then increments show.Version. A stale write returns
	// ErrVersionConflict and changes nothing.
	Save(ctx context.Context, show *models.Show) error

	// ListHeartbeatOverdue returns the tokens of shows with heartbeat alerts
	// enabled whose last FPP heartbeat is older than before.
	ListHeartbeatOverdue(ctx context.Context, before time.Time) ([]string, error)
}

// NotificationRepository is the shared, admin-maintained catalog.
type NotificationRepository interface {
	// ListAll returns every catalog entry. Returns an empty slice, not nil.
	ListAll(ctx context.Context) ([]models.Notification, error)

	// Create inserts a catalog entry. UUID and CreatedDate must be set.
	Create(ctx context.Context, n models.Notification) error

	// DeleteByUUID removes a catalog entry. No-op if it does not exist.
	DeleteByUUID(ctx context.Context, id uuid.UUID) error
}
