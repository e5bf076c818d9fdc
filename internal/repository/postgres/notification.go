package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/controlpanel/internal/models"
)

type NotificationStore struct {
	pool *pgxpool.Pool
}

func NewNotificationStore(pool *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

func (s *NotificationStore) ListAll(ctx context.Context) ([]models.Notification, error) {
	query := `
		SELECT uuid, type, created_date, subject, preview, message
		FROM notifications
		ORDER BY created_date DESC NULLS LAST`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var (
			n   models.Notification
			typ string
		)
		if err := rows.Scan(
			&n.UUID,
			&typ,
			&n.CreatedDate,
			&n.Subject,
			&n.Preview,
			&n.Message,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

func (s *NotificationStore) Create(ctx context.Context, n models.Notification) error {
	query := `
		INSERT INTO notifications (uuid, type, created_date, subject, preview, message)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.pool.Exec(ctx, query,
		n.UUID,
		string(n.Type),
		n.CreatedDate,
		n.Subject,
		n.Preview,
		n.Message,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// DeleteByUUID is idempotent: deleting a missing row affects zero rows
// and is not an error.
func (s *NotificationStore) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
