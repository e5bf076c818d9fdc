package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/controlpanel/internal/models"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) ListAll(ctx context.Context) ([]models.Notification, error) {
	query := `
		SELECT uuid, type, created_date, subject, preview, message
		FROM notifications
		ORDER BY created_date DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var (
			n       models.Notification
			id      string
			typ     string
			created sql.NullInt64
		)
		if err := rows.Scan(&id, &typ, &created, &n.Subject, &n.Preview, &n.Message); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse notification uuid %q: %w", id, err)
		}
		n.UUID = parsed
		n.Type = models.NotificationType(typ)
		if created.Valid {
			t := time.UnixMilli(created.Int64).UTC()
			n.CreatedDate = &t
		}
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
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		n.UUID.String(),
		string(n.Type),
		unixMillis(n.CreatedDate),
		n.Subject,
		n.Preview,
		n.Message,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE uuid = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}
