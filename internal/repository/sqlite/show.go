package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

type ShowStore struct {
	db *sql.DB
}

func NewShowStore(db *sql.DB) *ShowStore {
	return &ShowStore{db: db}
}

func (s *ShowStore) GetByToken(ctx context.Context, showToken string) (*models.Show, error) {
	return s.getBy(ctx, "show_token", showToken)
}

func (s *ShowStore) GetByEmail(ctx context.Context, email string) (*models.Show, error) {
	return s.getBy(ctx, "email", email)
}

// getBy loads one show by a unique column. column is always a constant
// chosen by the caller above, never user input.
func (s *ShowStore) getBy(ctx context.Context, column, value string) (*models.Show, error) {
	query := `SELECT version, document FROM shows WHERE ` + column + ` = ?`

	var (
		version int64
		doc     string
	)
	err := s.db.QueryRowContext(ctx, query, value).Scan(&version, &doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrShowNotFound
		}
		return nil, fmt.Errorf("get show: %w", err)
	}

	var show models.Show
	if err := json.Unmarshal([]byte(doc), &show); err != nil {
		return nil, fmt.Errorf("decode show: %w", err)
	}
	// The column is authoritative; the document copy may lag one save.
	show.Version = version
	return &show, nil
}

func (s *ShowStore) Create(ctx context.Context, show *models.Show) error {
	if show.ID == uuid.Nil {
		show.ID = uuid.New()
	}
	show.Version = 1

	doc, err := json.Marshal(show)
	if err != nil {
		return fmt.Errorf("encode show: %w", err)
	}

	query := `
		INSERT INTO shows (id, show_token, email, show_subdomain, version, heartbeat_enabled, last_fpp_heartbeat, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		show.ID.String(),
		show.ShowToken,
		nullIfEmpty(show.Email),
		nullIfEmpty(show.ShowSubdomain),
		show.Version,
		show.Preferences.NotificationPreferences.EnableFppHeartbeat,
		unixMillis(show.LastFppHeartbeat),
		string(doc),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrShowExists
		}
		return fmt.Errorf("insert show: %w", err)
	}
	return nil
}

func (s *ShowStore) Save(ctx context.Context, show *models.Show) error {
	expected := show.Version
	show.Version = expected + 1

	doc, err := json.Marshal(show)
	if err != nil {
		show.Version = expected
		return fmt.Errorf("encode show: %w", err)
	}

	query := `
		UPDATE shows
		SET version = ?, email = ?, show_subdomain = ?, heartbeat_enabled = ?, last_fpp_heartbeat = ?, document = ?
		WHERE show_token = ? AND version = ?`
	res, err := s.db.ExecContext(ctx, query,
		show.Version,
		nullIfEmpty(show.Email),
		nullIfEmpty(show.ShowSubdomain),
		show.Preferences.NotificationPreferences.EnableFppHeartbeat,
		unixMillis(show.LastFppHeartbeat),
		string(doc),
		show.ShowToken,
		expected,
	)
	if err != nil {
		show.Version = expected
		if isUniqueViolation(err) {
			return repository.ErrShowExists
		}
		return fmt.Errorf("update show: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		show.Version = expected
		return fmt.Errorf("update show: %w", err)
	}
	if n == 0 {
		show.Version = expected
		return s.missOrConflict(ctx, show.ShowToken)
	}
	return nil
}

// missOrConflict tells a deleted show apart from a stale version after an
// UPDATE matched no row.
func (s *ShowStore) missOrConflict(ctx context.Context, showToken string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE show_token = ?)`, showToken,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check show: %w", err)
	}
	if !exists {
		return repository.ErrShowNotFound
	}
	return repository.ErrVersionConflict
}

func (s *ShowStore) ListHeartbeatOverdue(ctx context.Context, before time.Time) ([]string, error) {
	query := `
		SELECT show_token
		FROM shows
		WHERE heartbeat_enabled = 1
		  AND last_fpp_heartbeat IS NOT NULL
		  AND last_fpp_heartbeat < ?
		ORDER BY show_token`

	rows, err := s.db.QueryContext(ctx, query, before.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list overdue shows: %w", err)
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan show token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shows: %w", err)
	}
	return tokens, nil
}

func unixMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
