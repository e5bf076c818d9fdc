package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

// ShowStore keeps each show as one JSONB document. The version,
// heartbeat_enabled and last_fpp_heartbeat columns mirror fields of the
// document so the version check and the heartbeat sweep stay in SQL.
type ShowStore struct {
	pool *pgxpool.Pool
}

func NewShowStore(pool *pgxpool.Pool) *ShowStore {
	return &ShowStore{pool: pool}
}

func (s *ShowStore) GetByToken(ctx context.Context, showToken string) (*models.Show, error) {
	return s.getOne(ctx, `SELECT version, document FROM shows WHERE show_token = $1`, showToken)
}

func (s *ShowStore) GetByEmail(ctx context.Context, email string) (*models.Show, error) {
	return s.getOne(ctx, `SELECT version, document FROM shows WHERE email = $1`, email)
}

func (s *ShowStore) getOne(ctx context.Context, query string, args ...any) (*models.Show, error) {
	var (
		version int64
		doc     []byte
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(&version, &doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrShowNotFound
		}
		return nil, fmt.Errorf("get show: %w", err)
	}

	var show models.Show
	if err := json.Unmarshal(doc, &show); err != nil {
		return nil, fmt.Errorf("decode show: %w", err)
	}
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.pool.Exec(ctx, query,
		show.ID,
		show.ShowToken,
		nullIfEmpty(show.Email),
		nullIfEmpty(show.ShowSubdomain),
		show.Version,
		show.Preferences.NotificationPreferences.EnableFppHeartbeat,
		show.LastFppHeartbeat,
		doc,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrShowExists
		}
		return fmt.Errorf("insert show: %w", err)
	}
	return nil
}

// Save is a compare-and-swap on the version column. Zero rows updated
// means either the show is gone or someone else saved first; a second
// lookup tells the two apart.
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
		SET version = $1,
		    email = $2,
		    show_subdomain = $3,
		    heartbeat_enabled = $4,
		    last_fpp_heartbeat = $5,
		    document = $6,
		    updated_at = now()
		WHERE show_token = $7 AND version = $8`

	tag, err := s.pool.Exec(ctx, query,
		show.Version,
		nullIfEmpty(show.Email),
		nullIfEmpty(show.ShowSubdomain),
		show.Preferences.NotificationPreferences.EnableFppHeartbeat,
		show.LastFppHeartbeat,
		doc,
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
	if tag.RowsAffected() == 1 {
		return nil
	}

	show.Version = expected

	var exists bool
	err = s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shows WHERE show_token = $1)`, show.ShowToken,
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
		WHERE heartbeat_enabled
		  AND last_fpp_heartbeat IS NOT NULL
		  AND last_fpp_heartbeat < $1
		ORDER BY show_token`

	rows, err := s.pool.Query(ctx, query, before)
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

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// isUniqueViolation reports a unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
