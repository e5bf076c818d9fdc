package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/db"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

var (
	_ repository.ShowRepository         = (*ShowStore)(nil)
	_ repository.NotificationRepository = (*NotificationStore)(nil)
)

// setupTestPool connects to DATABASE_URL and applies the schema. Tests are
// skipped when it is not set.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.New(ctx, url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(database.Close)
	require.NoError(t, database.Migrate(ctx))
	return database.Pool()
}

func seedShow(t *testing.T, pool *pgxpool.Pool, store *ShowStore) *models.Show {
	t.Helper()

	show := &models.Show{
		ShowToken: "test-" + uuid.NewString(),
		ShowName:  "Lights on Elm",
		Preferences: models.Preferences{
			ViewerControlMode: models.ViewerControlModeJukebox,
		},
	}
	require.NoError(t, store.Create(context.Background(), show))
	t.Cleanup(func() {
		pool.Exec(context.Background(), `DELETE FROM shows WHERE show_token = $1`, show.ShowToken)
	})
	return show
}

func TestShowStore_SaveBumpsVersion(t *testing.T) {
	pool := setupTestPool(t)
	store := NewShowStore(pool)
	ctx := context.Background()
	created := seedShow(t, pool, store)

	show, err := store.GetByToken(ctx, created.ShowToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), show.Version)

	show.PlayingNow = "Carol of the Bells"
	require.NoError(t, store.Save(ctx, show))
	assert.Equal(t, int64(2), show.Version)

	reloaded, err := store.GetByToken(ctx, created.ShowToken)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.Version)
	assert.Equal(t, "Carol of the Bells", reloaded.PlayingNow)
}

func TestShowStore_StaleSaveConflicts(t *testing.T) {
	pool := setupTestPool(t)
	store := NewShowStore(pool)
	ctx := context.Background()
	created := seedShow(t, pool, store)

	first, err := store.GetByToken(ctx, created.ShowToken)
	require.NoError(t, err)
	second, err := store.GetByToken(ctx, created.ShowToken)
	require.NoError(t, err)

	first.PlayingNow = "first"
	require.NoError(t, store.Save(ctx, first))

	second.PlayingNow = "second"
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, int64(1), second.Version, "failed save must not bump the in-memory version")

	reloaded, err := store.GetByToken(ctx, created.ShowToken)
	require.NoError(t, err)
	assert.Equal(t, "first", reloaded.PlayingNow)
}

func TestShowStore_SaveMissingShow(t *testing.T) {
	store := NewShowStore(setupTestPool(t))

	err := store.Save(context.Background(), &models.Show{ShowToken: "missing-" + uuid.NewString(), Version: 1})
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestShowStore_CreateDuplicate(t *testing.T) {
	pool := setupTestPool(t)
	store := NewShowStore(pool)
	created := seedShow(t, pool, store)

	err := store.Create(context.Background(), &models.Show{ShowToken: created.ShowToken})
	assert.ErrorIs(t, err, repository.ErrShowExists)
}
