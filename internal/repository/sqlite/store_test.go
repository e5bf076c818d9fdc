package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
)

// Compile-time checks that the stores satisfy the contracts.
var (
	_ repository.ShowRepository         = (*ShowStore)(nil)
	_ repository.NotificationRepository = (*NotificationStore)(nil)
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedShow(t *testing.T, store *ShowStore, token string) *models.Show {
	t.Helper()

	show := &models.Show{
		ShowToken: token,
		ShowName:  "Lights on Elm",
		Preferences: models.Preferences{
			ViewerControlMode: models.ViewerControlModeJukebox,
		},
	}
	require.NoError(t, store.Create(context.Background(), show))
	return show
}

func TestShowStore_CreateAndGet(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()

	created := seedShow(t, store, "tok-1")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, int64(1), created.Version)

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Lights on Elm", got.ShowName)
	assert.Equal(t, models.ViewerControlModeJukebox, got.Preferences.ViewerControlMode)
}

func TestShowStore_GetMissing(t *testing.T) {
	store := NewShowStore(setupTestDB(t))

	_, err := store.GetByToken(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestShowStore_SaveBumpsVersion(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()
	seedShow(t, store, "tok-1")

	show, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)

	show.PlayingNow = "Carol of the Bells"
	require.NoError(t, store.Save(ctx, show))
	assert.Equal(t, int64(2), show.Version)

	reloaded, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.Version)
	assert.Equal(t, "Carol of the Bells", reloaded.PlayingNow)
}

func TestShowStore_StaleSaveConflicts(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()
	seedShow(t, store, "tok-1")

	first, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	second, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)

	first.PlayingNow = "first"
	require.NoError(t, store.Save(ctx, first))

	second.PlayingNow = "second"
	err = store.Save(ctx, second)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, int64(1), second.Version, "failed save must not bump the in-memory version")

	reloaded, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "first", reloaded.PlayingNow)
}

func TestShowStore_SaveMissingShow(t *testing.T) {
	store := NewShowStore(setupTestDB(t))

	err := store.Save(context.Background(), &models.Show{ShowToken: "ghost", Version: 1})
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestShowStore_ListHeartbeatOverdue(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 12, 24, 21, 0, 0, 0, time.UTC)

	stale := now.Add(-10 * time.Minute)
	fresh := now.Add(-1 * time.Minute)

	for _, tc := range []struct {
		token     string
		enabled   bool
		heartbeat *time.Time
	}{
		{"stale-enabled", true, &stale},
		{"fresh-enabled", true, &fresh},
		{"stale-disabled", false, &stale},
		{"never-seen", true, nil},
	} {
		show := &models.Show{ShowToken: tc.token, LastFppHeartbeat: tc.heartbeat}
		show.Preferences.NotificationPreferences.EnableFppHeartbeat = tc.enabled
		require.NoError(t, store.Create(ctx, show))
	}

	tokens, err := store.ListHeartbeatOverdue(ctx, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"stale-enabled"}, tokens)
}

func TestNotificationStore_Lifecycle(t *testing.T) {
	store := NewNotificationStore(setupTestDB(t))
	ctx := context.Background()

	older := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)
	a := models.Notification{UUID: uuid.New(), Type: models.NotificationTypeAdmin, CreatedDate: &older, Subject: "Welcome"}
	b := models.Notification{UUID: uuid.New(), Type: models.NotificationTypeUser, CreatedDate: &newer, Subject: "Update"}

	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, b))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.UUID, all[0].UUID)
	assert.Equal(t, models.NotificationTypeUser, all[0].Type)
	require.NotNil(t, all[1].CreatedDate)
	assert.True(t, older.Equal(*all[1].CreatedDate))

	require.NoError(t, store.DeleteByUUID(ctx, a.UUID))
	require.NoError(t, store.DeleteByUUID(ctx, a.UUID), "deleting twice is a no-op")

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b.UUID, all[0].UUID)
}

func TestNotificationStore_ListEmpty(t *testing.T) {
	store := NewNotificationStore(setupTestDB(t))

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestShowStore_GetByEmail(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()

	show := &models.Show{ShowToken: "tok-1", Email: "owner@example.com", ShowSubdomain: "elm"}
	require.NoError(t, store.Create(ctx, show))

	got, err := store.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.ShowToken)

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestShowStore_CreateDuplicate(t *testing.T) {
	store := NewShowStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Show{ShowToken: "tok-1", Email: "a@b.c", ShowSubdomain: "elm"}))

	err := store.Create(ctx, &models.Show{ShowToken: "tok-1"})
	assert.ErrorIs(t, err, repository.ErrShowExists)

	err = store.Create(ctx, &models.Show{ShowToken: "tok-2", Email: "a@b.c"})
	assert.ErrorIs(t, err, repository.ErrShowExists)

	err = store.Create(ctx, &models.Show{ShowToken: "tok-3", ShowSubdomain: "elm"})
	assert.ErrorIs(t, err, repository.ErrShowExists)

	// Shows without an email or subdomain do not collide with each other.
	require.NoError(t, store.Create(ctx, &models.Show{ShowToken: "tok-4"}))
	require.NoError(t, store.Create(ctx, &models.Show{ShowToken: "tok-5"}))
}
