package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/lalith-99/controlpanel/internal/testutil"
)

var now = time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)

func stat(kind models.StatKind, at time.Time) models.Stat {
	return models.Stat{Kind: kind, Action: "x", DateTime: at}
}

func TestRecorder_AppendRoutesByKind(t *testing.T) {
	rec := NewRecorder(clock.NewFixed(now), nil, zap.NewNop())
	show := &models.Show{}

	for _, kind := range []models.StatKind{
		models.StatKindPage, models.StatKindJukebox, models.StatKindVote, models.StatKindVoteWin,
	} {
		s, ok := rec.Append(show, kind, "a", "wizards", true)
		require.True(t, ok)
		assert.Equal(t, now, s.DateTime)
		assert.True(t, s.Owner)
	}

	assert.Len(t, show.Stats.Page, 1)
	assert.Len(t, show.Stats.Jukebox, 1)
	assert.Len(t, show.Stats.Voting, 1)
	assert.Len(t, show.Stats.VotingWin, 1)
	assert.Equal(t, "wizards", show.Stats.Jukebox[0].SequenceName)
}

func TestRecorder_AppendUnknownKind(t *testing.T) {
	rec := NewRecorder(clock.NewFixed(now), nil, zap.NewNop())
	show := &models.Show{}

	_, ok := rec.Append(show, "MYSTERY", "a", "", false)
	assert.False(t, ok)
	assert.Equal(t, models.Stats{}, show.Stats)
}

func TestRecorder_PublishSwallowsErrors(t *testing.T) {
	pub := &testutil.RecordingPublisher{Err: errors.New("broker down")}
	rec := NewRecorder(clock.NewFixed(now), pub, zap.NewNop())

	assert.NotPanics(t, func() {
		rec.Publish(context.Background(), "tok", stat(models.StatKindPage, now))
	})
	assert.Empty(t, pub.Published())
}

func TestPurge(t *testing.T) {
	cutoff := now.AddDate(0, -18, 0)
	show := &models.Show{Stats: models.Stats{
		Page:      []models.Stat{stat(models.StatKindPage, cutoff.Add(-time.Second)), stat(models.StatKindPage, cutoff)},
		Jukebox:   []models.Stat{stat(models.StatKindJukebox, now)},
		Voting:    []models.Stat{stat(models.StatKindVote, cutoff.AddDate(-1, 0, 0))},
		VotingWin: []models.Stat{stat(models.StatKindVoteWin, cutoff.Add(time.Hour))},
	}}

	removed := Purge(show, now)

	assert.Equal(t, 2, removed)
	assert.Len(t, show.Stats.Page, 1)
	assert.Len(t, show.Stats.Jukebox, 1)
	assert.Empty(t, show.Stats.Voting)
	assert.Len(t, show.Stats.VotingWin, 1)
}

func TestDeleteWithinRange_ExclusiveBounds(t *testing.T) {
	start := now.Add(-2 * time.Hour)
	end := now.Add(-time.Hour)
	show := &models.Show{Stats: models.Stats{
		Jukebox: []models.Stat{
			stat(models.StatKindJukebox, start),
			stat(models.StatKindJukebox, start.Add(time.Minute)),
			stat(models.StatKindJukebox, end.Add(-time.Minute)),
			stat(models.StatKindJukebox, end),
		},
		Page: []models.Stat{stat(models.StatKindPage, now)},
	}}

	removed := DeleteWithinRange(show, start, end)

	assert.Equal(t, 2, removed)
	require.Len(t, show.Stats.Jukebox, 2)
	assert.Equal(t, start, show.Stats.Jukebox[0].DateTime)
	assert.Equal(t, end, show.Stats.Jukebox[1].DateTime)
	assert.Len(t, show.Stats.Page, 1)
}

func setupService(t *testing.T) (*Service, testutil.Stores, *testutil.RecordingPublisher) {
	t.Helper()

	stores := testutil.NewStores(t)
	clk := clock.NewFixed(now)
	pub := &testutil.RecordingPublisher{}
	rec := NewRecorder(clk, pub, zap.NewNop())
	return NewService(stores.Shows, repository.NopLocker{}, rec, clk, zap.NewNop()), stores, pub
}

func TestService_RecordPageViewAndVoteWin(t *testing.T) {
	svc, stores, pub := setupService(t)
	ctx := context.Background()
	stores.SeedShow(t, testutil.VotingShow("tok"))

	require.NoError(t, svc.RecordPageView(ctx, "tok"))
	require.NoError(t, svc.RecordVoteWin(ctx, "tok", "wizards"))

	stored := stores.LoadShow(t, "tok")
	require.Len(t, stored.Stats.Page, 1)
	require.Len(t, stored.Stats.VotingWin, 1)
	assert.Equal(t, "wizards", stored.Stats.VotingWin[0].SequenceName)

	published := pub.Published()
	require.Len(t, published, 2)
	assert.Equal(t, "tok", published[0].ShowToken)
	assert.Equal(t, models.StatKindPage, published[0].Stat.Kind)
	assert.Equal(t, models.StatKindVoteWin, published[1].Stat.Kind)
}

func TestService_PurgeAndRange(t *testing.T) {
	svc, stores, _ := setupService(t)
	ctx := context.Background()

	show := testutil.JukeboxShow("tok")
	show.Stats.Page = []models.Stat{
		stat(models.StatKindPage, now.AddDate(-2, 0, 0)),
		stat(models.StatKindPage, now.Add(-90*time.Minute)),
		stat(models.StatKindPage, now),
	}
	stores.SeedShow(t, show)

	removed, err := svc.Purge(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = svc.DeleteWithinRange(ctx, "tok", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	stored := stores.LoadShow(t, "tok")
	require.Len(t, stored.Stats.Page, 1)
	assert.True(t, stored.Stats.Page[0].DateTime.Equal(now))
}

func TestService_DeleteWithinRangeRejectsInvertedRange(t *testing.T) {
	svc, stores, _ := setupService(t)
	stores.SeedShow(t, testutil.JukeboxShow("tok"))

	_, err := svc.DeleteWithinRange(context.Background(), "tok", now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestService_MissingShow(t *testing.T) {
	svc, _, pub := setupService(t)

	err := svc.RecordPageView(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
	assert.Empty(t, pub.Published())
}
