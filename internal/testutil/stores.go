// Package testutil builds in-memory stores for package tests. Every helper
// goes through sqlite.Open so tests run against the real schema.
package testutil

import (
	"context"
	"testing"

	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository/sqlite"
)

type Stores struct {
	Shows         *sqlite.ShowStore
	Notifications *sqlite.NotificationStore
}

// NewStores opens a private in-memory database for one test.
func NewStores(t *testing.T) Stores {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return Stores{
		Shows:         sqlite.NewShowStore(db),
		Notifications: sqlite.NewNotificationStore(db),
	}
}

// SeedShow stores show and returns it with ID and Version filled in.
func (s Stores) SeedShow(t *testing.T, show *models.Show) *models.Show {
	t.Helper()

	if err := s.Shows.Create(context.Background(), show); err != nil {
		t.Fatalf("failed to seed show: %v", err)
	}
	return show
}

// LoadShow reads a show back, failing the test if it is missing.
func (s Stores) LoadShow(t *testing.T, token string) *models.Show {
	t.Helper()

	show, err := s.Shows.GetByToken(context.Background(), token)
	if err != nil {
		t.Fatalf("failed to load show %s: %v", token, err)
	}
	return show
}

// JukeboxShow is a show in jukebox mode with three active sequences.
func JukeboxShow(token string) *models.Show {
	return &models.Show{
		ShowToken: token,
		ShowName:  "Lights on Elm",
		Preferences: models.Preferences{
			ViewerControlEnabled: true,
			ViewerControlMode:    models.ViewerControlModeJukebox,
			JukeboxDepth:         5,
		},
		Sequences: []models.Sequence{
			{Name: "wizards", DisplayName: "Wizards in Winter", Active: true, Order: 1},
			{Name: "carol", DisplayName: "Carol of the Bells", Active: true, Order: 2},
			{Name: "sleigh", Active: true, Order: 3},
		},
		SequenceGroups: []models.SequenceGroup{{Name: "finale"}},
	}
}

// VotingShow is JukeboxShow switched to voting mode.
func VotingShow(token string) *models.Show {
	show := JukeboxShow(token)
	show.Preferences.ViewerControlMode = models.ViewerControlModeVoting
	return show
}
