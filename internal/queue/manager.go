// Package queue maintains a show's jukebox request queue and voting tally.
package queue

import (
	"context"

	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
	"github.com/lalith-99/controlpanel/internal/repository"
	"github.com/lalith-99/controlpanel/internal/stats"
)

// Manager applies queue and vote operations to one show at a time. Every
// method is a single repository.Mutate unit, so the owner-entry and
// numbering checks never race with another writer of the same show.
type Manager struct {
	shows    repository.ShowRepository
	locker   repository.Locker
	recorder *stats.Recorder
	clock    clock.Clock
	logger   *zap.Logger
}

func NewManager(shows repository.ShowRepository, locker repository.Locker, recorder *stats.Recorder, clk clock.Clock, logger *zap.Logger) *Manager {
	return &Manager{
		shows:    shows,
		locker:   locker,
		recorder: recorder,
		clock:    clk,
		logger:   logger,
	}
}

// NowPlaying is the set of display fields PlayNow writes.
type NowPlaying struct {
	PlayingNow              string `json:"playing_now"`
	PlayingNext             string `json:"playing_next"`
	PlayingNextFromSchedule string `json:"playing_next_from_schedule"`
}

// mutate wraps repository.Mutate and publishes the stats fn recorded
// once the show is saved.
func (m *Manager) mutate(ctx context.Context, showToken string, fn func(show *models.Show, record recordFunc) error) (*models.Show, error) {
	var recorded []models.Stat
	record := func(show *models.Show, kind models.StatKind, action, sequence string, owner bool) {
		if stat, ok := m.recorder.Append(show, kind, action, sequence, owner); ok {
			recorded = append(recorded, stat)
		}
	}

	show, err := repository.Mutate(ctx, m.shows, m.locker, showToken, func(show *models.Show) error {
		recorded = recorded[:0]
		return fn(show, record)
	})
	if err != nil {
		return nil, err
	}

	m.recorder.Publish(ctx, showToken, recorded...)
	return show, nil
}

type recordFunc func(show *models.Show, kind models.StatKind, action, sequence string, owner bool)

// PlayFromControlPanel is the owner's "play this" button: an owner request
// in jukebox mode, an owner vote in voting mode.
func (m *Manager) PlayFromControlPanel(ctx context.Context, showToken, sequence string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		switch show.Preferences.ViewerControlMode {
		case models.ViewerControlModeVoting:
			return m.ownerVote(show, sequence, record)
		default:
			return ownerRequest(show, sequence, record)
		}
	})
}

// EnqueueOwnerRequest puts sequence in the owner slot ahead of every viewer
// request. Fails with ErrOwnerAlreadyQueued if the slot is taken.
func (m *Manager) EnqueueOwnerRequest(ctx context.Context, showToken, sequence string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		if show.Preferences.ViewerControlMode == models.ViewerControlModeVoting {
			return newError(CodeWrongMode, "owner requests need jukebox mode")
		}
		return ownerRequest(show, sequence, record)
	})
}

// EnqueueOwnerVote adds an owner vote worth models.OwnerVoteWeight. Fails
// with ErrOwnerAlreadyQueued if the owner already voted.
func (m *Manager) EnqueueOwnerVote(ctx context.Context, showToken, sequence string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		if show.Preferences.ViewerControlMode != models.ViewerControlModeVoting {
			return newError(CodeWrongMode, "owner votes need voting mode")
		}
		return m.ownerVote(show, sequence, record)
	})
}

func ownerRequest(show *models.Show, sequence string, record recordFunc) error {
	for _, r := range show.Requests {
		if r.OwnerRequested {
			return newError(CodeOwnerAlreadyQueued, "owner request for %q is still queued", r.Sequence.Name)
		}
	}
	seq, ok := findSequence(show, sequence)
	if !ok {
		return newError(CodeSequenceNotFound, "%q", sequence)
	}

	show.Requests = append([]models.Request{{
		Sequence:       seq,
		Position:       0,
		OwnerRequested: true,
	}}, show.Requests...)
	record(show, models.StatKindJukebox, stats.ActionEnqueue, seq.Name, true)
	return nil
}

func (m *Manager) ownerVote(show *models.Show, sequence string, record recordFunc) error {
	for _, v := range show.Votes {
		if v.OwnerVoted {
			return newError(CodeOwnerAlreadyQueued, "owner vote for %q is still counted", v.Sequence.Name)
		}
	}
	seq, ok := findSequence(show, sequence)
	if !ok {
		return newError(CodeSequenceNotFound, "%q", sequence)
	}

	show.Votes = append(show.Votes, models.Vote{
		Sequence:     seq,
		Votes:        models.OwnerVoteWeight,
		OwnerVoted:   true,
		LastVoteTime: m.clock.Now(),
	})
	record(show, models.StatKindVote, stats.ActionVote, seq.Name, true)
	return nil
}

// EnqueueViewerRequest appends sequence to the end of the viewer queue.
func (m *Manager) EnqueueViewerRequest(ctx context.Context, showToken, sequence string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		if show.Preferences.ViewerControlMode == models.ViewerControlModeVoting {
			return newError(CodeWrongMode, "requests need jukebox mode")
		}
		seq, ok := findSequence(show, sequence)
		if !ok {
			return newError(CodeSequenceNotFound, "%q", sequence)
		}

		show.Requests = append(show.Requests, models.Request{
			Sequence: seq,
			Position: nextPosition(show.Requests),
		})
		record(show, models.StatKindJukebox, stats.ActionEnqueue, seq.Name, false)
		return nil
	})
}

// CastViewerVote adds one vote for sequence, creating its tally on the
// first vote.
func (m *Manager) CastViewerVote(ctx context.Context, showToken, sequence string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		if show.Preferences.ViewerControlMode != models.ViewerControlModeVoting {
			return newError(CodeWrongMode, "votes need voting mode")
		}
		seq, ok := findSequence(show, sequence)
		if !ok {
			return newError(CodeSequenceNotFound, "%q", sequence)
		}

		now := m.clock.Now()
		found := false
		for i := range show.Votes {
			if show.Votes[i].Sequence.Name == seq.Name {
				show.Votes[i].Votes++
				show.Votes[i].LastVoteTime = now
				found = true
				break
			}
		}
		if !found {
			show.Votes = append(show.Votes, models.Vote{
				Sequence:     seq,
				Votes:        1,
				LastVoteTime: now,
			})
		}
		record(show, models.StatKindVote, stats.ActionVote, seq.Name, false)
		return nil
	})
}

// DeleteRequestAtPosition removes the request at position, renumbers the
// viewer queue 1..N and points PlayingNext at whatever now plays next.
// A position with no request is a no-op apart from the PlayingNext refresh.
func (m *Manager) DeleteRequestAtPosition(ctx context.Context, showToken string, position int) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		kept := make([]models.Request, 0, len(show.Requests))
		var removed []models.Request
		for _, r := range show.Requests {
			if r.Position == position {
				removed = append(removed, r)
				continue
			}
			kept = append(kept, r)
		}

		show.Requests = renumber(kept)
		if next, ok := NextRequest(show.Requests); ok {
			show.PlayingNext = next.Sequence.Label()
		} else {
			show.PlayingNext = ""
		}

		for _, r := range removed {
			record(show, models.StatKindJukebox, stats.ActionDelete, r.Sequence.Name, r.OwnerRequested)
		}
		return nil
	})
}

// DeleteAllRequests empties the queue and makes every sequence and group
// visible again.
func (m *Manager) DeleteAllRequests(ctx context.Context, showToken string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		show.Requests = []models.Request{}
		resetVisibility(show)
		record(show, models.StatKindJukebox, stats.ActionClear, "", true)
		return nil
	})
}

// ResetAllVotes clears the tally and makes every sequence and group
// visible again.
func (m *Manager) ResetAllVotes(ctx context.Context, showToken string) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, record recordFunc) error {
		show.Votes = []models.Vote{}
		resetVisibility(show)
		record(show, models.StatKindVote, stats.ActionReset, "", true)
		return nil
	})
}

// PlayNow sets the display fields directly. The queue is not touched.
func (m *Manager) PlayNow(ctx context.Context, showToken string, playing NowPlaying) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, _ recordFunc) error {
		show.PlayingNow = playing.PlayingNow
		show.PlayingNext = playing.PlayingNext
		show.PlayingNextFromSchedule = playing.PlayingNextFromSchedule
		return nil
	})
}

func (m *Manager) ClearNowPlaying(ctx context.Context, showToken string) (*models.Show, error) {
	return m.PlayNow(ctx, showToken, NowPlaying{})
}

// UpdatePreferences replaces the show's preferences. Turning viewer control
// on or off restarts SequencesPlayed at 0. The heartbeat bookkeeping field
// is server-owned and always carried over.
func (m *Manager) UpdatePreferences(ctx context.Context, showToken string, prefs models.Preferences) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, _ recordFunc) error {
		switch prefs.ViewerControlMode {
		case "":
			prefs.ViewerControlMode = show.Preferences.ViewerControlMode
		case models.ViewerControlModeJukebox, models.ViewerControlModeVoting:
		default:
			return newError(CodeInvalidMode, "%q", prefs.ViewerControlMode)
		}

		if prefs.ViewerControlEnabled != show.Preferences.ViewerControlEnabled {
			prefs.SequencesPlayed = 0
			m.logger.Info("viewer control toggled",
				zap.String("show_token", showToken),
				zap.Bool("enabled", prefs.ViewerControlEnabled),
			)
		}
		prefs.NotificationPreferences.FppHeartbeatLastNotification = show.Preferences.NotificationPreferences.FppHeartbeatLastNotification

		show.Preferences = prefs
		return nil
	})
}
