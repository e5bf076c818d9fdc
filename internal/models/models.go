package models

import (
	"time"

	"github.com/google/uuid"
)

// ViewerControlMode selects which interaction list on a Show is live.
// Only one of Requests (JUKEBOX) or Votes (VOTING) is active at a time;
// switching modes leaves the inactive list untouched.
type ViewerControlMode string

const (
	ViewerControlModeJukebox ViewerControlMode = "JUKEBOX"
	ViewerControlModeVoting  ViewerControlMode = "VOTING"
)

// OwnerVoteWeight is the vote count an owner vote starts with. It is far
// above any organic total, so the owner's pick always ranks first.
const OwnerVoteWeight = 1000

// Show is the root aggregate, one per tenant. Everything nested inside it
// is owned exclusively by this show and is loaded and saved as one document.
//
// Version is the optimistic-concurrency counter. Stores bump it on every
// successful save and refuse a save whose Version does not match what is
// stored.
type Show struct {
	ID            uuid.UUID `json:"id"`
	ShowToken     string    `json:"show_token"`
	ShowName      string    `json:"show_name"`
	ShowSubdomain string    `json:"show_subdomain"`
	Email         string    `json:"email"`

	// PasswordHash is a bcrypt hash. Handlers blank it before responding.
	PasswordHash string `json:"password_hash,omitempty"`
	ShowRole     string `json:"show_role"`
	Version      int64  `json:"version"`

	PlayingNow              string `json:"playing_now"`
	PlayingNext             string `json:"playing_next"`
	PlayingNextFromSchedule string `json:"playing_next_from_schedule"`

	LastFppHeartbeat *time.Time `json:"last_fpp_heartbeat,omitempty"`

	Preferences       Preferences        `json:"preferences"`
	Sequences         []Sequence         `json:"sequences"`
	SequenceGroups    []SequenceGroup    `json:"sequence_groups"`
	Requests          []Request          `json:"requests"`
	Votes             []Vote             `json:"votes"`
	ShowNotifications []ShowNotification `json:"show_notifications"`
	Stats             Stats              `json:"stats"`

	// PurgedNotifications remembers catalog entries this show deleted and
	// purged, so they are not offered again as new. An id is forgotten once
	// the catalog no longer lists it.
	PurgedNotifications []uuid.UUID `json:"purged_notifications,omitempty"`
}

// Preferences holds the owner-editable settings relevant to viewer control.
type Preferences struct {
	ViewerControlEnabled bool              `json:"viewer_control_enabled"`
	ViewerControlMode    ViewerControlMode `json:"viewer_control_mode"`
	// SequencesPlayed is reset whenever viewer control is switched on or off.
	SequencesPlayed int `json:"sequences_played"`
	JukeboxDepth    int `json:"jukebox_depth"`

	NotificationPreferences NotificationPreferences `json:"notification_preferences"`
}

// NotificationPreferences controls the FPP heartbeat health alerts.
type NotificationPreferences struct {
	EnableFppHeartbeat               bool       `json:"enable_fpp_heartbeat"`
	FppHeartbeatIfControlEnabled     bool       `json:"fpp_heartbeat_if_control_enabled"`
	FppHeartbeatRenotifyAfterMinutes int        `json:"fpp_heartbeat_renotify_after_minutes"`
	FppHeartbeatLastNotification     *time.Time `json:"fpp_heartbeat_last_notification,omitempty"`
}

// Sequence is one entry in the show's song catalog.
// VisibilityCount hides a sequence for N plays after it was picked; queue
// clearing resets it to 0.
type Sequence struct {
	Name            string `json:"name"`
	DisplayName     string `json:"display_name"`
	Active          bool   `json:"active"`
	Order           int    `json:"order"`
	Group           string `json:"group,omitempty"`
	VisibilityCount int    `json:"visibility_count"`
}

// Label is the name shown to viewers: DisplayName when set, Name otherwise.
func (s Sequence) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// SequenceGroup bundles sequences that are requested as a unit.
type SequenceGroup struct {
	Name            string `json:"name"`
	VisibilityCount int    `json:"visibility_count"`
}

// Request is one entry in the jukebox queue.
//
// Viewer requests are numbered densely from 1. An owner request is tagged
// with Position 0 and plays ahead of every numbered position; it is never
// part of the 1..N numbering.
type Request struct {
	Sequence       Sequence `json:"sequence"`
	Position       int      `json:"position"`
	OwnerRequested bool     `json:"owner_requested"`
}

// Vote is the running tally for one sequence in voting mode.
type Vote struct {
	Sequence     Sequence  `json:"sequence"`
	Votes        int       `json:"votes"`
	OwnerVoted   bool      `json:"owner_voted"`
	LastVoteTime time.Time `json:"last_vote_time"`
}

// StatKind names the four append-only stat streams.
type StatKind string

const (
	StatKindPage    StatKind = "PAGE"
	StatKindJukebox StatKind = "JUKEBOX"
	StatKindVote    StatKind = "VOTE"
	StatKindVoteWin StatKind = "VOTE_WIN"
)

// Stat is an immutable event record. DateTime is always UTC.
type Stat struct {
	Kind         StatKind  `json:"kind"`
	Action       string    `json:"action"`
	SequenceName string    `json:"sequence_name,omitempty"`
	Owner        bool      `json:"owner"`
	DateTime     time.Time `json:"date_time"`
}

// Stats groups the per-kind stat streams kept on a Show.
type Stats struct {
	Page      []Stat `json:"page"`
	Jukebox   []Stat `json:"jukebox"`
	Voting    []Stat `json:"voting"`
	VotingWin []Stat `json:"voting_win"`
}
