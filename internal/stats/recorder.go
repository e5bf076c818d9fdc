// Package stats appends immutable stat records to a show and forwards
// them to an event sink once the show is saved.
package stats

import (
	"context"

	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/clock"
	"github.com/lalith-99/controlpanel/internal/models"
)

const (
	ActionView    = "view"
	ActionEnqueue = "enqueue"
	ActionDelete  = "delete"
	ActionClear   = "clear"
	ActionVote    = "vote"
	ActionReset   = "reset"
	ActionWin     = "win"
)

// Publisher receives stat records after the show that holds them has been
// saved.
type Publisher interface {
	Publish(ctx context.Context, showToken string, stat models.Stat) error
}

type Recorder struct {
	clock     clock.Clock
	publisher Publisher
	logger    *zap.Logger
}

// NewRecorder returns a Recorder. publisher may be nil.
func NewRecorder(clk clock.Clock, publisher Publisher, logger *zap.Logger) *Recorder {
	return &Recorder{
		clock:     clk,
		publisher: publisher,
		logger:    logger,
	}
}

// Append stamps a record with the current UTC time and adds it to the
// matching stream on show. The second result is false for an unknown kind,
// in which case nothing is appended.
func (r *Recorder) Append(show *models.Show, kind models.StatKind, action, sequence string, owner bool) (models.Stat, bool) {
	stream := streamFor(&show.Stats, kind)
	if stream == nil {
		r.logger.Warn("unknown stat kind", zap.String("kind", string(kind)))
		return models.Stat{}, false
	}

	stat := models.Stat{
		Kind:         kind,
		Action:       action,
		SequenceName: sequence,
		Owner:        owner,
		DateTime:     r.clock.Now().UTC(),
	}
	*stream = append(*stream, stat)
	return stat, true
}

// Publish forwards records to the sink. The show is already saved, so a
// failed publish is logged and not returned.
func (r *Recorder) Publish(ctx context.Context, showToken string, stats ...models.Stat) {
	if r.publisher == nil {
		return
	}
	for _, stat := range stats {
		if err := r.publisher.Publish(ctx, showToken, stat); err != nil {
			r.logger.Error("failed to publish stat",
				zap.String("show_token", showToken),
				zap.String("kind", string(stat.Kind)),
				zap.String("action", stat.Action),
				zap.Error(err),
			)
		}
	}
}

func streamFor(s *models.Stats, kind models.StatKind) *[]models.Stat {
	switch kind {
	case models.StatKindPage:
		return &s.Page
	case models.StatKindJukebox:
		return &s.Jukebox
	case models.StatKindVote:
		return &s.Voting
	case models.StatKindVoteWin:
		return &s.VotingWin
	default:
		return nil
	}
}
