package queue

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lalith-99/controlpanel/internal/models"
)

// UpdateSequences replaces the show's sequence catalog. Entries are
// de-duplicated by name, first one wins; entries without a name are
// dropped. Queued requests and votes keep the copy they were made with.
func (m *Manager) UpdateSequences(ctx context.Context, showToken string, sequences []models.Sequence) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, _ recordFunc) error {
		show.Sequences = uniqueByName(sequences, func(s models.Sequence) string { return s.Name })
		m.logger.Info("sequences updated",
			zap.String("show_token", showToken),
			zap.Int("count", len(show.Sequences)),
		)
		return nil
	})
}

// UpdateSequenceGroups replaces the show's sequence groups, de-duplicated
// by name the same way as UpdateSequences.
func (m *Manager) UpdateSequenceGroups(ctx context.Context, showToken string, groups []models.SequenceGroup) (*models.Show, error) {
	return m.mutate(ctx, showToken, func(show *models.Show, _ recordFunc) error {
		show.SequenceGroups = uniqueByName(groups, func(g models.SequenceGroup) string { return g.Name })
		return nil
	})
}

func uniqueByName[T any](items []T, name func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := strings.TrimSpace(name(item))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
