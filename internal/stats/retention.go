package stats

import (
	"time"

	"github.com/lalith-99/controlpanel/internal/models"
)

// RetentionMonths is how long stat records are kept by Purge.
const RetentionMonths = 18

// Purge drops every record older than RetentionMonths before now and
// returns how many were removed.
func Purge(show *models.Show, now time.Time) int {
	cutoff := now.AddDate(0, -RetentionMonths, 0)
	return removeIf(&show.Stats, func(s models.Stat) bool {
		return s.DateTime.Before(cutoff)
	})
}

// DeleteWithinRange drops records strictly between start and end and
// returns how many were removed. Records exactly on a bound are kept.
func DeleteWithinRange(show *models.Show, start, end time.Time) int {
	return removeIf(&show.Stats, func(s models.Stat) bool {
		return s.DateTime.After(start) && s.DateTime.Before(end)
	})
}

func removeIf(stats *models.Stats, drop func(models.Stat) bool) int {
	removed := 0
	for _, stream := range []*[]models.Stat{&stats.Page, &stats.Jukebox, &stats.Voting, &stats.VotingWin} {
		kept := (*stream)[:0]
		for _, s := range *stream {
			if drop(s) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		*stream = kept
	}
	return removed
}
