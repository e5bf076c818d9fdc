package queue

import (
	"sort"

	"github.com/lalith-99/controlpanel/internal/models"
)

// SortedRequests returns the queue in play order: the owner slot
// (position 0) first, then viewer requests by position. The input is not
// modified.
func SortedRequests(requests []models.Request) []models.Request {
	out := make([]models.Request, len(requests))
	copy(out, requests)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OwnerRequested != out[j].OwnerRequested {
			return out[i].OwnerRequested
		}
		return out[i].Position < out[j].Position
	})
	return out
}

// NextRequest returns the request that plays next, if any.
func NextRequest(requests []models.Request) (models.Request, bool) {
	if len(requests) == 0 {
		return models.Request{}, false
	}
	return SortedRequests(requests)[0], true
}

// RankVotes returns votes from winner down. Ties on count go to the owner
// vote, then to whichever sequence reached the count first, then by
// sequence name so the order is always total.
func RankVotes(votes []models.Vote) []models.Vote {
	out := make([]models.Vote, len(votes))
	copy(out, votes)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		if a.OwnerVoted != b.OwnerVoted {
			return a.OwnerVoted
		}
		if !a.LastVoteTime.Equal(b.LastVoteTime) {
			return a.LastVoteTime.Before(b.LastVoteTime)
		}
		return a.Sequence.Name < b.Sequence.Name
	})
	return out
}

// renumber gives viewer requests dense positions 1..N in their current
// play order. The owner slot keeps position 0.
func renumber(requests []models.Request) []models.Request {
	sorted := SortedRequests(requests)
	pos := 1
	for i := range sorted {
		if sorted[i].OwnerRequested {
			sorted[i].Position = 0
			continue
		}
		sorted[i].Position = pos
		pos++
	}
	return sorted
}

func nextPosition(requests []models.Request) int {
	highest := 0
	for _, r := range requests {
		if !r.OwnerRequested && r.Position > highest {
			highest = r.Position
		}
	}
	return highest + 1
}

func findSequence(show *models.Show, name string) (models.Sequence, bool) {
	for _, s := range show.Sequences {
		if s.Name == name {
			return s, true
		}
	}
	return models.Sequence{}, false
}

func resetVisibility(show *models.Show) {
	for i := range show.Sequences {
		show.Sequences[i].VisibilityCount = 0
	}
	for i := range show.SequenceGroups {
		show.SequenceGroups[i].VisibilityCount = 0
	}
}
