package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lalith-99/controlpanel/internal/models"
)

func req(name string, pos int, owner bool) models.Request {
	return models.Request{Sequence: models.Sequence{Name: name}, Position: pos, OwnerRequested: owner}
}

func vote(name string, votes int, owner bool, at time.Time) models.Vote {
	return models.Vote{Sequence: models.Sequence{Name: name}, Votes: votes, OwnerVoted: owner, LastVoteTime: at}
}

func TestSortedRequests_OwnerFirst(t *testing.T) {
	in := []models.Request{req("b", 2, false), req("a", 1, false), req("owner", 0, true)}

	out := SortedRequests(in)

	assert.Equal(t, []string{"owner", "a", "b"}, names(out))
	assert.Equal(t, "b", in[0].Sequence.Name, "input must not be reordered")
}

func TestNextRequest(t *testing.T) {
	_, ok := NextRequest(nil)
	assert.False(t, ok)

	next, ok := NextRequest([]models.Request{req("b", 2, false), req("a", 1, false)})
	assert.True(t, ok)
	assert.Equal(t, "a", next.Sequence.Name)
}

func TestRenumber_PreservesOrder(t *testing.T) {
	out := renumber([]models.Request{req("c", 7, false), req("a", 2, false), req("o", 0, true), req("b", 5, false)})

	assert.Equal(t, []string{"o", "a", "b", "c"}, names(out))
	assert.Equal(t, []int{0, 1, 2, 3}, positions(out))
}

func TestRankVotes(t *testing.T) {
	t0 := time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)

	ranked := RankVotes([]models.Vote{
		vote("late", 5, false, t0.Add(2*time.Minute)),
		vote("early", 5, false, t0.Add(time.Minute)),
		vote("top", 9, false, t0),
		vote("owner", models.OwnerVoteWeight, true, t0.Add(time.Hour)),
	})

	got := make([]string, 0, len(ranked))
	for _, v := range ranked {
		got = append(got, v.Sequence.Name)
	}
	assert.Equal(t, []string{"owner", "top", "early", "late"}, got)
}

func TestRankVotes_OwnerWinsTieAt1000(t *testing.T) {
	t0 := time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)

	ranked := RankVotes([]models.Vote{
		vote("organic", models.OwnerVoteWeight, false, t0),
		vote("owner", models.OwnerVoteWeight, true, t0.Add(time.Minute)),
	})

	assert.Equal(t, "owner", ranked[0].Sequence.Name)
}

func TestRankVotes_NameBreaksFullTie(t *testing.T) {
	t0 := time.Date(2026, 12, 20, 18, 0, 0, 0, time.UTC)

	ranked := RankVotes([]models.Vote{vote("b", 3, false, t0), vote("a", 3, false, t0)})

	assert.Equal(t, "a", ranked[0].Sequence.Name)
}
