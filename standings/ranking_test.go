package standings

import (
	"slices"
	"testing"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingH2H struct {
	inner HeadToHead
	calls map[int]int
}

func (c *countingH2H) Outcome(teamID, opponentID int) Outcome {
	c.calls[teamID]++
	c.calls[opponentID]++
	return c.inner.Outcome(teamID, opponentID)
}

func TestRankThreeCycleFallsThroughToPointDifferential(t *testing.T) {
	const a, b, c, d = 1, 2, 3, 4
	g := group(1, a, b, c, d)
	matches := []models.Match{
		win(1, 1, a, b, 8, 8),
		win(2, 1, b, c, 8, 8),
		win(3, 1, c, a, 10, 10),
		win(4, 1, a, d, 6, 6),
		win(5, 1, b, d, 8, 8),
		win(6, 1, c, d, 10, 10),
	}

	r, err := RankGroup(g, matches)
	require.NoError(t, err)
	assert.Equal(t, []int{a, b, c, d}, r.TeamIDs())

	pd := []int{}
	for _, s := range r.Standings[:3] {
		assert.Equal(t, 2, s.Stats.Wins)
		assert.Equal(t, 2, s.Stats.GameDifference())
		assert.True(t, s.HeadToHeadInvalidated, "team %d", s.TeamID)
		pd = append(pd, s.Stats.PointDifferential())
	}
	assert.Equal(t, []int{14, 6, -2}, pd)
	assert.Equal(t, CriterionPointDifferential, r.Standings[1].DecidedBy)
	assert.Equal(t, CriterionPointDifferential, r.Standings[2].DecidedBy)
	assert.Equal(t, CriterionWins, r.Standings[3].DecidedBy)
	assert.False(t, r.Standings[3].HeadToHeadInvalidated)
}

func TestCircularTiesNeedsThreeTeamsOnEqualWins(t *testing.T) {
	g := group(1, 1, 2, 3)
	matches := []models.Match{win(1, 1, 1, 2), win(2, 1, 2, 3), win(3, 1, 3, 1)}
	aggs, err := Aggregate(g, matches)
	require.NoError(t, err)
	h2h := BuildHeadToHead(1, matches)

	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, CircularTies(aggs, h2h))

	// A transitive result among the same teams is not a cycle.
	matches[2] = win(3, 1, 1, 3)
	aggs, err = Aggregate(g, matches)
	require.NoError(t, err)
	assert.Empty(t, CircularTies(aggs, BuildHeadToHead(1, matches)))
}

func TestRankCleanSweepNeverConsultsHeadToHead(t *testing.T) {
	const x = 1
	g := group(1, x, 2, 3, 4)
	matches := []models.Match{
		win(1, 1, x, 2),
		winInThree(2, 1, x, 3),
		winInThree(3, 1, x, 4),
		win(4, 1, 2, 3),
		win(5, 1, 3, 4),
		winInThree(6, 1, 4, 2),
	}
	aggs, err := Aggregate(g, matches)
	require.NoError(t, err)

	h2h := &countingH2H{inner: BuildHeadToHead(1, matches), calls: map[int]int{}}
	r := Rank(aggs, h2h)

	first, ok := r.TeamAt(1)
	require.True(t, ok)
	assert.Equal(t, x, first)
	assert.Equal(t, 3, r.Standings[0].Stats.Wins)
	assert.Equal(t, CriterionWins, r.Standings[1].DecidedBy)
	assert.Zero(t, h2h.calls[x])
}

func TestRankTwoTeamHeadToHeadApplies(t *testing.T) {
	const a, b, c, d = 1, 2, 3, 4
	g := group(1, a, b, c, d)
	matches := []models.Match{
		win(1, 1, a, c, 0, 0),
		win(2, 1, a, d, 0, 0),
		win(3, 1, b, a, 9, 9),
		win(4, 1, b, c, 9, 9),
		win(5, 1, d, b, 9, 9),
		win(6, 1, c, d),
	}

	r, err := RankGroup(g, matches)
	require.NoError(t, err)
	assert.Equal(t, []int{b, a, c, d}, r.TeamIDs())
	assert.Greater(t, r.Standings[1].Stats.PointDifferential(), r.Standings[0].Stats.PointDifferential())
	assert.Equal(t, CriterionHeadToHead, r.Standings[1].DecidedBy)
	assert.Equal(t, CriterionWins, r.Standings[2].DecidedBy)
	assert.Equal(t, CriterionHeadToHead, r.Standings[3].DecidedBy)
	for _, s := range r.Standings {
		assert.False(t, s.HeadToHeadInvalidated)
	}
}

func TestRankIsStable(t *testing.T) {
	g := group(1, 1, 2, 3, 4)
	matches := []models.Match{
		win(1, 1, 1, 2, 8, 8),
		win(2, 1, 2, 3, 8, 8),
		win(3, 1, 3, 1, 10, 10),
		win(4, 1, 1, 4, 6, 6),
		win(5, 1, 2, 4, 8, 8),
		win(6, 1, 3, 4, 10, 10),
	}

	want, err := RankGroup(g, matches)
	require.NoError(t, err)

	reversed := slices.Clone(matches)
	slices.Reverse(reversed)
	for i := 0; i < 20; i++ {
		got, err := RankGroup(g, matches)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = RankGroup(g, reversed)
		require.NoError(t, err)
		assert.Equal(t, want.TeamIDs(), got.TeamIDs())
	}
}

func TestRankUnresolvedTie(t *testing.T) {
	g := group(1, 30, 10, 20)
	r, err := RankGroup(g, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 30}, r.TeamIDs())
	assert.True(t, r.Standings[1].TiedWithPrevious)
	assert.True(t, r.Standings[2].TiedWithPrevious)
	assert.Empty(t, r.Standings[1].DecidedBy)

	from, to := r.TieBlock(1)
	assert.Equal(t, 0, from)
	assert.Equal(t, 3, to)
	assert.Equal(t, [][]int{{10, 20, 30}}, r.Ties())
}

func TestRankingTies(t *testing.T) {
	g := group(1, 1, 2, 3, 4)
	r, err := RankGroup(g, []models.Match{win(1, 1, 1, 2), win(2, 1, 1, 3), win(3, 1, 1, 4)})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 3, 4}}, r.Ties())

	settled, matches := threeTeamGroup(2, 20, 5, 10)
	r, err = RankGroup(settled, matches)
	require.NoError(t, err)
	assert.Empty(t, r.Ties())
}

func TestHeadToHeadNetsRepeatedMeetings(t *testing.T) {
	matches := []models.Match{win(1, 1, 1, 2), win(2, 1, 2, 1), win(3, 1, 1, 2)}
	h2h := BuildHeadToHead(1, matches)
	assert.Equal(t, OutcomeWin, h2h.Outcome(1, 2))
	assert.Equal(t, OutcomeLoss, h2h.Outcome(2, 1))

	even := BuildHeadToHead(1, matches[:2])
	assert.Equal(t, OutcomeNone, even.Outcome(1, 2))

	assert.Equal(t, OutcomeNone, BuildHeadToHead(2, matches).Outcome(1, 2))
}
