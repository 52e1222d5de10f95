package services

import (
	"testing"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/stage"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreateGroup(t *testing.T) {
	g, err := validateCreateGroup(CreateGroupInput{Name: " Group A ", TeamNames: []string{"Ace", " Spin "}})
	require.NoError(t, err)
	assert.Equal(t, "Group A", g.Name)
	require.Len(t, g.Teams, 2)
	assert.Equal(t, "Spin", g.Teams[1].Name)

	bad := []CreateGroupInput{
		{Name: "", TeamNames: []string{"a", "b"}},
		{Name: "A", TeamNames: []string{"a"}},
		{Name: "A", TeamNames: []string{"a", " "}},
		{Name: "A", TeamNames: []string{"a", "a"}},
	}
	for _, in := range bad {
		_, err := validateCreateGroup(in)
		assert.ErrorIs(t, err, ErrValidationFailed, "%+v", in)
	}
}

func completed(m *models.Match, home, away int) models.Match {
	m.HomeGamesWon, m.AwayGamesWon = home, away
	m.Status = models.MatchStatusCompleted
	for i := 0; i < home; i++ {
		m.Games = append(m.Games, models.Game{Number: len(m.Games) + 1, HomeScore: 11, AwayScore: 7, Status: models.GameStatusCompleted})
	}
	for i := 0; i < away; i++ {
		m.Games = append(m.Games, models.Game{Number: len(m.Games) + 1, HomeScore: 7, AwayScore: 11, Status: models.GameStatusCompleted})
	}
	return *m
}

func TestBuildGroupStandings(t *testing.T) {
	group := models.Group{ID: 1, Name: "A", Teams: []models.Team{{ID: 10, GroupID: 1}, {ID: 20, GroupID: 1}, {ID: 30, GroupID: 1}}}
	snap := stage.Snapshot{
		Groups: []models.Group{group},
		Matches: []models.Match{
			completed(groupMatch(1, 1, 10, 20), 2, 0),
			completed(groupMatch(2, 1, 20, 30), 2, 1),
			*groupMatch(3, 1, 10, 30),
		},
	}

	out, err := buildGroupStandings(snap)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].Complete)
	assert.Equal(t, "A", out[0].GroupName)
	require.Len(t, out[0].Standings, 3)
	assert.Equal(t, 10, out[0].Standings[0].TeamID)
	assert.Equal(t, standings.CriterionHeadToHead, out[0].Standings[1].DecidedBy)
	assert.Equal(t, standings.CriterionWins, out[0].Standings[2].DecidedBy)

	snap.Matches[2] = completed(groupMatch(3, 1, 10, 30), 2, 0)
	out, err = buildGroupStandings(snap)
	require.NoError(t, err)
	assert.True(t, out[0].Complete)
}
