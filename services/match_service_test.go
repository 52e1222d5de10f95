package services

import (
	"testing"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func groupMatch(id, groupID, home, away int) *models.Match {
	return &models.Match{
		ID:         id,
		GroupID:    intPtr(groupID),
		HomeTeamID: intPtr(home),
		AwayTeamID: intPtr(away),
		Format:     models.BestOf3,
		Status:     models.MatchStatusScheduled,
	}
}

func knockoutMatch(id int, round models.KnockoutRound, home, away *int) *models.Match {
	return &models.Match{
		ID:         id,
		HomeTeamID: home,
		AwayTeamID: away,
		Format:     models.BestOf5,
		Status:     models.MatchStatusScheduled,
		Round:      &round,
	}
}

func TestApplyGameScores(t *testing.T) {
	tests := []struct {
		name       string
		scores     []GameScore
		wantErr    bool
		wantStatus models.MatchStatus
		wantHome   int
		wantAway   int
	}{
		{
			name:       "straight win",
			scores:     []GameScore{{11, 5}, {11, 9}},
			wantStatus: models.MatchStatusCompleted,
			wantHome:   2,
		},
		{
			name:       "deciding game",
			scores:     []GameScore{{11, 5}, {8, 11}, {9, 11}},
			wantStatus: models.MatchStatusCompleted,
			wantHome:   1,
			wantAway:   2,
		},
		{
			name:       "partial result",
			scores:     []GameScore{{11, 5}},
			wantStatus: models.MatchStatusInProgress,
			wantHome:   1,
		},
		{name: "no games", scores: nil, wantErr: true},
		{name: "tied game", scores: []GameScore{{11, 11}}, wantErr: true},
		{name: "negative score", scores: []GameScore{{-1, 11}}, wantErr: true},
		{name: "too many games", scores: []GameScore{{11, 5}, {5, 11}, {11, 5}, {11, 5}}, wantErr: true},
		{name: "game after decision", scores: []GameScore{{11, 5}, {11, 5}, {5, 11}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := groupMatch(1, 1, 10, 20)
			err := applyGameScores(m, tt.scores)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, m.Status)
			assert.Equal(t, tt.wantHome, m.HomeGamesWon)
			assert.Equal(t, tt.wantAway, m.AwayGamesWon)
			for i, g := range m.Games {
				assert.Equal(t, i+1, g.Number)
				assert.Equal(t, models.GameStatusCompleted, g.Status)
			}
		})
	}
}

func TestApplyGameScoresCorrectsEarlierResult(t *testing.T) {
	m := groupMatch(1, 1, 10, 20)
	require.NoError(t, applyGameScores(m, []GameScore{{11, 5}, {11, 5}}))
	winner, _ := m.WinnerID()
	assert.Equal(t, 10, winner)

	require.NoError(t, applyGameScores(m, []GameScore{{5, 11}, {5, 11}}))
	winner, _ = m.WinnerID()
	assert.Equal(t, 20, winner)
	assert.Len(t, m.Games, 2)
}

func TestCheckResultEditable(t *testing.T) {
	groupStage := models.InitialStage()
	quarters := models.TournamentStage{Phase: models.PhaseQuarterFinal, GroupStageCompleted: true, KnockoutGenerated: true}

	t.Run("group match during group stage", func(t *testing.T) {
		assert.NoError(t, checkResultEditable(groupStage, groupMatch(1, 1, 10, 20)))
	})
	t.Run("group match after group stage", func(t *testing.T) {
		assert.ErrorIs(t, checkResultEditable(quarters, groupMatch(1, 1, 10, 20)), ErrResultLocked)
	})
	t.Run("knockout match of current round", func(t *testing.T) {
		m := knockoutMatch(2, models.QuarterFinal, intPtr(10), intPtr(20))
		assert.NoError(t, checkResultEditable(quarters, m))
	})
	t.Run("knockout match of a later round", func(t *testing.T) {
		m := knockoutMatch(3, models.SemiFinal, intPtr(10), intPtr(20))
		assert.ErrorIs(t, checkResultEditable(quarters, m), ErrResultLocked)
	})
	t.Run("placeholder", func(t *testing.T) {
		m := knockoutMatch(4, models.QuarterFinal, intPtr(10), nil)
		assert.ErrorIs(t, checkResultEditable(quarters, m), ErrValidationFailed)
	})
	t.Run("canceled", func(t *testing.T) {
		m := groupMatch(5, 1, 10, 20)
		m.Status = models.MatchStatusCanceled
		assert.ErrorIs(t, checkResultEditable(groupStage, m), ErrResultLocked)
	})
	t.Run("third place during final phase", func(t *testing.T) {
		final := models.TournamentStage{Phase: models.PhaseFinal, GroupStageCompleted: true, KnockoutGenerated: true}
		m := knockoutMatch(6, models.ThirdPlace, intPtr(10), intPtr(20))
		assert.NoError(t, checkResultEditable(final, m))
	})
}
