package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecountGamesStatus(t *testing.T) {
	game := func(n, home, away int) Game {
		return Game{Number: n, HomeScore: home, AwayScore: away, Status: GameStatusCompleted}
	}

	tests := []struct {
		name  string
		start MatchStatus
		games []Game
		want  MatchStatus
	}{
		{"no games", MatchStatusScheduled, nil, MatchStatusScheduled},
		{"one game", MatchStatusScheduled, []Game{game(1, 11, 7)}, MatchStatusInProgress},
		{"decided", MatchStatusInProgress, []Game{game(1, 11, 7), game(2, 11, 9)}, MatchStatusCompleted},
		{"games removed", MatchStatusCompleted, nil, MatchStatusScheduled},
		{"canceled stays canceled", MatchStatusCanceled, nil, MatchStatusCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Match{Format: BestOf3, Status: tt.start, Games: tt.games}
			m.RecountGames()
			assert.Equal(t, tt.want, m.Status)
		})
	}
}
