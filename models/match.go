package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// MatchFormat is the best-of-N game count of a match. N is odd.
type MatchFormat int

const (
	BestOf3 MatchFormat = 3
	BestOf5 MatchFormat = 5
)

func (f MatchFormat) Valid() bool {
	return f > 0 && f%2 == 1
}

// WinsRequired is the number of games a side must win to take the match.
func (f MatchFormat) WinsRequired() int {
	return int(f)/2 + 1
}

type KnockoutRound string

const (
	RoundOf16    KnockoutRound = "round_of_16"
	QuarterFinal KnockoutRound = "quarter_final"
	SemiFinal    KnockoutRound = "semi_final"
	Final        KnockoutRound = "final"
	ThirdPlace   KnockoutRound = "third_place"
)

// Slot positions inside a match, used by forward-links.
const (
	SlotHome = 1
	SlotAway = 2
)

type Match struct {
	ID           int         `json:"id" db:"id"`
	GroupID      *int        `json:"group_id,omitempty" db:"group_id"`
	HomeTeamID   *int        `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID   *int        `json:"away_team_id,omitempty" db:"away_team_id"`
	Format       MatchFormat `json:"format" db:"format"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeGamesWon int         `json:"home_games_won" db:"home_games_won"`
	AwayGamesWon int         `json:"away_games_won" db:"away_games_won"`
	ScheduledAt  time.Time   `json:"scheduled_at" db:"scheduled_at"`

	// Knockout only.
	Round              *KnockoutRound `json:"round,omitempty" db:"round"`
	Slot               int            `json:"slot,omitempty" db:"slot"`
	BracketUID         *string        `json:"bracket_uid,omitempty" db:"bracket_uid"`
	NextMatchUID       *string        `json:"next_match_uid,omitempty" db:"next_match_uid"`
	NextMatchSlot      *int           `json:"next_match_slot,omitempty" db:"next_match_slot"`
	LoserNextMatchUID  *string        `json:"loser_next_match_uid,omitempty" db:"loser_next_match_uid"`
	LoserNextMatchSlot *int           `json:"loser_next_match_slot,omitempty" db:"loser_next_match_slot"`
	NextMatchID        *int           `json:"next_match_id,omitempty" db:"next_match_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Games []Game `json:"games,omitempty" db:"-"`
}

func (m *Match) IsKnockout() bool {
	return m.GroupID == nil && m.Round != nil
}

func (m *Match) IsPlaceholder() bool {
	return m.HomeTeamID == nil || m.AwayTeamID == nil
}

func (m *Match) InRound(round KnockoutRound) bool {
	return m.Round != nil && *m.Round == round
}

// Involves reports whether the team plays in the match.
func (m *Match) Involves(teamID int) bool {
	return (m.HomeTeamID != nil && *m.HomeTeamID == teamID) ||
		(m.AwayTeamID != nil && *m.AwayTeamID == teamID)
}

// Decided reports whether one side has reached the format's win threshold.
func (m *Match) Decided() bool {
	need := m.Format.WinsRequired()
	return m.HomeGamesWon >= need || m.AwayGamesWon >= need
}

// WinnerID returns the side with more games won. ok is false until the match is
// completed and both participants are known.
func (m *Match) WinnerID() (int, bool) {
	if m.Status != MatchStatusCompleted || m.IsPlaceholder() || m.HomeGamesWon == m.AwayGamesWon {
		return 0, false
	}
	if m.HomeGamesWon > m.AwayGamesWon {
		return *m.HomeTeamID, true
	}
	return *m.AwayTeamID, true
}

func (m *Match) LoserID() (int, bool) {
	winner, ok := m.WinnerID()
	if !ok {
		return 0, false
	}
	if winner == *m.HomeTeamID {
		return *m.AwayTeamID, true
	}
	return *m.HomeTeamID, true
}

// RecountGames rebuilds the games-won counters from the completed games and
// moves the match to Completed exactly when a side reaches the win threshold.
func (m *Match) RecountGames() {
	home, away := 0, 0
	for _, g := range m.Games {
		switch g.Winner() {
		case SlotHome:
			home++
		case SlotAway:
			away++
		}
	}
	m.HomeGamesWon, m.AwayGamesWon = home, away

	switch {
	case m.Decided():
		m.Status = MatchStatusCompleted
	case home+away > 0:
		m.Status = MatchStatusInProgress
	case m.Status == MatchStatusCompleted:
		m.Status = MatchStatusScheduled
	}
}

type GameStatus string

const (
	GameStatusPending   GameStatus = "pending"
	GameStatusCompleted GameStatus = "completed"
)

// Game belongs to exactly one match; Number is 1-based.
type Game struct {
	ID        int        `json:"id" db:"id"`
	MatchID   int        `json:"match_id" db:"match_id"`
	Number    int        `json:"number" db:"number"`
	HomeScore int        `json:"home_score" db:"home_score"`
	AwayScore int        `json:"away_score" db:"away_score"`
	Status    GameStatus `json:"status" db:"status"`
}

// Winner returns SlotHome or SlotAway for a completed game with a strict score
// difference, and 0 otherwise.
func (g Game) Winner() int {
	if g.Status != GameStatusCompleted {
		return 0
	}
	switch {
	case g.HomeScore > g.AwayScore:
		return SlotHome
	case g.AwayScore > g.HomeScore:
		return SlotAway
	}
	return 0
}
