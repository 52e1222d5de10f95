package models

// Team is a group-stage participant. The aggregate fields are a cache rebuilt
// from completed matches and are never the source of truth.
type Team struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	GroupID int    `json:"group_id" db:"group_id"`

	MatchesPlayed int `json:"matches_played" db:"matches_played"`
	Wins          int `json:"wins" db:"wins"`
	Losses        int `json:"losses" db:"losses"`
	GamesWon      int `json:"games_won" db:"games_won"`
	GamesLost     int `json:"games_lost" db:"games_lost"`
	PointsFor     int `json:"points_for" db:"points_for"`
	PointsAgainst int `json:"points_against" db:"points_against"`
}

// Group is a round-robin table.
type Group struct {
	ID    int    `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Teams []Team `json:"teams,omitempty" db:"-"`
}

func (g Group) HasTeam(teamID int) bool {
	for _, t := range g.Teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}
