package standings

import (
	"slices"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/samber/lo"
)

// TeamAggregate is the per-team result summary of one group.
type TeamAggregate struct {
	TeamID        int `json:"team_id"`
	GroupID       int `json:"group_id"`
	MatchesPlayed int `json:"matches_played"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	GamesWon      int `json:"games_won"`
	GamesLost     int `json:"games_lost"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
}

func (a TeamAggregate) GameDifference() int    { return a.GamesWon - a.GamesLost }
func (a TeamAggregate) PointDifferential() int { return a.PointsFor - a.PointsAgainst }

// Aggregates is keyed by team ID and holds every member of the group, including
// teams that have not played yet.
type Aggregates map[int]*TeamAggregate

// TeamIDs returns the member IDs in ascending order.
func (a Aggregates) TeamIDs() []int {
	ids := lo.Keys(a)
	slices.Sort(ids)
	return ids
}

// Aggregate computes the group aggregates from scratch. Only completed matches
// that belong to the group are counted; anything else in matches is ignored.
func Aggregate(group models.Group, matches []models.Match) (Aggregates, error) {
	if err := validateGroup(group); err != nil {
		return nil, err
	}

	aggs := make(Aggregates, len(group.Teams))
	for _, t := range group.Teams {
		aggs[t.ID] = &TeamAggregate{TeamID: t.ID, GroupID: group.ID}
	}

	for i := range matches {
		m := &matches[i]
		if m.GroupID == nil || *m.GroupID != group.ID || m.Status != models.MatchStatusCompleted {
			continue
		}
		if err := validateCompletedMatch(group, m); err != nil {
			return nil, err
		}

		home, away := aggs[*m.HomeTeamID], aggs[*m.AwayTeamID]
		home.MatchesPlayed++
		away.MatchesPlayed++
		home.GamesWon += m.HomeGamesWon
		home.GamesLost += m.AwayGamesWon
		away.GamesWon += m.AwayGamesWon
		away.GamesLost += m.HomeGamesWon

		for _, g := range m.Games {
			if g.Status != models.GameStatusCompleted {
				continue
			}
			home.PointsFor += g.HomeScore
			home.PointsAgainst += g.AwayScore
			away.PointsFor += g.AwayScore
			away.PointsAgainst += g.HomeScore
		}

		if m.HomeGamesWon > m.AwayGamesWon {
			home.Wins++
			away.Losses++
		} else {
			away.Wins++
			home.Losses++
		}
	}
	return aggs, nil
}

// ApplyAggregates overwrites the cached aggregate fields of teams. Teams without
// an entry are reset to zero.
func ApplyAggregates(teams []models.Team, aggs Aggregates) {
	for i := range teams {
		t := &teams[i]
		a, ok := aggs[t.ID]
		if !ok {
			a = &TeamAggregate{}
		}
		t.MatchesPlayed = a.MatchesPlayed
		t.Wins = a.Wins
		t.Losses = a.Losses
		t.GamesWon = a.GamesWon
		t.GamesLost = a.GamesLost
		t.PointsFor = a.PointsFor
		t.PointsAgainst = a.PointsAgainst
	}
}

func validateGroup(group models.Group) error {
	if len(group.Teams) == 0 {
		return invariantf(group.ID, 0, 0, "group has no teams")
	}
	seen := make(map[int]struct{}, len(group.Teams))
	for _, t := range group.Teams {
		if _, dup := seen[t.ID]; dup {
			return invariantf(group.ID, t.ID, 0, "team listed twice in group")
		}
		seen[t.ID] = struct{}{}
		if t.GroupID != 0 && t.GroupID != group.ID {
			return invariantf(group.ID, t.ID, 0, "team belongs to group %d", t.GroupID)
		}
	}
	return nil
}

func validateCompletedMatch(group models.Group, m *models.Match) error {
	if m.HomeTeamID == nil || m.AwayTeamID == nil {
		return invariantf(group.ID, 0, m.ID, "completed group match is missing a participant")
	}
	if *m.HomeTeamID == *m.AwayTeamID {
		return invariantf(group.ID, *m.HomeTeamID, m.ID, "team plays against itself")
	}
	for _, id := range []int{*m.HomeTeamID, *m.AwayTeamID} {
		if !group.HasTeam(id) {
			return invariantf(group.ID, id, m.ID, "match references a team outside its group")
		}
	}
	if !m.Format.Valid() {
		return invariantf(group.ID, 0, m.ID, "invalid match format best-of-%d", m.Format)
	}
	need := m.Format.WinsRequired()
	if m.HomeGamesWon == m.AwayGamesWon || max(m.HomeGamesWon, m.AwayGamesWon) != need || min(m.HomeGamesWon, m.AwayGamesWon) >= need {
		return invariantf(group.ID, 0, m.ID, "completed match score %d-%d does not decide a best-of-%d", m.HomeGamesWon, m.AwayGamesWon, m.Format)
	}
	if len(m.Games) > 0 {
		home := lo.CountBy(m.Games, func(g models.Game) bool { return g.Winner() == models.SlotHome })
		away := lo.CountBy(m.Games, func(g models.Game) bool { return g.Winner() == models.SlotAway })
		if home != m.HomeGamesWon || away != m.AwayGamesWon {
			return invariantf(group.ID, 0, m.ID, "games-won %d-%d disagree with completed games %d-%d", m.HomeGamesWon, m.AwayGamesWon, home, away)
		}
	}
	return nil
}
