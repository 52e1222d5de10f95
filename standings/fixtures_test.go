package standings

import (
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

func ptr(v int) *int { return &v }

func group(id int, teamIDs ...int) models.Group {
	g := models.Group{ID: id}
	for _, t := range teamIDs {
		g.Teams = append(g.Teams, models.Team{ID: t, GroupID: id})
	}
	return g
}

// win is a completed best-of-3 that winner takes 2-0, 11 to each of
// loserPoints (5 and 5 when omitted).
func win(matchID, groupID, winner, loser int, loserPoints ...int) models.Match {
	if len(loserPoints) == 0 {
		loserPoints = []int{5, 5}
	}
	m := models.Match{
		ID:         matchID,
		GroupID:    ptr(groupID),
		HomeTeamID: ptr(winner),
		AwayTeamID: ptr(loser),
		Format:     models.BestOf3,
		Status:     models.MatchStatusCompleted,
	}
	for i, lp := range loserPoints {
		m.Games = append(m.Games, models.Game{
			MatchID:   matchID,
			Number:    i + 1,
			HomeScore: 11,
			AwayScore: lp,
			Status:    models.GameStatusCompleted,
		})
	}
	m.RecountGames()
	return m
}

// threeTeamGroup builds a settled group ordered base+1, base+2, base+3. The
// third-placed team scores thirdPoints in each game it loses.
func threeTeamGroup(groupID, base, thirdPoints, firstMatchID int) (models.Group, []models.Match) {
	a, b, c := base+1, base+2, base+3
	return group(groupID, a, b, c), []models.Match{
		win(firstMatchID, groupID, a, b),
		win(firstMatchID+1, groupID, a, c, thirdPoints, thirdPoints),
		win(firstMatchID+2, groupID, b, c, thirdPoints, thirdPoints),
	}
}

// winInThree is a completed best-of-3 that winner takes 2-1.
func winInThree(matchID, groupID, winner, loser int) models.Match {
	m := models.Match{
		ID:         matchID,
		GroupID:    ptr(groupID),
		HomeTeamID: ptr(winner),
		AwayTeamID: ptr(loser),
		Format:     models.BestOf3,
		Games: []models.Game{
			{MatchID: matchID, Number: 1, HomeScore: 11, AwayScore: 7, Status: models.GameStatusCompleted},
			{MatchID: matchID, Number: 2, HomeScore: 9, AwayScore: 11, Status: models.GameStatusCompleted},
			{MatchID: matchID, Number: 3, HomeScore: 11, AwayScore: 8, Status: models.GameStatusCompleted},
		},
	}
	m.RecountGames()
	return m
}
