package brackets

import (
	"fmt"
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

type RoundRobinParams struct {
	Group       models.Group
	Format      models.MatchFormat
	ScheduledAt time.Time
	// Spacing separates consecutive match times; zero schedules all at once.
	Spacing time.Duration
}

// RoundRobin creates the group-stage schedule: each member plays every other
// member once. Matches a group already has are skipped, so re-running it only
// fills gaps.
func RoundRobin(params RoundRobinParams, existing []models.Match) ([]models.Match, error) {
	group := params.Group
	if len(group.Teams) < 2 {
		return nil, fmt.Errorf("round robin for group %d: not enough teams (found %d, min 2 required)", group.ID, len(group.Teams))
	}
	if !params.Format.Valid() {
		return nil, fmt.Errorf("round robin for group %d: invalid format best-of-%d", group.ID, params.Format)
	}

	played := make(map[[2]int]bool)
	for _, m := range existing {
		if m.GroupID == nil || *m.GroupID != group.ID || m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue
		}
		played[[2]int{*m.HomeTeamID, *m.AwayTeamID}] = true
		played[[2]int{*m.AwayTeamID, *m.HomeTeamID}] = true
	}

	matches := make([]models.Match, 0)
	order := 0
	for i := 0; i < len(group.Teams); i++ {
		for j := i + 1; j < len(group.Teams); j++ {
			home, away := group.Teams[i].ID, group.Teams[j].ID
			if played[[2]int{home, away}] {
				continue
			}
			groupID := group.ID
			matches = append(matches, models.Match{
				GroupID:     &groupID,
				HomeTeamID:  &home,
				AwayTeamID:  &away,
				Format:      params.Format,
				Status:      models.MatchStatusScheduled,
				ScheduledAt: params.ScheduledAt.Add(time.Duration(order) * params.Spacing),
			})
			order++
		}
	}
	return matches, nil
}
