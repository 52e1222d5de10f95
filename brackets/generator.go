package brackets

import (
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
)

type GenerateBracketParams struct {
	Qualifiers  []standings.Qualifier
	Format      models.MatchFormat
	ScheduledAt time.Time
}

type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// BracketMatch is one generated knockout match. Later rounds are placeholders
// whose participants arrive through the forward-links of their source matches.
type BracketMatch struct {
	UID   string
	Round models.KnockoutRound
	Slot  int

	HomeTeamID *int
	AwayTeamID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	NextMatchUID       *string
	NextMatchSlot      *int
	LoserNextMatchUID  *string
	LoserNextMatchSlot *int

	IsPlaceholder bool
}

// ToMatch converts the generated match into a persistable knockout match.
func (bm *BracketMatch) ToMatch(format models.MatchFormat, scheduledAt time.Time) models.Match {
	round := bm.Round
	uid := bm.UID
	return models.Match{
		HomeTeamID:         bm.HomeTeamID,
		AwayTeamID:         bm.AwayTeamID,
		Format:             format,
		Status:             models.MatchStatusScheduled,
		ScheduledAt:        scheduledAt,
		Round:              &round,
		Slot:               bm.Slot,
		BracketUID:         &uid,
		NextMatchUID:       bm.NextMatchUID,
		NextMatchSlot:      bm.NextMatchSlot,
		LoserNextMatchUID:  bm.LoserNextMatchUID,
		LoserNextMatchSlot: bm.LoserNextMatchSlot,
	}
}

// ToMatches converts a generated bracket, keeping its round/slot order.
func ToMatches(bracket []*BracketMatch, params GenerateBracketParams) []models.Match {
	out := make([]models.Match, 0, len(bracket))
	for _, bm := range bracket {
		out = append(out, bm.ToMatch(params.Format, params.ScheduledAt))
	}
	return out
}
