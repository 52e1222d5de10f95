package standings

import (
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/samber/lo"
)

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
)

// HeadToHead answers how a team fared against one opponent.
type HeadToHead interface {
	Outcome(teamID, opponentID int) Outcome
}

type pair struct{ team, opponent int }

// HeadToHeadIndex is the transient pairwise outcome table of one group. It is
// built per ranking pass and never persisted.
type HeadToHeadIndex struct {
	outcomes map[pair]Outcome
}

// BuildHeadToHead indexes the completed matches of the group. When two teams
// met more than once the side with more match wins holds the edge; an even
// record yields no outcome.
func BuildHeadToHead(groupID int, matches []models.Match) *HeadToHeadIndex {
	wins := make(map[pair]int)
	for i := range matches {
		m := &matches[i]
		if m.GroupID == nil || *m.GroupID != groupID {
			continue
		}
		winner, ok := m.WinnerID()
		if !ok {
			continue
		}
		loser, _ := m.LoserID()
		wins[pair{winner, loser}]++
	}

	idx := &HeadToHeadIndex{outcomes: make(map[pair]Outcome, len(wins)*2)}
	for p := range wins {
		reverse := pair{p.opponent, p.team}
		switch diff := wins[p] - wins[reverse]; {
		case diff > 0:
			idx.outcomes[p] = OutcomeWin
			idx.outcomes[reverse] = OutcomeLoss
		case diff < 0:
			idx.outcomes[p] = OutcomeLoss
			idx.outcomes[reverse] = OutcomeWin
		}
	}
	return idx
}

func (h *HeadToHeadIndex) Outcome(teamID, opponentID int) Outcome {
	if h == nil {
		return OutcomeNone
	}
	return h.outcomes[pair{teamID, opponentID}]
}

// CircularTies returns the teams whose head-to-head results cannot be used in
// this pass: every member of a 3-cycle among teams sharing a win count.
func CircularTies(aggs Aggregates, h2h HeadToHead) map[int]bool {
	invalid := make(map[int]bool)
	byWins := lo.GroupBy(aggs.TeamIDs(), func(id int) int { return aggs[id].Wins })

	for _, tied := range byWins {
		if len(tied) < 3 {
			continue
		}
		for i := 0; i < len(tied); i++ {
			for j := i + 1; j < len(tied); j++ {
				for k := j + 1; k < len(tied); k++ {
					a, b, c := tied[i], tied[j], tied[k]
					if isCycle(h2h, a, b, c) {
						invalid[a], invalid[b], invalid[c] = true, true, true
					}
				}
			}
		}
	}
	return invalid
}

// isCycle reports whether a→b→c→a or a→c→b→a. Both hold exactly when all three
// pairs have an outcome and each team won exactly one of its two meetings.
func isCycle(h2h HeadToHead, a, b, c int) bool {
	ab, bc, ca := h2h.Outcome(a, b), h2h.Outcome(b, c), h2h.Outcome(c, a)
	if ab == OutcomeNone || bc == OutcomeNone || ca == OutcomeNone {
		return false
	}
	return ab == bc && bc == ca
}
