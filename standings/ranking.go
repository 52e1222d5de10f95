package standings

import (
	"cmp"
	"slices"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

// Criterion names one tie-break level.
type Criterion string

const (
	CriterionWins              Criterion = "wins"
	CriterionHeadToHead        Criterion = "head_to_head"
	CriterionGameDifference    Criterion = "game_difference"
	CriterionPointDifferential Criterion = "point_differential"
	CriterionPointsFor         Criterion = "points_for"
)

// rankingPass holds what a single ranking computation needs. The head-to-head
// gate is evaluated once per pass.
type rankingPass struct {
	h2h         HeadToHead
	invalidated map[int]bool
}

type criterion struct {
	name    Criterion
	compare func(p *rankingPass, a, b *TeamAggregate) int
}

// Comparators return a negative value when a ranks above b.
var (
	byWins = criterion{CriterionWins, func(_ *rankingPass, a, b *TeamAggregate) int {
		return cmp.Compare(b.Wins, a.Wins)
	}}
	byHeadToHead = criterion{CriterionHeadToHead, func(p *rankingPass, a, b *TeamAggregate) int {
		if p.h2h == nil || p.invalidated[a.TeamID] || p.invalidated[b.TeamID] {
			return 0
		}
		switch p.h2h.Outcome(a.TeamID, b.TeamID) {
		case OutcomeWin:
			return -1
		case OutcomeLoss:
			return 1
		}
		return 0
	}}
	byGameDifference = criterion{CriterionGameDifference, func(_ *rankingPass, a, b *TeamAggregate) int {
		return cmp.Compare(b.GameDifference(), a.GameDifference())
	}}
	byPointDifferential = criterion{CriterionPointDifferential, func(_ *rankingPass, a, b *TeamAggregate) int {
		return cmp.Compare(b.PointDifferential(), a.PointDifferential())
	}}
	byPointsFor = criterion{CriterionPointsFor, func(_ *rankingPass, a, b *TeamAggregate) int {
		return cmp.Compare(b.PointsFor, a.PointsFor)
	}}

	groupCriteria    = []criterion{byWins, byHeadToHead, byGameDifference, byPointDifferential, byPointsFor}
	wildcardCriteria = []criterion{byWins, byGameDifference, byPointDifferential, byPointsFor}
)

// Standing is one row of a ranking.
type Standing struct {
	Position int           `json:"position"`
	TeamID   int           `json:"team_id"`
	GroupID  int           `json:"group_id"`
	Stats    TeamAggregate `json:"stats"`

	// DecidedBy is the criterion that separated this row from the one above,
	// empty for the first row. TiedWithPrevious is set when nothing did.
	DecidedBy        Criterion `json:"decided_by,omitempty"`
	TiedWithPrevious bool      `json:"tied_with_previous,omitempty"`

	HeadToHeadInvalidated bool `json:"head_to_head_invalidated,omitempty"`
}

type Ranking struct {
	GroupID   int        `json:"group_id,omitempty"`
	Standings []Standing `json:"standings"`
}

// TeamAt returns the team ID at the 1-based position.
func (r Ranking) TeamAt(position int) (int, bool) {
	if position < 1 || position > len(r.Standings) {
		return 0, false
	}
	return r.Standings[position-1].TeamID, true
}

func (r Ranking) TeamIDs() []int {
	ids := make([]int, len(r.Standings))
	for i, s := range r.Standings {
		ids[i] = s.TeamID
	}
	return ids
}

// TieBlock returns the 0-based index range [from, to) of rows that cannot be
// separated from the row at index i.
func (r Ranking) TieBlock(i int) (from, to int) {
	from, to = i, i+1
	for from > 0 && r.Standings[from].TiedWithPrevious {
		from--
	}
	for to < len(r.Standings) && r.Standings[to].TiedWithPrevious {
		to++
	}
	return from, to
}

// Ties returns the team IDs of every block of rows no criterion could
// separate, top to bottom.
func (r Ranking) Ties() [][]int {
	var ties [][]int
	for i := 1; i < len(r.Standings); i++ {
		if !r.Standings[i].TiedWithPrevious {
			continue
		}
		from, to := r.TieBlock(i)
		ids := make([]int, 0, to-from)
		for _, s := range r.Standings[from:to] {
			ids = append(ids, s.TeamID)
		}
		ties = append(ties, ids)
		i = to - 1
	}
	return ties
}

// Rank orders the aggregates with the group criteria. h2h may be nil.
func Rank(aggs Aggregates, h2h HeadToHead) Ranking {
	pass := &rankingPass{h2h: h2h}
	if h2h != nil {
		pass.invalidated = CircularTies(aggs, h2h)
	}
	return rank(aggs.TeamIDs(), aggs, pass, groupCriteria)
}

// RankGroup aggregates the group's completed matches and ranks its teams.
func RankGroup(group models.Group, matches []models.Match) (Ranking, error) {
	aggs, err := Aggregate(group, matches)
	if err != nil {
		return Ranking{}, err
	}
	r := Rank(aggs, BuildHeadToHead(group.ID, matches))
	r.GroupID = group.ID
	return r, nil
}

// rankWildcards orders teams from different groups; head-to-head never applies.
func rankWildcards(pool []*TeamAggregate) Ranking {
	aggs := make(Aggregates, len(pool))
	for _, a := range pool {
		aggs[a.TeamID] = a
	}
	return rank(aggs.TeamIDs(), aggs, &rankingPass{}, wildcardCriteria)
}

func rank(ids []int, aggs Aggregates, pass *rankingPass, criteria []criterion) Ranking {
	compare := func(a, b int) (int, Criterion) {
		for _, c := range criteria {
			if v := c.compare(pass, aggs[a], aggs[b]); v != 0 {
				return v, c.name
			}
		}
		return 0, ""
	}

	ordered := slices.Clone(ids)
	slices.SortStableFunc(ordered, func(a, b int) int {
		v, _ := compare(a, b)
		return v
	})

	standings := make([]Standing, len(ordered))
	for i, id := range ordered {
		standings[i] = Standing{
			Position:              i + 1,
			TeamID:                id,
			GroupID:               aggs[id].GroupID,
			Stats:                 *aggs[id],
			HeadToHeadInvalidated: pass.invalidated[id],
		}
		if i > 0 {
			v, by := compare(ordered[i-1], id)
			standings[i].DecidedBy = by
			standings[i].TiedWithPrevious = v == 0
		}
	}
	return Ranking{Standings: standings}
}
