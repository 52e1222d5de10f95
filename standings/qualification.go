package standings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/samber/lo"
)

// CriterionManual marks rows ordered by an operator resolution.
const CriterionManual Criterion = "manual_resolution"

type Config struct {
	// AutoPerGroup is how many top finishers of every group qualify directly.
	AutoPerGroup int `json:"auto_per_group"`
	// Total is the size of the knockout field.
	Total int `json:"total"`
}

func DefaultConfig() Config {
	return Config{AutoPerGroup: 2, Total: 8}
}

type TieBoundary string

const (
	BoundaryGroup    TieBoundary = "group"
	BoundaryWildcard TieBoundary = "wildcard"
)

// Tie is a block of exactly equal teams straddling a qualification cutoff.
type Tie struct {
	Boundary  TieBoundary `json:"boundary"`
	GroupID   int         `json:"group_id,omitempty"`
	Cutoff    int         `json:"cutoff"`
	TeamIDs   []int       `json:"team_ids"`
	OpenSlots int         `json:"open_slots"`
}

func (t Tie) String() string {
	ids := lo.Map(t.TeamIDs, func(id int, _ int) string { return fmt.Sprint(id) })
	where := "wildcard pool"
	if t.Boundary == BoundaryGroup {
		where = fmt.Sprintf("group %d", t.GroupID)
	}
	return fmt.Sprintf("%s position %d: teams [%s] tied for %d slot(s)", where, t.Cutoff, strings.Join(ids, ", "), t.OpenSlots)
}

// Resolution is an operator decision for tied teams. Listed teams are placed
// ahead of the unlisted members of their tie block, in the listed order.
type Resolution struct {
	TeamIDs []int `json:"team_ids"`
}

type Qualifier struct {
	Seed          int  `json:"seed"`
	TeamID        int  `json:"team_id"`
	GroupID       int  `json:"group_id"`
	GroupPosition int  `json:"group_position"`
	Wildcard      bool `json:"wildcard"`
}

type Qualification struct {
	Groups                []Ranking   `json:"groups"`
	Wildcards             Ranking     `json:"wildcards"`
	Qualified             []Qualifier `json:"qualified,omitempty"`
	NeedsManualResolution bool        `json:"needs_manual_resolution"`
	Ties                  []Tie       `json:"ties,omitempty"`
}

// TiedTeamIDs lists every team involved in an unresolved tie.
func (q *Qualification) TiedTeamIDs() []int {
	var ids []int
	for _, t := range q.Ties {
		ids = append(ids, t.TeamIDs...)
	}
	return ids
}

// Err returns an *AmbiguityError when the qualification is blocked on ties.
func (q *Qualification) Err() error {
	if !q.NeedsManualResolution {
		return nil
	}
	return &AmbiguityError{Ties: slices.Clone(q.Ties)}
}

// SelectQualifiers ranks every group, takes the top cfg.AutoPerGroup of each and
// fills the remaining places with the best next-placed teams across groups.
// An exact tie across a cutoff is never decided automatically: the result then
// carries NeedsManualResolution and the tie context instead of a qualifier list.
func SelectQualifiers(groups []models.Group, matches []models.Match, cfg Config, res *Resolution) (*Qualification, error) {
	wildcardSlots, err := validateQualificationInput(groups, cfg)
	if err != nil {
		return nil, err
	}

	q := &Qualification{Groups: make([]Ranking, 0, len(groups))}
	for _, g := range groups {
		r, err := RankGroup(g, matches)
		if err != nil {
			return nil, err
		}

		cutoffs := []int{cfg.AutoPerGroup}
		if wildcardSlots > 0 {
			cutoffs = append(cutoffs, cfg.AutoPerGroup+1)
		}
		for _, cutoff := range cutoffs {
			var tie *Tie
			r, tie = settleCutoff(r, cutoff, res)
			if tie != nil {
				tie.Boundary, tie.GroupID = BoundaryGroup, g.ID
				q.Ties = append(q.Ties, *tie)
				break
			}
		}
		q.Groups = append(q.Groups, r)
	}
	if len(q.Ties) > 0 {
		// The wildcard pool is undefined until every group order is settled.
		q.NeedsManualResolution = true
		return q, nil
	}

	var pool []*TeamAggregate
	for _, r := range q.Groups {
		if len(r.Standings) > cfg.AutoPerGroup {
			s := r.Standings[cfg.AutoPerGroup]
			pool = append(pool, &s.Stats)
		}
	}
	if wildcardSlots > 0 {
		wc, tie := settleCutoff(rankWildcards(pool), wildcardSlots, res)
		q.Wildcards = wc
		if tie != nil {
			tie.Boundary = BoundaryWildcard
			q.Ties = append(q.Ties, *tie)
			q.NeedsManualResolution = true
			return q, nil
		}
	}

	for pos := 1; pos <= cfg.AutoPerGroup; pos++ {
		for _, r := range q.Groups {
			s := r.Standings[pos-1]
			q.Qualified = append(q.Qualified, Qualifier{TeamID: s.TeamID, GroupID: s.GroupID, GroupPosition: pos})
		}
	}
	for i := 0; i < wildcardSlots; i++ {
		s := q.Wildcards.Standings[i]
		q.Qualified = append(q.Qualified, Qualifier{TeamID: s.TeamID, GroupID: s.GroupID, GroupPosition: cfg.AutoPerGroup + 1, Wildcard: true})
	}
	for i := range q.Qualified {
		q.Qualified[i].Seed = i + 1
	}
	if len(q.Qualified) != cfg.Total {
		return nil, invariantf(0, 0, 0, "selected %d qualifiers, expected %d", len(q.Qualified), cfg.Total)
	}
	return q, nil
}

// settleCutoff checks the boundary between positions cutoff and cutoff+1. If
// an exact tie straddles it, the resolution is applied; a tie the resolution
// does not settle is returned.
func settleCutoff(r Ranking, cutoff int, res *Resolution) (Ranking, *Tie) {
	if cutoff <= 0 || cutoff >= len(r.Standings) || !r.Standings[cutoff].TiedWithPrevious {
		return r, nil
	}
	from, to := r.TieBlock(cutoff - 1)
	open := cutoff - from
	block := r.Standings[from:to]

	var picked []int
	if res != nil {
		inBlock := lo.Associate(block, func(s Standing) (int, bool) { return s.TeamID, true })
		picked = lo.Uniq(lo.Filter(res.TeamIDs, func(id int, _ int) bool { return inBlock[id] }))
	}
	if len(picked) < open {
		return r, &Tie{
			Cutoff:    cutoff,
			TeamIDs:   lo.Map(block, func(s Standing, _ int) int { return s.TeamID }),
			OpenSlots: open,
		}
	}

	reordered := make([]Standing, 0, len(block))
	for _, id := range picked {
		s, _ := lo.Find(block, func(s Standing) bool { return s.TeamID == id })
		reordered = append(reordered, s)
	}
	for _, s := range block {
		if !slices.Contains(picked, s.TeamID) {
			reordered = append(reordered, s)
		}
	}

	out := Ranking{GroupID: r.GroupID, Standings: slices.Clone(r.Standings)}
	// Rows the resolution did not name stay tied with each other, so a later
	// cutoff through them is still reported.
	for i, s := range reordered {
		s.Position = from + i + 1
		switch {
		case i == 0:
			s.DecidedBy = r.Standings[from].DecidedBy
			s.TiedWithPrevious = r.Standings[from].TiedWithPrevious
		case i <= len(picked):
			s.DecidedBy, s.TiedWithPrevious = CriterionManual, false
		default:
			s.DecidedBy, s.TiedWithPrevious = "", true
		}
		out.Standings[from+i] = s
	}
	return out, nil
}

func validateQualificationInput(groups []models.Group, cfg Config) (int, error) {
	if len(groups) == 0 {
		return 0, invariantf(0, 0, 0, "no groups to qualify from")
	}
	if cfg.AutoPerGroup < 1 {
		return 0, invariantf(0, 0, 0, "at least one automatic qualifier per group is required")
	}
	auto := cfg.AutoPerGroup * len(groups)
	wildcards := cfg.Total - auto
	if wildcards < 0 {
		return 0, invariantf(0, 0, 0, "%d automatic qualifiers exceed the knockout field of %d", auto, cfg.Total)
	}

	groupIDs := make(map[int]struct{}, len(groups))
	teamGroup := make(map[int]int)
	candidates := 0
	for _, g := range groups {
		if _, dup := groupIDs[g.ID]; dup {
			return 0, invariantf(g.ID, 0, 0, "group listed twice")
		}
		groupIDs[g.ID] = struct{}{}
		if len(g.Teams) < cfg.AutoPerGroup {
			return 0, invariantf(g.ID, 0, 0, "group has %d teams, %d automatic places", len(g.Teams), cfg.AutoPerGroup)
		}
		if len(g.Teams) > cfg.AutoPerGroup {
			candidates++
		}
		for _, t := range g.Teams {
			if other, ok := teamGroup[t.ID]; ok && other != g.ID {
				return 0, invariantf(g.ID, t.ID, 0, "team is also a member of group %d", other)
			}
			teamGroup[t.ID] = g.ID
		}
	}
	if wildcards > candidates {
		return 0, invariantf(0, 0, 0, "%d wildcard places but only %d groups provide a candidate", wildcards, candidates)
	}
	return wildcards, nil
}
