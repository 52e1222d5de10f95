package brackets

import (
	"fmt"
	"math/bits"
	"math/rand"
	"slices"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
)

const maxKnockoutField = 16

// PairingStrategy decides the order in which qualifiers are considered for
// first-round pairing. The group-avoidance constraint is applied afterwards.
type PairingStrategy interface {
	Order(qualifiers []standings.Qualifier) []standings.Qualifier
}

// SeedOrder keeps qualifiers in seed order, so the same field always yields
// the same bracket.
type SeedOrder struct{}

func (SeedOrder) Order(qualifiers []standings.Qualifier) []standings.Qualifier {
	ordered := slices.Clone(qualifiers)
	slices.SortStableFunc(ordered, func(a, b standings.Qualifier) int { return a.Seed - b.Seed })
	return ordered
}

// Shuffle permutes the field with a fixed seed before pairing.
type Shuffle struct {
	Seed int64
}

func (s Shuffle) Order(qualifiers []standings.Qualifier) []standings.Qualifier {
	ordered := SeedOrder{}.Order(qualifiers)
	rng := rand.New(rand.NewSource(s.Seed))
	rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
	return ordered
}

// StrategyFor returns Shuffle with the given seed, or SeedOrder when seed is nil.
func StrategyFor(seed *int64) PairingStrategy {
	if seed == nil {
		return SeedOrder{}
	}
	return Shuffle{Seed: *seed}
}

type KnockoutGenerator struct {
	strategy PairingStrategy
}

func NewKnockoutGenerator(strategy PairingStrategy) BracketGenerator {
	if strategy == nil {
		strategy = SeedOrder{}
	}
	return &KnockoutGenerator{strategy: strategy}
}

func (g *KnockoutGenerator) GetName() string {
	return "Knockout"
}

// GenerateBracket pairs the qualifiers so that no first-round match joins two
// teams from the same group, then lays out every later round as placeholders
// linked forward from the matches that feed them.
func (g *KnockoutGenerator) GenerateBracket(params GenerateBracketParams) ([]*BracketMatch, error) {
	qualifiers := params.Qualifiers
	n := len(qualifiers)

	if n < 2 || n > maxKnockoutField || bits.OnesCount(uint(n)) != 1 {
		return nil, &standings.InvariantError{Reason: fmt.Sprintf("knockout field must be a power of two between 2 and %d, got %d", maxKnockoutField, n)}
	}
	if !params.Format.Valid() {
		return nil, &standings.InvariantError{Reason: fmt.Sprintf("invalid knockout format best-of-%d", params.Format)}
	}
	seen := make(map[int]struct{}, n)
	for _, q := range qualifiers {
		if _, dup := seen[q.TeamID]; dup {
			return nil, &standings.InvariantError{TeamID: q.TeamID, GroupID: q.GroupID, Reason: "team qualified twice"}
		}
		seen[q.TeamID] = struct{}{}
	}

	pairs, err := pairAvoidingGroups(g.strategy.Order(qualifiers))
	if err != nil {
		return nil, err
	}
	if err := checkPairs(pairs); err != nil {
		return nil, err
	}

	rounds := roundsFor(n)
	order := bracketOrder(len(pairs))
	all := make([]*BracketMatch, 0, n)
	var previous []*BracketMatch

	for r, round := range rounds {
		count := n >> (r + 1)
		current := make([]*BracketMatch, 0, count)
		for slot := 1; slot <= count; slot++ {
			bm := &BracketMatch{
				UID:   matchUID(round, slot),
				Round: round,
				Slot:  slot,
			}
			if r == 0 {
				p := pairs[order[slot-1]]
				home, away := p[0].TeamID, p[1].TeamID
				bm.HomeTeamID, bm.AwayTeamID = &home, &away
			} else {
				src1, src2 := previous[2*(slot-1)], previous[2*slot-1]
				bm.SourceMatch1UID, bm.SourceMatch2UID = &src1.UID, &src2.UID
				bm.IsPlaceholder = true
				linkWinner(src1, bm, models.SlotHome)
				linkWinner(src2, bm, models.SlotAway)
			}
			current = append(current, bm)
		}
		all = append(all, current...)
		previous = current
	}

	// Semi-final losers meet in the third-place match.
	if len(rounds) >= 2 {
		semis := all[len(all)-3 : len(all)-1]
		tp := &BracketMatch{
			UID:             matchUID(models.ThirdPlace, 1),
			Round:           models.ThirdPlace,
			Slot:            1,
			SourceMatch1UID: &semis[0].UID,
			SourceMatch2UID: &semis[1].UID,
			IsPlaceholder:   true,
		}
		linkLoser(semis[0], tp, models.SlotHome)
		linkLoser(semis[1], tp, models.SlotAway)
		all = append(all, tp)
	}
	return all, nil
}

func linkWinner(from, to *BracketMatch, slot int) {
	from.NextMatchUID = &to.UID
	from.NextMatchSlot = &slot
}

func linkLoser(from, to *BracketMatch, slot int) {
	from.LoserNextMatchUID = &to.UID
	from.LoserNextMatchSlot = &slot
}

// pairAvoidingGroups walks the field in order and pairs each unpaired team
// with the last candidate from another group that leaves the remainder
// pairable. A field is pairable iff no group holds more than half of it, so
// the walk never needs to backtrack.
func pairAvoidingGroups(field []standings.Qualifier) ([][2]standings.Qualifier, error) {
	counts := make(map[int]int)
	for _, q := range field {
		counts[q.GroupID]++
	}
	if !pairable(counts, len(field)) {
		return nil, &InfeasibleSeedingError{Distribution: counts, Total: len(field)}
	}

	remaining := slices.Clone(field)
	pairs := make([][2]standings.Qualifier, 0, len(field)/2)
	for len(remaining) > 0 {
		first := remaining[0]
		picked := -1
		for j := len(remaining) - 1; j > 0; j-- {
			cand := remaining[j]
			if cand.GroupID == first.GroupID {
				continue
			}
			counts[first.GroupID]--
			counts[cand.GroupID]--
			ok := pairable(counts, len(remaining)-2)
			counts[first.GroupID]++
			counts[cand.GroupID]++
			if ok {
				picked = j
				break
			}
		}
		if picked < 0 {
			return nil, &InfeasibleSeedingError{Distribution: counts, Total: len(remaining)}
		}

		cand := remaining[picked]
		counts[first.GroupID]--
		counts[cand.GroupID]--
		pairs = append(pairs, [2]standings.Qualifier{first, cand})
		remaining = slices.Delete(remaining, picked, picked+1)
		remaining = remaining[1:]
	}
	return pairs, nil
}

// checkPairs re-validates a pairing against the group-avoidance rule.
func checkPairs(pairs [][2]standings.Qualifier) error {
	counts := make(map[int]int)
	for _, p := range pairs {
		counts[p[0].GroupID]++
		counts[p[1].GroupID]++
	}
	for _, p := range pairs {
		if p[0].GroupID == p[1].GroupID {
			return &InfeasibleSeedingError{
				Distribution: counts,
				Total:        2 * len(pairs),
				Paired:       []int{p[0].TeamID, p[1].TeamID},
			}
		}
	}
	return nil
}

func pairable(counts map[int]int, size int) bool {
	for _, c := range counts {
		if c*2 > size {
			return false
		}
	}
	return true
}

// bracketOrder returns the slot order of pairs so that the first pairs in
// seed order only meet in the latest possible round: 1,4,2,3 for four pairs.
func bracketOrder(pairs int) []int {
	order := []int{0}
	for len(order) < pairs {
		size := len(order) * 2
		next := make([]int, 0, size)
		for _, i := range order {
			next = append(next, i, size-1-i)
		}
		order = next
	}
	return order
}

// roundsFor names the rounds of an n-team knockout from first to last.
func roundsFor(n int) []models.KnockoutRound {
	all := []models.KnockoutRound{models.Final, models.SemiFinal, models.QuarterFinal, models.RoundOf16}
	count := bits.TrailingZeros(uint(n))
	rounds := slices.Clone(all[:count])
	slices.Reverse(rounds)
	return rounds
}

var roundCodes = map[models.KnockoutRound]string{
	models.RoundOf16:    "R16",
	models.QuarterFinal: "QF",
	models.SemiFinal:    "SF",
	models.Final:        "F",
	models.ThirdPlace:   "TP",
}

func matchUID(round models.KnockoutRound, slot int) string {
	return fmt.Sprintf("%s%d", roundCodes[round], slot)
}
