// Package stage advances the tournament from the group stage through the
// knockout rounds. Transitions are pure: they take the current stage record and
// a snapshot, and return the next record plus the match changes to persist.
package stage

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/brackets"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/standings"
)

type Snapshot struct {
	Groups  []models.Group
	Matches []models.Match
}

type Options struct {
	Qualification  standings.Config
	Resolution     *standings.Resolution
	Generator      brackets.BracketGenerator
	KnockoutFormat models.MatchFormat
	// ScheduledAt is the default time given to generated knockout matches.
	ScheduledAt time.Time
	// Now stamps the new stage record.
	Now time.Time
}

func DefaultOptions() Options {
	return Options{
		Qualification:  standings.DefaultConfig(),
		Generator:      brackets.NewKnockoutGenerator(nil),
		KnockoutFormat: models.BestOf5,
	}
}

// Effects are the records a caller must write together with the new stage.
type Effects struct {
	Qualification  *standings.Qualification `json:"qualification,omitempty"`
	CreatedMatches []models.Match           `json:"created_matches,omitempty"`
	UpdatedMatches []models.Match           `json:"updated_matches,omitempty"`
}

type Transition struct {
	From  models.Phase           `json:"from"`
	To    models.Phase           `json:"to"`
	State models.TournamentStage `json:"state"`
	Effects
}

// Reset is the only way to move a stage backwards.
func Reset(now time.Time) models.TournamentStage {
	s := models.InitialStage()
	s.UpdatedAt = now
	return s
}

// Advance attempts the single transition available from the current phase.
func Advance(current models.TournamentStage, snap Snapshot, opts Options) (*Transition, error) {
	var (
		t   *Transition
		err error
	)
	switch current.Phase {
	case models.PhaseGroupStage, "":
		t, err = generateKnockout(current, snap, opts)
	case models.PhaseRoundOf16, models.PhaseQuarterFinal, models.PhaseSemiFinal:
		t, err = advanceRound(current, snap)
	case models.PhaseFinal:
		t, err = completeTournament(current, snap)
	case models.PhaseComplete:
		return nil, &PreconditionError{Phase: current.Phase, Reason: "tournament is already complete"}
	default:
		return nil, &standings.InvariantError{Reason: fmt.Sprintf("unknown tournament phase %q", current.Phase)}
	}
	if err != nil {
		return nil, err
	}

	if err := CheckMonotonic(current, t.State); err != nil {
		return nil, err
	}
	t.State.UpdatedAt = opts.Now
	return t, nil
}

// CheckMonotonic rejects a next state that moves the phase backwards or clears
// a flag that was already set.
func CheckMonotonic(prev, next models.TournamentStage) error {
	switch {
	case models.PhaseOrder(next.Phase) <= models.PhaseOrder(prev.Phase):
		return &standings.InvariantError{Reason: fmt.Sprintf("stage cannot move from %s to %s", prev.Phase, next.Phase)}
	case prev.KnockoutGenerated && !next.KnockoutGenerated:
		return &standings.InvariantError{Reason: "knockout generated flag cannot be cleared"}
	case prev.GroupStageCompleted && !next.GroupStageCompleted:
		return &standings.InvariantError{Reason: "group stage completed flag cannot be cleared"}
	}
	return nil
}

func generateKnockout(current models.TournamentStage, snap Snapshot, opts Options) (*Transition, error) {
	phase := models.PhaseGroupStage
	if current.KnockoutGenerated {
		return nil, &PreconditionError{Phase: phase, Reason: "knockout bracket already generated"}
	}

	var groupMatches, incomplete []int
	for _, m := range snap.Matches {
		if m.IsKnockout() {
			return nil, &PreconditionError{Phase: phase, Reason: fmt.Sprintf("knockout match %d already exists", m.ID)}
		}
		if m.GroupID == nil {
			continue
		}
		groupMatches = append(groupMatches, m.ID)
		if m.Status == models.MatchStatusScheduled || m.Status == models.MatchStatusInProgress {
			incomplete = append(incomplete, m.ID)
		}
	}
	if len(groupMatches) == 0 {
		return nil, &PreconditionError{Phase: phase, Reason: "no group matches have been scheduled"}
	}
	if len(incomplete) > 0 {
		return nil, &PreconditionError{
			Phase:      phase,
			Reason:     fmt.Sprintf("%d group matches incomplete", len(incomplete)),
			Incomplete: len(incomplete),
			MatchIDs:   incomplete,
		}
	}

	q, err := standings.SelectQualifiers(snap.Groups, snap.Matches, opts.Qualification, opts.Resolution)
	if err != nil {
		return nil, err
	}
	if err := q.Err(); err != nil {
		return nil, err
	}

	generator := opts.Generator
	if generator == nil {
		generator = brackets.NewKnockoutGenerator(nil)
	}
	format := opts.KnockoutFormat
	if format == 0 {
		format = models.BestOf5
	}
	params := brackets.GenerateBracketParams{Qualifiers: q.Qualified, Format: format, ScheduledAt: opts.ScheduledAt}
	bracket, err := generator.GenerateBracket(params)
	if err != nil {
		return nil, err
	}
	if len(bracket) == 0 {
		return nil, &standings.InvariantError{Reason: "bracket generation produced no matches"}
	}

	return &Transition{
		From: phase,
		To:   models.PhaseForRound(bracket[0].Round),
		State: models.TournamentStage{
			Phase:               models.PhaseForRound(bracket[0].Round),
			GroupStageCompleted: true,
			KnockoutGenerated:   true,
		},
		Effects: Effects{
			Qualification:  q,
			CreatedMatches: brackets.ToMatches(bracket, params),
		},
	}, nil
}

func advanceRound(current models.TournamentStage, snap Snapshot) (*Transition, error) {
	round, _ := models.RoundForPhase(current.Phase)
	played, err := roundMatches(current.Phase, snap, round)
	if err != nil {
		return nil, err
	}

	byUID := make(map[string]*models.Match)
	for i := range snap.Matches {
		if uid := snap.Matches[i].BracketUID; uid != nil {
			m := snap.Matches[i]
			byUID[*uid] = &m
		}
	}

	touched := make(map[string]*models.Match)
	var next models.KnockoutRound
	for _, m := range played {
		winner, ok := m.WinnerID()
		if !ok {
			return nil, &standings.InvariantError{MatchID: m.ID, Reason: "completed knockout match has no winner"}
		}
		loser, _ := m.LoserID()

		target, err := placeInto(byUID, m, m.NextMatchUID, m.NextMatchSlot, winner)
		if err != nil {
			return nil, err
		}
		touched[*target.BracketUID] = target
		if target.Round != nil && *target.Round != models.ThirdPlace {
			next = *target.Round
		}

		if m.LoserNextMatchUID != nil {
			target, err := placeInto(byUID, m, m.LoserNextMatchUID, m.LoserNextMatchSlot, loser)
			if err != nil {
				return nil, err
			}
			touched[*target.BracketUID] = target
		}
	}

	updated := make([]models.Match, 0, len(touched))
	for _, m := range touched {
		if m.IsPlaceholder() {
			return nil, &standings.InvariantError{MatchID: m.ID, Reason: fmt.Sprintf("match %s is still missing a participant", *m.BracketUID)}
		}
		updated = append(updated, *m)
	}
	slices.SortFunc(updated, func(a, b models.Match) int {
		return cmp.Or(cmp.Compare(roundRank(*a.Round), roundRank(*b.Round)), cmp.Compare(a.Slot, b.Slot))
	})

	to := models.PhaseForRound(next)
	state := current
	state.Phase = to
	return &Transition{
		From:    current.Phase,
		To:      to,
		State:   state,
		Effects: Effects{UpdatedMatches: updated},
	}, nil
}

// roundRank orders rounds by when they are played, third place after the final.
func roundRank(r models.KnockoutRound) int {
	if r == models.ThirdPlace {
		return models.PhaseOrder(models.PhaseComplete)
	}
	return models.PhaseOrder(models.PhaseForRound(r))
}

func completeTournament(current models.TournamentStage, snap Snapshot) (*Transition, error) {
	if _, err := roundMatches(current.Phase, snap, models.Final, models.ThirdPlace); err != nil {
		return nil, err
	}
	state := current
	state.Phase = models.PhaseComplete
	return &Transition{From: current.Phase, To: models.PhaseComplete, State: state}, nil
}

// roundMatches returns the matches of the given rounds once all of them are
// completed, and a precondition error counting the rest otherwise.
func roundMatches(phase models.Phase, snap Snapshot, rounds ...models.KnockoutRound) ([]models.Match, error) {
	var matches []models.Match
	var incomplete []int
	for _, m := range snap.Matches {
		if m.Round == nil || !slices.Contains(rounds, *m.Round) {
			continue
		}
		matches = append(matches, m)
		if m.Status != models.MatchStatusCompleted {
			incomplete = append(incomplete, m.ID)
		}
	}
	if len(matches) == 0 {
		return nil, &standings.InvariantError{Reason: fmt.Sprintf("no %s matches found for phase %s", rounds[0], phase)}
	}
	if len(incomplete) > 0 {
		return nil, &PreconditionError{
			Phase:      phase,
			Reason:     fmt.Sprintf("%d %s matches incomplete", len(incomplete), phase),
			Incomplete: len(incomplete),
			MatchIDs:   incomplete,
		}
	}
	slices.SortFunc(matches, func(a, b models.Match) int { return cmp.Compare(a.Slot, b.Slot) })
	return matches, nil
}

func placeInto(byUID map[string]*models.Match, from models.Match, uid *string, slot *int, teamID int) (*models.Match, error) {
	if uid == nil || slot == nil {
		return nil, &standings.InvariantError{MatchID: from.ID, Reason: "knockout match has no forward-link"}
	}
	target, ok := byUID[*uid]
	if !ok {
		return nil, &standings.InvariantError{MatchID: from.ID, Reason: fmt.Sprintf("forward-link target %s not found", *uid)}
	}
	id := teamID
	switch *slot {
	case models.SlotHome:
		target.HomeTeamID = &id
	case models.SlotAway:
		target.AwayTeamID = &id
	default:
		return nil, &standings.InvariantError{MatchID: from.ID, Reason: fmt.Sprintf("invalid forward-link slot %d", *slot)}
	}
	return target, nil
}
