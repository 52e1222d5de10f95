package models

import "time"

type StageName string

const (
	GroupStage    StageName = "group_stage"
	KnockoutStage StageName = "knockout_stage"
)

// Phase is the fine-grained position of the tournament. Phases only move
// forward; see PhaseOrder.
type Phase string

const (
	PhaseGroupStage   Phase = "group_stage"
	PhaseRoundOf16    Phase = "round_of_16"
	PhaseQuarterFinal Phase = "quarter_final"
	PhaseSemiFinal    Phase = "semi_final"
	PhaseFinal        Phase = "final"
	PhaseComplete     Phase = "complete"
)

var phaseOrder = map[Phase]int{
	PhaseGroupStage:   0,
	PhaseRoundOf16:    1,
	PhaseQuarterFinal: 2,
	PhaseSemiFinal:    3,
	PhaseFinal:        4,
	PhaseComplete:     5,
}

// PhaseOrder returns the position of p in the tournament lifecycle, or -1.
func PhaseOrder(p Phase) int {
	if i, ok := phaseOrder[p]; ok {
		return i
	}
	return -1
}

// PhaseForRound maps a knockout round to the phase in which it is played.
// The third-place match is played during the final phase.
func PhaseForRound(r KnockoutRound) Phase {
	switch r {
	case RoundOf16:
		return PhaseRoundOf16
	case QuarterFinal:
		return PhaseQuarterFinal
	case SemiFinal:
		return PhaseSemiFinal
	case Final, ThirdPlace:
		return PhaseFinal
	}
	return ""
}

// RoundForPhase is the inverse of PhaseForRound for knockout phases.
func RoundForPhase(p Phase) (KnockoutRound, bool) {
	switch p {
	case PhaseRoundOf16:
		return RoundOf16, true
	case PhaseQuarterFinal:
		return QuarterFinal, true
	case PhaseSemiFinal:
		return SemiFinal, true
	case PhaseFinal:
		return Final, true
	}
	return "", false
}

// TournamentStage is the process-wide stage record. It is created once and
// only replaced by stage transitions or a full reset.
type TournamentStage struct {
	Phase               Phase     `json:"phase" db:"phase"`
	GroupStageCompleted bool      `json:"group_stage_completed" db:"group_stage_completed"`
	KnockoutGenerated   bool      `json:"knockout_generated" db:"knockout_generated"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

func (s TournamentStage) CurrentStage() StageName {
	if s.Phase == PhaseGroupStage || s.Phase == "" {
		return GroupStage
	}
	return KnockoutStage
}

func InitialStage() TournamentStage {
	return TournamentStage{Phase: PhaseGroupStage}
}
