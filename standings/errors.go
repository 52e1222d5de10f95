package standings

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvariantViolation marks input that breaks a data-model invariant. The
	// operation is rejected before any computation.
	ErrInvariantViolation = errors.New("input invariant violation")

	// ErrAmbiguousRanking marks a qualification boundary that needs an operator
	// to pick which tied team(s) advance.
	ErrAmbiguousRanking = errors.New("ambiguous ranking requires manual resolution")
)

// InvariantError identifies the offending group, team or match.
type InvariantError struct {
	GroupID int
	TeamID  int
	MatchID int
	Reason  string
}

func (e *InvariantError) Error() string {
	var ctx []string
	if e.GroupID != 0 {
		ctx = append(ctx, fmt.Sprintf("group %d", e.GroupID))
	}
	if e.TeamID != 0 {
		ctx = append(ctx, fmt.Sprintf("team %d", e.TeamID))
	}
	if e.MatchID != 0 {
		ctx = append(ctx, fmt.Sprintf("match %d", e.MatchID))
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%v: %s", ErrInvariantViolation, e.Reason)
	}
	return fmt.Sprintf("%v: %s (%s)", ErrInvariantViolation, e.Reason, strings.Join(ctx, ", "))
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

func invariantf(groupID, teamID, matchID int, format string, args ...any) error {
	return &InvariantError{GroupID: groupID, TeamID: teamID, MatchID: matchID, Reason: fmt.Sprintf(format, args...)}
}

// AmbiguityError carries the unresolved ties of a qualification pass.
type AmbiguityError struct {
	Ties []Tie
}

func (e *AmbiguityError) Error() string {
	parts := make([]string, 0, len(e.Ties))
	for _, t := range e.Ties {
		parts = append(parts, t.String())
	}
	return fmt.Sprintf("%v: %s", ErrAmbiguousRanking, strings.Join(parts, "; "))
}

func (e *AmbiguityError) Unwrap() error { return ErrAmbiguousRanking }
