package stage

import (
	"errors"
	"fmt"

	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/models"
)

// ErrStalePrecondition marks a transition whose guard does not hold. It is a
// recoverable rejection: nothing was changed.
var ErrStalePrecondition = errors.New("stage transition precondition not met")

// PreconditionError says exactly which guard failed. Incomplete and MatchIDs
// list what still has to be played when the guard is about unfinished matches.
type PreconditionError struct {
	Phase      models.Phase
	Reason     string
	Incomplete int
	MatchIDs   []int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v: cannot leave %s: %s", ErrStalePrecondition, e.Phase, e.Reason)
}

func (e *PreconditionError) Unwrap() error { return ErrStalePrecondition }
