package brackets

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

var ErrInfeasibleSeeding = errors.New("no first-round pairing keeps group mates apart")

// InfeasibleSeedingError reports the origin-group distribution of the field.
// Paired is set when a generated pairing put two group mates together.
type InfeasibleSeedingError struct {
	Distribution map[int]int // group ID -> qualifiers
	Total        int
	Paired       []int
}

func (e *InfeasibleSeedingError) Error() string {
	groups := lo.Keys(e.Distribution)
	slices.Sort(groups)
	parts := lo.Map(groups, func(g int, _ int) string {
		return fmt.Sprintf("group %d: %d", g, e.Distribution[g])
	})
	msg := fmt.Sprintf("%v: %d qualifiers (%s), at most %d may share a group",
		ErrInfeasibleSeeding, e.Total, strings.Join(parts, ", "), e.Total/2)
	if len(e.Paired) > 0 {
		ids := lo.Map(e.Paired, func(id int, _ int) string { return fmt.Sprint(id) })
		msg += fmt.Sprintf("; teams %s were paired together", strings.Join(ids, " and "))
	}
	return msg
}

func (e *InfeasibleSeedingError) Unwrap() error { return ErrInfeasibleSeeding }
