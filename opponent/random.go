// Package opponent implements fixed (non-learning) tic-tac-toe players that
// a Q-learning agent can be trained and evaluated against.
package opponent

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/internal/sampling"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// ErrNoLegalMove is returned when asked to move in a position without
// any empty cell.
var ErrNoLegalMove = errors.New("no legal move")

// Random plays a uniformly random legal move.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random player drawing moves from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

// ChooseAction implements qlearn.Opponent.
func (r *Random) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	legal := tictactoe.LegalActions(s)
	if len(legal) == 0 {
		return 0, errors.Wrapf(ErrNoLegalMove, "state %s", s.Key())
	}

	return sampling.Choice(r.rng, legal), nil
}
