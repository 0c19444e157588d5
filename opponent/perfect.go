package opponent

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/internal/sampling"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

const winScore = 10

type position struct {
	state  tictactoe.State
	toMove tictactoe.Player
}

// Perfect plays an optimal move found by exhaustive minimax search.
//
// Wins are scored 10 minus the number of marks on the final board and
// losses the opposite, so among winning moves the quickest is preferred and
// among losing moves the slowest. Draws score 0. Search results are memoized
// for the lifetime of the player.
type Perfect struct {
	seat tictactoe.Player
	rng  *rand.Rand

	memo map[position]int
	best []tictactoe.Action
}

// NewPerfect returns a Perfect player marking cells for seat.
func NewPerfect(seat tictactoe.Player, rng *rand.Rand) *Perfect {
	return &Perfect{
		seat: seat,
		rng:  rng,
		memo: make(map[position]int),
		best: make([]tictactoe.Action, 0, tictactoe.NumCells),
	}
}

// ChooseAction implements qlearn.Opponent. Ties between optimal moves are
// broken uniformly at random.
func (p *Perfect) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	if tictactoe.IsTerminal(s) {
		return 0, errors.Wrapf(ErrNoLegalMove, "game is over in state %s", s.Key())
	}

	p.best = p.best[:0]
	bestScore := -winScore - 1
	for _, a := range tictactoe.LegalActions(s) {
		next, err := tictactoe.Apply(s, a, p.seat)
		if err != nil {
			return 0, err
		}

		score := p.Score(next, p.seat.Other())
		if score > bestScore {
			bestScore = score
			p.best = append(p.best[:0], a)
		} else if score == bestScore {
			p.best = append(p.best, a)
		}
	}

	return sampling.Choice(p.rng, p.best), nil
}

// Score returns the minimax value of s for the player's seat
// when toMove is the next player to mark a cell.
func (p *Perfect) Score(s tictactoe.State, toMove tictactoe.Player) int {
	key := position{s, toMove}
	if v, ok := p.memo[key]; ok {
		return v
	}

	v := p.search(s, toMove)
	p.memo[key] = v
	return v
}

func (p *Perfect) search(s tictactoe.State, toMove tictactoe.Player) int {
	switch tictactoe.Winner(s) {
	case p.seat:
		return winScore - s.NumFilled()
	case p.seat.Other():
		return s.NumFilled() - winScore
	}

	legal := tictactoe.LegalActions(s)
	if len(legal) == 0 {
		return 0
	}

	maximize := toMove == p.seat
	best := winScore + 1
	if maximize {
		best = -winScore - 1
	}

	for _, a := range legal {
		next, _ := tictactoe.Apply(s, a, toMove)
		v := p.Score(next, toMove.Other())
		if (maximize && v > best) || (!maximize && v < best) {
			best = v
		}
	}

	return best
}
