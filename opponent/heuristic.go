package opponent

import (
	"math/rand"

	"github.com/timpalpant/go-qlearn/internal/sampling"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Heuristic plays like a casual human player: it completes its own line
// if it can, otherwise blocks the other player's line, otherwise extends a
// line where it already has a mark, and otherwise plays at random.
type Heuristic struct {
	seat   tictactoe.Player
	random *Random

	candidates []tictactoe.Action
}

// NewHeuristic returns a Heuristic player marking cells for seat.
func NewHeuristic(seat tictactoe.Player, rng *rand.Rand) *Heuristic {
	return &Heuristic{
		seat:       seat,
		random:     NewRandom(rng),
		candidates: make([]tictactoe.Action, 0, tictactoe.NumCells),
	}
}

// ChooseAction implements qlearn.Opponent.
func (h *Heuristic) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	if a, ok := completeLine(s, h.seat); ok {
		return a, nil
	}

	if a, ok := completeLine(s, h.seat.Other()); ok {
		return a, nil
	}

	h.candidates = h.candidates[:0]
	for _, line := range tictactoe.Lines {
		own, empty := count(s, line, h.seat)
		if own != 1 || empty != 2 {
			continue
		}

		for _, a := range line {
			if s.Cell(a) == tictactoe.Empty && !contains(h.candidates, a) {
				h.candidates = append(h.candidates, a)
			}
		}
	}

	if len(h.candidates) > 0 {
		return sampling.Choice(h.random.rng, h.candidates), nil
	}

	return h.random.ChooseAction(s)
}

// completeLine returns the empty cell of the first line in which p holds
// the two other cells.
func completeLine(s tictactoe.State, p tictactoe.Player) (tictactoe.Action, bool) {
	for _, line := range tictactoe.Lines {
		own, empty := count(s, line, p)
		if own != 2 || empty != 1 {
			continue
		}

		for _, a := range line {
			if s.Cell(a) == tictactoe.Empty {
				return a, true
			}
		}
	}

	return 0, false
}

func count(s tictactoe.State, line [3]tictactoe.Action, p tictactoe.Player) (own, empty int) {
	for _, a := range line {
		switch s.Cell(a) {
		case p:
			own++
		case tictactoe.Empty:
			empty++
		}
	}

	return own, empty
}

func contains(xs []tictactoe.Action, x tictactoe.Action) bool {
	for _, y := range xs {
		if y == x {
			return true
		}
	}

	return false
}
