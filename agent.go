package qlearn

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/internal/f64"
	"github.com/timpalpant/go-qlearn/internal/sampling"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Agent is a Q-learning player: a ValueTable read through an EpsilonGreedy policy.
//
// An Agent exclusively owns its table; it is not safe for concurrent use.
type Agent struct {
	params Params
	table  ValueTable
	policy *EpsilonGreedy
}

// NewAgent returns an Agent learning into table with the given parameters.
func NewAgent(table ValueTable, params Params, rng *rand.Rand) (*Agent, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Agent{
		params: params,
		table:  table,
		policy: NewEpsilonGreedy(params.ExplorationRate,
			params.ExplorationDecay, params.ExplorationMin, rng),
	}, nil
}

// ChooseAction implements Opponent. The chosen action may be illegal
// while the agent is exploring, or if it has not learned to avoid it yet.
func (a *Agent) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	values, err := a.table.Values(s)
	if err != nil {
		return 0, err
	}

	return a.policy.Choose(values), nil
}

// Learn credits a transition using the agent's learning rate and discount factor.
func (a *Agent) Learn(t Transition) error {
	_, err := a.table.Update(t, a.params.LearningRate, a.params.DiscountFactor)
	return errors.WithMessagef(err, "failed to update state %s, action %d", t.State.Key(), t.Action)
}

// DecayExploration decays the exploration rate once.
func (a *Agent) DecayExploration() {
	a.policy.Decay()
}

// ExplorationRate returns the current exploration rate.
func (a *Agent) ExplorationRate() float64 {
	return a.policy.Rate()
}

// SetExploration replaces the exploration schedule.
func (a *Agent) SetExploration(rate, decay, min float64) {
	a.policy.Set(rate, decay, min)
}

// Exploit switches the agent to a purely greedy policy (ε = 0).
func (a *Agent) Exploit() {
	a.policy.Exploit()
}

// Explore restores the exploration schedule in effect before Exploit.
func (a *Agent) Explore() {
	a.policy.Explore()
}

// Table returns the agent's ValueTable.
func (a *Agent) Table() ValueTable {
	return a.table
}

// Greedy plays the best legal action of a fixed ValueTable, breaking ties
// uniformly at random. It never learns and never plays an illegal move.
//
// Tables are learned from the point of view of LearnerSeat. A Greedy player
// seated as the other player looks up the swapped position instead.
type Greedy struct {
	table ValueTable
	seat  tictactoe.Player
	rng   *rand.Rand
	ties  []int
}

// NewGreedy returns a Greedy player for seat reading from table.
func NewGreedy(table ValueTable, seat tictactoe.Player, rng *rand.Rand) *Greedy {
	return &Greedy{
		table: table,
		seat:  seat,
		rng:   rng,
		ties:  make([]int, 0, tictactoe.NumActions),
	}
}

// ChooseAction implements Opponent.
func (g *Greedy) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	key := s
	if g.seat != LearnerSeat {
		key = tictactoe.Swap(s)
	}

	values, err := g.table.Values(key)
	if err != nil {
		return 0, err
	}

	legal := tictactoe.LegalActions(s)
	if len(legal) == 0 {
		return 0, errors.Errorf("no legal actions in state %s", s.Key())
	}

	idx := make([]int, len(legal))
	for i, a := range legal {
		idx[i] = int(a)
	}

	g.ties = f64.ArgMaxesOf(g.ties[:0], values[:], idx)
	return tictactoe.Action(sampling.Choice(g.rng, g.ties)), nil
}
