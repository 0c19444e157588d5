package qlearn

import (
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Opponent is any player the learner can be trained against.
type Opponent interface {
	// ChooseAction returns the cell to mark in state s.
	//
	// Implementations must only return legal actions. An error means that no
	// action could be chosen at all (e.g. the board is full, or input failed).
	ChooseAction(s tictactoe.State) (tictactoe.Action, error)
}

// Transition is one learner move to credit in a ValueTable.
type Transition struct {
	State  tictactoe.State
	Action tictactoe.Action
	Reward float64
	// Next is the state the learner will act from after this move, or nil
	// if the episode is over and there is no continuation value.
	Next *tictactoe.State
}

// Bootstrap returns a Transition whose target includes the value of next.
func Bootstrap(s tictactoe.State, a tictactoe.Action, reward float64, next tictactoe.State) Transition {
	return Transition{State: s, Action: a, Reward: reward, Next: &next}
}

// Final returns a Transition with no continuation value.
func Final(s tictactoe.State, a tictactoe.Action, reward float64) Transition {
	return Transition{State: s, Action: a, Reward: reward}
}

// ValueTable maintains a Q-value for every (state, action) pair.
//
// Every state in [0, tictactoe.NumStates) is allocated up front with all
// values equal to zero. Looking up any other state fails with ErrUnknownState.
type ValueTable interface {
	// Get returns the value of playing a in s.
	Get(s tictactoe.State, a tictactoe.Action) (float64, error)
	// Values returns the values of all actions in s.
	Values(s tictactoe.State) ([tictactoe.NumActions]float64, error)
	// BestValue returns the maximum of Values(s).
	BestValue(s tictactoe.State) (float64, error)
	// Update applies the Q-learning rule to the (state, action) of t
	// and returns the new value.
	Update(t Transition, learningRate, discountFactor float64) (float64, error)
	// Snapshot returns a copy of the whole table.
	Snapshot() (Snapshot, error)
}

// Backup is the Q-learning update rule:
//
//	q + learningRate * (reward + discountFactor * maxNext - q)
func Backup(q, reward, maxNext, learningRate, discountFactor float64) float64 {
	return q + learningRate*(reward+discountFactor*maxNext-q)
}
