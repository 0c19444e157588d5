package qlearn

import (
	"math"
	"math/rand"

	"github.com/timpalpant/go-qlearn/internal/f64"
	"github.com/timpalpant/go-qlearn/internal/sampling"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

type exploration struct {
	rate, decay, min float64
}

// EpsilonGreedy selects a uniformly random action with probability ε,
// and otherwise the action with the highest value.
//
// Random actions are drawn over all cells, including occupied ones:
// the learner discovers which moves are legal through the illegal-move penalty.
type EpsilonGreedy struct {
	exploration
	saved *exploration
	rng   *rand.Rand

	ties []int
}

// NewEpsilonGreedy returns a policy with exploration rate ε = rate, which is
// multiplied by decay every time Decay is called until it reaches min.
func NewEpsilonGreedy(rate, decay, min float64, rng *rand.Rand) *EpsilonGreedy {
	return &EpsilonGreedy{
		exploration: exploration{rate: rate, decay: decay, min: min},
		rng:         rng,
		ties:        make([]int, 0, tictactoe.NumActions),
	}
}

// Rate returns the current exploration rate ε.
func (p *EpsilonGreedy) Rate() float64 {
	return p.rate
}

// Choose selects an action given the values of all actions in the current state.
// Ties between maximal actions are broken uniformly at random.
func (p *EpsilonGreedy) Choose(values [tictactoe.NumActions]float64) tictactoe.Action {
	if p.rng.Float64() < p.rate {
		return tictactoe.Action(p.rng.Intn(tictactoe.NumActions))
	}

	p.ties = f64.ArgMaxes(p.ties[:0], values[:])
	return tictactoe.Action(sampling.Choice(p.rng, p.ties))
}

// Decay updates ε <- max(ε * decay, min).
func (p *EpsilonGreedy) Decay() {
	p.rate = math.Max(p.rate*p.decay, p.min)
}

// Set replaces the exploration schedule.
func (p *EpsilonGreedy) Set(rate, decay, min float64) {
	p.exploration = exploration{rate: rate, decay: decay, min: min}
}

// Exploit pins the exploration rate, decay and minimum to zero so that
// Choose always returns a maximal action. The previous schedule is kept
// and restored by Explore.
func (p *EpsilonGreedy) Exploit() {
	if p.saved == nil {
		saved := p.exploration
		p.saved = &saved
	}

	p.exploration = exploration{}
}

// Explore restores the schedule in effect before Exploit was called.
func (p *EpsilonGreedy) Explore() {
	if p.saved != nil {
		p.exploration = *p.saved
		p.saved = nil
	}
}

// Exploiting returns true between calls to Exploit and Explore.
func (p *EpsilonGreedy) Exploiting() bool {
	return p.saved != nil
}
