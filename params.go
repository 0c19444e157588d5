package qlearn

import (
	"github.com/pkg/errors"
)

// Params are the learning parameters of an Agent.
type Params struct {
	LearningRate   float64 // α
	DiscountFactor float64 // γ

	ExplorationRate  float64 // Initial ε
	ExplorationDecay float64 // Multiplier applied to ε once per episode
	ExplorationMin   float64 // Floor for ε
}

// DefaultParams returns the parameters used to train the reference agent.
func DefaultParams() Params {
	return Params{
		LearningRate:     0.1,
		DiscountFactor:   0.95,
		ExplorationRate:  1.0,
		ExplorationDecay: 0.9999,
		ExplorationMin:   0.05,
	}
}

// Validate returns an error if any parameter is out of range.
func (p Params) Validate() error {
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return errors.Errorf("learning rate must be in (0, 1], got %v", p.LearningRate)
	}

	if p.DiscountFactor < 0 || p.DiscountFactor > 1 {
		return errors.Errorf("discount factor must be in [0, 1], got %v", p.DiscountFactor)
	}

	if p.ExplorationRate < 0 || p.ExplorationRate > 1 {
		return errors.Errorf("exploration rate must be in [0, 1], got %v", p.ExplorationRate)
	}

	if p.ExplorationDecay < 0 || p.ExplorationDecay > 1 {
		return errors.Errorf("exploration decay must be in [0, 1], got %v", p.ExplorationDecay)
	}

	if p.ExplorationMin < 0 || p.ExplorationMin > p.ExplorationRate {
		return errors.Errorf("exploration min must be in [0, %v], got %v",
			p.ExplorationRate, p.ExplorationMin)
	}

	return nil
}

// Rewards are the scalar rewards given to the learner for each kind of
// credited move.
type Rewards struct {
	Win      float64
	Loss     float64
	Draw     float64
	Illegal  float64
	NoEffect float64 // Intermediate move after which the game goes on.
}

// DefaultRewards returns win=+1, loss=-1, draw=0, illegal=-10 and no-effect=0.
func DefaultRewards() Rewards {
	return Rewards{
		Win:      1.0,
		Loss:     -1.0,
		Draw:     0.0,
		Illegal:  -10.0,
		NoEffect: 0.0,
	}
}

// Validate returns an error unless Illegal < Loss < Draw <= NoEffect < Win.
func (r Rewards) Validate() error {
	if !(r.Illegal < r.Loss && r.Loss < r.Draw && r.Draw <= r.NoEffect && r.NoEffect < r.Win) {
		return errors.Errorf("rewards must satisfy illegal < loss < draw <= no-effect < win, got %+v", r)
	}

	return nil
}
