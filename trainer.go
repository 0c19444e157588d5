package qlearn

import (
	"math/rand"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Seats taken by the two players during training.
const (
	OpponentSeat = tictactoe.PlayerOne
	LearnerSeat  = tictactoe.PlayerTwo
)

// Ply is one move played during an episode.
type Ply struct {
	Player tictactoe.Player
	State  tictactoe.State // Before the move.
	Action tictactoe.Action
}

// Episode is the record of one game played by a Trainer.
type Episode struct {
	Index           int
	Starter         tictactoe.Player
	Plies           []Ply
	Final           tictactoe.State
	Outcome         Outcome
	ExplorationRate float64
}

// EpisodeHook is called by the Trainer after every completed episode.
// The Episode must not be retained after the hook returns.
type EpisodeHook func(ep *Episode)

// Trainer plays episodes between an Opponent and a learning Agent and
// credits the learner's moves as the games unfold.
//
// The learner's last move is credited one half-move in arrears: once the
// opponent has replied it is bootstrapped from the resulting state, and when
// the game ends it receives the terminal reward with no continuation value.
type Trainer struct {
	opponent Opponent
	learner  *Agent
	rewards  Rewards
	rng      *rand.Rand

	hooks     []EpisodeHook
	nEpisodes int
}

// NewTrainer returns a Trainer for learner playing against opponent.
func NewTrainer(opponent Opponent, learner *Agent, rewards Rewards, rng *rand.Rand) (*Trainer, error) {
	if err := rewards.Validate(); err != nil {
		return nil, err
	}

	return &Trainer{
		opponent: opponent,
		learner:  learner,
		rewards:  rewards,
		rng:      rng,
	}, nil
}

// OnEpisode registers a hook called after every episode.
func (t *Trainer) OnEpisode(hook EpisodeHook) {
	t.hooks = append(t.hooks, hook)
}

// SetOpponent replaces the opponent for subsequent episodes.
func (t *Trainer) SetOpponent(opponent Opponent) {
	t.opponent = opponent
}

// Learner returns the agent being trained.
func (t *Trainer) Learner() *Agent {
	return t.learner
}

// Train plays the given number of episodes and returns their outcomes.
// It stops at the first error, returning the results collected so far.
func (t *Trainer) Train(episodes int) (*Results, error) {
	results := &Results{Outcomes: make([]Outcome, 0, episodes)}
	logEvery := episodes / 10
	if logEvery == 0 {
		logEvery = 1
	}

	for i := 0; i < episodes; i++ {
		ep, err := t.RunEpisode()
		if err != nil {
			return results, errors.WithMessagef(err, "episode %d", ep.Index)
		}

		results.Add(ep.Outcome)
		for _, hook := range t.hooks {
			hook(ep)
		}

		if (i+1)%logEvery == 0 {
			glog.Infof("[episode %d] epsilon = %.4f, non-loss rate (last %d) = %.3f",
				i+1, ep.ExplorationRate, logEvery, results.NonLossRate(logEvery))
		}
	}

	return results, nil
}

// RunEpisode plays one game from the empty board to a terminal state.
func (t *Trainer) RunEpisode() (*Episode, error) {
	ep := &Episode{
		Index:   t.nEpisodes,
		Starter: OpponentSeat,
		Plies:   make([]Ply, 0, tictactoe.NumCells),
	}
	t.nEpisodes++
	if t.rng.Intn(2) == 1 {
		ep.Starter = LearnerSeat
	}

	t.learner.DecayExploration()
	ep.ExplorationRate = t.learner.ExplorationRate()

	state := tictactoe.Initial
	mover := ep.Starter
	var pending *Ply
	for {
		action, err := t.choose(mover, state)
		if err != nil {
			return ep, err
		}

		ply := Ply{Player: mover, State: state, Action: action}
		ep.Plies = append(ep.Plies, ply)
		next, err := tictactoe.Apply(state, action, mover)
		if err != nil {
			if errors.Cause(err) != tictactoe.ErrIllegalMove {
				return ep, err
			}

			if mover == OpponentSeat {
				ep.Final = state
				return ep, errors.Wrapf(ErrOpponentIllegalMove, "cell %d in %s", action, state.Key())
			}

			glog.V(2).Infof("Learner chose occupied cell %d in %s", action, state.Key())
			ep.Final = state
			ep.Outcome = Illegal
			err = t.learner.Learn(Final(state, action, t.rewards.Illegal))
			t.logEpisode(ep)
			return ep, err
		}

		glog.V(2).Infof("%v marks cell %d:\n%v", mover, action, next)
		if mover == LearnerSeat {
			pending = &ply
		}

		state = next
		if tictactoe.IsTerminal(state) {
			ep.Final = state
			err = t.finish(ep, pending)
			t.logEpisode(ep)
			return ep, err
		}

		if mover == OpponentSeat && pending != nil {
			tr := Bootstrap(pending.State, pending.Action, t.rewards.NoEffect, state)
			if err := t.learner.Learn(tr); err != nil {
				return ep, err
			}
		}

		mover = mover.Other()
	}
}

func (t *Trainer) choose(mover tictactoe.Player, s tictactoe.State) (tictactoe.Action, error) {
	if mover == LearnerSeat {
		return t.learner.ChooseAction(s)
	}

	action, err := t.opponent.ChooseAction(s)
	return action, errors.WithMessage(err, "opponent failed to choose an action")
}

// finish credits the learner's last move with the reward of the terminal state.
func (t *Trainer) finish(ep *Episode, pending *Ply) error {
	var reward float64
	switch tictactoe.Winner(ep.Final) {
	case LearnerSeat:
		ep.Outcome, reward = Win, t.rewards.Win
	case OpponentSeat:
		ep.Outcome, reward = Loss, t.rewards.Loss
	default:
		ep.Outcome, reward = Draw, t.rewards.Draw
	}

	if pending == nil {
		return nil
	}

	return t.learner.Learn(Final(pending.State, pending.Action, reward))
}

func (t *Trainer) logEpisode(ep *Episode) {
	glog.V(1).Infof("Episode %d: %v after %d plies (starter %v, epsilon %.4f)",
		ep.Index, ep.Outcome, len(ep.Plies), ep.Starter, ep.ExplorationRate)
}
