// Package play runs games between a human and a trained agent.
package play

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
)

// Session is one game between a human and an agent. The agent is any
// qlearn.Opponent, typically a qlearn.Greedy over a trained table.
type Session struct {
	agent     qlearn.Opponent
	humanSeat tictactoe.Player

	state  tictactoe.State
	toMove tictactoe.Player
	moves  []tictactoe.Action
}

// NewSession starts a game on the empty board where the human marks cells
// for humanSeat and starter moves first.
func NewSession(agent qlearn.Opponent, humanSeat, starter tictactoe.Player) *Session {
	return &Session{
		agent:     agent,
		humanSeat: humanSeat,
		state:     tictactoe.Initial,
		toMove:    starter,
	}
}

// HumanSeat returns the player the human marks cells for.
func (s *Session) HumanSeat() tictactoe.Player { return s.humanSeat }

// State returns the current board.
func (s *Session) State() tictactoe.State { return s.state }

// ToMove returns the player who marks the next cell.
func (s *Session) ToMove() tictactoe.Player { return s.toMove }

// Moves returns the cells marked so far, in order.
func (s *Session) Moves() []tictactoe.Action { return s.moves }

// HumanToMove returns true if the game is waiting for the human.
func (s *Session) HumanToMove() bool {
	return !s.Over() && s.toMove == s.humanSeat
}

// Over returns true once the board is won or full.
func (s *Session) Over() bool {
	return tictactoe.IsTerminal(s.state)
}

// Winner returns the winning player, or Empty for a draw or a game in progress.
func (s *Session) Winner() tictactoe.Player {
	return tictactoe.Winner(s.state)
}

// Result describes the outcome of a finished game from the human's side.
func (s *Session) Result() string {
	switch {
	case !s.Over():
		return "in progress"
	case s.Winner() == s.humanSeat:
		return "You win!"
	case s.Winner() == s.humanSeat.Other():
		return "The agent wins."
	default:
		return "It's a draw."
	}
}

// Play marks cell a for the human. An illegal move leaves the game unchanged.
func (s *Session) Play(a tictactoe.Action) error {
	if s.Over() {
		return ErrGameOver
	}

	if s.toMove != s.humanSeat {
		return ErrNotYourTurn
	}

	return s.apply(a)
}

// AgentMove lets the agent mark a cell and returns it.
func (s *Session) AgentMove() (tictactoe.Action, error) {
	if s.Over() {
		return 0, ErrGameOver
	}

	if s.toMove == s.humanSeat {
		return 0, ErrNotYourTurn
	}

	a, err := s.agent.ChooseAction(s.state)
	if err != nil {
		return 0, errors.WithMessage(err, "agent failed to move")
	}

	return a, s.apply(a)
}

func (s *Session) apply(a tictactoe.Action) error {
	next, err := tictactoe.Apply(s.state, a, s.toMove)
	if err != nil {
		return err
	}

	glog.V(2).Infof("%v marks cell %d:\n%v", s.toMove, a, next)
	s.state = next
	s.moves = append(s.moves, a)
	s.toMove = s.toMove.Other()
	return nil
}
