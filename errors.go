package qlearn

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownState is returned when looking up a state that was never
	// allocated in a ValueTable. It indicates an encoding bug.
	ErrUnknownState = errors.New("unknown state")
	// ErrOpponentIllegalMove is returned by Trainer.Train when the opponent
	// breaks its contract by choosing an occupied cell.
	ErrOpponentIllegalMove = errors.New("illegal move by opponent")
)
