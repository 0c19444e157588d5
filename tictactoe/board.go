// Package tictactoe implements the board, state encoding and rules of
// tic-tac-toe used by the Q-learning agent.
//
// A board position is encoded as a State: the base-3 number whose i'th most
// significant digit is the content of cell i. The encoding is a bijection
// between the 3^9 possible boards and [0, NumStates), so a State can be used
// directly to index a dense value table.
package tictactoe

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	NumCells   = 9
	NumActions = NumCells
	// NumStates is the number of distinct boards, reachable or not.
	NumStates = 19683
)

// ErrIllegalMove is returned when a move targets a cell that is not empty,
// or a cell that does not exist.
var ErrIllegalMove = errors.New("illegal move")

// Player is the content of a cell: empty, or the mark of one of the two players.
type Player uint8

const (
	Empty Player = iota
	PlayerOne
	PlayerTwo
)

var playerStr = [...]string{
	".",
	"X",
	"O",
}

// String implements fmt.Stringer.
func (p Player) String() string {
	if int(p) >= len(playerStr) {
		return fmt.Sprintf("Player(%d)", uint8(p))
	}

	return playerStr[p]
}

// Other returns the opposing player. Other of Empty is Empty.
func (p Player) Other() Player {
	switch p {
	case PlayerOne:
		return PlayerTwo
	case PlayerTwo:
		return PlayerOne
	}

	return Empty
}

// Action is the index of a board cell, in [0, NumActions).
type Action int

// Valid returns true if a identifies a cell of the board.
func (a Action) Valid() bool {
	return a >= 0 && a < NumActions
}

// Board is the content of the 9 cells, in row-major order.
type Board [NumCells]Player

// Full returns true if no cell is empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}

	return true
}

// State is the canonical integer encoding of a Board.
type State uint16

// Initial is the state of the empty board.
const Initial State = 0

var pow3 = [NumCells]State{6561, 2187, 729, 243, 81, 27, 9, 3, 1}

// Encode returns the State identifying b.
func Encode(b Board) State {
	var s State
	for i, c := range b {
		s += State(c) * pow3[i]
	}

	return s
}

// Decode returns the Board identified by s. It is the inverse of Encode.
func Decode(s State) Board {
	var b Board
	for i := range b {
		b[i] = s.Cell(Action(i))
	}

	return b
}

// Valid returns true if s is within the range of the encoding.
func (s State) Valid() bool {
	return s < NumStates
}

// Cell returns the content of cell a.
func (s State) Cell(a Action) Player {
	return Player((s / pow3[a]) % 3)
}

// Key returns the 9-symbol identifier of s, one digit per cell
// (0 = empty, 1 = PlayerOne, 2 = PlayerTwo), e.g. "120000000".
func (s State) Key() string {
	var buf [NumCells]byte
	for i := range buf {
		buf[i] = '0' + byte(s.Cell(Action(i)))
	}

	return string(buf[:])
}

// ParseKey returns the State identified by key. It is the inverse of Key.
func ParseKey(key string) (State, error) {
	if len(key) != NumCells {
		return 0, errors.Errorf("invalid state key %q: expected %d cells, got %d",
			key, NumCells, len(key))
	}

	var s State
	for i := 0; i < NumCells; i++ {
		c := key[i]
		if c < '0' || c > '2' {
			return 0, errors.Errorf("invalid state key %q: bad cell %q at %d", key, c, i)
		}

		s += State(c-'0') * pow3[i]
	}

	return s, nil
}

// String implements fmt.Stringer, rendering the board as a 3x3 grid.
func (s State) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}

		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(s.Cell(Action(3*row + col)).String())
		}
	}

	return sb.String()
}

// NumFilled returns the number of non-empty cells.
func (s State) NumFilled() int {
	n := 0
	for i := 0; i < NumCells; i++ {
		if s.Cell(Action(i)) != Empty {
			n++
		}
	}

	return n
}

// LegalActions returns the empty cells of s, in increasing order.
func LegalActions(s State) []Action {
	result := make([]Action, 0, NumActions)
	for a := Action(0); a < NumActions; a++ {
		if s.Cell(a) == Empty {
			result = append(result, a)
		}
	}

	return result
}

// IsLegal returns true if a is an empty cell of s.
func IsLegal(s State, a Action) bool {
	return a.Valid() && s.Cell(a) == Empty
}

// Apply returns the state resulting from player p marking cell a.
// It returns an error wrapping ErrIllegalMove if the cell is not empty.
func Apply(s State, a Action, p Player) (State, error) {
	if !a.Valid() {
		return s, errors.Wrapf(ErrIllegalMove, "cell %d out of range", a)
	}

	if c := s.Cell(a); c != Empty {
		return s, errors.Wrapf(ErrIllegalMove, "cell %d already taken by %v in %s", a, c, s.Key())
	}

	return s + State(p)*pow3[a], nil
}

// Swap returns s with the marks of the two players exchanged, i.e. the same
// position seen from the other side of the board.
func Swap(s State) State {
	b := Decode(s)
	for i, c := range b {
		b[i] = c.Other()
	}

	return Encode(b)
}
