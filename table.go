package qlearn

import (
	"encoding/binary"
	"math"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/internal/f64"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

// Table implements ValueTable by keeping the values of every state in a
// dense array indexed by the state encoding.
type Table struct {
	values  [][tictactoe.NumActions]float64
	updates []uint32
}

// NewTable returns a Table with all values initialized to zero.
func NewTable() *Table {
	return &Table{
		values:  make([][tictactoe.NumActions]float64, tictactoe.NumStates),
		updates: make([]uint32, tictactoe.NumStates),
	}
}

// NewTableFromSnapshot returns a Table holding the values of snap.
// States missing from snap are zero.
func NewTableFromSnapshot(snap Snapshot) (*Table, error) {
	t := NewTable()
	for key, entry := range snap {
		s, err := tictactoe.ParseKey(key)
		if err != nil {
			return nil, err
		}

		t.values[s] = entry.Values
		t.updates[s] = uint32(entry.Updates)
	}

	return t, nil
}

// Get implements ValueTable.
func (t *Table) Get(s tictactoe.State, a tictactoe.Action) (float64, error) {
	if err := t.check(s); err != nil {
		return 0, err
	}

	if !a.Valid() {
		return 0, errors.Errorf("invalid action %d", a)
	}

	return t.values[s][a], nil
}

// Values implements ValueTable.
func (t *Table) Values(s tictactoe.State) ([tictactoe.NumActions]float64, error) {
	if err := t.check(s); err != nil {
		return [tictactoe.NumActions]float64{}, err
	}

	return t.values[s], nil
}

// BestValue implements ValueTable.
func (t *Table) BestValue(s tictactoe.State) (float64, error) {
	if err := t.check(s); err != nil {
		return 0, err
	}

	return f64.Max(t.values[s][:]), nil
}

// Update implements ValueTable.
func (t *Table) Update(tr Transition, learningRate, discountFactor float64) (float64, error) {
	q, err := t.Get(tr.State, tr.Action)
	if err != nil {
		return 0, err
	}

	var maxNext float64
	if tr.Next != nil {
		if maxNext, err = t.BestValue(*tr.Next); err != nil {
			return 0, err
		}
	}

	newQ := Backup(q, tr.Reward, maxNext, learningRate, discountFactor)
	t.values[tr.State][tr.Action] = newQ
	t.updates[tr.State]++
	glog.V(3).Infof("Updated Q-value for state %s, action %d: %v", tr.State.Key(), tr.Action, newQ)
	return newQ, nil
}

// NumUpdates returns the number of times any action of s was updated.
func (t *Table) NumUpdates(s tictactoe.State) int {
	if !s.Valid() {
		return 0
	}

	return int(t.updates[s])
}

// Untouched returns the number of states that were never updated.
func (t *Table) Untouched() int {
	n := 0
	for _, u := range t.updates {
		if u == 0 {
			n++
		}
	}

	return n
}

// Snapshot implements ValueTable.
func (t *Table) Snapshot() (Snapshot, error) {
	snap := make(Snapshot, len(t.values))
	for i := range t.values {
		s := tictactoe.State(i)
		snap[s.Key()] = Entry{Values: t.values[i], Updates: int(t.updates[i])}
	}

	return snap, nil
}

func (t *Table) check(s tictactoe.State) error {
	if int(s) >= len(t.values) {
		return errors.Wrapf(ErrUnknownState, "state %d", s)
	}

	return nil
}

// Entry is the content of one state of a ValueTable.
type Entry struct {
	Values  [tictactoe.NumActions]float64
	Updates int
}

// Snapshot is a read-only copy of a ValueTable, keyed by state identifier.
type Snapshot map[string]Entry

// Untouched returns the number of states in [0, tictactoe.NumStates) that
// were never updated. States missing from the snapshot count as untouched.
func (snap Snapshot) Untouched() int {
	n := tictactoe.NumStates
	for _, e := range snap {
		if e.Updates > 0 {
			n--
		}
	}

	return n
}

const entrySize = 8*tictactoe.NumActions + 4

// MarshalBinary implements encoding.BinaryMarshaler.
// Values are stored as little-endian IEEE 754 bits followed by the update count.
func (e Entry) MarshalBinary() ([]byte, error) {
	result := make([]byte, entrySize)
	for i, v := range e.Values {
		bits := math.Float64bits(v)
		binary.LittleEndian.PutUint64(result[8*i:8*(i+1)], bits)
	}

	binary.LittleEndian.PutUint32(result[8*tictactoe.NumActions:], uint32(e.Updates))
	return result, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Entry) UnmarshalBinary(buf []byte) error {
	if len(buf) != entrySize {
		return errors.Errorf("invalid encoded entry has len %d", len(buf))
	}

	for i := range e.Values {
		bits := binary.LittleEndian.Uint64(buf[8*i : 8*(i+1)])
		e.Values[i] = math.Float64frombits(bits)
	}

	e.Updates = int(binary.LittleEndian.Uint32(buf[8*tictactoe.NumActions:]))
	return nil
}
