package qlearn

import (
	"encoding/gob"
	"io"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

// LoadTable reads a Table previously written with MarshalTo.
func LoadTable(r io.Reader) (*Table, error) {
	dec := gob.NewDecoder(r)

	var nStates int64
	if err := dec.Decode(&nStates); err != nil {
		return nil, err
	}

	if nStates != tictactoe.NumStates {
		return nil, errors.Errorf("table has %d states, expected %d", nStates, tictactoe.NumStates)
	}

	var values [][tictactoe.NumActions]float64
	if err := dec.Decode(&values); err != nil {
		return nil, err
	}

	var updates []uint32
	if err := dec.Decode(&updates); err != nil {
		return nil, err
	}

	if len(values) != tictactoe.NumStates || len(updates) != tictactoe.NumStates {
		return nil, errors.Errorf("corrupt table: %d values, %d update counts", len(values), len(updates))
	}

	return &Table{
		values:  values,
		updates: updates,
	}, nil
}

// MarshalTo writes the table to w.
func (t *Table) MarshalTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(int64(len(t.values))); err != nil {
		return err
	}

	if err := enc.Encode(t.values); err != nil {
		return err
	}

	return enc.Encode(t.updates)
}
