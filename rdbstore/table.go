//go:build rocksdb

package rdbstore

import (
	"bytes"
	"encoding/gob"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	rocksdb "github.com/tecbot/gorocksdb"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/internal/f64"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

func init() {
	gob.Register(&Table{})
}

// Table implements qlearn.ValueTable with all values stored in a RocksDB
// database. States that were never written have all values equal to zero.
//
// It is functionally equivalent to a qlearn.Table.
type Table struct {
	params Params
	h      *handles
	db     *rocksdb.DB
}

// New opens or creates the RocksDB database at params.Path.
func New(params Params) (*Table, error) {
	h := params.handles()
	db, err := rocksdb.OpenDb(h.opts, params.Path)
	if err != nil {
		h.destroy()
		return nil, errors.Wrapf(err, "failed to open table at %s", params.Path)
	}

	return &Table{params: params, h: h, db: db}, nil
}

// Params returns the parameters the table was opened with.
func (t *Table) Params() Params {
	return t.params
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.params); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. It reopens the
// database the table was encoded from, which must still exist.
func (t *Table) UnmarshalBinary(buf []byte) error {
	var params Params
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&params); err != nil {
		return err
	}

	params.ErrorIfMissing = true
	reopened, err := New(params)
	if err != nil {
		return err
	}

	*t = *reopened
	return nil
}

// Close implements io.Closer.
func (t *Table) Close() error {
	t.db.Close()
	t.h.destroy()
	return nil
}

// Get implements qlearn.ValueTable.
func (t *Table) Get(s tictactoe.State, a tictactoe.Action) (float64, error) {
	if !a.Valid() {
		return 0, errors.Errorf("invalid action %d", a)
	}

	e, err := t.get(s)
	return e.Values[a], err
}

// Values implements qlearn.ValueTable.
func (t *Table) Values(s tictactoe.State) ([tictactoe.NumActions]float64, error) {
	e, err := t.get(s)
	return e.Values, err
}

// BestValue implements qlearn.ValueTable.
func (t *Table) BestValue(s tictactoe.State) (float64, error) {
	e, err := t.get(s)
	if err != nil {
		return 0, err
	}

	return f64.Max(e.Values[:]), nil
}

// Update implements qlearn.ValueTable.
func (t *Table) Update(tr qlearn.Transition, learningRate, discountFactor float64) (float64, error) {
	if !tr.Action.Valid() {
		return 0, errors.Errorf("invalid action %d", tr.Action)
	}

	e, err := t.get(tr.State)
	if err != nil {
		return 0, err
	}

	var maxNext float64
	if tr.Next != nil {
		if maxNext, err = t.BestValue(*tr.Next); err != nil {
			return 0, err
		}
	}

	q := qlearn.Backup(e.Values[tr.Action], tr.Reward, maxNext, learningRate, discountFactor)
	e.Values[tr.Action] = q
	e.Updates++
	buf, err := e.MarshalBinary()
	if err != nil {
		return 0, err
	}

	if err := t.db.Put(t.h.write, []byte(tr.State.Key()), buf); err != nil {
		return 0, errors.Wrapf(err, "failed to store state %s", tr.State.Key())
	}

	glog.V(3).Infof("Updated Q-value for state %s, action %d: %v", tr.State.Key(), tr.Action, q)
	return q, nil
}

// Snapshot implements qlearn.ValueTable.
func (t *Table) Snapshot() (qlearn.Snapshot, error) {
	snap := make(qlearn.Snapshot, tictactoe.NumStates)
	it := t.db.NewIterator(t.h.read)
	defer it.Close()

	for it.SeekToFirst(); it.Valid(); it.Next() {
		key := it.Key()
		value := it.Value()
		var e qlearn.Entry
		err := e.UnmarshalBinary(value.Data())
		snap[string(key.Data())] = e
		key.Free()
		value.Free()
		if err != nil {
			return nil, err
		}
	}

	if err := it.Err(); err != nil {
		return nil, err
	}

	for s := tictactoe.State(0); s < tictactoe.NumStates; s++ {
		if _, ok := snap[s.Key()]; !ok {
			snap[s.Key()] = qlearn.Entry{}
		}
	}

	return snap, nil
}

// Import writes all entries of snap into the table, replacing
// existing values.
func (t *Table) Import(snap qlearn.Snapshot) error {
	wb := rocksdb.NewWriteBatch()
	defer wb.Destroy()

	for k, e := range snap {
		if _, err := tictactoe.ParseKey(k); err != nil {
			return err
		}

		if e == (qlearn.Entry{}) {
			continue
		}

		buf, err := e.MarshalBinary()
		if err != nil {
			return err
		}

		wb.Put([]byte(k), buf)
	}

	glog.V(1).Infof("Importing %d states into %s", wb.Count(), t.params.Path)
	return t.db.Write(t.h.write, wb)
}

func (t *Table) get(s tictactoe.State) (qlearn.Entry, error) {
	if !s.Valid() {
		return qlearn.Entry{}, errors.Wrapf(qlearn.ErrUnknownState, "state %d", s)
	}

	result, err := t.db.Get(t.h.read, []byte(s.Key()))
	if err != nil {
		return qlearn.Entry{}, errors.Wrapf(err, "failed to load state %s", s.Key())
	}
	defer result.Free()

	var e qlearn.Entry
	if !result.Exists() {
		return e, nil
	}

	err = e.UnmarshalBinary(result.Data())
	return e, errors.WithMessagef(err, "state %s", s.Key())
}
