package ldbstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/internal/f64"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

func init() {
	gob.Register(&Table{})
}

// Table implements qlearn.ValueTable with all values stored in a LevelDB
// database. States that were never written have all values equal to zero.
//
// It is functionally equivalent to a qlearn.Table.
type Table struct {
	path string
	opts *opt.Options

	db    *leveldb.DB
	rOpts *opt.ReadOptions
	wOpts *opt.WriteOptions
}

// New creates a new Table backed by a LevelDB database at the given path.
// A nil opts uses the LevelDB defaults.
func New(path string, opts *opt.Options) (*Table, error) {
	if opts == nil {
		opts = &opt.Options{}
	}

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open table at %s", path)
	}

	return &Table{
		path: path,
		opts: opts,
		db:   db,
	}, nil
}

// GobEncode implements gob.GobEncoder.
func (t *Table) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(t.path); err != nil {
		return nil, err
	}

	if err := enc.Encode(t.opts); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. It reopens the database the
// table was encoded from.
func (t *Table) GobDecode(buf []byte) error {
	r := bytes.NewReader(buf)
	dec := gob.NewDecoder(r)

	if err := dec.Decode(&t.path); err != nil {
		return err
	}

	if err := dec.Decode(&t.opts); err != nil {
		return err
	}

	if t.opts == nil {
		t.opts = &opt.Options{}
	}

	t.opts.ErrorIfMissing = true
	db, err := leveldb.OpenFile(t.path, t.opts)
	if err != nil {
		return err
	}

	t.db = db
	return nil
}

// Close implements io.Closer.
func (t *Table) Close() error {
	return t.db.Close()
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
	if err := t.db.Put(key(tr.State), encodeEntry(e), t.wOpts); err != nil {
		return 0, errors.Wrapf(err, "failed to store state %s", tr.State.Key())
	}

	glog.V(3).Infof("Updated Q-value for state %s, action %d: %v", tr.State.Key(), tr.Action, q)
	return q, nil
}

// Snapshot implements qlearn.ValueTable.
func (t *Table) Snapshot() (qlearn.Snapshot, error) {
	snap := make(qlearn.Snapshot, tictactoe.NumStates)
	iter := t.db.NewIterator(nil, t.rOpts)
	for iter.Next() {
		snap[string(iter.Key())] = decodeEntry(iter.Value())
	}

	iter.Release()
	if err := iter.Error(); err != nil {
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
	batch := new(leveldb.Batch)
	for k, e := range snap {
		s, err := tictactoe.ParseKey(k)
		if err != nil {
			return err
		}

		if e == (qlearn.Entry{}) {
			continue
		}

		batch.Put(key(s), encodeEntry(e))
	}

	glog.V(1).Infof("Importing %d states into %s", batch.Len(), t.path)
	return t.db.Write(batch, t.wOpts)
}

func (t *Table) get(s tictactoe.State) (qlearn.Entry, error) {
	if !s.Valid() {
		return qlearn.Entry{}, errors.Wrapf(qlearn.ErrUnknownState, "state %d", s)
	}

	buf, err := t.db.Get(key(s), t.rOpts)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return qlearn.Entry{}, nil
		}

		return qlearn.Entry{}, errors.Wrapf(err, "failed to load state %s", s.Key())
	}

	return decodeEntry(buf), nil
}

func key(s tictactoe.State) []byte {
	return []byte(s.Key())
}

func encodeEntry(e qlearn.Entry) []byte {
	buf, err := e.MarshalBinary()
	if err != nil {
		panic(err)
	}

	return buf
}

func decodeEntry(buf []byte) qlearn.Entry {
	var e qlearn.Entry
	if err := e.UnmarshalBinary(buf); err != nil {
		panic(fmt.Errorf("error decoding entry: %v", err))
	}

	return e
}
