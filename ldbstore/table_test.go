package ldbstore

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"
	"math/rand"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/opponent"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

func newTable(t testing.TB) (*Table, func()) {
	tmpDir, err := ioutil.TempDir("", "qlearn-test-")
	require.NoError(t, err)

	table, err := New(tmpDir, &opt.Options{})
	require.NoError(t, err)

	return table, func() {
		table.Close()
		os.RemoveAll(tmpDir)
	}
}

func TestTable_Update(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	s, err := tictactoe.ParseKey("100000000")
	require.NoError(t, err)

	v, err := table.BestValue(s)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = table.Update(qlearn.Final(s, 4, 1.0), 0.1, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, v, 1e-9)

	values, err := table.Values(s)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, values[4], 1e-9)
	assert.Equal(t, 0.0, values[0])

	next, err := tictactoe.ParseKey("120000000")
	require.NoError(t, err)
	v, err = table.Update(qlearn.Bootstrap(next, 2, 0, s), 0.5, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*0.9*0.1, v, 1e-9)
}

func TestTable_UnknownState(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	bad := tictactoe.State(tictactoe.NumStates)
	_, err := table.Values(bad)
	assert.Equal(t, qlearn.ErrUnknownState, errors.Cause(err))

	_, err = table.Update(qlearn.Final(bad, 0, 1), 0.1, 0.9)
	assert.Equal(t, qlearn.ErrUnknownState, errors.Cause(err))
}

// Training with the same seed must give the same table in memory and on disk.
func TestTable_MatchesInMemoryTable(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	inMemory := qlearn.NewTable()
	train(t, inMemory, 300)
	train(t, table, 300)

	expected, err := inMemory.Snapshot()
	require.NoError(t, err)
	got, err := table.Snapshot()
	require.NoError(t, err)

	require.Len(t, got, tictactoe.NumStates)
	assert.Equal(t, expected.Untouched(), got.Untouched())
	for k, e := range expected {
		assert.Equal(t, e, got[k], "state %s", k)
	}
}

func TestTable_Import(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	inMemory := qlearn.NewTable()
	train(t, inMemory, 100)
	snap, err := inMemory.Snapshot()
	require.NoError(t, err)

	require.NoError(t, table.Import(snap))
	got, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestTable_GobReopens(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	s := tictactoe.Initial
	_, err := table.Update(qlearn.Final(s, 4, 1), 0.1, 0.9)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(table))
	require.NoError(t, table.Close())

	var reopened Table
	require.NoError(t, gob.NewDecoder(&buf).Decode(&reopened))
	defer reopened.Close()

	v, err := reopened.Get(s, 4)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, v, 1e-9)
}

func TestDecodeEntry_Corrupt(t *testing.T) {
	assert.Panics(t, func() { decodeEntry([]byte{1, 2, 3}) })
}

func train(t testing.TB, table qlearn.ValueTable, episodes int) {
	rng := rand.New(rand.NewSource(1))
	learner, err := qlearn.NewAgent(table, qlearn.DefaultParams(), rng)
	require.NoError(t, err)

	trainer, err := qlearn.NewTrainer(opponent.NewRandom(rand.New(rand.NewSource(2))),
		learner, qlearn.DefaultRewards(), rng)
	require.NoError(t, err)

	_, err = trainer.Train(episodes)
	require.NoError(t, err)
}

func BenchmarkTable_Update(b *testing.B) {
	table, cleanup := newTable(b)
	defer cleanup()

	tr := qlearn.Bootstrap(tictactoe.Initial, 4, 0, tictactoe.State(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := table.Update(tr, 0.1, 0.95); err != nil {
			b.Fatal(err)
		}
	}
}
