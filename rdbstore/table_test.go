//go:build rocksdb

package rdbstore

import (
	"bytes"
	"encoding/gob"
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/opponent"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

func newTable(t testing.TB) (*Table, func()) {
	tmpDir, err := ioutil.TempDir("", "qlearn-test-")
	require.NoError(t, err)

	table, err := New(DefaultParams(tmpDir))
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

	v, err := table.Update(qlearn.Final(s, 4, 1.0), 0.1, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, v, 1e-9)

	best, err := table.BestValue(s)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, best, 1e-9)

	_, err = table.Values(tictactoe.State(tictactoe.NumStates))
	assert.Equal(t, qlearn.ErrUnknownState, errors.Cause(err))
}

func TestTable_MatchesInMemoryTable(t *testing.T) {
	table, cleanup := newTable(t)
	defer cleanup()

	inMemory := qlearn.NewTable()
	train(t, inMemory, 200)
	train(t, table, 200)

	expected, err := inMemory.Snapshot()
	require.NoError(t, err)
	got, err := table.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, expected, got)
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
	tmpDir, err := ioutil.TempDir("", "qlearn-test-")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	params := DefaultParams(tmpDir)
	params.Sync = true
	table, err := New(params)
	require.NoError(t, err)

	s, err := tictactoe.ParseKey("120000000")
	require.NoError(t, err)
	_, err = table.Update(qlearn.Final(s, 8, 1.0), 0.5, 0.95)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(table))
	require.NoError(t, table.Close())

	var reopened Table
	require.NoError(t, gob.NewDecoder(&buf).Decode(&reopened))
	defer reopened.Close()

	assert.Equal(t, tmpDir, reopened.Params().Path)
	assert.True(t, reopened.Params().Sync)
	v, err := reopened.Get(s, 8)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, v, 1e-9)
}

func TestNew_ErrorIfMissing(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "qlearn-test-")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	params := DefaultParams(filepath.Join(tmpDir, "missing"))
	params.ErrorIfMissing = true
	_, err = New(params)
	assert.Error(t, err)
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
