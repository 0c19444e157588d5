package main

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/ldbstore"
	"github.com/timpalpant/go-qlearn/opponent"
)

func trainedSnapshot(t *testing.T) qlearn.Snapshot {
	rng := rand.New(rand.NewSource(7))
	table := qlearn.NewTable()
	learner, err := qlearn.NewAgent(table, qlearn.DefaultParams(), rng)
	require.NoError(t, err)

	trainer, err := qlearn.NewTrainer(opponent.NewRandom(rng), learner, qlearn.DefaultRewards(), rng)
	require.NoError(t, err)
	_, err = trainer.Train(200)
	require.NoError(t, err)

	snap, err := table.Snapshot()
	require.NoError(t, err)
	return snap
}

func TestExportLevelDB(t *testing.T) {
	snap := trainedSnapshot(t)
	path := filepath.Join(t.TempDir(), "qtable.ldb")
	require.NoError(t, exportLevelDB(path, snap))

	ldb, err := ldbstore.New(path, nil)
	require.NoError(t, err)
	defer ldb.Close()

	got, err := ldb.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestExport_EmptyPathIsNoop(t *testing.T) {
	snap := trainedSnapshot(t)
	assert.NoError(t, exportLevelDB("", snap))
	assert.NoError(t, exportRocksDB("", snap))
}
