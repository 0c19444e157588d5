//go:build rocksdb

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timpalpant/go-qlearn/rdbstore"
)

func TestExportRocksDB(t *testing.T) {
	snap := trainedSnapshot(t)
	path := filepath.Join(t.TempDir(), "qtable.rdb")
	require.NoError(t, exportRocksDB(path, snap))

	params := rdbstore.DefaultParams(path)
	params.ErrorIfMissing = true
	rdb, err := rdbstore.New(params)
	require.NoError(t, err)
	defer rdb.Close()

	got, err := rdb.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}
