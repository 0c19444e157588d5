//go:build !rocksdb

package main

import (
	"github.com/timpalpant/go-qlearn"
)

// Without the rocksdb build tag there is no -rdb flag.
var rdbPath = new(string)

func exportRocksDB(path string, snap qlearn.Snapshot) error {
	return nil
}
