//go:build rocksdb

package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/rdbstore"
)

var rdbPath = flag.String("rdb", "", "If set, also export the table to a RocksDB database at this path")

func exportRocksDB(path string, snap qlearn.Snapshot) error {
	if path == "" {
		return nil
	}

	rdb, err := rdbstore.New(rdbstore.DefaultParams(path))
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := rdb.Import(snap); err != nil {
		return err
	}

	glog.Infof("Exported table to RocksDB database %s", path)
	return nil
}
