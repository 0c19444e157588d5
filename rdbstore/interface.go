//go:build rocksdb

// Package rdbstore implements a Q-value table that keeps the values of
// every state in a RocksDB database, rather than in memory.
//
// It requires cgo and the RocksDB libraries, and is only built with the
// rocksdb build tag.
package rdbstore

import (
	rocksdb "github.com/tecbot/gorocksdb"
)

// Params configures the database behind a Table. It holds only plain
// values so that a Table can be reopened from its gob encoding.
type Params struct {
	Path string
	// CacheSize is the capacity in bytes of the block cache.
	// Zero uses the RocksDB default.
	CacheSize int
	// ErrorIfMissing fails New if there is no database at Path.
	ErrorIfMissing bool
	// Sync waits for every write to reach the disk.
	Sync bool
}

func DefaultParams(path string) Params {
	return Params{
		Path:      path,
		CacheSize: 8 << 20,
	}
}

// handles are the native RocksDB option objects derived from Params.
// They must be destroyed once the database is closed.
type handles struct {
	cache *rocksdb.Cache
	table *rocksdb.BlockBasedTableOptions
	opts  *rocksdb.Options
	read  *rocksdb.ReadOptions
	write *rocksdb.WriteOptions
}

func (p Params) handles() *handles {
	h := &handles{
		table: rocksdb.NewDefaultBlockBasedTableOptions(),
		opts:  rocksdb.NewDefaultOptions(),
		read:  rocksdb.NewDefaultReadOptions(),
		write: rocksdb.NewDefaultWriteOptions(),
	}

	if p.CacheSize > 0 {
		h.cache = rocksdb.NewLRUCache(p.CacheSize)
		h.table.SetBlockCache(h.cache)
	}

	h.opts.SetBlockBasedTableFactory(h.table)
	h.opts.SetCreateIfMissing(!p.ErrorIfMissing)
	h.write.SetSync(p.Sync)
	return h
}

func (h *handles) destroy() {
	h.opts.Destroy()
	h.table.Destroy()
	h.read.Destroy()
	h.write.Destroy()
	if h.cache != nil {
		h.cache.Destroy()
	}
}
