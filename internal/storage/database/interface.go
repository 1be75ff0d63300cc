// Package database is the key-value layer under the ledger state store.
// The state store keeps one named database per node; each backend package
// (pebble, bbolt, leveldb) provides a Manager that opens it.
package database

import (
	"context"
)

// DB holds ledger entries keyed by keylet. The state store commits each
// applied transaction as a single Batch.
type DB interface {
	// Read returns ErrKeyNotFound for missing keys.
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies ops atomically, in order.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator walks keys in [start, end) in ascending order. A nil bound
	// is open. Digest and ForEach rely on the ordering.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator yields copies of keys and values; they stay valid after Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// Manager opens named databases under one backend root.
type Manager interface {
	// OpenDB returns the already open database when called twice.
	OpenDB(name string) (DB, error)
	CloseDB(name string) error
	Close() error
}

// BatchOperation is one put or delete in a committed transaction.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Backend names accepted by the [database] config section
const (
	BackendPebble  = "pebble"
	BackendBbolt   = "bbolt"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)
