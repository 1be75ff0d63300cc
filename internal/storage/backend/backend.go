// Package backend selects a database.Manager implementation by name.
package backend

import (
	"fmt"
	"os"

	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/LeJamon/goPayloadd/internal/storage/database/bbolt"
	"github.com/LeJamon/goPayloadd/internal/storage/database/leveldb"
	"github.com/LeJamon/goPayloadd/internal/storage/database/pebble"
)

// Open returns a manager for backend rooted at path. The memory backend
// ignores path.
func Open(backend, path string, cacheSize int) (database.Manager, error) {
	if backend != database.BackendMemory {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	switch backend {
	case database.BackendPebble, "":
		return pebble.NewManager(path, int64(cacheSize)), nil
	case database.BackendBbolt:
		return bbolt.NewManager(path), nil
	case database.BackendLevelDB:
		return leveldb.NewManager(path, cacheSize), nil
	case database.BackendMemory:
		return leveldb.NewMemoryManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}
