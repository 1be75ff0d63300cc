package leveldb

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// Manager keeps goleveldb stores on disk, or in memory for tests, replay
// targets and the compare command.
type Manager struct {
	dbs       map[string]*leveldb.DB
	path      string
	cacheSize int
	memory    bool
	mu        sync.Mutex
}

// NewManager opens leveldb databases under path. cacheSize is the block
// cache capacity in bytes; zero uses the default.
func NewManager(path string, cacheSize int) *Manager {
	return &Manager{
		dbs:       make(map[string]*leveldb.DB),
		path:      path,
		cacheSize: cacheSize,
	}
}

// NewMemoryManager keeps every database in memory. Contents are lost on
// Close.
func NewMemoryManager() *Manager {
	return &Manager{
		dbs:    make(map[string]*leveldb.DB),
		memory: true,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	opts := &opt.Options{}
	if m.cacheSize > 0 {
		opts.BlockCacheCapacity = m.cacheSize
	}

	var (
		db  *leveldb.DB
		err error
	)
	if m.memory {
		db, err = leveldb.Open(storage.NewMemStorage(), opts)
	} else {
		db, err = leveldb.OpenFile(filepath.Join(m.path, name+".ldb"), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("open leveldb database %s: %w", name, err)
	}

	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("%w: %s", database.ErrDBNotOpen, name)
	}
	delete(m.dbs, name)
	return db.Close()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database %s: %w", name, err))
		}
		delete(m.dbs, name)
	}
	return errors.Join(errs...)
}
