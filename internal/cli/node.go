package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/LeJamon/goPayloadd/internal/config"
	"github.com/LeJamon/goPayloadd/internal/core/state"
	"github.com/LeJamon/goPayloadd/internal/node"
	"github.com/LeJamon/goPayloadd/internal/storage/backend"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
)

// stateDBName is the database holding ledger state under a backend
const stateDBName = "state"

// openStore opens the state store for the given [database] section.
// The returned close function releases the store and its backend.
func openStore(ctx context.Context, dc config.DatabaseConfig) (*state.Store, func(), error) {
	mgr, err := backend.Open(dc.Backend, dc.Path, dc.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	db, err := mgr.OpenDB(stateDBName)
	if err != nil {
		_ = mgr.Close()
		return nil, nil, fmt.Errorf("open state database: %w", err)
	}
	store, err := state.New(ctx, db, state.Options{
		CacheSize:   dc.StateCache,
		Compression: dc.Compression,
	})
	if err != nil {
		_ = mgr.Close()
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}

	closeFn := func() {
		store.Close()
		if err := mgr.Close(); err != nil {
			log.WithError(err).Warn("failed to close database")
		}
	}
	return store, closeFn, nil
}

// memoryStore opens a throwaway in-memory store with the configured
// cache and compression.
func memoryStore(ctx context.Context, dc config.DatabaseConfig) (*state.Store, func(), error) {
	dc.Backend = database.BackendMemory
	return openStore(ctx, dc)
}

// openJournal opens the configured journal, creating the parent
// directory of a sqlite file.
func openJournal(ctx context.Context, jc journal.Config) (journal.Journal, error) {
	if jc.Driver == journal.DriverSQLite {
		if dir := filepath.Dir(jc.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create journal directory: %w", err)
			}
		}
	}
	return journal.Open(ctx, jc)
}

// nodeHandle is a running service and the resources behind it.
type nodeHandle struct {
	Service *node.Service
	Store   *state.Store
	Journal journal.Journal
	Metrics *node.Metrics

	closeStore func()
}

func (h *nodeHandle) Close() {
	if err := h.Journal.Close(); err != nil {
		log.WithError(err).Warn("failed to close journal")
	}
	h.closeStore()
}

// openNode opens the store and journal configured in c and starts a service.
func openNode(ctx context.Context, c *config.Config) (*nodeHandle, error) {
	store, closeStore, err := openStore(ctx, c.Database)
	if err != nil {
		return nil, err
	}
	j, err := openJournal(ctx, c.Journal)
	if err != nil {
		closeStore()
		return nil, err
	}

	var metrics *node.Metrics
	if c.Server.EnableMetrics {
		metrics = node.NewMetrics(store.CacheStats)
	}
	svc, err := node.New(store, j, node.Options{Engine: c.TxEngineConfig(), Metrics: metrics})
	if err != nil {
		_ = j.Close()
		closeStore()
		return nil, err
	}
	return &nodeHandle{Service: svc, Store: store, Journal: j, Metrics: metrics, closeStore: closeStore}, nil
}
