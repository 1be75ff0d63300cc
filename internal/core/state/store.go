// Package state persists ledger entries in a key-value database and
// serves them to the transaction engine as a tx.LedgerView.
package state

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/storage/compression"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheSize is the number of entries kept in the read cache.
const DefaultCacheSize = 4096

// Key layout: entries live under entryPrefix followed by the 32-byte
// keylet key. Node bookkeeping lives under metaPrefix.
var (
	entryPrefix = []byte{'e'}
	entryEnd    = []byte{'e' + 1}
	metaPrefix  = []byte{'m'}

	metaSequence = []byte("sequence")
)

var (
	// ErrClosed is returned after Close
	ErrClosed = errors.New("state store closed")
)

// Options configures a Store.
type Options struct {
	// CacheSize is the number of decoded entries kept in memory. Zero
	// uses DefaultCacheSize.
	CacheSize int

	// Compression names the value compressor ("none" or "lz4").
	Compression string
}

// CacheStats reports read cache effectiveness.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Store implements tx.LedgerView and tx.BatchView over a database.DB.
// Reads are served from an LRU cache; commits are one atomic batch.
type Store struct {
	mu     sync.RWMutex
	db     database.DB
	cache  *lru.Cache[[32]byte, []byte]
	codec  compression.Compressor
	ctx    context.Context
	closed bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ tx.BatchView = (*Store)(nil)

// New creates a store over db.
func New(ctx context.Context, db database.DB, opts Options) (*Store, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create state cache: %w", err)
	}

	name := opts.Compression
	if name == "" {
		name = "none"
	}
	codec, err := compression.Get(name)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:    db,
		cache: cache,
		codec: codec,
		ctx:   ctx,
	}, nil
}

func entryKey(key [32]byte) []byte {
	out := make([]byte, 0, len(entryPrefix)+32)
	out = append(out, entryPrefix...)
	return append(out, key[:]...)
}

func metaKey(name []byte) []byte {
	out := make([]byte, 0, len(metaPrefix)+len(name))
	out = append(out, metaPrefix...)
	return append(out, name...)
}

func (s *Store) load(key [32]byte) ([]byte, error) {
	if data, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return data, nil
	}
	s.misses.Add(1)

	raw, err := s.db.Read(s.ctx, entryKey(key))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state entry: %w", err)
	}
	data, err := s.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state entry %x: %w", key, err)
	}
	s.cache.Add(key, data)
	return data, nil
}

// Read returns the entry data, or nil for a missing entry.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.load(k.Key)
}

func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return tx.ErrEntryExists
	}
	return s.ApplyBatch([]tx.Change{{Key: k.Key, Data: data}})
}

func (s *Store) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	return s.ApplyBatch([]tx.Change{{Key: k.Key, Data: data}})
}

func (s *Store) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	return s.ApplyBatch([]tx.Change{{Key: k.Key}})
}

// ApplyBatch writes all changes in one database batch. A change with nil
// Data erases the entry.
func (s *Store) ApplyBatch(changes []tx.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		if c.Data == nil {
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: entryKey(c.Key)})
			continue
		}
		value, err := s.codec.Encode(c.Data)
		if err != nil {
			return fmt.Errorf("encode state entry %x: %w", c.Key, err)
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: entryKey(c.Key), Value: value})
	}

	if err := s.db.Batch(s.ctx, ops); err != nil {
		// Cached values may no longer match the database
		s.cache.Purge()
		return fmt.Errorf("commit state batch: %w", err)
	}

	for _, c := range changes {
		if c.Data == nil {
			s.cache.Remove(c.Key)
		} else {
			s.cache.Add(c.Key, c.Data)
		}
	}

	log.WithField("changes", len(changes)).Trace("state batch committed")
	return nil
}

// ForEach walks every entry in key order.
func (s *Store) ForEach(fn func(key [32]byte, data []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	it, err := s.db.Iterator(s.ctx, entryPrefix, entryEnd)
	if err != nil {
		return fmt.Errorf("open state iterator: %w", err)
	}
	defer it.Close()

	for it.Next() {
		raw := it.Key()
		if len(raw) != len(entryPrefix)+32 {
			continue
		}
		var key [32]byte
		copy(key[:], raw[len(entryPrefix):])

		data, err := s.codec.Decode(it.Value())
		if err != nil {
			return fmt.Errorf("decode state entry %x: %w", key, err)
		}
		if !fn(key, data) {
			return nil
		}
	}
	return it.Error()
}

// Digest hashes every entry in key order. Two stores holding the same
// entries have the same digest regardless of backend or compression.
func (s *Store) Digest() ([32]byte, int, error) {
	var (
		parts [][]byte
		count int
	)
	err := s.ForEach(func(key [32]byte, data []byte) bool {
		size := make([]byte, 4)
		binary.BigEndian.PutUint32(size, uint32(len(data)))
		parts = append(parts, append([]byte(nil), key[:]...), size, data)
		count++
		return true
	})
	if err != nil {
		return [32]byte{}, 0, err
	}
	return keylet.Sha512Half(parts...), count, nil
}

// Sequence returns the last applied transaction sequence recorded by
// SetSequence, or zero for a fresh store.
func (s *Store) Sequence() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	raw, err := s.db.Read(s.ctx, metaKey(metaSequence))
	if errors.Is(err, database.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("read sequence: bad length %d", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// SetSequence records the last applied transaction sequence.
func (s *Store) SetSequence(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, seq)
	if err := s.db.Write(s.ctx, metaKey(metaSequence), raw); err != nil {
		return fmt.Errorf("write sequence: %w", err)
	}
	return nil
}

// CacheStats returns read cache counters.
func (s *Store) CacheStats() CacheStats {
	return CacheStats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: s.cache.Len(),
	}
}

// Close drops the cache. The underlying database belongs to its manager.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cache.Purge()
}
