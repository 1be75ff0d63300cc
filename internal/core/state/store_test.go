package state

import (
	"bytes"
	"context"
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/storage/backend"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, name, compression string) *Store {
	t.Helper()
	mgr, err := backend.Open(name, t.TempDir(), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	db, err := mgr.OpenDB("state")
	require.NoError(t, err)

	s, err := New(context.Background(), db, Options{CacheSize: 16, Compression: compression})
	require.NoError(t, err)
	return s
}

var backends = []string{
	database.BackendPebble,
	database.BackendBbolt,
	database.BackendLevelDB,
	database.BackendMemory,
}

func TestStoreLedgerView(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, name, "lz4")
			k := keylet.Ledger(1)

			data, err := s.Read(k)
			require.NoError(t, err)
			assert.Nil(t, data)

			require.NoError(t, s.Insert(k, []byte("root")))
			assert.ErrorIs(t, s.Insert(k, []byte("again")), tx.ErrEntryExists)

			data, err = s.Read(k)
			require.NoError(t, err)
			assert.Equal(t, []byte("root"), data)

			require.NoError(t, s.Update(k, []byte("root-2")))
			data, err = s.Read(k)
			require.NoError(t, err)
			assert.Equal(t, []byte("root-2"), data)

			require.NoError(t, s.Erase(k))
			exists, err := s.Exists(k)
			require.NoError(t, err)
			assert.False(t, exists)

			assert.ErrorIs(t, s.Update(k, []byte("x")), tx.ErrEntryNotFound)
			assert.ErrorIs(t, s.Erase(k), tx.ErrEntryNotFound)
		})
	}
}

func TestStoreBatchAndForEach(t *testing.T) {
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			s := openStore(t, name, "none")

			changes := []tx.Change{
				{Key: keylet.Ledger(1).Key, Data: []byte("a")},
				{Key: keylet.Ledger(2).Key, Data: []byte("b")},
				{Key: keylet.Market(1).Key, Data: []byte("c")},
			}
			require.NoError(t, s.ApplyBatch(changes))
			require.NoError(t, s.ApplyBatch([]tx.Change{{Key: keylet.Ledger(2).Key}}))

			var keys [][32]byte
			require.NoError(t, s.ForEach(func(key [32]byte, data []byte) bool {
				keys = append(keys, key)
				return true
			}))
			require.Len(t, keys, 2)
			assert.True(t, bytes.Compare(keys[0][:], keys[1][:]) < 0)

			// Early stop
			visited := 0
			require.NoError(t, s.ForEach(func(key [32]byte, data []byte) bool {
				visited++
				return false
			}))
			assert.Equal(t, 1, visited)
		})
	}
}

func TestStoreDigest(t *testing.T) {
	changes := []tx.Change{
		{Key: keylet.Ledger(1).Key, Data: bytes.Repeat([]byte("ledger"), 40)},
		{Key: keylet.Asset(1, 1).Key, Data: []byte("asset")},
	}

	a := openStore(t, database.BackendPebble, "lz4")
	b := openStore(t, database.BackendMemory, "none")
	require.NoError(t, a.ApplyBatch(changes))
	require.NoError(t, b.ApplyBatch(changes))

	da, na, err := a.Digest()
	require.NoError(t, err)
	db, nb, err := b.Digest()
	require.NoError(t, err)
	assert.Equal(t, 2, na)
	assert.Equal(t, na, nb)
	assert.Equal(t, da, db)

	require.NoError(t, b.Update(keylet.Asset(1, 1), []byte("asset-2")))
	db, _, err = b.Digest()
	require.NoError(t, err)
	assert.NotEqual(t, da, db)
}

func TestStoreSequenceAndCache(t *testing.T) {
	s := openStore(t, database.BackendMemory, "")

	seq, err := s.Sequence()
	require.NoError(t, err)
	assert.Zero(t, seq)

	require.NoError(t, s.SetSequence(42))
	seq, err = s.Sequence()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), seq)

	// Metadata does not show up as an entry
	count := 0
	require.NoError(t, s.ForEach(func([32]byte, []byte) bool { count++; return true }))
	assert.Zero(t, count)

	k := keylet.Registry(7)
	_, err = s.Read(k)
	require.NoError(t, err)
	require.NoError(t, s.Insert(k, []byte("registry")))
	_, err = s.Read(k)
	require.NoError(t, err)

	stats := s.CacheStats()
	// The missing key is read twice (Read, then Insert's existence check)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)

	s.Close()
	_, err = s.Read(k)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewRejectsUnknownCompression(t *testing.T) {
	mgr, err := backend.Open(database.BackendMemory, "", 0)
	require.NoError(t, err)
	defer mgr.Close()
	db, err := mgr.OpenDB("state")
	require.NoError(t, err)

	_, err = New(context.Background(), db, Options{Compression: "snappy"})
	assert.Error(t, err)
}
