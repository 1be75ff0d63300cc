package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPayloadd/internal/storage/database"
)

var backends = []string{
	database.BackendPebble,
	database.BackendBbolt,
	database.BackendLevelDB,
	database.BackendMemory,
}

func openDB(t *testing.T, name string) database.DB {
	t.Helper()
	mgr, err := Open(name, filepath.Join(t.TempDir(), "db"), 1<<20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	db, err := mgr.OpenDB("state")
	require.NoError(t, err)
	return db
}

func collect(t *testing.T, db database.DB, start, end []byte) []string {
	t.Helper()
	it, err := db.Iterator(context.Background(), start, end)
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key())+"="+string(it.Value()))
	}
	require.NoError(t, it.Error())
	return keys
}

func TestBackends(t *testing.T) {
	ctx := context.Background()
	for _, name := range backends {
		t.Run(name, func(t *testing.T) {
			db := openDB(t, name)

			_, err := db.Read(ctx, []byte("missing"))
			assert.ErrorIs(t, err, database.ErrKeyNotFound)

			require.NoError(t, db.Write(ctx, []byte("b"), []byte("2")))
			got, err := db.Read(ctx, []byte("b"))
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), got)

			require.NoError(t, db.Batch(ctx, []database.BatchOperation{
				{Type: database.BatchPut, Key: []byte("a"), Value: []byte("1")},
				{Type: database.BatchPut, Key: []byte("c"), Value: []byte("3")},
				{Type: database.BatchPut, Key: []byte("d"), Value: []byte("4")},
				{Type: database.BatchDelete, Key: []byte("d")},
			}))

			assert.Equal(t, []string{"a=1", "b=2", "c=3"}, collect(t, db, nil, nil))
			assert.Equal(t, []string{"b=2"}, collect(t, db, []byte("b"), []byte("c")))
			assert.Equal(t, []string{"b=2", "c=3"}, collect(t, db, []byte("b"), nil))

			require.NoError(t, db.Delete(ctx, []byte("a")))
			_, err = db.Read(ctx, []byte("a"))
			assert.ErrorIs(t, err, database.ErrKeyNotFound)
		})
	}
}

func TestBackends_Reopen(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{database.BackendPebble, database.BackendBbolt, database.BackendLevelDB} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db")

			mgr, err := Open(name, path, 0)
			require.NoError(t, err)
			db, err := mgr.OpenDB("state")
			require.NoError(t, err)
			require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
			require.NoError(t, mgr.CloseDB("state"))
			assert.ErrorIs(t, mgr.CloseDB("state"), database.ErrDBNotOpen)
			require.NoError(t, mgr.Close())

			mgr, err = Open(name, path, 0)
			require.NoError(t, err)
			defer mgr.Close()
			db, err = mgr.OpenDB("state")
			require.NoError(t, err)
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("rocksdb", t.TempDir(), 0)
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}
