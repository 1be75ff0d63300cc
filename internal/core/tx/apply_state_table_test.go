package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
)

func key(name string) keylet.Keylet {
	return keylet.Keylet{Key: keylet.Sha512Half([]byte(name))}
}

func TestApplyStateTable_Buffers(t *testing.T) {
	base := newMemView()
	require.NoError(t, base.Insert(key("old"), []byte("v1")))
	table := NewApplyStateTable(base)

	require.NoError(t, table.Insert(key("new"), []byte("n")))
	require.NoError(t, table.Update(key("old"), []byte("v2")))

	got, err := table.Read(key("old"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, []byte("v1"), base.data[key("old").Key], "base is untouched before Apply")
	_, ok := base.data[key("new").Key]
	assert.False(t, ok)

	nodes, err := table.Apply()
	require.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, []byte("v2"), base.data[key("old").Key])
	assert.Equal(t, []byte("n"), base.data[key("new").Key])
}

func TestApplyStateTable_Errors(t *testing.T) {
	base := newMemView()
	require.NoError(t, base.Insert(key("a"), []byte("a")))
	table := NewApplyStateTable(base)

	assert.ErrorIs(t, table.Insert(key("a"), []byte("x")), ErrEntryExists)
	assert.ErrorIs(t, table.Update(key("missing"), []byte("x")), ErrEntryNotFound)
	assert.ErrorIs(t, table.Erase(key("missing")), ErrEntryNotFound)

	require.NoError(t, table.Erase(key("a")))
	assert.ErrorIs(t, table.Erase(key("a")), ErrEntryNotFound)
	assert.ErrorIs(t, table.Update(key("a"), []byte("x")), ErrEntryNotFound)
	exists, err := table.Exists(key("a"))
	require.NoError(t, err)
	assert.False(t, exists)

	data, err := table.Read(key("a"))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestApplyStateTable_NetChanges(t *testing.T) {
	base := newMemView()
	require.NoError(t, base.Insert(key("a"), []byte("a")))
	require.NoError(t, base.Insert(key("b"), []byte("b")))
	table := NewApplyStateTable(base)

	// Insert then erase cancels out.
	require.NoError(t, table.Insert(key("tmp"), []byte("t")))
	require.NoError(t, table.Erase(key("tmp")))

	// Writing back the original bytes is not a change.
	require.NoError(t, table.Update(key("a"), []byte("z")))
	require.NoError(t, table.Update(key("a"), []byte("a")))

	// Erase then insert becomes a modify.
	require.NoError(t, table.Erase(key("b")))
	require.NoError(t, table.Insert(key("b"), []byte("b2")))

	changes := table.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, key("b").Key, changes[0].Key)
	assert.Equal(t, []byte("b2"), changes[0].Data)

	nodes, err := table.Apply()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "ModifiedNode", nodes[0].NodeType)
	assert.Equal(t, []byte("b2"), base.data[key("b").Key])
	_, ok := base.data[key("tmp").Key]
	assert.False(t, ok)
}

type batchView struct {
	*memView
	batches [][]Change
}

func (b *batchView) ApplyBatch(changes []Change) error {
	b.batches = append(b.batches, changes)
	for _, c := range changes {
		if c.Data == nil {
			delete(b.data, c.Key)
			continue
		}
		b.data[c.Key] = c.Data
	}
	return nil
}

func TestApplyStateTable_UsesBatchView(t *testing.T) {
	base := &batchView{memView: newMemView()}
	require.NoError(t, base.Insert(key("gone"), []byte("g")))
	table := NewApplyStateTable(base)

	require.NoError(t, table.Insert(key("x"), []byte("x")))
	require.NoError(t, table.Erase(key("gone")))

	nodes, err := table.Apply()
	require.NoError(t, err)
	require.Len(t, base.batches, 1)
	assert.Len(t, base.batches[0], 2)
	assert.Len(t, nodes, 2)
	_, ok := base.data[key("gone").Key]
	assert.False(t, ok)
}
