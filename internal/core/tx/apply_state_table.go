package tx

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sort"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
)

var (
	// ErrEntryExists is returned when inserting over a live entry
	ErrEntryExists = errors.New("entry already exists")

	// ErrEntryNotFound is returned when updating or erasing a missing entry
	ErrEntryNotFound = errors.New("entry not found")
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// Change is one committed modification. Data is nil for erasures.
type Change struct {
	Key  [32]byte
	Data []byte
}

// BatchView is implemented by views that can commit a set of changes
// atomically. ApplyStateTable.Apply uses it when the base supports it.
type BatchView interface {
	LedgerView
	ApplyBatch(changes []Change) error
}

// ApplyStateTable wraps a LedgerView and buffers all modifications made
// by one transaction. Nothing reaches the base until Apply is called, so
// discarding the table reverts the transaction.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached.
// A missing entry returns nil data and no error.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[k.Key] = &TrackedEntry{
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return ErrEntryNotFound
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		switch entry.Action {
		case ActionErase:
			return ErrEntryNotFound
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[k.Key] = &TrackedEntry{
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach iterates over the base. Uncommitted changes are not visible.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Changes returns the pending modifications in key order.
func (t *ApplyStateTable) Changes() []Change {
	keys := make([][32]byte, 0, len(t.items))
	for key, entry := range t.items {
		if entry.Action == ActionCache {
			continue
		}
		if entry.Action == ActionModify && bytes.Equal(entry.Original, entry.Current) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	changes := make([]Change, 0, len(keys))
	for _, key := range keys {
		entry := t.items[key]
		c := Change{Key: key}
		if entry.Action != ActionErase {
			c.Data = entry.Current
		}
		changes = append(changes, c)
	}
	return changes
}

// Apply commits all changes to the base view and returns the affected nodes.
func (t *ApplyStateTable) Apply() ([]AffectedNode, error) {
	changes := t.Changes()
	nodes := make([]AffectedNode, 0, len(changes))
	for _, c := range changes {
		nodes = append(nodes, t.affectedNode(c))
	}

	if bv, ok := t.base.(BatchView); ok {
		if err := bv.ApplyBatch(changes); err != nil {
			return nil, err
		}
		return nodes, nil
	}

	for _, c := range changes {
		k := keylet.Keylet{Key: c.Key}
		var err error
		switch t.items[c.Key].Action {
		case ActionInsert:
			err = t.base.Insert(k, c.Data)
		case ActionModify:
			err = t.base.Update(k, c.Data)
		case ActionErase:
			err = t.base.Erase(k)
		}
		if err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// AffectedNode describes one entry touched by a transaction
type AffectedNode struct {
	NodeType        string `json:"node_type"`
	LedgerEntryType string `json:"ledger_entry_type"`
	LedgerIndex     string `json:"ledger_index"`
}

func (t *ApplyStateTable) affectedNode(c Change) AffectedNode {
	entry := t.items[c.Key]
	node := AffectedNode{LedgerIndex: hex.EncodeToString(c.Key[:])}

	data := entry.Current
	switch entry.Action {
	case ActionInsert:
		node.NodeType = "CreatedNode"
	case ActionModify:
		node.NodeType = "ModifiedNode"
	case ActionErase:
		node.NodeType = "DeletedNode"
		data = entry.Original
	}
	if typ, err := entries.TypeOf(data); err == nil {
		node.LedgerEntryType = typ.String()
	}
	return node
}
