package tx

import (
	"fmt"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
)

// ReadEntry decodes the entry at k into e. It reports false when the entry
// does not exist.
func ReadEntry(view LedgerView, k keylet.Keylet, e entry.Entry) (bool, error) {
	data, err := view.Read(k)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := entries.Decode(data, e); err != nil {
		return false, err
	}
	return true, nil
}

// InsertEntry validates, encodes and inserts a new entry.
func InsertEntry(view LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	return view.Insert(k, data)
}

// WriteEntry validates, encodes and stores e, inserting or updating as needed.
func WriteEntry(view LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := encodeEntry(e)
	if err != nil {
		return err
	}
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return view.Update(k, data)
	}
	return view.Insert(k, data)
}

func encodeEntry(e entry.Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s entry: %w", e.Type(), err)
	}
	return entries.Encode(e)
}

// NextID allocates the next id from the global counters. pick selects the
// counter to advance.
func NextID(view LedgerView, pick func(*entries.Sequences) *uint32) (uint32, error) {
	seq := &entries.Sequences{}
	if _, err := ReadEntry(view, keylet.Sequences(), seq); err != nil {
		return 0, err
	}
	counter := pick(seq)
	*counter++
	if err := WriteEntry(view, keylet.Sequences(), seq); err != nil {
		return 0, err
	}
	return *counter, nil
}
