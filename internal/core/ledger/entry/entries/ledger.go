package entries

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Sequences holds the global id counters. Each counter is the last id
// handed out; ids start at 1 and are never reused.
type Sequences struct {
	Ledger   uint32 `json:"ledger"`
	Market   uint32 `json:"market"`
	Token    uint32 `json:"token"`
	Registry uint32 `json:"registry"`
	Factory  uint32 `json:"factory"`
}

func (s *Sequences) Type() entry.Type {
	return entry.TypeSequences
}

func (s *Sequences) Validate() error {
	return nil
}

// LedgerRoot is the root of an Asset Ledger instance. Asset ids are scoped
// to a ledger and allocated from NextAssetID.
type LedgerRoot struct {
	ID       uint32        `json:"id"`
	Owner    types.Address `json:"owner"`
	Registry uint32        `json:"registry"`
	Factory  uint32        `json:"factory,omitempty"`
	Decimals uint8         `json:"decimals"`

	// RoyaltyCap bounds the royalty rate of assets created on this ledger (bps)
	RoyaltyCap uint32 `json:"royalty_cap"`

	NextAssetID uint64 `json:"next_asset_id"`
}

func (l *LedgerRoot) Type() entry.Type {
	return entry.TypeLedgerRoot
}

func (l *LedgerRoot) Validate() error {
	if l.ID == 0 {
		return errors.New("ledger id is required")
	}
	if l.Registry == 0 {
		return errors.New("ledger must be bound to a compliance registry")
	}
	return nil
}
