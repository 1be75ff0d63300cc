package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeLedgerCreate, func() tx.Transaction {
		return &LedgerCreate{BaseTx: *tx.NewBaseTx(tx.TypeLedgerCreate, types.ZeroAddress)}
	})
}

// LedgerCreate creates an Asset Ledger instance bound to a compliance registry.
type LedgerCreate struct {
	tx.BaseTx

	// Registry is the compliance registry gating every balance change (required)
	Registry uint32 `json:"Registry"`

	// Decimals fixes the base-unit scale of every asset on the ledger
	Decimals uint8 `json:"Decimals"`

	// RoyaltyCap bounds asset royalty rates (optional, bps)
	RoyaltyCap uint32 `json:"RoyaltyCap,omitempty"`
}

// LedgerEvent is emitted when a ledger is created directly or by a factory.
type LedgerEvent struct {
	ID       uint32        `json:"id"`
	Owner    types.Address `json:"owner"`
	Registry uint32        `json:"registry"`
	Factory  uint32        `json:"factory,omitempty"`
	Decimals uint8         `json:"decimals"`
}

// NewLedgerCreate creates a new LedgerCreate transaction
func NewLedgerCreate(account types.Address, registry uint32, decimals uint8) *LedgerCreate {
	return &LedgerCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeLedgerCreate, account),
		Registry: registry,
		Decimals: decimals,
	}
}

// TxType returns the transaction type
func (l *LedgerCreate) TxType() tx.Type {
	return tx.TypeLedgerCreate
}

// Validate validates the LedgerCreate transaction
func (l *LedgerCreate) Validate() error {
	if err := l.ValidateFlags(0); err != nil {
		return err
	}
	if l.Registry == 0 {
		return ErrMissingReg
	}
	if l.Decimals > MaxDecimals {
		return ErrBadDecimals
	}
	if l.RoyaltyCap > tx.BasisPoints {
		return ErrBadRate
	}
	return nil
}

// Apply creates the ledger root.
func (l *LedgerCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	_, result := CreateLedger(ctx, LedgerTemplate{
		Owner:      ctx.Account,
		Registry:   l.Registry,
		Decimals:   l.Decimals,
		RoyaltyCap: l.RoyaltyCap,
	})
	return result
}

// LedgerTemplate describes a ledger to create.
type LedgerTemplate struct {
	Owner      types.Address
	Registry   uint32
	Factory    uint32
	Decimals   uint8
	RoyaltyCap uint32
}

// CreateLedger allocates a ledger id and stores its root. The registry must
// exist. A zero RoyaltyCap means the engine maximum.
func CreateLedger(ctx *tx.ApplyContext, t LedgerTemplate) (uint32, tx.Result) {
	exists, err := ctx.View.Exists(keylet.Registry(t.Registry))
	if err != nil {
		return 0, ctx.Internal(err)
	}
	if !exists {
		return 0, tx.TecNO_ENTRY
	}

	royaltyCap := t.RoyaltyCap
	if royaltyCap == 0 || royaltyCap > ctx.Config.MaxRoyaltyRate {
		royaltyCap = ctx.Config.MaxRoyaltyRate
	}

	id, err := tx.NextID(ctx.View, func(s *entries.Sequences) *uint32 { return &s.Ledger })
	if err != nil {
		return 0, ctx.Internal(err)
	}
	root := &entries.LedgerRoot{
		ID:          id,
		Owner:       t.Owner,
		Registry:    t.Registry,
		Factory:     t.Factory,
		Decimals:    t.Decimals,
		RoyaltyCap:  royaltyCap,
		NextAssetID: 1,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Ledger(id), root); err != nil {
		return 0, ctx.Internal(err)
	}

	ctx.Created(uint64(id))
	ctx.Emit(tx.EventLedgerCreated, LedgerEvent{
		ID:       id,
		Owner:    t.Owner,
		Registry: t.Registry,
		Factory:  t.Factory,
		Decimals: t.Decimals,
	})
	return id, tx.TesSUCCESS
}

// nextAssetID hands out the next asset id of a ledger.
func nextAssetID(ctx *tx.ApplyContext, root *entries.LedgerRoot) (uint64, tx.Result) {
	id := root.NextAssetID
	if id == 0 {
		id = 1
	}
	root.NextAssetID = id + 1
	if err := tx.WriteEntry(ctx.View, keylet.Ledger(root.ID), root); err != nil {
		return 0, ctx.Internal(err)
	}
	return id, tx.TesSUCCESS
}

// NextAssetID allocates an asset id on the given ledger.
func NextAssetID(ctx *tx.ApplyContext, ledger uint32) (uint64, tx.Result) {
	root, result := ctx.Ledger(ledger)
	if result != tx.TesSUCCESS {
		return 0, result
	}
	return nextAssetID(ctx, root)
}
