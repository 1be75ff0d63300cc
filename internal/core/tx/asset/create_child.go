package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeAssetCreateChild, func() tx.Transaction {
		return &AssetCreateChild{BaseTx: *tx.NewBaseTx(tx.TypeAssetCreateChild, types.ZeroAddress)}
	})
}

// AssetCreateChild burns part of the caller's parent balance and mints the
// same amount of a new child asset to Recipient.
type AssetCreateChild struct {
	tx.BaseTx

	Ledger      uint32          `json:"Ledger"`
	ParentID    uint64          `json:"ParentID"`
	Amount      decimal.Decimal `json:"Amount"`
	Name        string          `json:"Name"`
	Recipient   types.Address   `json:"Recipient"`
	URI         string          `json:"URI,omitempty"`
	RoyaltyRate uint32          `json:"RoyaltyRate,omitempty"`
}

// NewAssetCreateChild creates a new AssetCreateChild transaction
func NewAssetCreateChild(account types.Address, ledger uint32, parentID uint64, amount decimal.Decimal, name string, recipient types.Address) *AssetCreateChild {
	return &AssetCreateChild{
		BaseTx:    *tx.NewBaseTx(tx.TypeAssetCreateChild, account),
		Ledger:    ledger,
		ParentID:  parentID,
		Amount:    amount,
		Name:      name,
		Recipient: recipient,
	}
}

// TxType returns the transaction type
func (c *AssetCreateChild) TxType() tx.Type {
	return tx.TypeAssetCreateChild
}

// Validate validates the AssetCreateChild transaction
func (c *AssetCreateChild) Validate() error {
	if err := c.ValidateFlags(0); err != nil {
		return err
	}
	if c.Ledger == 0 {
		return ErrMissingLedger
	}
	if c.ParentID == 0 {
		return ErrMissingAssetID
	}
	if c.Recipient.IsZero() {
		return ErrMissingDest
	}
	if !validName(c.Name) {
		return ErrBadName
	}
	if len(c.URI) > MaxURILength {
		return ErrURITooLong
	}
	if !tx.IsPositiveBaseUnits(c.Amount) {
		return ErrBadAmount
	}
	if c.RoyaltyRate > tx.BasisPoints {
		return ErrBadRate
	}
	return nil
}

// Apply creates the child.
func (c *AssetCreateChild) Apply(ctx *tx.ApplyContext) tx.Result {
	root, result := ctx.Ledger(c.Ledger)
	if result != tx.TesSUCCESS {
		return result
	}
	parent, result := Load(ctx, c.Ledger, c.ParentID)
	if result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.RequireApproved(c.Ledger, ctx.Account, c.Recipient); result != tx.TesSUCCESS {
		return result
	}
	if parent.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if parent.Paused && ctx.Account != parent.Creator {
		return tx.TecASSET_PAUSED
	}
	if c.RoyaltyRate > root.RoyaltyCap || c.RoyaltyRate > ctx.Config.MaxRoyaltyRate {
		return tx.TecROYALTY_CAP
	}

	// The parent amount backing the child leaves circulation.
	if result := Debit(ctx, c.Ledger, c.ParentID, ctx.Account, c.Amount, tx.TecINSUFFICIENT_PARENT_BALANCE); result != tx.TesSUCCESS {
		return result
	}

	id, result := nextAssetID(ctx, root)
	if result != tx.TesSUCCESS {
		return result
	}

	parent.TotalSupply = parent.TotalSupply.Sub(c.Amount)
	parent.Children = append(parent.Children, id)
	if result := Save(ctx, parent); result != tx.TesSUCCESS {
		return result
	}

	child := &entries.Asset{
		Ledger:      c.Ledger,
		ID:          id,
		ParentID:    c.ParentID,
		Name:        c.Name,
		FullName:    entries.JoinName(parent.FullName, c.Name),
		URI:         c.URI,
		Creator:     ctx.Account,
		RoyaltyRate: c.RoyaltyRate,
		TotalSupply: c.Amount,
		MinStepSize: DefaultMinStepSize,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Asset(c.Ledger, id), child); err != nil {
		return ctx.Internal(err)
	}
	if result := Credit(ctx, c.Ledger, id, c.Recipient, c.Amount); result != tx.TesSUCCESS {
		return result
	}

	ctx.Created(id)
	ctx.Emit(tx.EventAssetCreated, NewAssetEvent(child, c.Recipient))
	return tx.TesSUCCESS
}
