package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeAssetCreate, func() tx.Transaction {
		return &AssetCreate{BaseTx: *tx.NewBaseTx(tx.TypeAssetCreate, types.ZeroAddress)}
	})
}

// AssetCreate mints a new root asset to the caller.
type AssetCreate struct {
	tx.BaseTx

	Ledger uint32 `json:"Ledger"`
	Name   string `json:"Name"`
	URI    string `json:"URI,omitempty"`

	// TotalSupply is minted to the caller, in base units (required)
	TotalSupply decimal.Decimal `json:"TotalSupply"`

	// RoyaltyRate in basis points, immutable once created
	RoyaltyRate uint32 `json:"RoyaltyRate,omitempty"`

	// Weight is the divisible quantity backing the asset (optional)
	Weight uint64 `json:"Weight,omitempty"`

	// MinStepSize defaults to 1
	MinStepSize uint64 `json:"MinStepSize,omitempty"`
}

// AssetEvent is emitted when an asset id comes into existence.
type AssetEvent struct {
	Ledger      uint32          `json:"ledger"`
	ID          uint64          `json:"id"`
	ParentID    uint64          `json:"parent_id,omitempty"`
	DivisionOf  uint64          `json:"division_of,omitempty"`
	FullName    string          `json:"full_name"`
	Creator     types.Address   `json:"creator"`
	Owner       types.Address   `json:"owner"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	RoyaltyRate uint32          `json:"royalty_rate"`
	Weight      uint64          `json:"weight"`
}

// NewAssetCreate creates a new AssetCreate transaction
func NewAssetCreate(account types.Address, ledger uint32, name string, totalSupply decimal.Decimal) *AssetCreate {
	return &AssetCreate{
		BaseTx:      *tx.NewBaseTx(tx.TypeAssetCreate, account),
		Ledger:      ledger,
		Name:        name,
		TotalSupply: totalSupply,
	}
}

// TxType returns the transaction type
func (a *AssetCreate) TxType() tx.Type {
	return tx.TypeAssetCreate
}

// Validate validates the AssetCreate transaction
func (a *AssetCreate) Validate() error {
	if err := a.ValidateFlags(tfAssetCreateMask); err != nil {
		return err
	}
	if a.Ledger == 0 {
		return ErrMissingLedger
	}
	if !validName(a.Name) {
		return ErrBadName
	}
	if len(a.URI) > MaxURILength {
		return ErrURITooLong
	}
	if !tx.IsPositiveBaseUnits(a.TotalSupply) {
		return ErrBadAmount
	}
	if a.RoyaltyRate > tx.BasisPoints {
		return ErrBadRate
	}
	return nil
}

// Apply mints the asset.
func (a *AssetCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	root, result := ctx.Ledger(a.Ledger)
	if result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.RequireApproved(a.Ledger, ctx.Account); result != tx.TesSUCCESS {
		return result
	}
	if a.RoyaltyRate > root.RoyaltyCap || a.RoyaltyRate > ctx.Config.MaxRoyaltyRate {
		return tx.TecROYALTY_CAP
	}

	id, result := nextAssetID(ctx, root)
	if result != tx.TesSUCCESS {
		return result
	}

	minStep := a.MinStepSize
	if minStep == 0 {
		minStep = DefaultMinStepSize
	}
	flags := a.GetFlags()
	asset := &entries.Asset{
		Ledger:      a.Ledger,
		ID:          id,
		Name:        a.Name,
		FullName:    a.Name,
		URI:         a.URI,
		Creator:     ctx.Account,
		RoyaltyRate: a.RoyaltyRate,
		Paused:      flags&TfStartPaused != 0,
		TotalSupply: a.TotalSupply,
		Divisible:   flags&TfDivisible != 0,
		Weight:      a.Weight,
		MinStepSize: minStep,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Asset(a.Ledger, id), asset); err != nil {
		return ctx.Internal(err)
	}
	if result := Credit(ctx, a.Ledger, id, ctx.Account, a.TotalSupply); result != tx.TesSUCCESS {
		return result
	}

	ctx.Created(id)
	ctx.Emit(tx.EventAssetCreated, NewAssetEvent(asset, ctx.Account))
	return tx.TesSUCCESS
}

// NewAssetEvent builds the asset_created payload for a freshly stored asset.
func NewAssetEvent(a *entries.Asset, owner types.Address) AssetEvent {
	return AssetEvent{
		Ledger:      a.Ledger,
		ID:          a.ID,
		ParentID:    a.ParentID,
		DivisionOf:  a.DivisionOf,
		FullName:    a.FullName,
		Creator:     a.Creator,
		Owner:       owner,
		TotalSupply: a.TotalSupply,
		RoyaltyRate: a.RoyaltyRate,
		Weight:      a.Weight,
	}
}

