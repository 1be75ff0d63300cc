package division

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeJoinBack, func() tx.Transaction {
		return &JoinBack{BaseTx: *tx.NewBaseTx(tx.TypeJoinBack, types.ZeroAddress)}
	})
}

// JoinBack returns a division product's weight to the asset it was divided
// from and leaves the product as a disabled shell.
type JoinBack struct {
	tx.BaseTx

	Ledger  uint32 `json:"Ledger"`
	AssetID uint64 `json:"AssetID"`
}

// JoinBackEvent is emitted when a product is joined back.
type JoinBackEvent struct {
	Ledger  uint32          `json:"ledger"`
	AssetID uint64          `json:"asset_id"`
	Into    uint64          `json:"into"`
	Weight  uint64          `json:"weight"`
	Burned  decimal.Decimal `json:"burned"`
}

// NewJoinBack creates a new JoinBack transaction
func NewJoinBack(account types.Address, ledger uint32, id uint64) *JoinBack {
	return &JoinBack{
		BaseTx:  *tx.NewBaseTx(tx.TypeJoinBack, account),
		Ledger:  ledger,
		AssetID: id,
	}
}

// TxType returns the transaction type
func (j *JoinBack) TxType() tx.Type {
	return tx.TypeJoinBack
}

// Validate validates the JoinBack transaction
func (j *JoinBack) Validate() error {
	if err := j.ValidateFlags(0); err != nil {
		return err
	}
	return validateRef(j.Ledger, j.AssetID)
}

// Apply joins the product back.
func (j *JoinBack) Apply(ctx *tx.ApplyContext) tx.Result {
	a, result := asset.Load(ctx, j.Ledger, j.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	if !a.IsDivision() {
		return tx.TecNOT_A_DIVISION
	}
	if a.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if result := asset.RequireOwner(ctx, a, ctx.Account); result != tx.TesSUCCESS {
		return result
	}
	target, result := asset.Load(ctx, j.Ledger, a.DivisionOf)
	if result != tx.TesSUCCESS {
		return result
	}
	if target.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if result := ctx.RequireApproved(j.Ledger, ctx.Account); result != tx.TesSUCCESS {
		return result
	}

	burned := a.TotalSupply
	if result := asset.Debit(ctx, j.Ledger, a.ID, ctx.Account, burned, tx.TecNOT_OWNER); result != tx.TesSUCCESS {
		return result
	}

	weight := a.Weight
	target.Weight += weight
	a.Weight = 0
	a.Disabled = true
	a.TotalSupply = decimal.Zero

	if result := asset.Save(ctx, target); result != tx.TesSUCCESS {
		return result
	}
	if result := asset.Save(ctx, a); result != tx.TesSUCCESS {
		return result
	}

	ctx.Emit(tx.EventJoinBackPerformed, JoinBackEvent{
		Ledger:  j.Ledger,
		AssetID: a.ID,
		Into:    target.ID,
		Weight:  weight,
		Burned:  burned,
	})
	return tx.TesSUCCESS
}
