package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeAssetTransfer, func() tx.Transaction {
		return &AssetTransfer{BaseTx: *tx.NewBaseTx(tx.TypeAssetTransfer, types.ZeroAddress)}
	})
	tx.Register(tx.TypeAssetTransferFrom, func() tx.Transaction {
		return &AssetTransferFrom{BaseTx: *tx.NewBaseTx(tx.TypeAssetTransferFrom, types.ZeroAddress)}
	})
}

// AssetTransfer moves the caller's balance to Destination.
type AssetTransfer struct {
	tx.BaseTx

	Ledger      uint32          `json:"Ledger"`
	AssetID     uint64          `json:"AssetID"`
	Destination types.Address   `json:"Destination"`
	Amount      decimal.Decimal `json:"Amount"`
}

// NewAssetTransfer creates a new AssetTransfer transaction
func NewAssetTransfer(account types.Address, ledger uint32, id uint64, to types.Address, amount decimal.Decimal) *AssetTransfer {
	return &AssetTransfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeAssetTransfer, account),
		Ledger:      ledger,
		AssetID:     id,
		Destination: to,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (t *AssetTransfer) TxType() tx.Type {
	return tx.TypeAssetTransfer
}

// Validate validates the AssetTransfer transaction
func (t *AssetTransfer) Validate() error {
	if err := t.ValidateFlags(0); err != nil {
		return err
	}
	return validateTransfer(t.Ledger, t.AssetID, t.Account, t.Destination, t.Amount)
}

// Apply moves the balance.
func (t *AssetTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	a, result := Load(ctx, t.Ledger, t.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	return Move(ctx, a, ctx.Account, t.Destination, t.Amount)
}

// AssetTransferFrom moves From's balance on behalf of an approved operator.
type AssetTransferFrom struct {
	tx.BaseTx

	Ledger      uint32          `json:"Ledger"`
	AssetID     uint64          `json:"AssetID"`
	From        types.Address   `json:"From"`
	Destination types.Address   `json:"Destination"`
	Amount      decimal.Decimal `json:"Amount"`
}

// NewAssetTransferFrom creates a new AssetTransferFrom transaction
func NewAssetTransferFrom(account types.Address, ledger uint32, id uint64, from, to types.Address, amount decimal.Decimal) *AssetTransferFrom {
	return &AssetTransferFrom{
		BaseTx:      *tx.NewBaseTx(tx.TypeAssetTransferFrom, account),
		Ledger:      ledger,
		AssetID:     id,
		From:        from,
		Destination: to,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (t *AssetTransferFrom) TxType() tx.Type {
	return tx.TypeAssetTransferFrom
}

// Validate validates the AssetTransferFrom transaction
func (t *AssetTransferFrom) Validate() error {
	if err := t.ValidateFlags(0); err != nil {
		return err
	}
	if t.From.IsZero() {
		return tx.ErrMissingAccount
	}
	return validateTransfer(t.Ledger, t.AssetID, t.From, t.Destination, t.Amount)
}

// Apply moves the balance if the caller is From or its operator.
func (t *AssetTransferFrom) Apply(ctx *tx.ApplyContext) tx.Result {
	a, result := Load(ctx, t.Ledger, t.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	if ctx.Account != t.From {
		ok, err := IsOperator(ctx.View, t.Ledger, t.From, ctx.Account)
		if err != nil {
			return ctx.Internal(err)
		}
		if !ok {
			return tx.TecNO_PERMISSION
		}
	}
	return Move(ctx, a, t.From, t.Destination, t.Amount)
}

func validateTransfer(ledger uint32, id uint64, from, to types.Address, amount decimal.Decimal) error {
	if ledger == 0 {
		return ErrMissingLedger
	}
	if id == 0 {
		return ErrMissingAssetID
	}
	if to.IsZero() {
		return ErrMissingDest
	}
	if from == to {
		return ErrDestIsSrc
	}
	if !tx.IsPositiveBaseUnits(amount) {
		return ErrBadAmount
	}
	return nil
}
