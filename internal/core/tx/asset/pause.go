package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeAssetPause, func() tx.Transaction {
		return &AssetPause{BaseTx: *tx.NewBaseTx(tx.TypeAssetPause, types.ZeroAddress)}
	})
	tx.Register(tx.TypeAssetUnpause, func() tx.Transaction {
		return &AssetUnpause{BaseTx: *tx.NewBaseTx(tx.TypeAssetUnpause, types.ZeroAddress)}
	})
}

// AssetPause stops everyone but the creator from moving the asset.
type AssetPause struct {
	tx.BaseTx

	Ledger  uint32 `json:"Ledger"`
	AssetID uint64 `json:"AssetID"`
}

// AssetUnpause lifts a pause.
type AssetUnpause struct {
	tx.BaseTx

	Ledger  uint32 `json:"Ledger"`
	AssetID uint64 `json:"AssetID"`
}

// AssetRefEvent identifies an asset in state-change events.
type AssetRefEvent struct {
	Ledger  uint32 `json:"ledger"`
	AssetID uint64 `json:"asset_id"`
}

// NewAssetPause creates a new AssetPause transaction
func NewAssetPause(account types.Address, ledger uint32, id uint64) *AssetPause {
	return &AssetPause{BaseTx: *tx.NewBaseTx(tx.TypeAssetPause, account), Ledger: ledger, AssetID: id}
}

// NewAssetUnpause creates a new AssetUnpause transaction
func NewAssetUnpause(account types.Address, ledger uint32, id uint64) *AssetUnpause {
	return &AssetUnpause{BaseTx: *tx.NewBaseTx(tx.TypeAssetUnpause, account), Ledger: ledger, AssetID: id}
}

func (p *AssetPause) TxType() tx.Type   { return tx.TypeAssetPause }
func (p *AssetUnpause) TxType() tx.Type { return tx.TypeAssetUnpause }

func (p *AssetPause) Validate() error {
	if err := p.ValidateFlags(0); err != nil {
		return err
	}
	return validateRef(p.Ledger, p.AssetID)
}

func (p *AssetUnpause) Validate() error {
	if err := p.ValidateFlags(0); err != nil {
		return err
	}
	return validateRef(p.Ledger, p.AssetID)
}

func (p *AssetPause) Apply(ctx *tx.ApplyContext) tx.Result {
	return setPaused(ctx, p.Ledger, p.AssetID, true)
}

func (p *AssetUnpause) Apply(ctx *tx.ApplyContext) tx.Result {
	return setPaused(ctx, p.Ledger, p.AssetID, false)
}

func setPaused(ctx *tx.ApplyContext, ledger uint32, id uint64, paused bool) tx.Result {
	a, result := Load(ctx, ledger, id)
	if result != tx.TesSUCCESS {
		return result
	}
	if a.Creator != ctx.Account {
		return tx.TecNOT_CREATOR
	}
	a.Paused = paused
	if result := Save(ctx, a); result != tx.TesSUCCESS {
		return result
	}
	event := tx.EventAssetUnpaused
	if paused {
		event = tx.EventAssetPaused
	}
	ctx.Emit(event, AssetRefEvent{Ledger: ledger, AssetID: id})
	return tx.TesSUCCESS
}

func validateRef(ledger uint32, id uint64) error {
	if ledger == 0 {
		return ErrMissingLedger
	}
	if id == 0 {
		return ErrMissingAssetID
	}
	return nil
}
