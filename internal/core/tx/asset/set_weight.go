package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeAssetSetWeight, func() tx.Transaction {
		return &AssetSetWeight{BaseTx: *tx.NewBaseTx(tx.TypeAssetSetWeight, types.ZeroAddress)}
	})
	tx.Register(tx.TypeAssetSetMinStepSize, func() tx.Transaction {
		return &AssetSetMinStepSize{BaseTx: *tx.NewBaseTx(tx.TypeAssetSetMinStepSize, types.ZeroAddress)}
	})
}

// AssetSetWeight sets the divisible quantity of an asset. It is frozen once
// the asset has been divided. A division product's weight is fixed by the
// division that minted it.
type AssetSetWeight struct {
	tx.BaseTx

	Ledger  uint32 `json:"Ledger"`
	AssetID uint64 `json:"AssetID"`
	Weight  uint64 `json:"Weight"`
}

// AssetSetMinStepSize sets the granularity of division steps.
type AssetSetMinStepSize struct {
	tx.BaseTx

	Ledger      uint32 `json:"Ledger"`
	AssetID     uint64 `json:"AssetID"`
	MinStepSize uint64 `json:"MinStepSize"`
}

// WeightEvent is emitted when division parameters change.
type WeightEvent struct {
	Ledger      uint32 `json:"ledger"`
	AssetID     uint64 `json:"asset_id"`
	Weight      uint64 `json:"weight"`
	MinStepSize uint64 `json:"min_step_size"`
}

// NewAssetSetWeight creates a new AssetSetWeight transaction
func NewAssetSetWeight(account types.Address, ledger uint32, id, weight uint64) *AssetSetWeight {
	return &AssetSetWeight{
		BaseTx:  *tx.NewBaseTx(tx.TypeAssetSetWeight, account),
		Ledger:  ledger,
		AssetID: id,
		Weight:  weight,
	}
}

// NewAssetSetMinStepSize creates a new AssetSetMinStepSize transaction
func NewAssetSetMinStepSize(account types.Address, ledger uint32, id, step uint64) *AssetSetMinStepSize {
	return &AssetSetMinStepSize{
		BaseTx:      *tx.NewBaseTx(tx.TypeAssetSetMinStepSize, account),
		Ledger:      ledger,
		AssetID:     id,
		MinStepSize: step,
	}
}

func (s *AssetSetWeight) TxType() tx.Type      { return tx.TypeAssetSetWeight }
func (s *AssetSetMinStepSize) TxType() tx.Type { return tx.TypeAssetSetMinStepSize }

func (s *AssetSetWeight) Validate() error {
	if err := s.ValidateFlags(0); err != nil {
		return err
	}
	return validateRef(s.Ledger, s.AssetID)
}

func (s *AssetSetMinStepSize) Validate() error {
	if err := s.ValidateFlags(0); err != nil {
		return err
	}
	if s.MinStepSize == 0 {
		return ErrBadStepSize
	}
	return validateRef(s.Ledger, s.AssetID)
}

func (s *AssetSetWeight) Apply(ctx *tx.ApplyContext) tx.Result {
	a, result := loadForDivisionParams(ctx, s.Ledger, s.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	a.Weight = s.Weight
	if result := Save(ctx, a); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventAssetWeightSet, WeightEvent{Ledger: a.Ledger, AssetID: a.ID, Weight: a.Weight, MinStepSize: a.MinStepSize})
	return tx.TesSUCCESS
}

func (s *AssetSetMinStepSize) Apply(ctx *tx.ApplyContext) tx.Result {
	a, result := loadForDivisionParams(ctx, s.Ledger, s.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	a.MinStepSize = s.MinStepSize
	if result := Save(ctx, a); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventAssetMinStepSet, WeightEvent{Ledger: a.Ledger, AssetID: a.ID, Weight: a.Weight, MinStepSize: a.MinStepSize})
	return tx.TesSUCCESS
}

func loadForDivisionParams(ctx *tx.ApplyContext, ledger uint32, id uint64) (*entries.Asset, tx.Result) {
	a, result := Load(ctx, ledger, id)
	if result != tx.TesSUCCESS {
		return nil, result
	}
	if result := RequireOwner(ctx, a, ctx.Account); result != tx.TesSUCCESS {
		return nil, result
	}
	if a.Disabled {
		return nil, tx.TecSHELL_DISABLED
	}
	if a.DivisionStarted || a.IsDivision() {
		return nil, tx.TecDIVISION_STARTED
	}
	return a, tx.TesSUCCESS
}
