package division

import (
	"fmt"
	"math/bits"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Step is one (count, stepWeight) pair of a division.
type Step struct {
	Count      uint32 `json:"count"`
	StepWeight uint64 `json:"step_weight"`
}

func (s Step) validate() error {
	if s.Count == 0 {
		return ErrBadCount
	}
	if s.StepWeight == 0 {
		return ErrBadStepWeight
	}
	return nil
}

// DivisionEvent is emitted for each step of a division.
type DivisionEvent struct {
	Ledger     uint32   `json:"ledger"`
	AssetID    uint64   `json:"asset_id"`
	Count      uint32   `json:"count"`
	StepWeight uint64   `json:"step_weight"`
	IDs        []uint64 `json:"ids"`
	Residual   uint64   `json:"residual"`
}

// divide applies steps in order against one asset. Any failing step fails
// the whole transaction.
func divide(ctx *tx.ApplyContext, ledger uint32, id uint64, steps []Step) tx.Result {
	var total uint64
	for _, s := range steps {
		total += uint64(s.Count)
	}
	if total > uint64(ctx.Config.MaxDivisions) {
		return tx.TemARRAY_TOO_LARGE
	}

	root, result := ctx.Ledger(ledger)
	if result != tx.TesSUCCESS {
		return result
	}
	a, result := asset.Load(ctx, ledger, id)
	if result != tx.TesSUCCESS {
		return result
	}
	if a.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if !a.Divisible {
		return tx.TecDIVISIBILITY_DISABLED
	}
	if result := asset.RequireOwner(ctx, a, ctx.Account); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.RequireApproved(ledger, ctx.Account); result != tx.TesSUCCESS {
		return result
	}

	unit := tx.Unit(root.Decimals)
	for _, s := range steps {
		if a.MinStepSize > 1 && s.StepWeight%a.MinStepSize != 0 {
			return tx.TecBAD_STEP_SIZE
		}
		hi, need := bits.Mul64(uint64(s.Count), s.StepWeight)
		if hi != 0 || a.Weight < need {
			return tx.TecINSUFFICIENT_WEIGHT
		}

		ids := make([]uint64, 0, s.Count)
		for i := uint32(0); i < s.Count; i++ {
			childID, result := asset.NextAssetID(ctx, ledger)
			if result != tx.TesSUCCESS {
				return result
			}
			name := fmt.Sprintf("div%d", childID)
			product := &entries.Asset{
				Ledger:      ledger,
				ID:          childID,
				Name:        name,
				FullName:    entries.JoinName(a.FullName, name),
				URI:         a.URI,
				Creator:     ctx.Account,
				TotalSupply: unit,
				Divisible:   a.Divisible,
				Weight:      s.StepWeight,
				MinStepSize: a.MinStepSize,
				DivisionOf:  a.ID,
			}
			if err := tx.InsertEntry(ctx.View, keylet.Asset(ledger, childID), product); err != nil {
				return ctx.Internal(err)
			}
			if result := asset.Credit(ctx, ledger, childID, ctx.Account, unit); result != tx.TesSUCCESS {
				return result
			}
			ids = append(ids, childID)
		}

		a.Weight -= need
		a.Divisions = append(a.Divisions, ids...)
		a.DivisionStarted = true
		ctx.Created(ids...)
		ctx.Emit(tx.EventDivisionPerformed, DivisionEvent{
			Ledger:     ledger,
			AssetID:    a.ID,
			Count:      s.Count,
			StepWeight: s.StepWeight,
			IDs:        ids,
			Residual:   a.Weight,
		})
	}

	return asset.Save(ctx, a)
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

func init() {
	tx.Register(tx.TypeDivideInto, func() tx.Transaction {
		return &DivideInto{BaseTx: *tx.NewBaseTx(tx.TypeDivideInto, types.ZeroAddress)}
	})
	tx.Register(tx.TypeStepDivideInto, func() tx.Transaction {
		return &StepDivideInto{DivideInto: DivideInto{BaseTx: *tx.NewBaseTx(tx.TypeStepDivideInto, types.ZeroAddress)}}
	})
	tx.Register(tx.TypeBatchDivideInto, func() tx.Transaction {
		return &BatchDivideInto{BaseTx: *tx.NewBaseTx(tx.TypeBatchDivideInto, types.ZeroAddress)}
	})
}

// DivideInto mints Count division products of StepWeight each from an
// asset's weight.
type DivideInto struct {
	tx.BaseTx

	Ledger     uint32 `json:"Ledger"`
	AssetID    uint64 `json:"AssetID"`
	Count      uint32 `json:"Count"`
	StepWeight uint64 `json:"StepWeight"`
}

// NewDivideInto creates a new DivideInto transaction
func NewDivideInto(account types.Address, ledger uint32, id uint64, count uint32, stepWeight uint64) *DivideInto {
	return &DivideInto{
		BaseTx:     *tx.NewBaseTx(tx.TypeDivideInto, account),
		Ledger:     ledger,
		AssetID:    id,
		Count:      count,
		StepWeight: stepWeight,
	}
}

// TxType returns the transaction type
func (d *DivideInto) TxType() tx.Type {
	return tx.TypeDivideInto
}

// Validate validates the DivideInto transaction
func (d *DivideInto) Validate() error {
	if err := d.ValidateFlags(0); err != nil {
		return err
	}
	if err := validateRef(d.Ledger, d.AssetID); err != nil {
		return err
	}
	return Step{Count: d.Count, StepWeight: d.StepWeight}.validate()
}

// Apply performs the division.
func (d *DivideInto) Apply(ctx *tx.ApplyContext) tx.Result {
	return divide(ctx, d.Ledger, d.AssetID, []Step{{Count: d.Count, StepWeight: d.StepWeight}})
}

// StepDivideInto is DivideInto recorded under its own type.
type StepDivideInto struct {
	DivideInto
}

// NewStepDivideInto creates a new StepDivideInto transaction
func NewStepDivideInto(account types.Address, ledger uint32, id uint64, count uint32, stepWeight uint64) *StepDivideInto {
	d := NewDivideInto(account, ledger, id, count, stepWeight)
	d.BaseTx = *tx.NewBaseTx(tx.TypeStepDivideInto, account)
	return &StepDivideInto{DivideInto: *d}
}

// TxType returns the transaction type
func (s *StepDivideInto) TxType() tx.Type {
	return tx.TypeStepDivideInto
}

// BatchDivideInto applies several (count, stepWeight) pairs in order.
type BatchDivideInto struct {
	tx.BaseTx

	Ledger      uint32   `json:"Ledger"`
	AssetID     uint64   `json:"AssetID"`
	Counts      []uint32 `json:"Counts"`
	StepWeights []uint64 `json:"StepWeights"`
}

// NewBatchDivideInto creates a new BatchDivideInto transaction
func NewBatchDivideInto(account types.Address, ledger uint32, id uint64, counts []uint32, stepWeights []uint64) *BatchDivideInto {
	return &BatchDivideInto{
		BaseTx:      *tx.NewBaseTx(tx.TypeBatchDivideInto, account),
		Ledger:      ledger,
		AssetID:     id,
		Counts:      counts,
		StepWeights: stepWeights,
	}
}

// TxType returns the transaction type
func (b *BatchDivideInto) TxType() tx.Type {
	return tx.TypeBatchDivideInto
}

// Validate validates the BatchDivideInto transaction
func (b *BatchDivideInto) Validate() error {
	if err := b.ValidateFlags(0); err != nil {
		return err
	}
	if err := validateRef(b.Ledger, b.AssetID); err != nil {
		return err
	}
	if len(b.Counts) == 0 || len(b.StepWeights) == 0 {
		return ErrEmptyBatch
	}
	if len(b.Counts) != len(b.StepWeights) {
		return ErrBatchMismatch
	}
	for _, s := range b.steps() {
		if err := s.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b *BatchDivideInto) steps() []Step {
	steps := make([]Step, len(b.Counts))
	for i := range b.Counts {
		steps[i] = Step{Count: b.Counts[i], StepWeight: b.StepWeights[i]}
	}
	return steps
}

// Apply performs every step or none.
func (b *BatchDivideInto) Apply(ctx *tx.ApplyContext) tx.Result {
	return divide(ctx, b.Ledger, b.AssetID, b.steps())
}
