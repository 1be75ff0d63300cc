package compliance

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Flags shared by the role-setting transactions
const (
	// TfDisable revokes instead of granting
	TfDisable uint32 = 0x00010000
)

// Validation errors
var (
	ErrMissingRegistry = errors.New("temMALFORMED: Registry is required")
	ErrMissingAddress  = errors.New("temBAD_ADDRESS: address is required")
)

func init() {
	tx.Register(tx.TypeRegistryCreate, func() tx.Transaction {
		return &RegistryCreate{BaseTx: *tx.NewBaseTx(tx.TypeRegistryCreate, types.ZeroAddress)}
	})
	tx.Register(tx.TypeRegistrySetOperator, func() tx.Transaction {
		return &RegistrySetOperator{BaseTx: *tx.NewBaseTx(tx.TypeRegistrySetOperator, types.ZeroAddress)}
	})
	tx.Register(tx.TypeRegistrySetApproved, func() tx.Transaction {
		return &RegistrySetApproved{BaseTx: *tx.NewBaseTx(tx.TypeRegistrySetApproved, types.ZeroAddress)}
	})
}

// RegistryEvent is emitted for registry creation and role changes.
type RegistryEvent struct {
	Registry uint32        `json:"registry"`
	Address  types.Address `json:"address"`
	Enabled  bool          `json:"enabled"`
}

// RegistryCreate creates a compliance registry administered by the caller.
type RegistryCreate struct {
	tx.BaseTx
}

// NewRegistryCreate creates a new RegistryCreate transaction
func NewRegistryCreate(account types.Address) *RegistryCreate {
	return &RegistryCreate{BaseTx: *tx.NewBaseTx(tx.TypeRegistryCreate, account)}
}

func (r *RegistryCreate) TxType() tx.Type {
	return tx.TypeRegistryCreate
}

func (r *RegistryCreate) Validate() error {
	return r.ValidateFlags(0)
}

func (r *RegistryCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	id, err := tx.NextID(ctx.View, func(s *entries.Sequences) *uint32 { return &s.Registry })
	if err != nil {
		return ctx.Internal(err)
	}
	if err := tx.InsertEntry(ctx.View, keylet.Registry(id), &entries.Registry{ID: id, Admin: ctx.Account}); err != nil {
		return ctx.Internal(err)
	}
	ctx.Created(uint64(id))
	ctx.Emit(tx.EventRegistryCreated, RegistryEvent{Registry: id, Address: ctx.Account, Enabled: true})
	return tx.TesSUCCESS
}

// RegistrySetOperator grants or revokes the operator role. Admin only.
type RegistrySetOperator struct {
	tx.BaseTx

	Registry uint32        `json:"Registry"`
	Operator types.Address `json:"Operator"`
}

// NewRegistrySetOperator creates a new RegistrySetOperator transaction
func NewRegistrySetOperator(account types.Address, registry uint32, operator types.Address, enabled bool) *RegistrySetOperator {
	r := &RegistrySetOperator{
		BaseTx:   *tx.NewBaseTx(tx.TypeRegistrySetOperator, account),
		Registry: registry,
		Operator: operator,
	}
	if !enabled {
		r.SetFlags(TfDisable)
	}
	return r
}

func (r *RegistrySetOperator) TxType() tx.Type {
	return tx.TypeRegistrySetOperator
}

func (r *RegistrySetOperator) Validate() error {
	if err := r.ValidateFlags(TfDisable); err != nil {
		return err
	}
	if r.Registry == 0 {
		return ErrMissingRegistry
	}
	if r.Operator.IsZero() {
		return ErrMissingAddress
	}
	return nil
}

func (r *RegistrySetOperator) Apply(ctx *tx.ApplyContext) tx.Result {
	reg, result := loadRegistry(ctx, r.Registry)
	if result != tx.TesSUCCESS {
		return result
	}
	if reg.Admin != ctx.Account {
		return tx.TecNO_PERMISSION
	}
	enabled := r.GetFlags()&TfDisable == 0
	op := &entries.RegistryOperator{Registry: r.Registry, Operator: r.Operator, Enabled: enabled}
	if err := tx.WriteEntry(ctx.View, keylet.RegistryOperator(r.Registry, r.Operator), op); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventOperatorSet, RegistryEvent{Registry: r.Registry, Address: r.Operator, Enabled: enabled})
	return tx.TesSUCCESS
}

// RegistrySetApproved sets an address's compliance approval. Admin or
// operator only.
type RegistrySetApproved struct {
	tx.BaseTx

	Registry uint32        `json:"Registry"`
	Address  types.Address `json:"Address"`
	Approved bool          `json:"Approved"`
}

// NewRegistrySetApproved creates a new RegistrySetApproved transaction
func NewRegistrySetApproved(account types.Address, registry uint32, addr types.Address, approved bool) *RegistrySetApproved {
	return &RegistrySetApproved{
		BaseTx:   *tx.NewBaseTx(tx.TypeRegistrySetApproved, account),
		Registry: registry,
		Address:  addr,
		Approved: approved,
	}
}

func (r *RegistrySetApproved) TxType() tx.Type {
	return tx.TypeRegistrySetApproved
}

func (r *RegistrySetApproved) Validate() error {
	if err := r.ValidateFlags(0); err != nil {
		return err
	}
	if r.Registry == 0 {
		return ErrMissingRegistry
	}
	if r.Address.IsZero() {
		return ErrMissingAddress
	}
	return nil
}

func (r *RegistrySetApproved) Apply(ctx *tx.ApplyContext) tx.Result {
	reg, result := loadRegistry(ctx, r.Registry)
	if result != tx.TesSUCCESS {
		return result
	}
	if reg.Admin != ctx.Account {
		op := &entries.RegistryOperator{}
		found, err := tx.ReadEntry(ctx.View, keylet.RegistryOperator(r.Registry, ctx.Account), op)
		if err != nil {
			return ctx.Internal(err)
		}
		if !found || !op.Enabled {
			return tx.TecNO_PERMISSION
		}
	}
	approval := &entries.Approval{Registry: r.Registry, Address: r.Address, Approved: r.Approved}
	if err := tx.WriteEntry(ctx.View, keylet.Approval(r.Registry, r.Address), approval); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventApprovalSet, RegistryEvent{Registry: r.Registry, Address: r.Address, Enabled: r.Approved})
	return tx.TesSUCCESS
}

func loadRegistry(ctx *tx.ApplyContext, id uint32) (*entries.Registry, tx.Result) {
	reg := &entries.Registry{}
	found, err := tx.ReadEntry(ctx.View, keylet.Registry(id), reg)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return reg, tx.TesSUCCESS
}
