package factory

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// FactorySetClient flags
const (
	// TfDisable revokes the client role
	TfDisable uint32 = 0x00010000
)

// Validation errors
var (
	ErrMissingFactory  = errors.New("temMALFORMED: Factory is required")
	ErrMissingRegistry = errors.New("temMALFORMED: Registry is required")
	ErrMissingClient   = errors.New("temBAD_ADDRESS: Client is required")
	ErrBadDecimals     = errors.New("temBAD_DECIMALS: decimals exceed maximum of 18")
	ErrBadRate         = errors.New("temBAD_RATE: royalty cap exceeds 10000 basis points")
)

func init() {
	tx.Register(tx.TypeFactoryCreate, func() tx.Transaction {
		return &FactoryCreate{BaseTx: *tx.NewBaseTx(tx.TypeFactoryCreate, types.ZeroAddress)}
	})
	tx.Register(tx.TypeFactorySetClient, func() tx.Transaction {
		return &FactorySetClient{BaseTx: *tx.NewBaseTx(tx.TypeFactorySetClient, types.ZeroAddress)}
	})
	tx.Register(tx.TypeFactoryDeploy, func() tx.Transaction {
		return &FactoryDeploy{BaseTx: *tx.NewBaseTx(tx.TypeFactoryDeploy, types.ZeroAddress)}
	})
}

// FactoryEvent is emitted for factory creation and client changes.
type FactoryEvent struct {
	Factory uint32        `json:"factory"`
	Address types.Address `json:"address"`
	Enabled bool          `json:"enabled"`
}

// FactoryCreate stores a ledger template managed by the caller.
type FactoryCreate struct {
	tx.BaseTx

	Decimals   uint8  `json:"Decimals"`
	RoyaltyCap uint32 `json:"RoyaltyCap,omitempty"`
}

// NewFactoryCreate creates a new FactoryCreate transaction
func NewFactoryCreate(account types.Address, decimals uint8, royaltyCap uint32) *FactoryCreate {
	return &FactoryCreate{
		BaseTx:     *tx.NewBaseTx(tx.TypeFactoryCreate, account),
		Decimals:   decimals,
		RoyaltyCap: royaltyCap,
	}
}

func (f *FactoryCreate) TxType() tx.Type {
	return tx.TypeFactoryCreate
}

func (f *FactoryCreate) Validate() error {
	if err := f.ValidateFlags(0); err != nil {
		return err
	}
	if f.Decimals > asset.MaxDecimals {
		return ErrBadDecimals
	}
	if f.RoyaltyCap > tx.BasisPoints {
		return ErrBadRate
	}
	return nil
}

func (f *FactoryCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	id, err := tx.NextID(ctx.View, func(s *entries.Sequences) *uint32 { return &s.Factory })
	if err != nil {
		return ctx.Internal(err)
	}
	factory := &entries.Factory{
		ID:         id,
		Manager:    ctx.Account,
		Decimals:   f.Decimals,
		RoyaltyCap: f.RoyaltyCap,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Factory(id), factory); err != nil {
		return ctx.Internal(err)
	}
	ctx.Created(uint64(id))
	ctx.Emit(tx.EventFactoryCreated, FactoryEvent{Factory: id, Address: ctx.Account, Enabled: true})
	return tx.TesSUCCESS
}

// FactorySetClient grants or revokes deploy rights. Manager only.
type FactorySetClient struct {
	tx.BaseTx

	Factory uint32        `json:"Factory"`
	Client  types.Address `json:"Client"`
}

// NewFactorySetClient creates a new FactorySetClient transaction
func NewFactorySetClient(account types.Address, factory uint32, client types.Address, enabled bool) *FactorySetClient {
	f := &FactorySetClient{
		BaseTx:  *tx.NewBaseTx(tx.TypeFactorySetClient, account),
		Factory: factory,
		Client:  client,
	}
	if !enabled {
		f.SetFlags(TfDisable)
	}
	return f
}

func (f *FactorySetClient) TxType() tx.Type {
	return tx.TypeFactorySetClient
}

func (f *FactorySetClient) Validate() error {
	if err := f.ValidateFlags(TfDisable); err != nil {
		return err
	}
	if f.Factory == 0 {
		return ErrMissingFactory
	}
	if f.Client.IsZero() {
		return ErrMissingClient
	}
	return nil
}

func (f *FactorySetClient) Apply(ctx *tx.ApplyContext) tx.Result {
	factory, result := loadFactory(ctx, f.Factory)
	if result != tx.TesSUCCESS {
		return result
	}
	if factory.Manager != ctx.Account {
		return tx.TecNO_PERMISSION
	}
	enabled := f.GetFlags()&TfDisable == 0
	client := &entries.FactoryClient{Factory: f.Factory, Client: f.Client, Enabled: enabled}
	if err := tx.WriteEntry(ctx.View, keylet.FactoryClient(f.Factory, f.Client), client); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventFactoryClientSet, FactoryEvent{Factory: f.Factory, Address: f.Client, Enabled: enabled})
	return tx.TesSUCCESS
}

// FactoryDeploy creates a ledger from the factory template, bound to
// Registry and owned by the caller. Clients only.
type FactoryDeploy struct {
	tx.BaseTx

	Factory  uint32 `json:"Factory"`
	Registry uint32 `json:"Registry"`
}

// NewFactoryDeploy creates a new FactoryDeploy transaction
func NewFactoryDeploy(account types.Address, factory, registry uint32) *FactoryDeploy {
	return &FactoryDeploy{
		BaseTx:   *tx.NewBaseTx(tx.TypeFactoryDeploy, account),
		Factory:  factory,
		Registry: registry,
	}
}

func (f *FactoryDeploy) TxType() tx.Type {
	return tx.TypeFactoryDeploy
}

func (f *FactoryDeploy) Validate() error {
	if err := f.ValidateFlags(0); err != nil {
		return err
	}
	if f.Factory == 0 {
		return ErrMissingFactory
	}
	if f.Registry == 0 {
		return ErrMissingRegistry
	}
	return nil
}

func (f *FactoryDeploy) Apply(ctx *tx.ApplyContext) tx.Result {
	factory, result := loadFactory(ctx, f.Factory)
	if result != tx.TesSUCCESS {
		return result
	}
	client := &entries.FactoryClient{}
	found, err := tx.ReadEntry(ctx.View, keylet.FactoryClient(f.Factory, ctx.Account), client)
	if err != nil {
		return ctx.Internal(err)
	}
	if !found || !client.Enabled {
		return tx.TecNO_PERMISSION
	}

	id, result := asset.CreateLedger(ctx, asset.LedgerTemplate{
		Owner:      ctx.Account,
		Registry:   f.Registry,
		Factory:    f.Factory,
		Decimals:   factory.Decimals,
		RoyaltyCap: factory.RoyaltyCap,
	})
	if result != tx.TesSUCCESS {
		return result
	}
	factory.Deployed = append(factory.Deployed, id)
	if err := tx.WriteEntry(ctx.View, keylet.Factory(f.Factory), factory); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

func loadFactory(ctx *tx.ApplyContext, id uint32) (*entries.Factory, tx.Result) {
	f := &entries.Factory{}
	found, err := tx.ReadEntry(ctx.View, keylet.Factory(id), f)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return f, tx.TesSUCCESS
}
