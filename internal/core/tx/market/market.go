package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeMarketCreate, func() tx.Transaction {
		return &MarketCreate{BaseTx: *tx.NewBaseTx(tx.TypeMarketCreate, types.ZeroAddress)}
	})
	tx.Register(tx.TypeMarketSetFee, func() tx.Transaction {
		return &MarketSetFee{BaseTx: *tx.NewBaseTx(tx.TypeMarketSetFee, types.ZeroAddress)}
	})
}

// CustodyAddress is the account a market holds escrowed funds under and
// the operator sellers approve.
func CustodyAddress(id uint32) types.Address {
	return types.AddressFromKey(keylet.Market(id).Key)
}

// MarketCreate opens a marketplace operated by the caller.
type MarketCreate struct {
	tx.BaseTx

	// FeeRate is the operator fee in basis points of each fill
	FeeRate uint32 `json:"FeeRate"`
}

// MarketEvent is emitted when a market is created or its fee changes.
type MarketEvent struct {
	ID       uint32        `json:"id"`
	Operator types.Address `json:"operator"`
	Address  types.Address `json:"address"`
	FeeRate  uint32        `json:"fee_rate"`
	Kind     string        `json:"kind"`
}

// NewMarketCreate creates a new MarketCreate transaction
func NewMarketCreate(account types.Address, feeRate uint32, escrow bool) *MarketCreate {
	m := &MarketCreate{
		BaseTx:  *tx.NewBaseTx(tx.TypeMarketCreate, account),
		FeeRate: feeRate,
	}
	if escrow {
		m.SetFlags(TfEscrow)
	}
	return m
}

// TxType returns the transaction type
func (m *MarketCreate) TxType() tx.Type {
	return tx.TypeMarketCreate
}

// Validate validates the MarketCreate transaction
func (m *MarketCreate) Validate() error {
	if err := m.ValidateFlags(TfEscrow); err != nil {
		return err
	}
	if m.FeeRate > tx.BasisPoints {
		return ErrBadFee
	}
	return nil
}

// Apply creates the market.
func (m *MarketCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	if m.FeeRate > ctx.Config.MaxFeeRate {
		return tx.TemBAD_RATE
	}
	id, err := tx.NextID(ctx.View, func(s *entries.Sequences) *uint32 { return &s.Market })
	if err != nil {
		return ctx.Internal(err)
	}
	kind := entries.MarketInstant
	if m.GetFlags()&TfEscrow != 0 {
		kind = entries.MarketEscrow
	}
	market := &entries.Market{
		ID:            id,
		Operator:      ctx.Account,
		Address:       CustodyAddress(id),
		FeeRate:       m.FeeRate,
		Kind:          kind,
		NextOfferID:   1,
		NextRequestID: 1,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Market(id), market); err != nil {
		return ctx.Internal(err)
	}
	ctx.Created(uint64(id))
	ctx.Emit(tx.EventMarketCreated, newMarketEvent(market))
	return tx.TesSUCCESS
}

// MarketSetFee changes the operator fee for future fills. Operator only.
type MarketSetFee struct {
	tx.BaseTx

	Market  uint32 `json:"Market"`
	FeeRate uint32 `json:"FeeRate"`
}

// NewMarketSetFee creates a new MarketSetFee transaction
func NewMarketSetFee(account types.Address, market, feeRate uint32) *MarketSetFee {
	return &MarketSetFee{
		BaseTx:  *tx.NewBaseTx(tx.TypeMarketSetFee, account),
		Market:  market,
		FeeRate: feeRate,
	}
}

// TxType returns the transaction type
func (m *MarketSetFee) TxType() tx.Type {
	return tx.TypeMarketSetFee
}

// Validate validates the MarketSetFee transaction
func (m *MarketSetFee) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	if m.Market == 0 {
		return ErrMissingMarket
	}
	if m.FeeRate > tx.BasisPoints {
		return ErrBadFee
	}
	return nil
}

// Apply updates the fee.
func (m *MarketSetFee) Apply(ctx *tx.ApplyContext) tx.Result {
	market, result := loadMarket(ctx, m.Market)
	if result != tx.TesSUCCESS {
		return result
	}
	if market.Operator != ctx.Account {
		return tx.TecNO_PERMISSION
	}
	if m.FeeRate > ctx.Config.MaxFeeRate {
		return tx.TemBAD_RATE
	}
	market.FeeRate = m.FeeRate
	if result := saveMarket(ctx, market); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventMarketFeeSet, newMarketEvent(market))
	return tx.TesSUCCESS
}

func newMarketEvent(m *entries.Market) MarketEvent {
	return MarketEvent{
		ID:       m.ID,
		Operator: m.Operator,
		Address:  m.Address,
		FeeRate:  m.FeeRate,
		Kind:     m.Kind.String(),
	}
}

func loadMarket(ctx *tx.ApplyContext, id uint32) (*entries.Market, tx.Result) {
	m := &entries.Market{}
	found, err := tx.ReadEntry(ctx.View, keylet.Market(id), m)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return m, tx.TesSUCCESS
}

func saveMarket(ctx *tx.ApplyContext, m *entries.Market) tx.Result {
	if err := tx.WriteEntry(ctx.View, keylet.Market(m.ID), m); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

func loadOffer(ctx *tx.ApplyContext, market uint32, id uint64) (*entries.Offer, tx.Result) {
	o := &entries.Offer{}
	found, err := tx.ReadEntry(ctx.View, keylet.Offer(market, id), o)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return o, tx.TesSUCCESS
}

func saveOffer(ctx *tx.ApplyContext, o *entries.Offer) tx.Result {
	if err := tx.WriteEntry(ctx.View, keylet.Offer(o.Market, o.ID), o); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

func loadRequest(ctx *tx.ApplyContext, market uint32, id uint64) (*entries.BuyRequest, tx.Result) {
	r := &entries.BuyRequest{}
	found, err := tx.ReadEntry(ctx.View, keylet.BuyRequest(market, id), r)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return r, tx.TesSUCCESS
}

func saveRequest(ctx *tx.ApplyContext, r *entries.BuyRequest) tx.Result {
	if err := tx.WriteEntry(ctx.View, keylet.BuyRequest(r.Market, r.ID), r); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}
