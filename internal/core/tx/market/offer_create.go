package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeOfferCreate, func() tx.Transaction {
		return &OfferCreate{BaseTx: *tx.NewBaseTx(tx.TypeOfferCreate, types.ZeroAddress)}
	})
}

// OfferCreate lists part of the caller's balance for sale.
type OfferCreate struct {
	tx.BaseTx

	Market       uint32          `json:"Market"`
	Ledger       uint32          `json:"Ledger"`
	AssetID      uint64          `json:"AssetID"`
	Amount       decimal.Decimal `json:"Amount"`
	MinBuyAmount decimal.Decimal `json:"MinBuyAmount"`

	// Price is in money base units per whole asset unit
	Price decimal.Decimal `json:"Price"`
	Money uint32          `json:"Money"`
}

// OfferEvent describes an offer after it was created or changed.
type OfferEvent struct {
	Market       uint32              `json:"market"`
	ID           uint64              `json:"id"`
	Seller       types.Address       `json:"seller"`
	Ledger       uint32              `json:"ledger"`
	AssetID      uint64              `json:"asset_id"`
	Amount       decimal.Decimal     `json:"amount"`
	MinBuyAmount decimal.Decimal     `json:"min_buy_amount"`
	Price        decimal.Decimal     `json:"price"`
	Money        uint32              `json:"money"`
	Status       entries.OfferStatus `json:"status"`
}

func newOfferEvent(o *entries.Offer) OfferEvent {
	return OfferEvent{
		Market:       o.Market,
		ID:           o.ID,
		Seller:       o.Seller,
		Ledger:       o.Ledger,
		AssetID:      o.AssetID,
		Amount:       o.Amount,
		MinBuyAmount: o.MinBuyAmount,
		Price:        o.Price,
		Money:        o.Money,
		Status:       o.Status(),
	}
}

// NewOfferCreate creates a new OfferCreate transaction
func NewOfferCreate(account types.Address, market, ledger uint32, id uint64, amount, minBuy, price decimal.Decimal, token uint32) *OfferCreate {
	return &OfferCreate{
		BaseTx:       *tx.NewBaseTx(tx.TypeOfferCreate, account),
		Market:       market,
		Ledger:       ledger,
		AssetID:      id,
		Amount:       amount,
		MinBuyAmount: minBuy,
		Price:        price,
		Money:        token,
	}
}

// TxType returns the transaction type
func (o *OfferCreate) TxType() tx.Type {
	return tx.TypeOfferCreate
}

// Validate validates the OfferCreate transaction
func (o *OfferCreate) Validate() error {
	if err := o.ValidateFlags(0); err != nil {
		return err
	}
	if o.Market == 0 {
		return ErrMissingMarket
	}
	if o.Ledger == 0 {
		return ErrMissingLedger
	}
	if o.AssetID == 0 {
		return ErrMissingAssetID
	}
	if o.Money == 0 {
		return ErrMissingMoney
	}
	return validateTerms(o.Amount, o.MinBuyAmount, o.Price)
}

func validateTerms(amount, minBuy, price decimal.Decimal) error {
	if !tx.IsPositiveBaseUnits(amount) {
		return ErrBadAmount
	}
	if !tx.IsPositiveBaseUnits(minBuy) || minBuy.GreaterThan(amount) {
		return ErrBadMinBuy
	}
	if !tx.IsBaseUnits(price) {
		return ErrBadPrice
	}
	return nil
}

// Apply records the offer and reserves the listed amount.
func (o *OfferCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	m, result := loadMarket(ctx, o.Market)
	if result != tx.TesSUCCESS {
		return result
	}
	a, result := asset.Load(ctx, o.Ledger, o.AssetID)
	if result != tx.TesSUCCESS {
		return result
	}
	if a.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if a.Paused && a.Creator != ctx.Account {
		return tx.TecASSET_PAUSED
	}
	approved, err := asset.IsOperator(ctx.View, o.Ledger, ctx.Account, m.Address)
	if err != nil {
		return ctx.Internal(err)
	}
	if !approved {
		return tx.TecNO_PERMISSION
	}
	if _, result := money.Load(ctx, o.Money); result != tx.TesSUCCESS {
		return result
	}
	if result := asset.Reserve(ctx, o.Ledger, o.AssetID, ctx.Account, o.Amount); result != tx.TesSUCCESS {
		return result
	}

	offer := &entries.Offer{
		Market:       m.ID,
		ID:           m.NextOfferID,
		Seller:       ctx.Account,
		Ledger:       o.Ledger,
		AssetID:      o.AssetID,
		Amount:       o.Amount,
		MinBuyAmount: o.MinBuyAmount,
		Price:        o.Price,
		Money:        o.Money,
		Pending:      decimal.Zero,
		Sold:         decimal.Zero,
	}
	if offer.ID == 0 {
		offer.ID = 1
	}
	m.NextOfferID = offer.ID + 1
	if result := saveMarket(ctx, m); result != tx.TesSUCCESS {
		return result
	}
	if err := tx.InsertEntry(ctx.View, keylet.Offer(m.ID, offer.ID), offer); err != nil {
		return ctx.Internal(err)
	}

	ctx.Created(offer.ID)
	ctx.Emit(tx.EventOfferCreated, newOfferEvent(offer))
	return tx.TesSUCCESS
}
