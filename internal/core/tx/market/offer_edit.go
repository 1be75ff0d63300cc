package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeOfferEdit, func() tx.Transaction {
		return &OfferEdit{BaseTx: *tx.NewBaseTx(tx.TypeOfferEdit, types.ZeroAddress)}
	})
}

// OfferEdit replaces the terms of an open offer. The new Amount replaces the
// old one in the seller's reservation.
type OfferEdit struct {
	tx.BaseTx

	Market  uint32          `json:"Market"`
	OfferID uint64          `json:"OfferID"`
	Amount  decimal.Decimal `json:"Amount"`
	Price   decimal.Decimal `json:"Price"`
	Money   uint32          `json:"Money"`

	// MinBuyAmount keeps the current minimum when omitted
	MinBuyAmount decimal.Decimal `json:"MinBuyAmount,omitempty"`
}

// NewOfferEdit creates a new OfferEdit transaction
func NewOfferEdit(account types.Address, market uint32, offerID uint64, amount, price decimal.Decimal, token uint32) *OfferEdit {
	return &OfferEdit{
		BaseTx:  *tx.NewBaseTx(tx.TypeOfferEdit, account),
		Market:  market,
		OfferID: offerID,
		Amount:  amount,
		Price:   price,
		Money:   token,
	}
}

// TxType returns the transaction type
func (e *OfferEdit) TxType() tx.Type {
	return tx.TypeOfferEdit
}

// Validate validates the OfferEdit transaction
func (e *OfferEdit) Validate() error {
	if err := e.ValidateFlags(0); err != nil {
		return err
	}
	if e.Market == 0 {
		return ErrMissingMarket
	}
	if e.OfferID == 0 {
		return ErrMissingOffer
	}
	if e.Money == 0 {
		return ErrMissingMoney
	}
	if !e.MinBuyAmount.IsZero() {
		return validateTerms(e.Amount, e.MinBuyAmount, e.Price)
	}
	if !tx.IsPositiveBaseUnits(e.Amount) {
		return ErrBadAmount
	}
	if !tx.IsBaseUnits(e.Price) {
		return ErrBadPrice
	}
	return nil
}

// Apply re-submits the offer.
func (e *OfferEdit) Apply(ctx *tx.ApplyContext) tx.Result {
	o, result := loadOffer(ctx, e.Market, e.OfferID)
	if result != tx.TesSUCCESS {
		return result
	}
	if o.Seller != ctx.Account {
		return tx.TecNOT_OWNER
	}
	if o.Canceled || o.Exhausted() {
		return tx.TecOFFER_EXHAUSTED_OR_CANCELED
	}
	minBuy := o.MinBuyAmount
	if !e.MinBuyAmount.IsZero() {
		minBuy = e.MinBuyAmount
	}
	if e.Amount.LessThan(minBuy) {
		return tx.TecBELOW_MIN_BUY
	}
	if _, result := money.Load(ctx, e.Money); result != tx.TesSUCCESS {
		return result
	}

	// Reserved = others + old; the edit must fit others + new.
	delta := e.Amount.Sub(o.Amount)
	if result := asset.Reserve(ctx, o.Ledger, o.AssetID, o.Seller, delta); result != tx.TesSUCCESS {
		return result
	}

	o.Amount = e.Amount
	o.MinBuyAmount = minBuy
	o.Price = e.Price
	o.Money = e.Money
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventOfferEdited, newOfferEvent(o))
	return tx.TesSUCCESS
}
