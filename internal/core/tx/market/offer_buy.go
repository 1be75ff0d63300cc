package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeOfferBuy, func() tx.Transaction {
		return &OfferBuy{BaseTx: *tx.NewBaseTx(tx.TypeOfferBuy, types.ZeroAddress)}
	})
}

// OfferBuy fills part of an offer on an instant market. The buyer pays
// through an allowance granted to the market's custody address.
type OfferBuy struct {
	tx.BaseTx

	Market  uint32          `json:"Market"`
	OfferID uint64          `json:"OfferID"`
	Amount  decimal.Decimal `json:"Amount"`
}

// NewOfferBuy creates a new OfferBuy transaction
func NewOfferBuy(account types.Address, market uint32, offerID uint64, amount decimal.Decimal) *OfferBuy {
	return &OfferBuy{
		BaseTx:  *tx.NewBaseTx(tx.TypeOfferBuy, account),
		Market:  market,
		OfferID: offerID,
		Amount:  amount,
	}
}

// TxType returns the transaction type
func (b *OfferBuy) TxType() tx.Type {
	return tx.TypeOfferBuy
}

// Validate validates the OfferBuy transaction
func (b *OfferBuy) Validate() error {
	if err := b.ValidateFlags(0); err != nil {
		return err
	}
	return validateFillRef(b.Market, b.OfferID, b.Amount)
}

func validateFillRef(market uint32, offerID uint64, amount decimal.Decimal) error {
	if market == 0 {
		return ErrMissingMarket
	}
	if offerID == 0 {
		return ErrMissingOffer
	}
	if !tx.IsPositiveBaseUnits(amount) {
		return ErrBadAmount
	}
	return nil
}

// Apply executes the fill.
func (b *OfferBuy) Apply(ctx *tx.ApplyContext) tx.Result {
	m, result := loadMarket(ctx, b.Market)
	if result != tx.TesSUCCESS {
		return result
	}
	if m.Kind != entries.MarketInstant {
		return tx.TecMARKET_KIND
	}
	o, result := loadOffer(ctx, b.Market, b.OfferID)
	if result != tx.TesSUCCESS {
		return result
	}
	if result := checkFillable(o, b.Amount); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.RequireApproved(o.Ledger, ctx.Account); result != tx.TesSUCCESS {
		return result
	}
	total, result := saleTotal(ctx, o, b.Amount)
	if result != tx.TesSUCCESS {
		return result
	}

	o.Amount = o.Amount.Sub(b.Amount)
	o.Sold = o.Sold.Add(b.Amount)
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}

	split, result := settle(ctx, m, o, ctx.Account, b.Amount, total)
	if result != tx.TesSUCCESS {
		return result
	}

	// The buyer's allowance to the market covers the whole total.
	if result := money.SpendAllowance(ctx, o.Money, ctx.Account, m.Address, total); result != tx.TesSUCCESS {
		return result
	}
	if result := pay(ctx, o.Money, ctx.Account, m.Operator, o.Seller, split); result != tx.TesSUCCESS {
		return result
	}

	ctx.Emit(tx.EventOfferFilled, FillEvent{
		Market:    m.ID,
		OfferID:   o.ID,
		Seller:    o.Seller,
		Buyer:     ctx.Account,
		Amount:    b.Amount,
		Remaining: o.Amount,
		Split:     split,
	})
	return tx.TesSUCCESS
}
