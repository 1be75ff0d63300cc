// Package market provides offer builders and integration tests for the
// instant marketplace.
package market

import (
	markettx "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
	"github.com/shopspring/decimal"
)

// OfferBuilder provides a fluent interface for building OfferCreate transactions.
type OfferBuilder struct {
	seller  *jtx.Account
	market  uint32
	ledger  uint32
	assetID uint64
	money   uint32
	amount  decimal.Decimal
	minBuy  decimal.Decimal
	price   decimal.Decimal
}

// Offer starts an offer of one base unit at price zero. MinBuy defaults
// to one base unit.
func Offer(seller *jtx.Account, market, ledger uint32, assetID uint64, money uint32) *OfferBuilder {
	return &OfferBuilder{
		seller:  seller,
		market:  market,
		ledger:  ledger,
		assetID: assetID,
		money:   money,
		amount:  jtx.Units(1),
		minBuy:  jtx.Units(1),
		price:   decimal.Zero,
	}
}

// Amount sets the listed amount in base units.
func (b *OfferBuilder) Amount(n int64) *OfferBuilder {
	b.amount = jtx.Units(n)
	return b
}

// MinBuy sets the minimum fill in base units.
func (b *OfferBuilder) MinBuy(n int64) *OfferBuilder {
	b.minBuy = jtx.Units(n)
	return b
}

// Price sets the money base units paid per whole asset unit.
func (b *OfferBuilder) Price(n int64) *OfferBuilder {
	b.price = jtx.Price(n)
	return b
}

// Build constructs the OfferCreate transaction.
func (b *OfferBuilder) Build() *markettx.OfferCreate {
	return markettx.NewOfferCreate(b.seller.Address, b.market, b.ledger, b.assetID, b.amount, b.minBuy, b.price, b.money)
}

// Buy builds an instant fill.
func Buy(buyer *jtx.Account, market uint32, offerID uint64, amount int64) *markettx.OfferBuy {
	return markettx.NewOfferBuy(buyer.Address, market, offerID, jtx.Units(amount))
}

// Edit builds an offer edit keeping the current minimum buy amount.
func Edit(seller *jtx.Account, market uint32, offerID uint64, amount, price int64, money uint32) *markettx.OfferEdit {
	return markettx.NewOfferEdit(seller.Address, market, offerID, jtx.Units(amount), jtx.Price(price), money)
}
