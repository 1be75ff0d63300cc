package market

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

var errOverdistributed = errors.New("fee and royalties exceed sale total")

// RoyaltyShare is one generation's slice of a sale.
type RoyaltyShare struct {
	AssetID uint64          `json:"asset_id"`
	Creator types.Address   `json:"creator"`
	Rate    uint32          `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// Split is the distribution of one fill's proceeds. The parts always sum
// to Total.
type Split struct {
	Total          decimal.Decimal `json:"total"`
	OperatorFee    decimal.Decimal `json:"operator_fee"`
	Royalties      []RoyaltyShare  `json:"royalties,omitempty"`
	SellerProceeds decimal.Decimal `json:"seller_proceeds"`
}

// SaleTotal is the price of amount base units at price money units per
// whole asset unit, rounded down.
func SaleTotal(amount, price decimal.Decimal, decimals uint8) decimal.Decimal {
	return tx.FloorDiv(amount.Mul(price), tx.Unit(decimals))
}

// ComputeSplit distributes total between the market operator, up to depth
// royalty-bearing generations starting at a, and the seller. A generation
// created by the seller pays nothing but still counts toward depth.
func ComputeSplit(ctx *tx.ApplyContext, a *entries.Asset, seller types.Address, total decimal.Decimal, feeRate uint32) (Split, tx.Result) {
	split := Split{
		Total:       total,
		OperatorFee: tx.ApplyRate(total, feeRate),
	}
	remaining := total.Sub(split.OperatorFee)

	current := a
	for paid := 0; paid < ctx.Config.RoyaltyDepth; {
		if current.RoyaltyRate != 0 {
			paid++
			if current.Creator != seller {
				share := tx.ApplyRate(total, current.RoyaltyRate)
				split.Royalties = append(split.Royalties, RoyaltyShare{
					AssetID: current.ID,
					Creator: current.Creator,
					Rate:    current.RoyaltyRate,
					Amount:  share,
				})
				remaining = remaining.Sub(share)
			}
		}
		next := current.Ancestor()
		if next == 0 {
			break
		}
		parent, result := asset.Load(ctx, current.Ledger, next)
		if result != tx.TesSUCCESS {
			return Split{}, result
		}
		current = parent
	}

	if remaining.IsNegative() {
		return Split{}, ctx.Internal(errOverdistributed)
	}
	split.SellerProceeds = remaining
	return split, tx.TesSUCCESS
}

// pay moves each part of split from payer to its beneficiary.
func pay(ctx *tx.ApplyContext, token uint32, payer, operator, seller types.Address, split Split) tx.Result {
	if result := money.Move(ctx, token, payer, operator, split.OperatorFee); result != tx.TesSUCCESS {
		return result
	}
	for _, r := range split.Royalties {
		if result := money.Move(ctx, token, payer, r.Creator, r.Amount); result != tx.TesSUCCESS {
			return result
		}
	}
	return money.Move(ctx, token, payer, seller, split.SellerProceeds)
}

// FillEvent is emitted when part of an offer is sold.
type FillEvent struct {
	Market    uint32          `json:"market"`
	OfferID   uint64          `json:"offer_id"`
	RequestID uint64          `json:"request_id,omitempty"`
	Seller    types.Address   `json:"seller"`
	Buyer     types.Address   `json:"buyer"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
	Split
}

// settle releases amount from the seller's reservation, moves it to the
// buyer and computes the split of total. The offer must already reflect
// the fill. Paying the split is left to the caller.
func settle(ctx *tx.ApplyContext, m *entries.Market, o *entries.Offer, buyer types.Address, amount, total decimal.Decimal) (Split, tx.Result) {
	a, result := asset.Load(ctx, o.Ledger, o.AssetID)
	if result != tx.TesSUCCESS {
		return Split{}, result
	}
	if result := asset.Reserve(ctx, o.Ledger, o.AssetID, o.Seller, amount.Neg()); result != tx.TesSUCCESS {
		return Split{}, result
	}
	if result := asset.Move(ctx, a, o.Seller, buyer, amount); result != tx.TesSUCCESS {
		return Split{}, result
	}
	return ComputeSplit(ctx, a, o.Seller, total, m.FeeRate)
}

// checkFillable applies the fill preconditions shared by buy and requestBuy.
func checkFillable(o *entries.Offer, amount decimal.Decimal) tx.Result {
	if o.Canceled || o.Exhausted() {
		return tx.TecOFFER_EXHAUSTED_OR_CANCELED
	}
	if o.Paused {
		return tx.TecOFFER_PAUSED
	}
	if amount.GreaterThan(o.Amount) {
		return tx.TecAMOUNT_EXCEEDS_OFFER
	}
	if amount.LessThan(o.MinBuyAmount) && !amount.Equal(o.Amount) {
		return tx.TecBELOW_MIN_BUY
	}
	return tx.TesSUCCESS
}

// saleTotal prices amount of an offer in its money token.
func saleTotal(ctx *tx.ApplyContext, o *entries.Offer, amount decimal.Decimal) (decimal.Decimal, tx.Result) {
	root, result := ctx.Ledger(o.Ledger)
	if result != tx.TesSUCCESS {
		return decimal.Zero, result
	}
	return SaleTotal(amount, o.Price, root.Decimals), tx.TesSUCCESS
}
