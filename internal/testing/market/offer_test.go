package market

import (
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	assettx "github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	markettx "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	moneytx "github.com/LeJamon/goPayloadd/internal/core/tx/money"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferCreate_ReservesBalance(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	f.list(t, f.offer(f.seller, f.asset).Amount(50).MinBuy(5).Price(10))
	jtx.RequireBalance(t, env, f.ledger, f.asset, f.seller, 100)
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 50)

	// A second listing cannot reach into the reserved half.
	result := env.Submit(f.offer(f.seller, f.asset).Amount(60).Build())
	jtx.RequireTxFail(t, result, "tecEXCEEDS_AVAILABLE_BALANCE")

	// Neither can a plain transfer.
	result = env.Submit(assettx.NewAssetTransfer(f.seller.Address, f.ledger, f.asset, f.buyer.Address, jtx.Units(60)))
	jtx.RequireTxFail(t, result, "tecEXCEEDS_AVAILABLE_BALANCE")

	env.MustSubmit(assettx.NewAssetTransfer(f.seller.Address, f.ledger, f.asset, f.buyer.Address, jtx.Units(50)))
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 0)
}

func TestOfferCreate_RequiresMarketOperator(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	env.MustSubmit(assettx.NewAssetTransfer(f.seller.Address, f.ledger, f.asset, f.buyer.Address, jtx.Units(10)))
	result := env.Submit(f.offer(f.buyer, f.asset).Amount(10).Build())
	jtx.RequireTxFail(t, result, "tecNO_PERMISSION")
}

func TestOfferCreate_Malformed(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name  string
		build *OfferBuilder
		code  string
	}{
		{"zero amount", f.offer(f.seller, f.asset).Amount(0), "temBAD_AMOUNT"},
		{"min buy above amount", f.offer(f.seller, f.asset).Amount(5).MinBuy(6), "temBELOW_MIN_BUY"},
		{"zero min buy", f.offer(f.seller, f.asset).Amount(5).MinBuy(0), "temBELOW_MIN_BUY"},
		{"negative price", f.offer(f.seller, f.asset).Amount(5).Price(-1), "temBAD_PRICE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, f.env.Submit(tt.build.Build()), tt.code)
		})
	}
}

func TestOfferCreate_PausedAsset(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	root := env.CreateAsset(f.creator, f.ledger, "paused", jtx.Units(10), jtx.StartPaused())
	env.AllowMarket(f.creator, f.ledger, f.market)

	// The creator may still move a paused asset; nobody else may.
	env.MustSubmit(assettx.NewAssetTransfer(f.creator.Address, f.ledger, root, f.seller.Address, jtx.Units(4)))
	result := env.Submit(f.offer(f.seller, root).Amount(4).Build())
	jtx.RequireTxFail(t, result, "tecASSET_PAUSED")

	f.list(t, f.offer(f.creator, root).Amount(6))
}

// Listing 50 of 100 and editing the amount: the new amount replaces the
// old one in the reservation.
func TestOfferEdit_ReplacesReservation(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(50).Price(10))

	result := env.Submit(Edit(f.seller, f.market, id, 101, 10, f.money))
	jtx.RequireTxFail(t, result, "tecEXCEEDS_AVAILABLE_BALANCE")
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 50)

	env.MustSubmit(Edit(f.seller, f.market, id, 100, 12, f.money))
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 0)

	o := env.Offer(f.market, id)
	assert.True(t, o.Amount.Equal(jtx.Units(100)))
	assert.True(t, o.Price.Equal(jtx.Price(12)))

	// Shrinking releases the difference.
	env.MustSubmit(Edit(f.seller, f.market, id, 30, 12, f.money))
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 70)
}

func TestOfferEdit_Permissions(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(50).MinBuy(10))

	jtx.RequireTxFail(t, env.Submit(Edit(f.buyer, f.market, id, 40, 1, f.money)), "tecNOT_OWNER")
	jtx.RequireTxFail(t, env.Submit(Edit(f.seller, f.market, id, 5, 1, f.money)), "tecBELOW_MIN_BUY")
	jtx.RequireTxFail(t, env.Submit(Edit(f.seller, f.market, id+1, 5, 1, f.money)), "tecNO_ENTRY")
	jtx.RequireTxFail(t, env.Submit(Edit(f.seller, f.market, id, 40, 1, f.money+1)), "tecNO_ENTRY")
}

func TestOfferBuy_Settles(t *testing.T) {
	f := newFixture(t, 250)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(50).MinBuy(5).Price(100))

	result := env.MustSubmit(Buy(f.buyer, f.market, id, 10))

	// 10 units at 100 = 1000; 2.5% operator fee; no royalties on a
	// seller-created asset.
	jtx.RequireBalance(t, env, f.ledger, f.asset, f.buyer, 10)
	jtx.RequireBalance(t, env, f.ledger, f.asset, f.seller, 90)
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 50)
	jtx.RequireMoney(t, env, f.money, f.buyer, 99_000)
	jtx.RequireMoney(t, env, f.money, f.operator, 25)
	jtx.RequireMoney(t, env, f.money, f.seller, 975)

	fills := result.EventsOf(tx.EventOfferFilled)
	require.Len(t, fills, 1)
	fill := fills[0].Data.(markettx.FillEvent)
	assert.True(t, fill.Total.Equal(jtx.Units(1000)))
	assert.True(t, fill.Remaining.Equal(jtx.Units(40)))
	assert.Empty(t, fill.Royalties)

	o := env.Offer(f.market, id)
	assert.Equal(t, entries.OfferOpen, o.Status)
	assert.True(t, o.Sold.Equal(jtx.Units(10)))
}

func TestOfferBuy_Bounds(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(12).MinBuy(5).Price(1))

	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 4)), "tecBELOW_MIN_BUY")
	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 13)), "tecAMOUNT_EXCEEDS_OFFER")
	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 0)), "temBAD_AMOUNT")

	env.MustSubmit(Buy(f.buyer, f.market, id, 9))

	// The last 3 units are below the minimum but may still be bought whole.
	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 2)), "tecBELOW_MIN_BUY")
	env.MustSubmit(Buy(f.buyer, f.market, id, 3))

	assert.Equal(t, entries.OfferFilled, env.Offer(f.market, id).Status)
	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 1)), "tecOFFER_EXHAUSTED_OR_CANCELED")
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 88)
}

func TestOfferBuy_Atomic(t *testing.T) {
	f := newFixture(t, 100)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(50).Price(100))

	t.Run("buyer not approved", func(t *testing.T) {
		env.Revoke(f.buyer)
		defer env.Approve(f.buyer)
		jtx.RequireNoStateChange(t, env, func() {
			jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 10)), "tecNOT_APPROVED")
		})
	})

	t.Run("allowance too small", func(t *testing.T) {
		env.MustSubmit(moneytx.NewMoneyApprove(f.buyer.Address, f.money, markettx.CustodyAddress(f.market), jtx.Units(999)))
		jtx.RequireNoStateChange(t, env, func() {
			jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 10)), "tecINSUFFICIENT_ALLOWANCE")
		})
	})

	t.Run("funds too small", func(t *testing.T) {
		poor := env.Account("poor")
		env.Approve(poor)
		env.Fund(f.money, f.issuer, jtx.Units(500), poor)
		env.AllowSpend(poor, f.money, f.market, jtx.Units(10_000))
		jtx.RequireNoStateChange(t, env, func() {
			jtx.RequireTxFail(t, env.Submit(Buy(poor, f.market, id, 10)), "tecINSUFFICIENT_FUNDS")
		})
	})

	assert.True(t, env.Offer(f.market, id).Amount.Equal(jtx.Units(50)))
}

func TestOfferPauseAndCancel(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(40).Price(1))

	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferPause(f.buyer.Address, f.market, id)), "tecNOT_OWNER")
	env.MustSubmit(markettx.NewOfferPause(f.seller.Address, f.market, id))
	assert.Equal(t, entries.OfferPaused, env.Offer(f.market, id).Status)
	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 5)), "tecOFFER_PAUSED")

	env.MustSubmit(markettx.NewOfferUnpause(f.seller.Address, f.market, id))
	env.MustSubmit(Buy(f.buyer, f.market, id, 5))

	env.MustSubmit(markettx.NewOfferCancel(f.seller.Address, f.market, id))
	assert.Equal(t, entries.OfferCanceled, env.Offer(f.market, id).Status)
	jtx.RequireAvailable(t, env, f.ledger, f.asset, f.seller, 95)

	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, f.market, id, 5)), "tecOFFER_EXHAUSTED_OR_CANCELED")
	jtx.RequireTxFail(t, env.Submit(Edit(f.seller, f.market, id, 5, 1, f.money)), "tecOFFER_EXHAUSTED_OR_CANCELED")
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferCancel(f.seller.Address, f.market, id)), "tecOFFER_EXHAUSTED_OR_CANCELED")
}

func TestMarketSetFee(t *testing.T) {
	f := newFixture(t, 100)
	env := f.env

	id := f.list(t, f.offer(f.seller, f.asset).Amount(50).Price(100))

	jtx.RequireTxFail(t, env.Submit(markettx.NewMarketSetFee(f.seller.Address, f.market, 0)), "tecNO_PERMISSION")
	jtx.RequireTxFail(t, env.Submit(markettx.NewMarketSetFee(f.operator.Address, f.market, 2600)), "temBAD_RATE")

	// Fees bind when the fill happens, not when the offer was listed.
	env.MustSubmit(markettx.NewMarketSetFee(f.operator.Address, f.market, 1000))
	env.MustSubmit(Buy(f.buyer, f.market, id, 10))
	jtx.RequireMoney(t, env, f.money, f.operator, 100)
	jtx.RequireMoney(t, env, f.money, f.seller, 900)
}

func TestMarketCreate(t *testing.T) {
	env := jtx.NewTestEnv(t)
	op := env.Account("operator")

	jtx.RequireTxFail(t, env.Submit(markettx.NewMarketCreate(op.Address, 10_001, false)), "temBAD_RATE")
	jtx.RequireTxFail(t, env.Submit(markettx.NewMarketCreate(op.Address, 2501, false)), "temBAD_RATE")

	first := env.CreateMarket(op, 2500, false)
	second := env.CreateMarket(op, 0, true)
	assert.Equal(t, first+1, second)

	m, err := env.Service().Market(second)
	require.NoError(t, err)
	assert.Equal(t, entries.MarketEscrow, m.Kind)
	assert.Equal(t, markettx.CustodyAddress(second), m.Address)
	assert.NotEqual(t, markettx.CustodyAddress(first), m.Address)
}

func TestOfferBuy_WrongMarketKind(t *testing.T) {
	f := newFixture(t, 0)
	env := f.env

	escrow := env.CreateMarket(f.operator, 0, true)
	env.AllowMarket(f.seller, f.ledger, escrow)
	id := env.MustSubmit(Offer(f.seller, escrow, f.ledger, f.asset, f.money).Amount(10).Build()).ID()

	jtx.RequireTxFail(t, env.Submit(Buy(f.buyer, escrow, id, 1)), "tecMARKET_KIND")
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferRequestBuy(f.buyer.Address, f.market, id, jtx.Units(1))), "tecMARKET_KIND")
}
