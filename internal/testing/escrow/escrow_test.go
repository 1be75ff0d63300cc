// Package escrow_test contains integration tests for escrowed buy requests.
package escrow_test

import (
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	markettx "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
	"github.com/LeJamon/goPayloadd/internal/testing/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type escrowEnv struct {
	env      *jtx.TestEnv
	seller   *jtx.Account
	buyer    *jtx.Account
	operator *jtx.Account
	issuer   *jtx.Account

	ledger  uint32
	asset   uint64
	money   uint32
	market  uint32
	custody *jtx.Account
	offer   uint64
}

// setup lists 40 of the seller's 100 units at 100 per unit on an escrow
// market with a 5% fee.
func setup(t *testing.T) *escrowEnv {
	t.Helper()
	env := jtx.NewTestEnv(t)
	e := &escrowEnv{
		env:      env,
		seller:   env.Account("seller"),
		buyer:    env.Account("buyer"),
		operator: env.Account("operator"),
		issuer:   env.Account("issuer"),
	}
	env.Approve(e.seller, e.buyer)

	e.ledger = env.CreateLedger(e.seller, 0)
	e.asset = env.CreateAsset(e.seller, e.ledger, "sat", jtx.Units(100))
	e.money = env.CreateMoney(e.issuer, "USD", 2, jtx.Units(50_000))
	env.Fund(e.money, e.issuer, jtx.Units(10_000), e.buyer)

	e.market = env.CreateMarket(e.operator, 500, true)
	e.custody = &jtx.Account{Name: "custody", Address: markettx.CustodyAddress(e.market)}
	env.AllowMarket(e.seller, e.ledger, e.market)
	env.AllowSpend(e.buyer, e.money, e.market, jtx.Units(10_000))

	e.offer = env.MustSubmit(market.Offer(e.seller, e.market, e.ledger, e.asset, e.money).Amount(40).MinBuy(5).Price(100).Build()).ID()
	return e
}

func (e *escrowEnv) request(t *testing.T, amount int64) uint64 {
	t.Helper()
	return e.env.MustSubmit(markettx.NewOfferRequestBuy(e.buyer.Address, e.market, e.offer, jtx.Units(amount))).ID()
}

func (e *escrowEnv) buyRequest(t *testing.T, id uint64) *entries.BuyRequest {
	t.Helper()
	r, err := e.env.Service().BuyRequest(e.market, id)
	require.NoError(t, err)
	return r
}

func TestRequestBuy_EscrowsPayment(t *testing.T) {
	e := setup(t)
	env := e.env

	id := e.request(t, 10)

	jtx.RequireMoney(t, env, e.money, e.buyer, 9_000)
	jtx.RequireMoney(t, env, e.money, e.custody, 1_000)
	jtx.RequireBalance(t, env, e.ledger, e.asset, e.seller, 100)
	jtx.RequireAvailable(t, env, e.ledger, e.asset, e.seller, 60)

	o := env.Offer(e.market, e.offer)
	assert.True(t, o.Amount.Equal(jtx.Units(30)))
	assert.True(t, o.Pending.Equal(jtx.Units(10)))

	r := e.buyRequest(t, id)
	assert.Equal(t, entries.RequestPending, r.Status)
	assert.True(t, r.Total.Equal(jtx.Units(1000)))

	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferRequestBuy(e.buyer.Address, e.market, e.offer, jtx.Units(31))), "tecAMOUNT_EXCEEDS_OFFER")
}

func TestApproveBuy_Settles(t *testing.T) {
	e := setup(t)
	env := e.env

	id := e.request(t, 10)

	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferApproveBuy(e.buyer.Address, e.market, id)), "tecNOT_OWNER")

	result := env.MustSubmit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, id))
	fills := result.EventsOf(tx.EventOfferFilled)
	require.Len(t, fills, 1)
	assert.Equal(t, id, fills[0].Data.(markettx.FillEvent).RequestID)

	jtx.RequireBalance(t, env, e.ledger, e.asset, e.buyer, 10)
	jtx.RequireBalance(t, env, e.ledger, e.asset, e.seller, 90)
	jtx.RequireAvailable(t, env, e.ledger, e.asset, e.seller, 60)
	jtx.RequireMoney(t, env, e.money, e.custody, 0)
	jtx.RequireMoney(t, env, e.money, e.operator, 50)
	jtx.RequireMoney(t, env, e.money, e.seller, 950)

	assert.Equal(t, entries.RequestApproved, e.buyRequest(t, id).Status)
	o := env.Offer(e.market, e.offer)
	assert.True(t, o.Pending.IsZero())
	assert.True(t, o.Sold.Equal(jtx.Units(10)))

	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, id)), "tecNO_PENDING_REQUEST")
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferCancelRequest(e.buyer.Address, e.market, id)), "tecNO_PENDING_REQUEST")
}

func TestCancelRequest(t *testing.T) {
	for _, who := range []string{"buyer", "seller"} {
		t.Run(who, func(t *testing.T) {
			e := setup(t)
			env := e.env
			id := e.request(t, 10)

			stranger := env.Account("stranger")
			jtx.RequireTxFail(t, env.Submit(markettx.NewOfferCancelRequest(stranger.Address, e.market, id)), "tecNO_PERMISSION")

			env.MustSubmit(markettx.NewOfferCancelRequest(env.Account(who).Address, e.market, id))

			jtx.RequireMoney(t, env, e.money, e.buyer, 10_000)
			jtx.RequireMoney(t, env, e.money, e.custody, 0)
			assert.Equal(t, entries.RequestCanceled, e.buyRequest(t, id).Status)

			o := env.Offer(e.market, e.offer)
			assert.True(t, o.Amount.Equal(jtx.Units(40)))
			assert.True(t, o.Pending.IsZero())
			jtx.RequireAvailable(t, env, e.ledger, e.asset, e.seller, 60)

			jtx.RequireTxFail(t, env.Submit(markettx.NewOfferCancelRequest(e.buyer.Address, e.market, id)), "tecNO_PENDING_REQUEST")
		})
	}
}

func TestCancelOffer_BlockedByPendingRequest(t *testing.T) {
	e := setup(t)
	env := e.env

	id := e.request(t, 10)
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferCancel(e.seller.Address, e.market, e.offer)), "tecHAS_OBLIGATIONS")

	env.MustSubmit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, id))
	env.MustSubmit(markettx.NewOfferCancel(e.seller.Address, e.market, e.offer))
	jtx.RequireAvailable(t, env, e.ledger, e.asset, e.seller, 90)
}

// The request total is fixed when the buyer pays it into custody; later
// price edits only affect new requests.
func TestRequestTotal_FixedAtRequest(t *testing.T) {
	e := setup(t)
	env := e.env

	id := e.request(t, 10)
	env.MustSubmit(market.Edit(e.seller, e.market, e.offer, 30, 300, e.money))

	env.MustSubmit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, id))
	jtx.RequireMoney(t, env, e.money, e.seller, 950)
	jtx.RequireMoney(t, env, e.money, e.buyer, 9_000)

	second := e.request(t, 5)
	assert.True(t, e.buyRequest(t, second).Total.Equal(decimal.NewFromInt(1500)))
}

// The last units of an offer can be requested even below the minimum, and
// an offer whose remainder is all pending reads as open until settled.
func TestRequestBuy_Remainder(t *testing.T) {
	e := setup(t)
	env := e.env

	first := e.request(t, 37)
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferRequestBuy(e.buyer.Address, e.market, e.offer, jtx.Units(2))), "tecBELOW_MIN_BUY")
	second := e.request(t, 3)
	assert.Equal(t, first+1, second)

	assert.Equal(t, entries.OfferOpen, env.Offer(e.market, e.offer).Status)
	env.MustSubmit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, first))
	env.MustSubmit(markettx.NewOfferApproveBuy(e.seller.Address, e.market, second))
	assert.Equal(t, entries.OfferFilled, env.Offer(e.market, e.offer).Status)

	jtx.RequireBalance(t, env, e.ledger, e.asset, e.buyer, 40)
	jtx.RequireAvailable(t, env, e.ledger, e.asset, e.seller, 60)
}
