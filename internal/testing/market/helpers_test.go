package market

import (
	"testing"

	jtx "github.com/LeJamon/goPayloadd/internal/testing"
)

// fixture is an approved seller holding 100 units of a plain asset on a
// zero-decimal ledger, a funded buyer and an instant market.
type fixture struct {
	env      *jtx.TestEnv
	creator  *jtx.Account
	seller   *jtx.Account
	buyer    *jtx.Account
	operator *jtx.Account
	issuer   *jtx.Account

	ledger uint32
	asset  uint64
	money  uint32
	market uint32
}

func newFixture(t *testing.T, feeRate uint32, opts ...jtx.Option) *fixture {
	t.Helper()
	env := jtx.NewTestEnv(t, opts...)
	f := &fixture{
		env:      env,
		creator:  env.Account("creator"),
		seller:   env.Account("seller"),
		buyer:    env.Account("buyer"),
		operator: env.Account("operator"),
		issuer:   env.Account("issuer"),
	}
	env.Approve(f.creator, f.seller, f.buyer)

	f.ledger = env.CreateLedger(f.creator, 0)
	f.asset = env.CreateAsset(f.seller, f.ledger, "bay", jtx.Units(100))
	f.money = env.CreateMoney(f.issuer, "USD", 2, jtx.Units(1_000_000))
	env.Fund(f.money, f.issuer, jtx.Units(100_000), f.buyer)

	f.market = env.CreateMarket(f.operator, feeRate, false)
	env.AllowMarket(f.seller, f.ledger, f.market)
	env.AllowSpend(f.buyer, f.money, f.market, jtx.Units(100_000))
	return f
}

// list creates an offer and returns its id.
func (f *fixture) list(t *testing.T, b *OfferBuilder) uint64 {
	t.Helper()
	return f.env.MustSubmit(b.Build()).ID()
}

func (f *fixture) offer(seller *jtx.Account, assetID uint64) *OfferBuilder {
	return Offer(seller, f.market, f.ledger, assetID, f.money)
}
