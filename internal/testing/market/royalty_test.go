package market

import (
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	assettx "github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	markettx "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineage builds root (creator, 10%) -> child (maker, 5%). The maker holds
// 50 units of the child and the seller the other 50.
type lineage struct {
	*fixture
	maker *jtx.Account
	root  uint64
	child uint64
}

func newLineage(t *testing.T, feeRate uint32, opts ...jtx.Option) *lineage {
	t.Helper()
	f := newFixture(t, feeRate, opts...)
	env := f.env
	l := &lineage{fixture: f, maker: env.Account("maker")}
	env.Approve(l.maker)

	l.root = env.CreateAsset(f.creator, f.ledger, "root", jtx.Units(1000), jtx.Royalty(1000))
	env.MustSubmit(assettx.NewAssetTransfer(f.creator.Address, f.ledger, l.root, l.maker.Address, jtx.Units(200)))

	create := assettx.NewAssetCreateChild(l.maker.Address, f.ledger, l.root, jtx.Units(100), "child", l.maker.Address)
	create.RoyaltyRate = 500
	l.child = env.MustSubmit(create).ID()

	env.MustSubmit(assettx.NewAssetTransfer(l.maker.Address, f.ledger, l.child, f.seller.Address, jtx.Units(50)))
	env.AllowMarket(l.maker, f.ledger, f.market)
	return l
}

func fillOf(t *testing.T, result jtx.TxResult) markettx.FillEvent {
	t.Helper()
	fills := result.EventsOf(tx.EventOfferFilled)
	require.Len(t, fills, 1)
	return fills[0].Data.(markettx.FillEvent)
}

func requireAdditive(t *testing.T, s markettx.Split) {
	t.Helper()
	sum := s.OperatorFee.Add(s.SellerProceeds)
	for _, r := range s.Royalties {
		sum = sum.Add(r.Amount)
	}
	require.True(t, sum.Equal(s.Total), "split parts %s do not add up to %s", sum, s.Total)
}

func TestRoyalty_TwoGenerations(t *testing.T) {
	l := newLineage(t, 200)
	env := l.env

	id := l.list(t, l.offer(l.seller, l.child).Amount(50).Price(100))
	result := env.MustSubmit(Buy(l.buyer, l.market, id, 10))

	// 1000 total: 2% fee, 5% to the child's maker, 10% to the root creator.
	fill := fillOf(t, result)
	requireAdditive(t, fill.Split)
	require.Len(t, fill.Royalties, 2)
	assert.Equal(t, l.child, fill.Royalties[0].AssetID)
	assert.Equal(t, l.root, fill.Royalties[1].AssetID)

	jtx.RequireMoney(t, env, l.money, l.operator, 20)
	jtx.RequireMoney(t, env, l.money, l.maker, 50)
	jtx.RequireMoney(t, env, l.money, l.creator, 100)
	jtx.RequireMoney(t, env, l.money, l.seller, 830)
}

func TestRoyalty_DepthLimit(t *testing.T) {
	cfg := tx.DefaultEngineConfig()
	cfg.RoyaltyDepth = 1
	l := newLineage(t, 200, jtx.WithEngineConfig(cfg))
	env := l.env

	id := l.list(t, l.offer(l.seller, l.child).Amount(50).Price(100))
	fill := fillOf(t, env.MustSubmit(Buy(l.buyer, l.market, id, 10)))
	requireAdditive(t, fill.Split)

	require.Len(t, fill.Royalties, 1)
	jtx.RequireMoney(t, env, l.money, l.maker, 50)
	jtx.RequireMoney(t, env, l.money, l.creator, 0)
	jtx.RequireMoney(t, env, l.money, l.seller, 930)
}

// A generation created by the seller pays nothing, but it still uses up
// one level of depth.
func TestRoyalty_SellerCreatedGeneration(t *testing.T) {
	t.Run("depth 2", func(t *testing.T) {
		l := newLineage(t, 0)
		env := l.env

		id := l.list(t, l.offer(l.maker, l.child).Amount(50).Price(100))
		fill := fillOf(t, env.MustSubmit(Buy(l.buyer, l.market, id, 10)))
		requireAdditive(t, fill.Split)

		require.Len(t, fill.Royalties, 1)
		assert.Equal(t, l.root, fill.Royalties[0].AssetID)
		jtx.RequireMoney(t, env, l.money, l.creator, 100)
		jtx.RequireMoney(t, env, l.money, l.maker, 900)
	})

	t.Run("depth 1", func(t *testing.T) {
		cfg := tx.DefaultEngineConfig()
		cfg.RoyaltyDepth = 1
		l := newLineage(t, 0, jtx.WithEngineConfig(cfg))
		env := l.env

		id := l.list(t, l.offer(l.maker, l.child).Amount(50).Price(100))
		fill := fillOf(t, env.MustSubmit(Buy(l.buyer, l.market, id, 10)))

		assert.Empty(t, fill.Royalties)
		jtx.RequireMoney(t, env, l.money, l.creator, 0)
		jtx.RequireMoney(t, env, l.money, l.maker, 1000)
	})
}

// Rounding always favors the seller: each part is floored on its own and
// the seller takes what is left.
func TestRoyalty_Rounding(t *testing.T) {
	l := newLineage(t, 333)
	env := l.env

	id := l.list(t, l.offer(l.seller, l.child).Amount(50).Price(7))
	fill := fillOf(t, env.MustSubmit(Buy(l.buyer, l.market, id, 13)))
	requireAdditive(t, fill.Split)

	// 13 * 7 = 91: fee floor(3.0303) = 3, child floor(4.55) = 4,
	// root floor(9.1) = 9, seller 75.
	assert.True(t, fill.Total.Equal(jtx.Units(91)))
	assert.True(t, fill.OperatorFee.Equal(jtx.Units(3)))
	assert.True(t, fill.Royalties[0].Amount.Equal(jtx.Units(4)))
	assert.True(t, fill.Royalties[1].Amount.Equal(jtx.Units(9)))
	assert.True(t, fill.SellerProceeds.Equal(jtx.Units(75)))
}

func TestSaleTotal(t *testing.T) {
	tests := []struct {
		amount, price int64
		decimals      uint8
		want          int64
	}{
		{10, 100, 0, 1000},
		{150, 100, 2, 150},
		{1, 99, 2, 0},
		{333, 1000, 3, 333},
		{0, 1000, 0, 0},
	}
	for _, tt := range tests {
		got := markettx.SaleTotal(decimal.NewFromInt(tt.amount), decimal.NewFromInt(tt.price), tt.decimals)
		assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "SaleTotal(%d, %d, %d) = %s", tt.amount, tt.price, tt.decimals, got)
	}
}
