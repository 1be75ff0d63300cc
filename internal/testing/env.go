package testing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/state"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/compliance"
	"github.com/LeJamon/goPayloadd/internal/core/tx/market"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/LeJamon/goPayloadd/internal/node"
	"github.com/LeJamon/goPayloadd/internal/storage/database/leveldb"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestEnv manages an in-memory node for transaction testing. Every
// environment starts with a compliance registry administered by the
// "admin" account, so most tests only need to approve their actors.
type TestEnv struct {
	t        *testing.T
	svc      *node.Service
	store    *state.Store
	accounts map[string]*Account

	admin    *Account
	registry uint32
}

type envOptions struct {
	engine  tx.EngineConfig
	journal journal.Journal
}

// Option customizes a TestEnv.
type Option func(*envOptions)

// WithGate makes every ledger use g instead of its registry.
func WithGate(g tx.Gate) Option {
	return func(o *envOptions) {
		o.engine.Gates = tx.StaticGate(g)
	}
}

// WithEngineConfig replaces the engine limits. A gate set by WithGate is kept.
func WithEngineConfig(cfg tx.EngineConfig) Option {
	return func(o *envOptions) {
		gates := o.engine.Gates
		o.engine = cfg
		if cfg.Gates == nil {
			o.engine.Gates = gates
		}
	}
}

// WithJournal records submissions in j.
func WithJournal(j journal.Journal) Option {
	return func(o *envOptions) {
		o.journal = j
	}
}

// NewTestEnv creates an environment over a memory-backed state store.
func NewTestEnv(t *testing.T, opts ...Option) *TestEnv {
	t.Helper()

	o := envOptions{engine: tx.DefaultEngineConfig()}
	for _, opt := range opts {
		opt(&o)
	}

	mgr := leveldb.NewMemoryManager()
	db, err := mgr.OpenDB("state")
	require.NoError(t, err)
	store, err := state.New(context.Background(), db, state.Options{CacheSize: 4096, Compression: "lz4"})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		_ = mgr.Close()
	})

	svc, err := node.New(store, o.journal, node.Options{Engine: o.engine})
	require.NoError(t, err)

	env := &TestEnv{
		t:        t,
		svc:      svc,
		store:    store,
		accounts: make(map[string]*Account),
	}
	env.admin = env.Account("admin")
	env.registry = uint32(env.MustSubmit(compliance.NewRegistryCreate(env.admin.Address)).ID())
	return env
}

// Service returns the node service under test.
func (e *TestEnv) Service() *node.Service {
	return e.svc
}

// Store returns the state store.
func (e *TestEnv) Store() *state.Store {
	return e.store
}

// Admin returns the administrator of the default registry.
func (e *TestEnv) Admin() *Account {
	return e.admin
}

// Registry returns the id of the default registry.
func (e *TestEnv) Registry() uint32 {
	return e.registry
}

// Account returns the named account, creating it on first use.
func (e *TestEnv) Account(name string) *Account {
	if acc, ok := e.accounts[name]; ok {
		return acc
	}
	acc := NewAccount(name)
	e.accounts[name] = acc
	return acc
}

// Submit applies a transaction through the node service.
func (e *TestEnv) Submit(transaction tx.Transaction) TxResult {
	e.t.Helper()
	res, err := e.svc.SubmitTx(context.Background(), transaction)
	require.NoError(e.t, err)
	return newTxResult(res)
}

// SubmitJSON applies a JSON-encoded transaction.
func (e *TestEnv) SubmitJSON(raw string) TxResult {
	e.t.Helper()
	res, err := e.svc.Submit(context.Background(), json.RawMessage(raw))
	require.NoError(e.t, err)
	return newTxResult(res)
}

// MustSubmit submits and fails the test unless the transaction succeeds.
func (e *TestEnv) MustSubmit(transaction tx.Transaction) TxResult {
	e.t.Helper()
	result := e.Submit(transaction)
	RequireTxSuccess(e.t, result)
	return result
}

// Approve marks accounts as approved on the default registry.
func (e *TestEnv) Approve(accs ...*Account) {
	e.t.Helper()
	for _, acc := range accs {
		e.MustSubmit(compliance.NewRegistrySetApproved(e.admin.Address, e.registry, acc.Address, true))
	}
}

// Revoke withdraws the approval of accounts on the default registry.
func (e *TestEnv) Revoke(accs ...*Account) {
	e.t.Helper()
	for _, acc := range accs {
		e.MustSubmit(compliance.NewRegistrySetApproved(e.admin.Address, e.registry, acc.Address, false))
	}
}

// CreateLedger creates a ledger on the default registry owned by owner.
func (e *TestEnv) CreateLedger(owner *Account, decimals uint8) uint32 {
	e.t.Helper()
	return uint32(e.MustSubmit(asset.NewLedgerCreate(owner.Address, e.registry, decimals)).ID())
}

// AssetOption customizes an AssetCreate built by CreateAsset.
type AssetOption func(*asset.AssetCreate)

// Royalty sets the royalty rate in basis points.
func Royalty(bps uint32) AssetOption {
	return func(a *asset.AssetCreate) { a.RoyaltyRate = bps }
}

// Divisible makes the asset divisible with the given weight.
func Divisible(weight uint64) AssetOption {
	return func(a *asset.AssetCreate) {
		a.Weight = weight
		a.SetFlags(a.GetFlags() | asset.TfDivisible)
	}
}

// MinStep sets the minimum division step size.
func MinStep(step uint64) AssetOption {
	return func(a *asset.AssetCreate) { a.MinStepSize = step }
}

// StartPaused creates the asset paused.
func StartPaused() AssetOption {
	return func(a *asset.AssetCreate) { a.SetFlags(a.GetFlags() | asset.TfStartPaused) }
}

// CreateAsset mints a root asset to owner and returns its id.
func (e *TestEnv) CreateAsset(owner *Account, ledger uint32, name string, supply decimal.Decimal, opts ...AssetOption) uint64 {
	e.t.Helper()
	create := asset.NewAssetCreate(owner.Address, ledger, name, supply)
	for _, opt := range opts {
		opt(create)
	}
	return e.MustSubmit(create).ID()
}

// CreateMoney creates a money token with supply minted to issuer.
func (e *TestEnv) CreateMoney(issuer *Account, symbol string, decimals uint8, supply decimal.Decimal) uint32 {
	e.t.Helper()
	return uint32(e.MustSubmit(money.NewMoneyTokenCreate(issuer.Address, symbol, decimals, supply)).ID())
}

// Fund moves money from issuer to each account.
func (e *TestEnv) Fund(token uint32, issuer *Account, amount decimal.Decimal, accs ...*Account) {
	e.t.Helper()
	for _, acc := range accs {
		e.MustSubmit(money.NewMoneyTransfer(issuer.Address, token, acc.Address, amount))
	}
}

// CreateMarket opens a market run by operator.
func (e *TestEnv) CreateMarket(operator *Account, feeRate uint32, escrow bool) uint32 {
	e.t.Helper()
	return uint32(e.MustSubmit(market.NewMarketCreate(operator.Address, feeRate, escrow)).ID())
}

// AllowMarket lets a market move the seller's assets on ledger.
func (e *TestEnv) AllowMarket(seller *Account, ledger, marketID uint32) {
	e.t.Helper()
	e.MustSubmit(asset.NewAssetSetOperator(seller.Address, ledger, market.CustodyAddress(marketID)))
}

// AllowSpend grants the market custody address an allowance over the
// buyer's money.
func (e *TestEnv) AllowSpend(buyer *Account, token, marketID uint32, amount decimal.Decimal) {
	e.t.Helper()
	e.MustSubmit(money.NewMoneyApprove(buyer.Address, token, market.CustodyAddress(marketID), amount))
}

// Asset reads an asset.
func (e *TestEnv) Asset(ledger uint32, id uint64) *entries.Asset {
	e.t.Helper()
	a, err := e.svc.Asset(ledger, id)
	require.NoError(e.t, err)
	return a
}

// Balance returns acc's balance of an asset.
func (e *TestEnv) Balance(ledger uint32, id uint64, acc *Account) decimal.Decimal {
	e.t.Helper()
	info, err := e.svc.Balance(ledger, id, acc.Address)
	require.NoError(e.t, err)
	return info.Balance
}

// Available returns acc's balance not committed to offers.
func (e *TestEnv) Available(ledger uint32, id uint64, acc *Account) decimal.Decimal {
	e.t.Helper()
	info, err := e.svc.Balance(ledger, id, acc.Address)
	require.NoError(e.t, err)
	return info.Available
}

// MoneyBalance returns acc's balance of a money token.
func (e *TestEnv) MoneyBalance(token uint32, acc *Account) decimal.Decimal {
	e.t.Helper()
	info, err := e.svc.MoneyBalance(token, acc.Address, types.ZeroAddress)
	require.NoError(e.t, err)
	return info.Balance
}

// Offer reads an offer with its status.
func (e *TestEnv) Offer(marketID uint32, id uint64) node.OfferInfo {
	e.t.Helper()
	o, err := e.svc.Offer(marketID, id)
	require.NoError(e.t, err)
	return o
}

// Digest hashes the whole state.
func (e *TestEnv) Digest() [32]byte {
	e.t.Helper()
	d, _, err := e.store.Digest()
	require.NoError(e.t, err)
	return d
}
