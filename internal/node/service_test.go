package node_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPayloadd/internal/core/state"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	assettx "github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/compliance"
	markettx "github.com/LeJamon/goPayloadd/internal/core/tx/market"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/LeJamon/goPayloadd/internal/node"
	"github.com/LeJamon/goPayloadd/internal/storage/database/leveldb"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
)

func newStore(t *testing.T) *state.Store {
	t.Helper()
	mgr := leveldb.NewMemoryManager()
	db, err := mgr.OpenDB("state")
	require.NoError(t, err)
	store, err := state.New(context.Background(), db, state.Options{CacheSize: 256})
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		_ = mgr.Close()
	})
	return store
}

func openJournal(t *testing.T) journal.Journal {
	t.Helper()
	j, err := journal.Open(context.Background(), journal.Config{
		Driver: journal.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "journal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

type recorder struct {
	mu    sync.Mutex
	notes []node.Notification
}

func (r *recorder) Publish(n node.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []node.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]node.Notification(nil), r.notes...)
}

// populate runs a short market session, including one rejection.
func populate(t *testing.T, env *jtx.TestEnv) {
	t.Helper()
	seller := env.Account("seller")
	buyer := env.Account("buyer")
	operator := env.Account("operator")
	env.Approve(seller, buyer)

	ledger := env.CreateLedger(seller, 0)
	id := env.CreateAsset(seller, ledger, "hold", jtx.Units(100), jtx.Royalty(100))
	money := env.CreateMoney(operator, "USD", 2, jtx.Units(100_000))
	env.Fund(money, operator, jtx.Units(10_000), buyer)
	market := env.CreateMarket(operator, 100, false)
	env.AllowMarket(seller, ledger, market)
	env.AllowSpend(buyer, money, market, jtx.Units(10_000))

	offer := env.MustSubmit(markettx.NewOfferCreate(seller.Address, market, ledger, id, jtx.Units(40), jtx.Units(1), jtx.Price(50), money)).ID()
	env.MustSubmit(markettx.NewOfferBuy(buyer.Address, market, offer, jtx.Units(10)))
	jtx.RequireTxFail(t, env.Submit(markettx.NewOfferBuy(buyer.Address, market, offer, jtx.Units(31))), "tecAMOUNT_EXCEEDS_OFFER")
}

func TestService_JournalAndReplay(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	env := jtx.NewTestEnv(t, jtx.WithJournal(j))
	populate(t, env)

	count, err := j.Count(ctx)
	require.NoError(t, err)
	info, err := env.Service().Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, info.Journal)

	last, err := j.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, env.Service().Engine().Sequence(), last)
	assert.Equal(t, uint64(count-1), last, "every entry but the rejection was applied")

	fresh := newStore(t)
	replayed, err := node.New(fresh, nil, node.Options{Engine: tx.DefaultEngineConfig()})
	require.NoError(t, err)
	stats, err := replayed.Replay(ctx, j)
	require.NoError(t, err)

	assert.Equal(t, int(count), stats.Entries)
	assert.Equal(t, int(count-1), stats.Applied)
	assert.Zero(t, stats.Mismatches)
	assert.Equal(t, 1, stats.Results["tecAMOUNT_EXCEEDS_OFFER"])

	want, _, err := env.Store().Digest()
	require.NoError(t, err)
	got, _, err := fresh.Digest()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Replay neither journals nor publishes.
	again, err := replayed.Info(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Journal)
}

func TestService_JournalRecordsOutcome(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)
	env := jtx.NewTestEnv(t, jtx.WithJournal(j))
	alice := env.Account("alice")

	jtx.RequireTxFail(t, env.Submit(assettx.NewLedgerCreate(alice.Address, 77, 0)), "tecNO_ENTRY")
	res := env.MustSubmit(assettx.NewLedgerCreate(alice.Address, env.Registry(), 2))

	var entries []*journal.Entry
	require.NoError(t, j.Iterate(ctx, 0, func(e *journal.Entry) error {
		entries = append(entries, e)
		return nil
	}))
	require.Len(t, entries, 3)

	rejected, created := entries[1], entries[2]
	assert.Equal(t, "tecNO_ENTRY", rejected.Result)
	assert.False(t, rejected.Applied)
	assert.Zero(t, rejected.Sequence)
	assert.Equal(t, "LedgerCreate", rejected.TxType)
	assert.Equal(t, alice.Address.String(), rejected.Account)

	assert.True(t, created.Applied)
	assert.Equal(t, res.Sequence, created.Sequence)
	assert.Equal(t, res.Hash, created.Hash)
	assert.Equal(t, res.IDs, created.IDs)

	var events []tx.Event
	require.NoError(t, json.Unmarshal(created.Events, &events))
	require.Len(t, events, 1)
	assert.Equal(t, tx.EventLedgerCreated, events[0].Type)
}

func TestService_Publish(t *testing.T) {
	env := jtx.NewTestEnv(t)
	rec := &recorder{}
	env.Service().AddPublisher(rec)
	alice := env.Account("alice")

	env.Approve(alice)
	jtx.RequireTxFail(t, env.Submit(compliance.NewRegistrySetApproved(alice.Address, env.Registry(), alice.Address, true)), "tecNO_PERMISSION")

	notes := rec.all()
	require.Len(t, notes, 2)

	assert.True(t, notes[0].Applied)
	assert.Equal(t, "RegistrySetApproved", notes[0].TxType)
	assert.Equal(t, "tesSUCCESS", notes[0].Result)
	require.Len(t, notes[0].Events, 1)
	assert.Equal(t, tx.EventApprovalSet, notes[0].Events[0].Type)

	assert.False(t, notes[1].Applied)
	assert.Equal(t, "tecNO_PERMISSION", notes[1].Result)
	assert.Empty(t, notes[1].Events)
	assert.Equal(t, alice.Address.String(), notes[1].Account)
}

func TestService_SubmitJSON(t *testing.T) {
	ctx := context.Background()
	env := jtx.NewTestEnv(t)
	alice := env.Account("alice")

	raw := fmt.Sprintf(`{"TransactionType":"LedgerCreate","Account":%q,"Registry":%d,"Decimals":3}`, alice.Address, env.Registry())
	res := env.SubmitJSON(raw)
	jtx.RequireTxSuccess(t, res)
	root, err := env.Service().Ledger(uint32(res.ID()))
	require.NoError(t, err)
	assert.Equal(t, uint8(3), root.Decimals)

	for _, bad := range []string{
		`not json`,
		`{"TransactionType":"Payment"}`,
		`{"TransactionType":"LedgerCreate","Decimals":"three"}`,
	} {
		_, err := env.Service().Submit(ctx, json.RawMessage(bad))
		assert.ErrorIs(t, err, node.ErrBadTransaction, bad)
	}

	missing := env.SubmitJSON(`{"TransactionType":"LedgerCreate","Registry":1}`)
	jtx.RequireTxFail(t, missing, "temBAD_ADDRESS")
}

func TestService_Queries(t *testing.T) {
	env := jtx.NewTestEnv(t)
	svc := env.Service()
	nobody := types.Address{}

	_, err := svc.Ledger(9)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.Asset(1, 1)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.Offer(1, 1)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.Market(1)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.BuyRequest(1, 1)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.MoneyBalance(1, nobody, nobody)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = svc.WeightTree(1, 1)
	assert.ErrorIs(t, err, node.ErrNotFound)

	owner := env.Account("owner")
	env.Approve(owner)
	ledger := env.CreateLedger(owner, 0)
	id := env.CreateAsset(owner, ledger, "hold", jtx.Units(5))

	bal, err := svc.Balance(ledger, id, owner.Address)
	require.NoError(t, err)
	assert.True(t, bal.Balance.Equal(jtx.Units(5)))
	assert.True(t, bal.Reserved.IsZero())
	assert.True(t, bal.Available.Equal(jtx.Units(5)))

	empty, err := svc.Balance(ledger, id, env.Account("stranger").Address)
	require.NoError(t, err)
	assert.True(t, empty.Balance.IsZero())
}

func TestService_ResumesSequence(t *testing.T) {
	store := newStore(t)
	cfg := tx.DefaultEngineConfig()

	svc, err := node.New(store, nil, node.Options{Engine: cfg})
	require.NoError(t, err)
	alice := jtx.NewAccount("alice")
	for i := 0; i < 3; i++ {
		res, err := svc.SubmitTx(context.Background(), compliance.NewRegistryCreate(alice.Address))
		require.NoError(t, err)
		require.True(t, res.Applied)
	}

	restarted, err := node.New(store, nil, node.Options{Engine: cfg})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), restarted.Engine().Sequence())

	res, err := restarted.SubmitTx(context.Background(), compliance.NewRegistryCreate(alice.Address))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.Sequence)
	assert.Equal(t, []uint64{4}, res.IDs)
}

func TestService_Metrics(t *testing.T) {
	store := newStore(t)
	metrics := node.NewMetrics(store.CacheStats)
	svc, err := node.New(store, nil, node.Options{Engine: tx.DefaultEngineConfig(), Metrics: metrics})
	require.NoError(t, err)

	alice := jtx.NewAccount("alice")
	_, err = svc.SubmitTx(context.Background(), compliance.NewRegistryCreate(alice.Address))
	require.NoError(t, err)
	_, err = svc.SubmitTx(context.Background(), compliance.NewRegistrySetApproved(alice.Address, 9, alice.Address, true))
	require.NoError(t, err)

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `payloadd_tx_submitted_total{result="tesSUCCESS",type="RegistryCreate"} 1`)
	assert.Contains(t, text, `payloadd_tx_submitted_total{result="tecNO_ENTRY",type="RegistrySetApproved"} 1`)
	assert.Contains(t, text, "payloadd_engine_sequence 1")
	assert.Contains(t, text, "payloadd_state_cache_hits_total")
}
