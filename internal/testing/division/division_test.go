// Package division_test contains integration tests for weight division and
// join back.
package division_test

import (
	"fmt"
	"testing"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	assettx "github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/division"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type divEnv struct {
	env    *jtx.TestEnv
	owner  *jtx.Account
	ledger uint32
	root   uint64
}

// setup creates a divisible root of weight 5000 wholly held by owner.
func setup(t *testing.T, opts ...jtx.AssetOption) *divEnv {
	t.Helper()
	env := jtx.NewTestEnv(t)
	d := &divEnv{env: env, owner: env.Account("owner")}
	env.Approve(d.owner)
	d.ledger = env.CreateLedger(d.owner, 0)
	d.root = env.CreateAsset(d.owner, d.ledger, "plot", jtx.Units(10), append([]jtx.AssetOption{jtx.Divisible(5000)}, opts...)...)
	return d
}

func (d *divEnv) requireConserved(t *testing.T, want uint64) {
	t.Helper()
	tree, err := d.env.Service().WeightTree(d.ledger, d.root)
	require.NoError(t, err)
	assert.Equal(t, want, tree.Subtree)
}

func TestDivide_Conservation(t *testing.T) {
	d := setup(t)
	env := d.env

	first := env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 5, 100))
	require.Len(t, first.IDs, 5)
	assert.Equal(t, uint64(4500), env.Asset(d.ledger, d.root).Weight)
	d.requireConserved(t, 5000)

	batch := env.MustSubmit(division.NewBatchDivideInto(d.owner.Address, d.ledger, d.root, []uint32{3, 4}, []uint64{300, 200}))
	require.Len(t, batch.IDs, 7)
	require.Len(t, batch.EventsOf(tx.EventDivisionPerformed), 2)
	assert.Equal(t, uint64(2800), env.Asset(d.ledger, d.root).Weight)
	d.requireConserved(t, 5000)

	root := env.Asset(d.ledger, d.root)
	assert.Len(t, root.Divisions, 12)
	assert.True(t, root.DivisionStarted)
	for i, id := range batch.IDs {
		want := uint64(300)
		if i >= 3 {
			want = 200
		}
		assert.Equal(t, want, env.Asset(d.ledger, id).Weight)
	}
}

func TestDivide_Products(t *testing.T) {
	env := jtx.NewTestEnv(t)
	owner := env.Account("owner")
	env.Approve(owner)
	ledger := env.CreateLedger(owner, 2)
	root := env.CreateAsset(owner, ledger, "plot", jtx.Whole(1, 2), jtx.Divisible(10), jtx.Royalty(300))

	id := env.MustSubmit(division.NewStepDivideInto(owner.Address, ledger, root, 1, 4)).ID()

	product := env.Asset(ledger, id)
	assert.Equal(t, fmt.Sprintf("div%d", id), product.Name)
	assert.Equal(t, fmt.Sprintf("plot/div%d", id), product.FullName)
	assert.Equal(t, root, product.DivisionOf)
	assert.True(t, product.IsDivision())
	assert.True(t, product.TotalSupply.Equal(jtx.Whole(1, 2)))
	assert.Zero(t, product.RoyaltyRate)
	jtx.RequireBalance(t, env, ledger, id, owner, 100)

	events := env.MustSubmit(division.NewDivideInto(owner.Address, ledger, root, 2, 3)).EventsOf(tx.EventDivisionPerformed)
	require.Len(t, events, 1)
	ev := events[0].Data.(division.DivisionEvent)
	assert.Equal(t, uint64(0), ev.Residual)
	assert.Len(t, ev.IDs, 2)
}

func TestDivide_Rejections(t *testing.T) {
	t.Run("insufficient weight", func(t *testing.T) {
		d := setup(t)
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 51, 100)), "tecINSUFFICIENT_WEIGHT")
	})

	t.Run("batch is atomic", func(t *testing.T) {
		d := setup(t)
		jtx.RequireNoStateChange(t, d.env, func() {
			jtx.RequireTxFail(t, d.env.Submit(division.NewBatchDivideInto(d.owner.Address, d.ledger, d.root, []uint32{3, 20}, []uint64{300, 300})), "tecINSUFFICIENT_WEIGHT")
		})
	})

	t.Run("step size", func(t *testing.T) {
		d := setup(t, jtx.MinStep(50))
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 2, 75)), "tecBAD_STEP_SIZE")
		d.env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 2, 150))
	})

	t.Run("not divisible", func(t *testing.T) {
		d := setup(t)
		plain := d.env.CreateAsset(d.owner, d.ledger, "plain", jtx.Units(1))
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, plain, 1, 1)), "tecDIVISIBILITY_DISABLED")
	})

	t.Run("partial holder", func(t *testing.T) {
		d := setup(t)
		other := d.env.Account("other")
		d.env.Approve(other)
		d.env.MustSubmit(assettx.NewAssetTransfer(d.owner.Address, d.ledger, d.root, other.Address, jtx.Units(1)))
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 1, 1)), "tecNOT_OWNER")
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(other.Address, d.ledger, d.root, 1, 1)), "tecNOT_OWNER")
	})

	t.Run("not approved", func(t *testing.T) {
		d := setup(t)
		d.env.Revoke(d.owner)
		jtx.RequireTxFail(t, d.env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 1, 1)), "tecNOT_APPROVED")
	})

	t.Run("too many divisions", func(t *testing.T) {
		cfg := tx.DefaultEngineConfig()
		cfg.MaxDivisions = 10
		env := jtx.NewTestEnv(t, jtx.WithEngineConfig(cfg))
		owner := env.Account("owner")
		env.Approve(owner)
		ledger := env.CreateLedger(owner, 0)
		root := env.CreateAsset(owner, ledger, "plot", jtx.Units(1), jtx.Divisible(100))

		jtx.RequireTxFail(t, env.Submit(division.NewBatchDivideInto(owner.Address, ledger, root, []uint32{6, 5}, []uint64{1, 1})), "temARRAY_TOO_LARGE")
		env.MustSubmit(division.NewDivideInto(owner.Address, ledger, root, 10, 1))
	})
}

func TestDivide_Malformed(t *testing.T) {
	d := setup(t)
	owner := d.owner.Address

	tests := []struct {
		name string
		tx   tx.Transaction
		code string
	}{
		{"zero count", division.NewDivideInto(owner, d.ledger, d.root, 0, 1), "temBAD_COUNT"},
		{"zero step", division.NewDivideInto(owner, d.ledger, d.root, 1, 0), "temBAD_STEP_SIZE"},
		{"missing asset", division.NewDivideInto(owner, d.ledger, 0, 1, 1), "temMALFORMED"},
		{"empty batch", division.NewBatchDivideInto(owner, d.ledger, d.root, nil, nil), "temARRAY_EMPTY"},
		{"length mismatch", division.NewBatchDivideInto(owner, d.ledger, d.root, []uint32{1, 2}, []uint64{1}), "temMALFORMED"},
		{"zero step in batch", division.NewBatchDivideInto(owner, d.ledger, d.root, []uint32{1, 2}, []uint64{1, 0}), "temBAD_STEP_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, d.env.Submit(tt.tx), tt.code)
		})
	}
}

func TestDivisionParams_FrozenOnceStarted(t *testing.T) {
	d := setup(t)
	env := d.env

	env.MustSubmit(assettx.NewAssetSetWeight(d.owner.Address, d.ledger, d.root, 6000))
	env.MustSubmit(assettx.NewAssetSetMinStepSize(d.owner.Address, d.ledger, d.root, 10))
	jtx.RequireTxFail(t, env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 1, 15)), "tecBAD_STEP_SIZE")

	env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 1, 1000))
	d.requireConserved(t, 6000)

	jtx.RequireTxFail(t, env.Submit(assettx.NewAssetSetWeight(d.owner.Address, d.ledger, d.root, 1)), "tecDIVISION_STARTED")
	jtx.RequireTxFail(t, env.Submit(assettx.NewAssetSetMinStepSize(d.owner.Address, d.ledger, d.root, 1)), "tecDIVISION_STARTED")
}

// A product's weight comes from the division that minted it.
func TestDivisionParams_FixedForProducts(t *testing.T) {
	d := setup(t)
	env := d.env

	ids := env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 5, 100)).IDs
	product := ids[0]

	jtx.RequireNoStateChange(t, env, func() {
		jtx.RequireTxFail(t, env.Submit(assettx.NewAssetSetWeight(d.owner.Address, d.ledger, product, 1_000_000)), "tecDIVISION_STARTED")
		jtx.RequireTxFail(t, env.Submit(assettx.NewAssetSetMinStepSize(d.owner.Address, d.ledger, product, 1)), "tecDIVISION_STARTED")
	})
	assert.Equal(t, uint64(100), env.Asset(d.ledger, product).Weight)

	env.MustSubmit(division.NewJoinBack(d.owner.Address, d.ledger, product))
	assert.Equal(t, uint64(4600), env.Asset(d.ledger, d.root).Weight)
	d.requireConserved(t, 5000)
}

func TestJoinBack(t *testing.T) {
	d := setup(t)
	env := d.env

	ids := env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 5, 100)).IDs
	product := ids[0]

	result := env.MustSubmit(division.NewJoinBack(d.owner.Address, d.ledger, product))
	joins := result.EventsOf(tx.EventJoinBackPerformed)
	require.Len(t, joins, 1)
	ev := joins[0].Data.(division.JoinBackEvent)
	assert.Equal(t, d.root, ev.Into)
	assert.Equal(t, uint64(100), ev.Weight)

	assert.Equal(t, uint64(4600), env.Asset(d.ledger, d.root).Weight)
	shell := env.Asset(d.ledger, product)
	assert.True(t, shell.Disabled)
	assert.Zero(t, shell.Weight)
	assert.True(t, shell.TotalSupply.IsZero())
	jtx.RequireBalance(t, env, d.ledger, product, d.owner, 0)
	d.requireConserved(t, 5000)

	// A shell stays a shell.
	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(d.owner.Address, d.ledger, product)), "tecSHELL_DISABLED")
	jtx.RequireTxFail(t, env.Submit(division.NewDivideInto(d.owner.Address, d.ledger, product, 1, 1)), "tecSHELL_DISABLED")

	other := env.Account("other")
	env.Approve(other)
	jtx.RequireTxFail(t, env.Submit(assettx.NewAssetTransfer(d.owner.Address, d.ledger, product, other.Address, jtx.Units(1))), "tecSHELL_DISABLED")
	jtx.RequireTxFail(t, env.Submit(assettx.NewAssetTransferFrom(d.owner.Address, d.ledger, product, d.owner.Address, other.Address, jtx.Units(1))), "tecSHELL_DISABLED")
	jtx.RequireBalance(t, env, d.ledger, product, other, 0)
}

func TestJoinBack_CheckOrder(t *testing.T) {
	d := setup(t)
	env := d.env
	other := env.Account("other")
	env.Approve(other)

	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(d.owner.Address, d.ledger, d.root)), "tecNOT_A_DIVISION")

	ids := env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, d.root, 2, 100)).IDs
	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(other.Address, d.ledger, ids[0])), "tecNOT_OWNER")

	// Divide a product further, then join the product itself back: its own
	// products can no longer join into the shell.
	grandchild := env.MustSubmit(division.NewDivideInto(d.owner.Address, d.ledger, ids[0], 1, 40)).ID()
	env.MustSubmit(division.NewJoinBack(d.owner.Address, d.ledger, ids[0]))
	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(d.owner.Address, d.ledger, grandchild)), "tecSHELL_DISABLED")
	d.requireConserved(t, 5000)

	// The gate is checked last.
	env.MustSubmit(assettx.NewAssetTransfer(d.owner.Address, d.ledger, ids[1], other.Address, jtx.Units(1)))
	env.Revoke(other)
	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(other.Address, d.ledger, ids[1])), "tecNOT_APPROVED")
	jtx.RequireTxFail(t, env.Submit(division.NewJoinBack(other.Address, d.ledger, d.root)), "tecNOT_A_DIVISION")
}
