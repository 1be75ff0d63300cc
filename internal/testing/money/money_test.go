// Package money_test contains integration tests for money tokens.
package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	moneytx "github.com/LeJamon/goPayloadd/internal/core/tx/money"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
)

func TestMoneyTokenCreate(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")

	first := env.CreateMoney(issuer, "USD", 2, jtx.Units(1000))
	second := env.CreateMoney(issuer, "EUR", 2, decimal.Zero)
	assert.Equal(t, first+1, second)

	jtx.RequireMoney(t, env, first, issuer, 1000)
	jtx.RequireMoney(t, env, second, issuer, 0)

	info, err := env.Service().MoneyBalance(first, issuer.Address, issuer.Address)
	require.NoError(t, err)
	assert.Equal(t, "USD", info.Symbol)

	tests := []struct {
		name string
		tx   tx.Transaction
		code string
	}{
		{"empty symbol", moneytx.NewMoneyTokenCreate(issuer.Address, "", 2, decimal.Zero), "temBAD_NAME"},
		{"long symbol", moneytx.NewMoneyTokenCreate(issuer.Address, "ABCDEFGHIJKLM", 2, decimal.Zero), "temBAD_NAME"},
		{"too precise", moneytx.NewMoneyTokenCreate(issuer.Address, "USD", 19, decimal.Zero), "temBAD_DECIMALS"},
		{"negative supply", moneytx.NewMoneyTokenCreate(issuer.Address, "USD", 2, jtx.Units(-1)), "temBAD_AMOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jtx.RequireTxFail(t, env.Submit(tt.tx), tt.code)
		})
	}
}

func TestMoneyMint(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	token := env.CreateMoney(issuer, "USD", 2, jtx.Units(10))

	env.MustSubmit(moneytx.NewMoneyMint(issuer.Address, token, alice.Address, jtx.Units(5)))
	jtx.RequireMoney(t, env, token, alice, 5)

	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyMint(alice.Address, token, alice.Address, jtx.Units(5))), "tecNO_PERMISSION")
	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyMint(issuer.Address, 42, alice.Address, jtx.Units(5))), "tecNO_ENTRY")
	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyMint(issuer.Address, token, alice.Address, decimal.Zero)), "temBAD_AMOUNT")
}

// Money is not gated by compliance registries.
func TestMoneyTransfer(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	token := env.CreateMoney(issuer, "USD", 2, jtx.Units(100))

	jtx.AssertMoneyChange(t, env, token, alice, 40, func() {
		env.MustSubmit(moneytx.NewMoneyTransfer(issuer.Address, token, alice.Address, jtx.Units(40)))
	})
	jtx.RequireMoney(t, env, token, issuer, 60)

	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyTransfer(alice.Address, token, issuer.Address, jtx.Units(41))), "tecINSUFFICIENT_FUNDS")
	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyTransfer(alice.Address, token, alice.Address, jtx.Units(1))), "temDST_IS_SRC")
	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyTransfer(alice.Address, token, issuer.Address, decimal.RequireFromString("0.5"))), "temBAD_AMOUNT")
}

func TestMoneyAllowance(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := env.Account("issuer")
	alice := env.Account("alice")
	spender := env.Account("spender")
	token := env.CreateMoney(issuer, "USD", 2, jtx.Units(100))
	env.Fund(token, issuer, jtx.Units(50), alice)

	allowance := func() decimal.Decimal {
		info, err := env.Service().MoneyBalance(token, alice.Address, spender.Address)
		require.NoError(t, err)
		return info.Allowance
	}
	spend := func(amount int64) jtx.TxResult {
		return env.Submit(moneytx.NewMoneyTransferFrom(spender.Address, token, alice.Address, spender.Address, jtx.Units(amount)))
	}

	jtx.RequireTxFail(t, spend(1), "tecINSUFFICIENT_ALLOWANCE")

	env.MustSubmit(moneytx.NewMoneyApprove(alice.Address, token, spender.Address, jtx.Units(30)))
	assert.True(t, allowance().Equal(jtx.Units(30)))

	jtx.RequireTxSuccess(t, spend(20))
	assert.True(t, allowance().Equal(jtx.Units(10)))
	jtx.RequireMoney(t, env, token, spender, 20)
	jtx.RequireTxFail(t, spend(11), "tecINSUFFICIENT_ALLOWANCE")

	// Approve sets the allowance rather than adding to it.
	env.MustSubmit(moneytx.NewMoneyApprove(alice.Address, token, spender.Address, jtx.Units(100)))
	assert.True(t, allowance().Equal(jtx.Units(100)))
	jtx.RequireNoStateChange(t, env, func() {
		jtx.RequireTxFail(t, spend(31), "tecINSUFFICIENT_FUNDS")
	})

	env.MustSubmit(moneytx.NewMoneyApprove(alice.Address, token, spender.Address, decimal.Zero))
	jtx.RequireTxFail(t, spend(1), "tecINSUFFICIENT_ALLOWANCE")

	jtx.RequireTxFail(t, env.Submit(moneytx.NewMoneyApprove(alice.Address, token, alice.Address, jtx.Units(1))), "temDST_IS_SRC")
}
