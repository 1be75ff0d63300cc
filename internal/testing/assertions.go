package testing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that a transaction result indicates failure with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
	require.Empty(t, result.Events, "rejected transaction emitted events")
}

// RequireBalance asserts acc's balance of an asset.
func RequireBalance(t *testing.T, env *TestEnv, ledger uint32, id uint64, acc *Account, expected int64) {
	t.Helper()
	got := env.Balance(ledger, id, acc)
	require.True(t, got.Equal(decimal.NewFromInt(expected)),
		"%s balance of %d/%d: expected %d, got %s", acc.Name, ledger, id, expected, got)
}

// RequireAvailable asserts acc's balance not committed to offers.
func RequireAvailable(t *testing.T, env *TestEnv, ledger uint32, id uint64, acc *Account, expected int64) {
	t.Helper()
	got := env.Available(ledger, id, acc)
	require.True(t, got.Equal(decimal.NewFromInt(expected)),
		"%s available balance of %d/%d: expected %d, got %s", acc.Name, ledger, id, expected, got)
}

// RequireMoney asserts acc's money balance.
func RequireMoney(t *testing.T, env *TestEnv, token uint32, acc *Account, expected int64) {
	t.Helper()
	got := env.MoneyBalance(token, acc)
	require.True(t, got.Equal(decimal.NewFromInt(expected)),
		"%s money balance of token %d: expected %d, got %s", acc.Name, token, expected, got)
}

// RequireNoStateChange asserts that fn leaves the state digest untouched.
func RequireNoStateChange(t *testing.T, env *TestEnv, fn func()) {
	t.Helper()
	before := env.Digest()
	fn()
	require.Equal(t, before, env.Digest(), "state changed")
}

// AssertMoneyChange asserts that fn changes acc's money balance by delta.
func AssertMoneyChange(t *testing.T, env *TestEnv, token uint32, acc *Account, delta int64, fn func()) {
	t.Helper()
	before := env.MoneyBalance(token, acc)
	fn()
	got := env.MoneyBalance(token, acc).Sub(before)
	require.True(t, got.Equal(decimal.NewFromInt(delta)),
		"%s money change: expected %d, got %s", acc.Name, delta, got)
}

// ResultCodeCategory returns the category of a result code.
func ResultCodeCategory(code string) string {
	if len(code) < 3 {
		return "unknown"
	}
	switch code[:3] {
	case "tes":
		return "success"
	case "tec":
		return "rejected"
	case "tef":
		return "failure"
	case "tem":
		return "malformed"
	default:
		return "unknown"
	}
}
