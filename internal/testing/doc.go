// Package testing provides test infrastructure for payload ledger
// transaction testing.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an in-memory node with a default compliance registry
//   - Account: deterministic test accounts
//   - Amount helpers: base units and whole units
//   - Assertions: result, balance and state checks
//
// Transaction tests live in the subpackages (asset, division, market,
// escrow, compliance, factory, money), one per area.
//
// # Basic Usage
//
//	func TestTransfer(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := env.Account("alice")
//	    bob := env.Account("bob")
//	    env.Approve(alice, bob)
//
//	    ledger := env.CreateLedger(alice, 0)
//	    id := env.CreateAsset(alice, ledger, "bay", testing.Units(100))
//
//	    result := env.Submit(asset.NewAssetTransfer(alice.Address, ledger, id, bob.Address, testing.Units(40)))
//	    testing.RequireTxSuccess(t, result)
//	    testing.RequireBalance(t, env, ledger, id, bob, 40)
//	}
//
// # Compliance
//
// Every environment starts with registry Registry() administered by
// Admin(). Ledgers created with CreateLedger are bound to it, so actors
// must be approved with Approve before they can hold or move assets. Use
// WithGate to substitute a mock gate for every ledger.
//
// # Rejections
//
// A rejected transaction (any code other than tesSUCCESS) leaves no state
// behind. RequireTxFail checks the code; RequireNoStateChange checks the
// state digest.
package testing
