package money

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrMissingToken = errors.New("temMALFORMED: Token is required")
	ErrBadAmount    = errors.New("temBAD_AMOUNT: amount must be a positive integer of base units")
	ErrBadAllowance = errors.New("temBAD_AMOUNT: allowance must be a non-negative integer of base units")
	ErrMissingDest  = errors.New("temBAD_ADDRESS: Destination is required")
	ErrDestIsSrc    = errors.New("temDST_IS_SRC: destination is the source")
	ErrBadDecimals  = errors.New("temBAD_DECIMALS: decimals exceed maximum of 18")
	ErrBadSymbol    = errors.New("temBAD_NAME: symbol must be 1-12 characters")
)

// MaxSymbolLength bounds token symbols
const MaxSymbolLength = 12

// TransferEvent is emitted for every money movement.
type TransferEvent struct {
	Token  uint32          `json:"token"`
	From   types.Address   `json:"from"`
	To     types.Address   `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Load reads a money token, returning tecNO_ENTRY when it does not exist.
func Load(ctx *tx.ApplyContext, id uint32) (*entries.MoneyToken, tx.Result) {
	t := &entries.MoneyToken{}
	found, err := tx.ReadEntry(ctx.View, keylet.MoneyToken(id), t)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return t, tx.TesSUCCESS
}

// BalanceOf returns owner's money balance. Missing entries are zero.
func BalanceOf(view tx.LedgerView, token uint32, owner types.Address) (decimal.Decimal, error) {
	b := &entries.MoneyBalance{}
	found, err := tx.ReadEntry(view, keylet.MoneyBalance(token, owner), b)
	if err != nil || !found {
		return decimal.Zero, err
	}
	return b.Amount, nil
}

// AllowanceOf returns the amount spender may move out of owner's balance.
func AllowanceOf(view tx.LedgerView, token uint32, owner, spender types.Address) (decimal.Decimal, error) {
	a := &entries.Allowance{}
	found, err := tx.ReadEntry(view, keylet.Allowance(token, owner, spender), a)
	if err != nil || !found {
		return decimal.Zero, err
	}
	return a.Amount, nil
}

func setBalance(view tx.LedgerView, token uint32, owner types.Address, amount decimal.Decimal) error {
	k := keylet.MoneyBalance(token, owner)
	if amount.IsZero() {
		exists, err := view.Exists(k)
		if err != nil || !exists {
			return err
		}
		return view.Erase(k)
	}
	return tx.WriteEntry(view, k, &entries.MoneyBalance{Token: token, Owner: owner, Amount: amount})
}

func setAllowance(view tx.LedgerView, token uint32, owner, spender types.Address, amount decimal.Decimal) error {
	k := keylet.Allowance(token, owner, spender)
	if amount.IsZero() {
		exists, err := view.Exists(k)
		if err != nil || !exists {
			return err
		}
		return view.Erase(k)
	}
	return tx.WriteEntry(view, k, &entries.Allowance{Token: token, Owner: owner, Spender: spender, Amount: amount})
}

// Move transfers amount of token between accounts. A zero amount is a no-op.
func Move(ctx *tx.ApplyContext, token uint32, from, to types.Address, amount decimal.Decimal) tx.Result {
	if amount.IsZero() || from == to {
		return tx.TesSUCCESS
	}
	fromBal, err := BalanceOf(ctx.View, token, from)
	if err != nil {
		return ctx.Internal(err)
	}
	if fromBal.LessThan(amount) {
		return tx.TecINSUFFICIENT_FUNDS
	}
	toBal, err := BalanceOf(ctx.View, token, to)
	if err != nil {
		return ctx.Internal(err)
	}
	if err := setBalance(ctx.View, token, from, fromBal.Sub(amount)); err != nil {
		return ctx.Internal(err)
	}
	if err := setBalance(ctx.View, token, to, toBal.Add(amount)); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventMoneyTransferred, TransferEvent{Token: token, From: from, To: to, Amount: amount})
	return tx.TesSUCCESS
}

// SpendAllowance reduces spender's allowance over owner's balance.
func SpendAllowance(ctx *tx.ApplyContext, token uint32, owner, spender types.Address, amount decimal.Decimal) tx.Result {
	if amount.IsZero() || owner == spender {
		return tx.TesSUCCESS
	}
	allowance, err := AllowanceOf(ctx.View, token, owner, spender)
	if err != nil {
		return ctx.Internal(err)
	}
	if allowance.LessThan(amount) {
		return tx.TecINSUFFICIENT_ALLOWANCE
	}
	if err := setAllowance(ctx.View, token, owner, spender, allowance.Sub(amount)); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

// MoveFrom spends spender's allowance and moves the funds.
func MoveFrom(ctx *tx.ApplyContext, token uint32, spender, from, to types.Address, amount decimal.Decimal) tx.Result {
	if result := SpendAllowance(ctx, token, from, spender, amount); result != tx.TesSUCCESS {
		return result
	}
	return Move(ctx, token, from, to, amount)
}
