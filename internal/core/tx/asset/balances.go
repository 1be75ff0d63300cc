package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// TransferEvent is emitted for every balance movement between accounts.
type TransferEvent struct {
	Ledger  uint32          `json:"ledger"`
	AssetID uint64          `json:"asset_id"`
	From    types.Address   `json:"from"`
	To      types.Address   `json:"to"`
	Amount  decimal.Decimal `json:"amount"`
}

// Load reads an asset, returning tecNO_ENTRY when it does not exist.
func Load(ctx *tx.ApplyContext, ledger uint32, id uint64) (*entries.Asset, tx.Result) {
	a := &entries.Asset{}
	found, err := tx.ReadEntry(ctx.View, keylet.Asset(ledger, id), a)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	return a, tx.TesSUCCESS
}

// Save writes an asset back to the view.
func Save(ctx *tx.ApplyContext, a *entries.Asset) tx.Result {
	if err := tx.WriteEntry(ctx.View, keylet.Asset(a.Ledger, a.ID), a); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

// BalanceOf returns owner's balance of an asset. Missing entries are zero.
func BalanceOf(view tx.LedgerView, ledger uint32, id uint64, owner types.Address) (decimal.Decimal, error) {
	b := &entries.Balance{}
	found, err := tx.ReadEntry(view, keylet.Balance(ledger, id, owner), b)
	if err != nil || !found {
		return decimal.Zero, err
	}
	return b.Amount, nil
}

// ReservedOf returns the part of owner's balance committed to offers.
func ReservedOf(view tx.LedgerView, ledger uint32, id uint64, owner types.Address) (decimal.Decimal, error) {
	r := &entries.Reservation{}
	found, err := tx.ReadEntry(view, keylet.Reservation(ledger, id, owner), r)
	if err != nil || !found {
		return decimal.Zero, err
	}
	return r.Amount, nil
}

// AvailableOf returns balance minus reservation.
func AvailableOf(view tx.LedgerView, ledger uint32, id uint64, owner types.Address) (decimal.Decimal, error) {
	bal, err := BalanceOf(view, ledger, id, owner)
	if err != nil {
		return decimal.Zero, err
	}
	reserved, err := ReservedOf(view, ledger, id, owner)
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Sub(reserved), nil
}

func setBalance(view tx.LedgerView, ledger uint32, id uint64, owner types.Address, amount decimal.Decimal) error {
	k := keylet.Balance(ledger, id, owner)
	if amount.IsZero() {
		exists, err := view.Exists(k)
		if err != nil || !exists {
			return err
		}
		return view.Erase(k)
	}
	return tx.WriteEntry(view, k, &entries.Balance{Ledger: ledger, AssetID: id, Owner: owner, Amount: amount})
}

// Credit adds amount to owner's balance.
func Credit(ctx *tx.ApplyContext, ledger uint32, id uint64, owner types.Address, amount decimal.Decimal) tx.Result {
	bal, err := BalanceOf(ctx.View, ledger, id, owner)
	if err != nil {
		return ctx.Internal(err)
	}
	if err := setBalance(ctx.View, ledger, id, owner, bal.Add(amount)); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

// Debit removes amount from owner's balance. It returns short when the
// balance is too small and tecEXCEEDS_AVAILABLE_BALANCE when the debit
// would dip into the reserved part.
func Debit(ctx *tx.ApplyContext, ledger uint32, id uint64, owner types.Address, amount decimal.Decimal, short tx.Result) tx.Result {
	bal, err := BalanceOf(ctx.View, ledger, id, owner)
	if err != nil {
		return ctx.Internal(err)
	}
	if bal.LessThan(amount) {
		return short
	}
	reserved, err := ReservedOf(ctx.View, ledger, id, owner)
	if err != nil {
		return ctx.Internal(err)
	}
	if bal.Sub(reserved).LessThan(amount) {
		return tx.TecEXCEEDS_AVAILABLE_BALANCE
	}
	if err := setBalance(ctx.View, ledger, id, owner, bal.Sub(amount)); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

// Reserve adjusts owner's reservation by delta, which may be negative.
// The reservation can never exceed the balance nor drop below zero.
func Reserve(ctx *tx.ApplyContext, ledger uint32, id uint64, owner types.Address, delta decimal.Decimal) tx.Result {
	bal, err := BalanceOf(ctx.View, ledger, id, owner)
	if err != nil {
		return ctx.Internal(err)
	}
	reserved, err := ReservedOf(ctx.View, ledger, id, owner)
	if err != nil {
		return ctx.Internal(err)
	}
	next := reserved.Add(delta)
	if next.IsNegative() {
		return ctx.Internal(errNegativeReservation)
	}
	if next.GreaterThan(bal) {
		return tx.TecEXCEEDS_AVAILABLE_BALANCE
	}

	k := keylet.Reservation(ledger, id, owner)
	if next.IsZero() {
		if exists, err := ctx.View.Exists(k); err != nil {
			return ctx.Internal(err)
		} else if exists {
			if err := ctx.View.Erase(k); err != nil {
				return ctx.Internal(err)
			}
		}
		return tx.TesSUCCESS
	}
	r := &entries.Reservation{Ledger: ledger, AssetID: id, Owner: owner, Amount: next}
	if err := tx.WriteEntry(ctx.View, k, r); err != nil {
		return ctx.Internal(err)
	}
	return tx.TesSUCCESS
}

// IsOwner reports whether addr holds the entire, non-zero supply of a.
func IsOwner(view tx.LedgerView, a *entries.Asset, addr types.Address) (bool, error) {
	if !a.TotalSupply.IsPositive() {
		return false, nil
	}
	bal, err := BalanceOf(view, a.Ledger, a.ID, addr)
	if err != nil {
		return false, err
	}
	return bal.Equal(a.TotalSupply), nil
}

// IsOperator reports whether operator may move owner's assets on ledger.
func IsOperator(view tx.LedgerView, ledger uint32, owner, operator types.Address) (bool, error) {
	o := &entries.OperatorApproval{}
	found, err := tx.ReadEntry(view, keylet.OperatorApproval(ledger, owner, operator), o)
	if err != nil || !found {
		return false, err
	}
	return o.Approved, nil
}

// RequireOwner returns tecNOT_OWNER unless addr owns a.
func RequireOwner(ctx *tx.ApplyContext, a *entries.Asset, addr types.Address) tx.Result {
	ok, err := IsOwner(ctx.View, a, addr)
	if err != nil {
		return ctx.Internal(err)
	}
	if !ok {
		return tx.TecNOT_OWNER
	}
	return tx.TesSUCCESS
}

// Move transfers amount of a from one account to another, enforcing the
// compliance gate, the pause rule, shells and reservations.
func Move(ctx *tx.ApplyContext, a *entries.Asset, from, to types.Address, amount decimal.Decimal) tx.Result {
	if result := ctx.RequireApproved(a.Ledger, from, to); result != tx.TesSUCCESS {
		return result
	}
	if a.Disabled {
		return tx.TecSHELL_DISABLED
	}
	if a.Paused && from != a.Creator {
		return tx.TecASSET_PAUSED
	}
	if result := Debit(ctx, a.Ledger, a.ID, from, amount, tx.TecINSUFFICIENT_BALANCE); result != tx.TesSUCCESS {
		return result
	}
	if result := Credit(ctx, a.Ledger, a.ID, to, amount); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventAssetTransferred, TransferEvent{
		Ledger:  a.Ledger,
		AssetID: a.ID,
		From:    from,
		To:      to,
		Amount:  amount,
	})
	return tx.TesSUCCESS
}
