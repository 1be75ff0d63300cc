package tx

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	log "github.com/sirupsen/logrus"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Account is the caller
	Account types.Address

	// Config holds engine configuration
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Engine is the engine applying the transaction
	Engine *Engine

	events []Event
	ids    []uint64
}

// Emit records a fact for indexers. Events are only published when the
// transaction is applied.
func (ctx *ApplyContext) Emit(eventType string, data any) {
	ctx.events = append(ctx.events, Event{Type: eventType, Data: data})
}

// Created records ids created by the transaction
func (ctx *ApplyContext) Created(ids ...uint64) {
	ctx.ids = append(ctx.ids, ids...)
}

// Internal logs an unexpected state or storage error and returns tefINTERNAL.
func (ctx *ApplyContext) Internal(err error) Result {
	log.WithError(err).WithField("account", ctx.Account.String()).Error("internal error applying transaction")
	return TefINTERNAL
}

// Ledger reads a ledger root.
func (ctx *ApplyContext) Ledger(id uint32) (*entries.LedgerRoot, Result) {
	root := &entries.LedgerRoot{}
	found, err := ReadEntry(ctx.View, keylet.Ledger(id), root)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	if !found {
		return nil, TecNO_ENTRY
	}
	return root, TesSUCCESS
}

// Gate resolves the compliance gate bound to a ledger.
func (ctx *ApplyContext) Gate(ledger uint32) (Gate, Result) {
	root, result := ctx.Ledger(ledger)
	if result != TesSUCCESS {
		return nil, result
	}
	if ctx.Config.Gates == nil {
		return nil, ctx.Internal(ErrNoGateResolver)
	}
	gate, err := ctx.Config.Gates.Gate(ctx.View, root.Registry)
	if err != nil {
		return nil, ctx.Internal(err)
	}
	return gate, TesSUCCESS
}

// RequireApproved checks every address against the ledger's compliance gate.
func (ctx *ApplyContext) RequireApproved(ledger uint32, addrs ...types.Address) Result {
	gate, result := ctx.Gate(ledger)
	if result != TesSUCCESS {
		return result
	}
	for _, addr := range addrs {
		ok, err := gate.IsApproved(addr)
		if err != nil {
			return ctx.Internal(err)
		}
		if !ok {
			return TecNOT_APPROVED
		}
	}
	return TesSUCCESS
}
