package tx

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// ErrNoGateResolver is returned when the engine has no way to resolve compliance gates
var ErrNoGateResolver = errors.New("no compliance gate resolver configured")

// Gate is the compliance check consulted for every balance-changing
// operation on a ledger.
type Gate interface {
	IsApproved(addr types.Address) (bool, error)
}

// GateResolver returns the Gate for a compliance registry as seen through view.
type GateResolver interface {
	Gate(view LedgerView, registry uint32) (Gate, error)
}

// GateResolverFunc adapts a function to a GateResolver.
type GateResolverFunc func(view LedgerView, registry uint32) (Gate, error)

// Gate implements GateResolver.
func (f GateResolverFunc) Gate(view LedgerView, registry uint32) (Gate, error) {
	return f(view, registry)
}

// StaticGate resolves every registry to the same gate.
func StaticGate(g Gate) GateResolver {
	return GateResolverFunc(func(LedgerView, uint32) (Gate, error) {
		return g, nil
	})
}
