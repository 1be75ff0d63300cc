// Package compliance resolves the compliance gate bound to a ledger from
// the registry entries stored in ledger state.
package compliance

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// ErrRegistryNotFound is returned when a ledger references a missing registry
var ErrRegistryNotFound = errors.New("compliance registry not found")

// Resolver implements tx.GateResolver over registry entries.
type Resolver struct{}

// NewResolver returns a registry-backed gate resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Gate returns the gate of registry as seen through view.
func (r *Resolver) Gate(view tx.LedgerView, registry uint32) (tx.Gate, error) {
	exists, err := view.Exists(keylet.Registry(registry))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrRegistryNotFound, registry)
	}
	return &RegistryGate{view: view, registry: registry}, nil
}

// RegistryGate answers isApproved from one registry's approval entries.
type RegistryGate struct {
	view     tx.LedgerView
	registry uint32
}

// NewRegistryGate returns the gate of a registry without checking that it exists.
func NewRegistryGate(view tx.LedgerView, registry uint32) *RegistryGate {
	return &RegistryGate{view: view, registry: registry}
}

// IsApproved reports whether addr is approved on the registry. Addresses
// never set are not approved.
func (g *RegistryGate) IsApproved(addr types.Address) (bool, error) {
	a := &entries.Approval{}
	found, err := tx.ReadEntry(g.view, keylet.Approval(g.registry, addr), a)
	if err != nil {
		return false, fmt.Errorf("read approval: %w", err)
	}
	return found && a.Approved, nil
}

// Status is the compliance_status answer for one address.
type Status struct {
	Registry uint32        `json:"registry"`
	Address  types.Address `json:"address"`
	Approved bool          `json:"approved"`
}

// StatusOf looks up an address's approval on a registry.
func StatusOf(view tx.LedgerView, registry uint32, addr types.Address) (Status, error) {
	gate, err := NewResolver().Gate(view, registry)
	if err != nil {
		return Status{}, err
	}
	ok, err := gate.IsApproved(addr)
	if err != nil {
		return Status{}, err
	}
	return Status{Registry: registry, Address: addr, Approved: ok}, nil
}
