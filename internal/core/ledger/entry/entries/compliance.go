package entries

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Registry is a compliance registry. Admin manages operators; admin and
// operators set per-address approval.
type Registry struct {
	ID    uint32        `json:"id"`
	Admin types.Address `json:"admin"`
}

func (r *Registry) Type() entry.Type {
	return entry.TypeRegistry
}

func (r *Registry) Validate() error {
	if r.ID == 0 {
		return errors.New("registry id is required")
	}
	if r.Admin.IsZero() {
		return errors.New("registry admin is required")
	}
	return nil
}

// RegistryOperator grants the operator role on a registry.
type RegistryOperator struct {
	Registry uint32        `json:"registry"`
	Operator types.Address `json:"operator"`
	Enabled  bool          `json:"enabled"`
}

func (r *RegistryOperator) Type() entry.Type {
	return entry.TypeRegistryOperator
}

func (r *RegistryOperator) Validate() error {
	return nil
}

// Approval records whether an address passed compliance on a registry.
type Approval struct {
	Registry uint32        `json:"registry"`
	Address  types.Address `json:"address"`
	Approved bool          `json:"approved"`
}

func (a *Approval) Type() entry.Type {
	return entry.TypeApproval
}

func (a *Approval) Validate() error {
	return nil
}
