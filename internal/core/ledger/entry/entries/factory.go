package entries

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Factory deploys ledgers from a template. Manager controls the client
// list; only clients may deploy.
type Factory struct {
	ID         uint32        `json:"id"`
	Manager    types.Address `json:"manager"`
	Decimals   uint8         `json:"decimals"`
	RoyaltyCap uint32        `json:"royalty_cap"`
	Deployed   []uint32      `json:"deployed,omitempty"`
}

func (f *Factory) Type() entry.Type {
	return entry.TypeFactory
}

func (f *Factory) Validate() error {
	if f.ID == 0 {
		return errors.New("factory id is required")
	}
	if f.Manager.IsZero() {
		return errors.New("factory manager is required")
	}
	return nil
}

// FactoryClient grants a client the right to deploy from a factory.
type FactoryClient struct {
	Factory uint32        `json:"factory"`
	Client  types.Address `json:"client"`
	Enabled bool          `json:"enabled"`
}

func (f *FactoryClient) Type() entry.Type {
	return entry.TypeFactoryClient
}

func (f *FactoryClient) Validate() error {
	return nil
}
