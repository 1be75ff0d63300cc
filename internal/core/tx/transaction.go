package tx

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// ErrMissingAccount is returned when a transaction carries no source account
var ErrMissingAccount = errors.New("temBAD_ADDRESS: Account is required")

// ErrInvalidFlags is returned when a transaction sets flags its type does not define
var ErrInvalidFlags = errors.New("temINVALID_FLAG: invalid flags")

// Transaction is the interface that all transaction types implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate performs stateless checks. Errors carry a tem token prefix
	// (e.g. "temBAD_AMOUNT: ...") that the engine maps to a Result.
	Validate() error
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
// All mutations must go through ctx.View.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	// Account is the caller. The node does not manage keys, so the
	// submitter is trusted to set it.
	Account         types.Address `json:"Account"`
	TransactionType string        `json:"TransactionType"`

	Flags *uint32 `json:"Flags,omitempty"`

	// Memo is free-form text stored in the journal
	Memo string `json:"Memo,omitempty"`
}

// Validate validates the common fields
func (c *Common) Validate() error {
	if c.Account.IsZero() {
		return ErrMissingAccount
	}
	if c.TransactionType == "" {
		return errors.New("temMALFORMED: TransactionType is required")
	}
	return nil
}

// SetFlags sets the flags field
func (c *Common) SetFlags(flags uint32) {
	c.Flags = &flags
}

// GetFlags returns the flags value (0 if not set)
func (c *Common) GetFlags() uint32 {
	if c.Flags == nil {
		return 0
	}
	return *c.Flags
}

// BaseTx provides a base implementation for transactions
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the transaction type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common transaction fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base transaction
func (b *BaseTx) Validate() error {
	return b.Common.Validate()
}

// ValidateFlags validates the base transaction and rejects any flag
// outside allowed.
func (b *BaseTx) ValidateFlags(allowed uint32) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.GetFlags()&^allowed != 0 {
		return ErrInvalidFlags
	}
	return nil
}

// NewBaseTx creates a new base transaction
func NewBaseTx(txType Type, account types.Address) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
