package testing

import (
	"crypto/sha512"

	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Account represents a test account.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is derived from the name.
	Address types.Address
}

// NewAccount creates a test account whose address is derived from the name.
// Using the same name will always produce the same account, making tests reproducible.
func NewAccount(name string) *Account {
	hash := sha512.Sum512([]byte(name))
	var addr types.Address
	copy(addr[:], hash[:types.AddressLength])
	return &Account{Name: name, Address: addr}
}

// String returns the account name and address.
func (a *Account) String() string {
	return a.Name + " (" + a.Address.String() + ")"
}
