package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	// System Singletons
	TypeSequences Type = 0x0073 // Global id counters (singleton)

	// Asset Ledger
	TypeLedgerRoot       Type = 0x004c // Ledger instance root
	TypeAsset            Type = 0x0061 // Asset metadata, weight and division state
	TypeBalance          Type = 0x0062 // Per-owner asset balance
	TypeReservation      Type = 0x0072 // Amount committed to open offers
	TypeOperatorApproval Type = 0x006f // Operator approval (approve-for-all)

	// Marketplace
	TypeMarket     Type = 0x006d // Market instance
	TypeOffer      Type = 0x0066 // Sell offer
	TypeBuyRequest Type = 0x0071 // Escrowed buy request

	// Money Token
	TypeMoneyToken   Type = 0x0074 // Fungible payment token
	TypeMoneyBalance Type = 0x0054 // Payment token holding
	TypeAllowance    Type = 0x0077 // Spender allowance

	// Compliance
	TypeRegistry         Type = 0x0052 // Compliance registry
	TypeRegistryOperator Type = 0x004f // Registry operator role
	TypeApproval         Type = 0x0041 // Per-address approval

	// Factory
	TypeFactory       Type = 0x0046 // Ledger factory
	TypeFactoryClient Type = 0x0043 // Factory client role
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeSequences:
		return "Sequences"
	case TypeLedgerRoot:
		return "LedgerRoot"
	case TypeAsset:
		return "Asset"
	case TypeBalance:
		return "Balance"
	case TypeReservation:
		return "Reservation"
	case TypeOperatorApproval:
		return "OperatorApproval"
	case TypeMarket:
		return "Market"
	case TypeOffer:
		return "Offer"
	case TypeBuyRequest:
		return "BuyRequest"
	case TypeMoneyToken:
		return "MoneyToken"
	case TypeMoneyBalance:
		return "MoneyBalance"
	case TypeAllowance:
		return "Allowance"
	case TypeRegistry:
		return "Registry"
	case TypeRegistryOperator:
		return "RegistryOperator"
	case TypeApproval:
		return "Approval"
	case TypeFactory:
		return "Factory"
	case TypeFactoryClient:
		return "FactoryClient"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}
