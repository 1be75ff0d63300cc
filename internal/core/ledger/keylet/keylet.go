package keylet

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

// Space identifiers for keylet generation
const (
	spaceSequences   uint16 = 's' // Global counters (singleton)
	spaceLedger      uint16 = 'L' // Ledger root
	spaceAsset       uint16 = 'a' // Asset
	spaceBalance     uint16 = 'b' // Asset balance
	spaceReservation uint16 = 'r' // Offer reservation
	spaceOperator    uint16 = 'o' // Operator approval
	spaceMarket      uint16 = 'm' // Market
	spaceOffer       uint16 = 'f' // Offer
	spaceBuyRequest  uint16 = 'q' // Escrowed buy request
	spaceMoney       uint16 = 't' // Money token
	spaceMoneyBal    uint16 = 'T' // Money token balance
	spaceAllowance   uint16 = 'w' // Money token allowance
	spaceRegistry    uint16 = 'R' // Compliance registry
	spaceRegOperator uint16 = 'O' // Registry operator
	spaceApproval    uint16 = 'A' // Compliance approval
	spaceFactory     uint16 = 'F' // Factory
	spaceFactoryCli  uint16 = 'C' // Factory client
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// Sha512Half returns the first 32 bytes of the SHA-512 of the concatenated inputs.
func Sha512Half(data ...[]byte) [32]byte {
	h := sha512.New()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return Sha512Half(inputs...)
}

func u32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Sequences returns the keylet for the singleton id counters.
func Sequences() Keylet {
	return Keylet{Type: entry.TypeSequences, Key: indexHash(spaceSequences)}
}

// Ledger returns the keylet for a ledger instance root.
func Ledger(id uint32) Keylet {
	return Keylet{Type: entry.TypeLedgerRoot, Key: indexHash(spaceLedger, u32(id))}
}

// Asset returns the keylet for an asset in a ledger.
func Asset(ledger uint32, id uint64) Keylet {
	return Keylet{Type: entry.TypeAsset, Key: indexHash(spaceAsset, u32(ledger), u64(id))}
}

// Balance returns the keylet for an owner's balance of an asset.
func Balance(ledger uint32, id uint64, owner types.Address) Keylet {
	return Keylet{Type: entry.TypeBalance, Key: indexHash(spaceBalance, u32(ledger), u64(id), owner[:])}
}

// Reservation returns the keylet for the amount an owner has committed to offers.
func Reservation(ledger uint32, id uint64, owner types.Address) Keylet {
	return Keylet{Type: entry.TypeReservation, Key: indexHash(spaceReservation, u32(ledger), u64(id), owner[:])}
}

// OperatorApproval returns the keylet for an owner's approval of an operator.
func OperatorApproval(ledger uint32, owner, operator types.Address) Keylet {
	return Keylet{Type: entry.TypeOperatorApproval, Key: indexHash(spaceOperator, u32(ledger), owner[:], operator[:])}
}

// Market returns the keylet for a market.
func Market(id uint32) Keylet {
	return Keylet{Type: entry.TypeMarket, Key: indexHash(spaceMarket, u32(id))}
}

// Offer returns the keylet for an offer on a market.
func Offer(market uint32, id uint64) Keylet {
	return Keylet{Type: entry.TypeOffer, Key: indexHash(spaceOffer, u32(market), u64(id))}
}

// BuyRequest returns the keylet for an escrowed buy request.
func BuyRequest(market uint32, id uint64) Keylet {
	return Keylet{Type: entry.TypeBuyRequest, Key: indexHash(spaceBuyRequest, u32(market), u64(id))}
}

// MoneyToken returns the keylet for a money token.
func MoneyToken(id uint32) Keylet {
	return Keylet{Type: entry.TypeMoneyToken, Key: indexHash(spaceMoney, u32(id))}
}

// MoneyBalance returns the keylet for an owner's money token balance.
func MoneyBalance(token uint32, owner types.Address) Keylet {
	return Keylet{Type: entry.TypeMoneyBalance, Key: indexHash(spaceMoneyBal, u32(token), owner[:])}
}

// Allowance returns the keylet for a spender allowance.
func Allowance(token uint32, owner, spender types.Address) Keylet {
	return Keylet{Type: entry.TypeAllowance, Key: indexHash(spaceAllowance, u32(token), owner[:], spender[:])}
}

// Registry returns the keylet for a compliance registry.
func Registry(id uint32) Keylet {
	return Keylet{Type: entry.TypeRegistry, Key: indexHash(spaceRegistry, u32(id))}
}

// RegistryOperator returns the keylet for a registry operator role.
func RegistryOperator(registry uint32, operator types.Address) Keylet {
	return Keylet{Type: entry.TypeRegistryOperator, Key: indexHash(spaceRegOperator, u32(registry), operator[:])}
}

// Approval returns the keylet for an address's compliance approval.
func Approval(registry uint32, addr types.Address) Keylet {
	return Keylet{Type: entry.TypeApproval, Key: indexHash(spaceApproval, u32(registry), addr[:])}
}

// Factory returns the keylet for a ledger factory.
func Factory(id uint32) Keylet {
	return Keylet{Type: entry.TypeFactory, Key: indexHash(spaceFactory, u32(id))}
}

// FactoryClient returns the keylet for a factory client role.
func FactoryClient(factory uint32, client types.Address) Keylet {
	return Keylet{Type: entry.TypeFactoryClient, Key: indexHash(spaceFactoryCli, u32(factory), client[:])}
}
