package testing

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/shopspring/decimal"
)

// Units returns n base units.
func Units(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

// Whole returns n whole units at the given precision, in base units.
// Whole(3, 2) is 300.
func Whole(n int64, decimals uint8) decimal.Decimal {
	return decimal.NewFromInt(n).Mul(tx.Unit(decimals))
}

// Price is the per-whole-unit price of n money base units. It is an alias
// of Units that reads better at offer call sites.
func Price(n int64) decimal.Decimal {
	return Units(n)
}
