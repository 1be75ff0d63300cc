package tx

import (
	"github.com/shopspring/decimal"
)

// BasisPoints is the denominator of all fee and royalty rates
const BasisPoints = 10000

var basisPoints = decimal.NewFromInt(BasisPoints)

// IsBaseUnits reports whether d is a non-negative whole number of base units.
func IsBaseUnits(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Truncate(0))
}

// IsPositiveBaseUnits reports whether d is a positive whole number of base units.
func IsPositiveBaseUnits(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(0))
}

// Unit returns one whole unit at the given precision, 10^decimals.
func Unit(decimals uint8) decimal.Decimal {
	return decimal.New(1, int32(decimals))
}

// FloorDiv returns floor(a / b) for non-negative a and positive b.
func FloorDiv(a, b decimal.Decimal) decimal.Decimal {
	q, _ := a.QuoRem(b, 0)
	return q
}

// ApplyRate returns floor(amount * bps / 10000).
func ApplyRate(amount decimal.Decimal, bps uint32) decimal.Decimal {
	if bps == 0 || amount.IsZero() {
		return decimal.Zero
	}
	return FloorDiv(amount.Mul(decimal.NewFromInt(int64(bps))), basisPoints)
}
