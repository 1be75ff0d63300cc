package tx

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyRate(t *testing.T) {
	tests := []struct {
		amount string
		bps    uint32
		want   string
	}{
		{"1000", 500, "50"},
		{"999", 100, "9"},
		{"1", 9999, "0"},
		{"12345", 0, "0"},
		{"0", 2500, "0"},
		{"10000", 10000, "10000"},
	}
	for _, tt := range tests {
		got := ApplyRate(d(tt.amount), tt.bps)
		assert.True(t, got.Equal(d(tt.want)), "%s at %d bps = %s", tt.amount, tt.bps, got)
	}
}

func TestBaseUnits(t *testing.T) {
	assert.True(t, IsBaseUnits(d("0")))
	assert.True(t, IsBaseUnits(d("42")))
	assert.False(t, IsBaseUnits(d("-1")))
	assert.False(t, IsBaseUnits(d("1.5")))

	assert.False(t, IsPositiveBaseUnits(d("0")))
	assert.True(t, IsPositiveBaseUnits(d("3")))

	assert.True(t, Unit(0).Equal(d("1")))
	assert.True(t, Unit(3).Equal(d("1000")))
	assert.True(t, FloorDiv(d("2800"), d("1000")).Equal(d("2")))
}
