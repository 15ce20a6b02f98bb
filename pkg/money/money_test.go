package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 2.35, Amount(decimal.RequireFromString("2.345")))
	assert.Equal(t, 25.0, Amount(decimal.RequireFromString("25.000")))
	assert.Equal(t, 0.0, Amount(decimal.Zero))
}

func TestQuantityKeepsThreePlaces(t *testing.T) {
	assert.Equal(t, 1.25, Quantity(decimal.RequireFromString("1.2500")))
	assert.Equal(t, 0.334, Quantity(decimal.RequireFromString("0.3336")))
}

func TestFormat(t *testing.T) {
	tests := map[string]string{
		"0":         "0.00",
		"12.5":      "12.50",
		"1234":      "1,234.00",
		"1234567.8": "1,234,567.80",
		"-9876.5":   "-9,876.50",
		"999.999":   "1,000.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Format(decimal.RequireFromString(in)), in)
	}
}
