// Package money is the serialization boundary for decimal amounts.
// Arithmetic stays in decimal.Decimal; only responses see float64.
package money

import "github.com/shopspring/decimal"

const (
	AmountPlaces   = 2
	QuantityPlaces = 3
)

// Amount rounds half-up to cents and returns a JSON-friendly number.
func Amount(d decimal.Decimal) float64 {
	f, _ := d.Round(AmountPlaces).Float64()
	return f
}

// Quantity rounds to three places, enough for weighed goods in kilograms.
func Quantity(d decimal.Decimal) float64 {
	f, _ := d.Round(QuantityPlaces).Float64()
	return f
}

// Format renders an amount with two fixed decimals and thousands separators, e.g. 12,500.00.
func Format(d decimal.Decimal) string {
	fixed := d.Round(AmountPlaces).StringFixed(AmountPlaces)
	sign := ""
	if fixed[0] == '-' {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-3:]

	grouped := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, intPart[i])
	}
	return sign + string(grouped) + frac
}
