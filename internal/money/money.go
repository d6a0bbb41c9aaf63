// Package money holds the shared amount-handling rules: amounts are always
// stored as non-negative magnitudes (direction lives in the transaction
// type), equality uses a fixed 0.01 tolerance, and display formatting is
// Brazilian ("R$ 1.234,56").
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Tolerance is the threshold below which two amounts are considered equal.
// Balances and amounts come from the aggregator as floats; anything within a
// cent is noise, not a change.
var Tolerance = decimal.New(1, -2)

// Magnitude returns the non-negative magnitude of an incoming amount.
// Every write boundary must pass amounts through here; sign is carried
// exclusively by the CREDIT/DEBIT type.
func Magnitude(amount float64) float64 {
	return math.Abs(amount)
}

// Differs reports whether two amounts differ by more than Tolerance.
func Differs(a, b float64) bool {
	da := decimal.NewFromFloat(a)
	db := decimal.NewFromFloat(b)
	return da.Sub(db).Abs().GreaterThan(Tolerance)
}

// RoundPercent rounds a split percentage to two decimal places.
func RoundPercent(p float64) float64 {
	f, _ := decimal.NewFromFloat(p).Round(2).Float64()
	return f
}

// FormatBRL renders an amount as Brazilian currency: "R$ 1.234,56".
func FormatBRL(amount float64) string {
	d := decimal.NewFromFloat(amount)
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
