package pricefmt

import (
	"github.com/shopspring/decimal"
)

// Values at or above this magnitude are assumed to be expressed in base
// units (18 decimals, wei-style) rather than whole currency.
var baseUnitThreshold = decimal.New(1, 12)

var weiPerUnit = decimal.New(1, 18)

// Format renders a price value as "<amount> <symbol>" with exactly four
// decimal places. The value may be an integer amount in base units or an
// already-decimal amount; anything non-numeric is returned unchanged so a
// bad upstream price never blocks a notification.
func Format(value string, symbol string) string {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return value
	}
	if d.Abs().GreaterThanOrEqual(baseUnitThreshold) {
		d = d.Div(weiPerUnit)
	}
	return d.StringFixed(4) + " " + symbol
}
