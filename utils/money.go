package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// AmountCents converts a currency amount to integer minor units, rounding
// half up at two decimal places. Prices are never negative, so Round's
// half-away-from-zero behaviour is the same as half up here.
func AmountCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}
