package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeFee splits a gross amount into platform fee and merchant net.
// The fee is rounded to 2 decimal places first and the net is the remainder,
// so fee + net always reconstructs the gross exactly.
func ComputeFee(gross decimal.Decimal, feePercent float64) (fee, net decimal.Decimal) {
	fee = gross.Mul(decimal.NewFromFloat(feePercent)).Div(hundred).Round(2)
	net = gross.Sub(fee).Round(2)
	return fee, net
}
