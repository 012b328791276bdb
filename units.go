package stocks

import "github.com/shopspring/decimal"

// HundredMillion converts a raw amount (yuan or shares) into units of 亿
// (100,000,000) rounded to 2 decimals.
//
// The division is a decimal shift, so the result is exact before rounding.
func HundredMillion(raw decimal.Decimal) decimal.Decimal {
	return raw.Shift(-8).Round(2)
}
