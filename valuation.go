package stocks

import "github.com/shopspring/decimal"

// Valuation holds the dividend based valuation of a stock.
//
// Any metric whose inputs are unknown, or whose divisor is zero, is not Valid.
type Valuation struct {
	GrowthRate            decimal.Decimal
	TargetDividendRate    decimal.Decimal
	AdjustedNetProfit     decimal.NullDecimal // 亿元
	EstimatedDividendRate decimal.NullDecimal // 0-1
	AcceptablePrice       decimal.NullDecimal // yuan
	PriceGap              decimal.NullDecimal // acceptable price minus current price
	PE                    decimal.NullDecimal
	CurrentDividendYield  decimal.NullDecimal // 0-1, with last year figures
}

// Attractive reports whether the acceptable price is above the current price.
func (v Valuation) Attractive() bool {
	return v.PriceGap.Valid && v.PriceGap.Decimal.IsPositive()
}

// Value computes the valuation of s with the given growth rate and target
// dividend rate. Unknown rates fall back to the stock defaults.
func Value(s *Stock, growth, target decimal.NullDecimal) Valuation {
	p := s.Parameters
	if !growth.Valid {
		growth = p.DefaultGrowthRate
	}
	if !target.Valid {
		target = p.DefaultTargetDividendRate
	}
	v := Valuation{GrowthRate: growth.Decimal, TargetDividendRate: target.Decimal}

	if !s.LastYearNetProfit.Valid {
		return v
	}
	adjusted := s.LastYearNetProfit.Decimal.Add(p.SpecialPreferenceAdjustment.Decimal)
	v.AdjustedNetProfit = decimal.NewNullDecimal(adjusted)

	// dividends paid on the projected profit plus cancelled buybacks.
	var totalReturn decimal.NullDecimal
	if growth.Valid && p.MinDividendPayoutRatio.Valid {
		t := adjusted.Mul(growth.Decimal).Mul(p.MinDividendPayoutRatio.Decimal).Add(p.CancellationBuyback.Decimal)
		totalReturn = decimal.NewNullDecimal(t)
	}

	v.EstimatedDividendRate = div(totalReturn, s.CurrentMarketCap)
	if target.Valid {
		v.AcceptablePrice = div(div(totalReturn, target), s.TotalShares)
	}
	if v.AcceptablePrice.Valid && s.CurrentPrice.Valid {
		v.PriceGap = decimal.NewNullDecimal(v.AcceptablePrice.Decimal.Sub(s.CurrentPrice.Decimal))
	}

	eps := div(v.AdjustedNetProfit, s.TotalShares)
	v.PE = div(s.CurrentPrice, eps)

	if p.MinDividendPayoutRatio.Valid {
		lastReturn := decimal.NewNullDecimal(adjusted.Mul(p.MinDividendPayoutRatio.Decimal).Add(p.CancellationBuyback.Decimal))
		v.CurrentDividendYield = div(div(lastReturn, s.TotalShares), s.CurrentPrice)
	}
	return v
}

// div divides a by b, and is not Valid when either is unknown or b is zero.
func div(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid || b.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Decimal.Div(b.Decimal))
}
