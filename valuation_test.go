package stocks

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValue(t *testing.T) {
	s := &Stock{
		Code:              "600001.SH",
		LastYearNetProfit: nd("100"),
		CurrentMarketCap:  nd("1000"),
		TotalShares:       nd("10"),
		CurrentPrice:      nd("100"),
		Parameters: Parameters{
			MinDividendPayoutRatio:      nd("0.5"),
			DefaultGrowthRate:           nd("1.2"),
			DefaultTargetDividendRate:   nd("0.05"),
			CancellationBuyback:         nd("10"),
			SpecialPreferenceAdjustment: nd("-20"),
		},
	}

	v := Value(s, decimal.NullDecimal{}, decimal.NullDecimal{})
	assert.Equal(t, "1.2", v.GrowthRate.String())
	assert.Equal(t, "0.05", v.TargetDividendRate.String())
	assert.Equal(t, "80", v.AdjustedNetProfit.Decimal.String())
	// 80*1.2*0.5+10 = 58
	assert.Equal(t, "0.058", v.EstimatedDividendRate.Decimal.String())
	assert.Equal(t, "116", v.AcceptablePrice.Decimal.String())
	assert.Equal(t, "16", v.PriceGap.Decimal.String())
	assert.Equal(t, "12.5", v.PE.Decimal.String())
	// (80*0.5+10)/10/100
	assert.Equal(t, "0.05", v.CurrentDividendYield.Decimal.String())
	assert.True(t, v.Attractive())

	v = Value(s, nd("1"), nd("0.1"))
	assert.Equal(t, "50", v.AcceptablePrice.Decimal.String())
	assert.Equal(t, "-50", v.PriceGap.Decimal.String())
	assert.False(t, v.Attractive())
}

func TestValue_Unknown(t *testing.T) {
	t.Run("no net profit", func(t *testing.T) {
		v := Value(&Stock{CurrentPrice: nd("10")}, nd("1"), nd("0.05"))
		assert.False(t, v.AdjustedNetProfit.Valid)
		assert.False(t, v.AcceptablePrice.Valid)
		assert.False(t, v.PE.Valid)
		assert.False(t, v.Attractive())
	})
	t.Run("no payout ratio", func(t *testing.T) {
		s := &Stock{LastYearNetProfit: nd("100"), TotalShares: nd("10"), CurrentPrice: nd("50"), CurrentMarketCap: nd("500")}
		v := Value(s, nd("1"), nd("0.05"))
		assert.False(t, v.EstimatedDividendRate.Valid)
		assert.False(t, v.AcceptablePrice.Valid)
		assert.False(t, v.CurrentDividendYield.Valid)
		assert.Equal(t, "5", v.PE.Decimal.String(), "PE only needs the market fields")
	})
	t.Run("zero divisors", func(t *testing.T) {
		s := &Stock{
			LastYearNetProfit: nd("100"), TotalShares: nd("0"), CurrentPrice: nd("50"), CurrentMarketCap: nd("0"),
			Parameters: Parameters{MinDividendPayoutRatio: nd("0.5")},
		}
		v := Value(s, nd("1"), nd("0"))
		assert.False(t, v.EstimatedDividendRate.Valid)
		assert.False(t, v.AcceptablePrice.Valid)
		assert.False(t, v.PE.Valid)
		assert.False(t, v.CurrentDividendYield.Valid)
	})
}
