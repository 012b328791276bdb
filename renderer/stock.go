package renderer

import (
	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
)

// StockDetail is the formatted valuation of a single stock.
type StockDetail struct {
	Name              string
	Code              string
	Price             string
	MarketCap         string
	TotalShares       string
	NetProfit         string
	AdjustedNetProfit string
	PE                string
	Yield             string
	MinPayoutRatio    string
	Buyback           string
	Growth            string
	Target            string
	DividendRate      string
	AcceptablePrice   string
	Gap               string
	LastUpdated       string
}

// NewStockDetail values s, see NewReport.
func NewStockDetail(s *stocks.Stock, growth, target decimal.NullDecimal) *StockDetail {
	v := stocks.Value(s, growth, target)
	rate := func(d decimal.Decimal, valid bool) string {
		return Percent(decimal.NullDecimal{Decimal: d, Valid: valid})
	}
	return &StockDetail{
		Name:              s.Name,
		Code:              s.Code,
		Price:             Price(s.CurrentPrice),
		MarketCap:         HundredMillion(s.CurrentMarketCap, "亿元"),
		TotalShares:       HundredMillion(s.TotalShares, "亿股"),
		NetProfit:         HundredMillion(s.LastYearNetProfit, "亿元"),
		AdjustedNetProfit: HundredMillion(v.AdjustedNetProfit, "亿元"),
		PE:                Fixed(v.PE),
		Yield:             Percent(v.CurrentDividendYield),
		MinPayoutRatio:    Percent(s.Parameters.MinDividendPayoutRatio),
		Buyback:           buyback(s.Parameters.CancellationBuyback),
		Growth:            Fixed(decimal.NullDecimal{Decimal: v.GrowthRate, Valid: growth.Valid || s.Parameters.DefaultGrowthRate.Valid}),
		Target:            rate(v.TargetDividendRate, target.Valid || s.Parameters.DefaultTargetDividendRate.Valid),
		DividendRate:      Percent(v.EstimatedDividendRate),
		AcceptablePrice:   Price(v.AcceptablePrice),
		Gap:               SignedPrice(v.PriceGap),
		LastUpdated:       s.LastUpdated,
	}
}

// RenderStock renders the detail of a stock to a markdown string.
func RenderStock(d *StockDetail) string {
	return renderTemplate("stock", "stock.md", nil, d)
}

// buyback formats the cancelled buyback amount, missing when there is none.
func buyback(d decimal.NullDecimal) string {
	if d.Valid && d.Decimal.IsZero() {
		return missing
	}
	return HundredMillion(d, "亿元")
}
