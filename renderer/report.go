package renderer

import (
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// missing is displayed for metrics that cannot be computed.
const missing = "-"

// Report is the valuation of every stock of a document.
type Report struct {
	LastUpdated string
	Overrides   bool // growth and target apply to all stocks
	Growth      string
	Target      string
	Rows        []ReportRow
	Summary     Summary
}

// ReportRow is the valuation of a single stock, formatted.
type ReportRow struct {
	Name            string
	Code            string
	Price           string
	AcceptablePrice string
	DividendRate    string
	Gap             string
	PE              string
	Yield           string
	Attractive      bool
}

// Summary aggregates the estimated dividend rates of the valued stocks.
type Summary struct {
	Count      int
	Attractive int
	Valued     int // stocks with an estimated dividend rate
	MeanRate   string
	MedianRate string
}

// NewReport values every stock of doc. Growth and target override the
// defaults of each stock when Valid.
func NewReport(doc *stocks.Document, growth, target decimal.NullDecimal) *Report {
	r := &Report{
		LastUpdated: doc.LastUpdated,
		Overrides:   growth.Valid || target.Valid,
		Growth:      Fixed(growth),
		Target:      Percent(target),
	}
	var rates []float64
	for _, s := range doc.Stocks {
		v := stocks.Value(s, growth, target)
		row := ReportRow{
			Name:            cell(s.Name),
			Code:            cell(s.Code),
			Price:           Price(s.CurrentPrice),
			AcceptablePrice: Price(v.AcceptablePrice),
			DividendRate:    Percent(v.EstimatedDividendRate),
			Gap:             SignedPrice(v.PriceGap),
			PE:              Fixed(v.PE),
			Yield:           Percent(v.CurrentDividendYield),
			Attractive:      v.Attractive(),
		}
		r.Rows = append(r.Rows, row)
		if row.Attractive {
			r.Summary.Attractive++
		}
		if v.EstimatedDividendRate.Valid {
			rates = append(rates, v.EstimatedDividendRate.Decimal.InexactFloat64())
		}
	}
	r.Summary.Count = len(doc.Stocks)
	r.Summary.Valued = len(rates)
	if len(rates) > 0 {
		slices.Sort(rates)
		r.Summary.MeanRate = Percent(decimal.NewNullDecimal(decimal.NewFromFloat(stat.Mean(rates, nil))))
		r.Summary.MedianRate = Percent(decimal.NewNullDecimal(decimal.NewFromFloat(median(rates))))
	}
	return r
}

// median returns the median of sorted values: the mean of the two middle
// values when their count is even.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}

// RenderReport renders the report to a markdown string.
func RenderReport(r *Report) string {
	partials := map[string]string{
		"report_summary": "report_summary.md",
	}
	return renderTemplate("report", "report.md", partials, r)
}

// Price formats an amount in yuan, e.g. "1,705.01 元".
func Price(d decimal.NullDecimal) string {
	if !d.Valid {
		return missing
	}
	return money.New(d.Decimal.Shift(2).Round(0).IntPart(), money.CNY).Display()
}

// SignedPrice is like Price with an explicit "+" for positive amounts.
func SignedPrice(d decimal.NullDecimal) string {
	if d.Valid && d.Decimal.IsPositive() {
		return "+" + Price(d)
	}
	return Price(d)
}

// Percent formats a ratio as a percentage with 2 decimals, e.g. "4.52%".
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return missing
	}
	return d.Decimal.Shift(2).StringFixed(2) + "%"
}

// Fixed formats a number with 2 decimals.
func Fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return missing
	}
	return d.Decimal.StringFixed(2)
}

// HundredMillion formats an amount in 亿 with its unit, e.g. "21418.17亿元".
func HundredMillion(d decimal.NullDecimal, unit string) string {
	if !d.Valid {
		return missing
	}
	return d.Decimal.StringFixed(2) + unit
}

// cell escapes the table separator.
func cell(s string) string {
	if s == "" {
		return missing
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
