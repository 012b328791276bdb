package stocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// This file contains the refresh of a document with the latest market data.

// time layouts of the refresh timestamps.
const (
	StockDateLayout    = "2006-01-02"
	DocumentTimeLayout = "2006-01-02T15:04:05Z"
)

// ErrStockNotFound is the failure of a selected code that is not in the document.
var ErrStockNotFound = errors.New("stock not found")

// Change is a field overwritten by a refresh.
type Change struct {
	Code  string
	Name  string
	Field string
	Old   decimal.NullDecimal
	New   decimal.Decimal
}

func (c Change) String() string {
	return fmt.Sprintf("%s(%s) %s: %s -> %s", c.Name, c.Code, c.Field, format(c.Old), c.New)
}

// Failure is a stock that could not be refreshed.
type Failure struct {
	Code string
	Name string
	Err  error
}

func (f Failure) Error() string { return fmt.Sprintf("%s(%s): %v", f.Name, f.Code, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Result summarizes a refresh.
type Result struct {
	Refreshed int // stocks whose market data was fetched
	Changes   []Change
	Failures  []Failure
}

// Err returns the failures joined in a single error, or nil.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Updater refreshes the market fields of the stocks in a document.
type Updater struct {
	Quotes     QuoteProvider
	Statements StatementProvider
	Logger     zerolog.Logger
	Now        func() time.Time // defaults to time.Now
}

func (u *Updater) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

// Update fetches market data for every stock of doc, or only for the given
// codes, and overwrites the fields whose value changed.
//
// A failure on one stock is recorded in the result and never stops the
// processing of the others. A selected code that is not in doc is a failure
// too. The document lastUpdated is always set.
func (u *Updater) Update(ctx context.Context, doc *Document, only ...Code) *Result {
	res := new(Result)
	selected := make(map[Code]bool, len(only))
	for _, c := range only {
		selected[c] = true
	}

	found := make(map[Code]bool, len(only))
	for _, s := range doc.Stocks {
		if len(selected) > 0 {
			c, err := ParseCode(s.Code)
			if err != nil || !selected[c] {
				continue
			}
			found[c] = true
		}
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, Failure{s.Code, s.Name, err})
			continue
		}

		u.Logger.Info().Str("code", s.Code).Str("name", s.Name).Msg("refreshing stock")
		changes, err := u.updateStock(ctx, s)
		res.Changes = append(res.Changes, changes...)
		if err != nil {
			u.Logger.Error().Err(err).Str("code", s.Code).Str("name", s.Name).Msg("failed to refresh stock")
			res.Failures = append(res.Failures, Failure{s.Code, s.Name, err})
			continue
		}
		res.Refreshed++
	}

	for _, c := range only {
		if !found[c] {
			u.Logger.Error().Str("code", c.String()).Msg("stock not found")
			res.Failures = append(res.Failures, Failure{Code: c.String(), Err: ErrStockNotFound})
			found[c] = true
		}
	}

	doc.LastUpdated = u.now().UTC().Format(DocumentTimeLayout)
	return res
}

// updateStock refreshes a single stock. The record is left untouched when the
// quote cannot be fetched; a statement failure only skips the net profit.
func (u *Updater) updateStock(ctx context.Context, s *Stock) (changes []Change, err error) {
	code, err := ParseCode(s.Code)
	if err != nil {
		return nil, err
	}

	quote, err := u.Quotes.Quote(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch spot info: %w", err)
	}

	log := u.Logger.With().Str("code", s.Code).Logger()
	set := func(field string, dst *decimal.NullDecimal, v decimal.Decimal) {
		if dst.Valid && dst.Decimal.Equal(v) {
			log.Info().Str("field", field).Stringer("value", v).Msg("unchanged")
			return
		}
		c := Change{Code: s.Code, Name: s.Name, Field: field, Old: *dst, New: v}
		*dst = decimal.NewNullDecimal(v)
		log.Info().Str("field", field).Str("old", format(c.Old)).Stringer("new", v).Msg("updated")
		changes = append(changes, c)
	}

	st, err := u.Statements.NetProfit(ctx, code)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("cannot fetch net profit")
	case !st.NetProfit.Valid || st.NetProfit.Decimal.IsZero():
		log.Warn().Str("report", st.ReportDate).Msg("audited statement has no net profit")
	default:
		set(attrLastYearNetProfit, &s.LastYearNetProfit, HundredMillion(st.NetProfit.Decimal))
	}

	set(attrCurrentPrice, &s.CurrentPrice, quote.Price)
	set(attrCurrentMarketCap, &s.CurrentMarketCap, HundredMillion(quote.MarketCap))
	set(attrTotalShares, &s.TotalShares, HundredMillion(quote.TotalShares))

	s.LastUpdated = u.now().Format(StockDateLayout)
	log.Debug().Str("lastUpdated", s.LastUpdated).Msg("stock refreshed")
	return changes, nil
}

// format returns the value or "null".
func format(d decimal.NullDecimal) string {
	if !d.Valid {
		return "null"
	}
	return d.Decimal.String()
}
