// Package yahoo fetches spot info from Yahoo Finance, as an alternative to eastmoney.
package yahoo

import (
	"context"
	"fmt"

	"github.com/etnz/stocks"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Symbol returns the Yahoo symbol of a code: Shanghai is "SS" on Yahoo.
func Symbol(code stocks.Code) (string, error) {
	switch code.Exchange() {
	case "SH":
		return code.Ticker() + ".SS", nil
	case "SZ":
		return code.Ticker() + ".SZ", nil
	case "BJ":
		return code.Ticker() + ".BJ", nil
	}
	return "", fmt.Errorf("unsupported exchange %q for %s", code.Exchange(), code)
}

// Client is a stocks.QuoteProvider backed by Yahoo Finance.
type Client struct {
	get func(symbol string) (*finance.Equity, error)
	log zerolog.Logger
}

// New returns a client using the finance-go default backend.
func New(log zerolog.Logger) *Client {
	return &Client{get: equity.Get, log: log.With().Str("component", "yahoo").Logger()}
}

// Quote implements stocks.QuoteProvider.
//
// The underlying library does not support cancellation, ctx is only checked before the call.
func (c *Client) Quote(ctx context.Context, code stocks.Code) (stocks.Quote, error) {
	symbol, err := Symbol(code)
	if err != nil {
		return stocks.Quote{}, err
	}
	if err := ctx.Err(); err != nil {
		return stocks.Quote{}, err
	}
	e, err := c.get(symbol)
	if err != nil {
		return stocks.Quote{}, fmt.Errorf("cannot fetch quote of %s: %w", symbol, err)
	}
	if e == nil {
		return stocks.Quote{}, fmt.Errorf("quote of %s: %w", symbol, stocks.ErrMissingItem)
	}
	c.log.Debug().Str("symbol", symbol).Float64("price", e.RegularMarketPrice).Msg("quote")
	return toQuote(symbol, e)
}

// toQuote applies the presence check: Yahoo reports unknown values as zero.
func toQuote(symbol string, e *finance.Equity) (stocks.Quote, error) {
	switch {
	case e.RegularMarketPrice == 0:
		return stocks.Quote{}, fmt.Errorf("%w regularMarketPrice for %s", stocks.ErrMissingItem, symbol)
	case e.MarketCap == 0:
		return stocks.Quote{}, fmt.Errorf("%w marketCap for %s", stocks.ErrMissingItem, symbol)
	case e.SharesOutstanding == 0:
		return stocks.Quote{}, fmt.Errorf("%w sharesOutstanding for %s", stocks.ErrMissingItem, symbol)
	}
	return stocks.Quote{
		Price:       decimal.NewFromFloat(e.RegularMarketPrice),
		MarketCap:   decimal.NewFromInt(e.MarketCap),
		TotalShares: decimal.NewFromInt(int64(e.SharesOutstanding)),
	}, nil
}
