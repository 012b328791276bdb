package stocks

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNoStatement is returned by a StatementProvider when the stock has no audited statement.
var ErrNoStatement = errors.New("no audited statement")

// ErrMissingItem is returned by a QuoteProvider when the spot info lacks one of the items of a Quote.
var ErrMissingItem = errors.New("missing item")

// Quote is the spot info of a stock, in provider units.
type Quote struct {
	Price       decimal.Decimal // yuan
	MarketCap   decimal.Decimal // yuan
	TotalShares decimal.Decimal // shares
}

// Statement is the latest audited income statement of a stock.
type Statement struct {
	ReportDate string              // YYYYMMDD as published
	NetProfit  decimal.NullDecimal // attributable to the owners of the parent, yuan
}

// QuoteProvider looks up spot info.
type QuoteProvider interface {
	Quote(ctx context.Context, code Code) (Quote, error)
}

// StatementProvider looks up financial statements.
type StatementProvider interface {
	NetProfit(ctx context.Context, code Code) (Statement, error)
}
