package yahoo

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/stocks"
	finance "github.com/piquette/finance-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	tests := []struct {
		code stocks.Code
		want string
	}{
		{"600519.SH", "600519.SS"},
		{"000858.SZ", "000858.SZ"},
		{"430047.BJ", "430047.BJ"},
	}
	for _, tt := range tests {
		got, err := Symbol(tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Symbol("AAPL.US")
	assert.Error(t, err)
}

func fake(e *finance.Equity, err error) *Client {
	c := New(zerolog.Nop())
	c.get = func(string) (*finance.Equity, error) { return e, err }
	return c
}

func TestQuote(t *testing.T) {
	e := &finance.Equity{MarketCap: 2141817249000, SharesOutstanding: 1256197800}
	e.RegularMarketPrice = 1705.01

	q, err := fake(e, nil).Quote(context.Background(), "600519.SH")
	require.NoError(t, err)
	assert.Equal(t, "1705.01", q.Price.String())
	assert.Equal(t, "21418.17", stocks.HundredMillion(q.MarketCap).String())
	assert.Equal(t, "12.56", stocks.HundredMillion(q.TotalShares).String())
}

func TestQuote_MissingItem(t *testing.T) {
	e := &finance.Equity{SharesOutstanding: 1256197800}
	e.RegularMarketPrice = 1705.01

	_, err := fake(e, nil).Quote(context.Background(), "600519.SH")
	assert.True(t, errors.Is(err, stocks.ErrMissingItem), "got %v", err)
}

func TestQuote_Error(t *testing.T) {
	_, err := fake(nil, errors.New("boom")).Quote(context.Background(), "600519.SH")
	assert.ErrorContains(t, err, "600519.SS")
}

func TestQuote_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fake(&finance.Equity{}, nil).Quote(ctx, "600519.SH")
	assert.ErrorIs(t, err, context.Canceled)
}
