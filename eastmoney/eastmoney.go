// Package eastmoney fetches spot info of China A-shares from the eastmoney.com quote API.
package eastmoney

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/stocks"
	"github.com/etnz/stocks/remote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public quote endpoint.
const DefaultBaseURL = "https://push2.eastmoney.com"

// quote items, see the "fields" parameter of the API.
//
//	{
//	  "rc": 0,
//	  "data": {
//	    "f43": 1705.0,          latest price
//	    "f57": "600519",        ticker
//	    "f58": "贵州茅台",       short name
//	    "f84": 1256197800.0,    total shares
//	    "f116": 2141817249000.0 total market cap
//	  }
//	}
const (
	pathPrice       = "$.data.f43"
	pathTotalShares = "$.data.f84"
	pathMarketCap   = "$.data.f116"
	fields          = "f43,f57,f58,f84,f116"
)

// Client is a stocks.QuoteProvider backed by eastmoney.com.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	log        zerolog.Logger
}

// New returns a client on baseURL, DefaultBaseURL if empty.
func New(baseURL string, client *http.Client, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: client,
		log:        log.With().Str("component", "eastmoney").Logger(),
	}
}

// SecID returns the eastmoney security id of a code: "1.600519" for "600519.SH".
func SecID(code stocks.Code) (string, error) {
	switch code.Exchange() {
	case "SH":
		return "1." + code.Ticker(), nil
	case "SZ", "BJ":
		return "0." + code.Ticker(), nil
	}
	return "", fmt.Errorf("unsupported exchange %q for %s", code.Exchange(), code)
}

// Quote implements stocks.QuoteProvider.
func (c *Client) Quote(ctx context.Context, code stocks.Code) (stocks.Quote, error) {
	secid, err := SecID(code)
	if err != nil {
		return stocks.Quote{}, err
	}
	q := url.Values{}
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fields", fields)
	q.Set("secid", secid)
	addr := c.BaseURL + "/api/qt/stock/get?" + q.Encode()

	var jobj any
	if err := remote.GetJSON(ctx, c.HTTPClient, addr, &jobj); err != nil {
		return stocks.Quote{}, fmt.Errorf("cannot fetch quote of %s: %w", code, err)
	}

	var quote stocks.Quote
	for _, item := range []struct {
		path string
		dst  *decimal.Decimal
	}{
		{pathPrice, &quote.Price},
		{pathMarketCap, &quote.MarketCap},
		{pathTotalShares, &quote.TotalShares},
	} {
		v, err := value(jobj, item.path)
		if err != nil {
			return stocks.Quote{}, fmt.Errorf("quote of %s: %w", code, err)
		}
		*item.dst = v
	}
	c.log.Debug().Str("code", string(code)).Stringer("price", quote.Price).Msg("quote")
	return quote, nil
}

// value reads a numeric item. Suspended stocks report "-" instead of a number.
func value(jobj any, path string) (decimal.Decimal, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil || jval == nil {
		return decimal.Zero, fmt.Errorf("%w %s", stocks.ErrMissingItem, path)
	}
	switch v := jval.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w %s: %q", stocks.ErrMissingItem, path, v)
		}
		return d, nil
	}
	return decimal.Zero, fmt.Errorf("%w %s: unexpected value %v", stocks.ErrMissingItem, path, jval)
}
