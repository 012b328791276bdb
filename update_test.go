package stocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves canned quotes and statements.
type fakeProvider struct {
	quotes     map[Code]Quote
	statements map[Code]Statement
	errs       map[Code]error // quote errors
	stErrs     map[Code]error // statement errors
	calls      []Code
}

func (f *fakeProvider) Quote(_ context.Context, code Code) (Quote, error) {
	f.calls = append(f.calls, code)
	if err := f.errs[code]; err != nil {
		return Quote{}, err
	}
	q, ok := f.quotes[code]
	if !ok {
		return Quote{}, ErrMissingItem
	}
	return q, nil
}

func (f *fakeProvider) NetProfit(_ context.Context, code Code) (Statement, error) {
	if err := f.stErrs[code]; err != nil {
		return Statement{}, err
	}
	st, ok := f.statements[code]
	if !ok {
		return Statement{}, ErrNoStatement
	}
	return st, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

var now = time.Date(2024, 5, 2, 23, 30, 0, 0, time.FixedZone("CST", 8*3600))

func newUpdater(f *fakeProvider, log *bytes.Buffer) *Updater {
	l := zerolog.Nop()
	if log != nil {
		l = zerolog.New(log)
	}
	return &Updater{Quotes: f, Statements: f, Logger: l, Now: func() time.Time { return now }}
}

func decodeMoutai(t *testing.T) *Document {
	t.Helper()
	doc, err := DecodeDocument(strings.NewReader(moutai))
	require.NoError(t, err)
	return doc
}

func TestUpdate(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"600519.SH": {Price: d("1688.8"), MarketCap: d("2121498540000"), TotalShares: d("1256197800")},
			"000858.SZ": {Price: d("150.2"), MarketCap: d("583030000000"), TotalShares: d("3881608005")},
		},
		statements: map[Code]Statement{
			"600519.SH": {ReportDate: "20231231", NetProfit: nd("74734071550.75")},
			"000858.SZ": {ReportDate: "20231231", NetProfit: nd("30210000000")},
		},
	}
	doc := decodeMoutai(t)
	res := newUpdater(f, nil).Update(context.Background(), doc)

	require.NoError(t, res.Err())
	assert.Equal(t, 2, res.Refreshed)

	s := doc.Stocks[0]
	assert.Equal(t, "1688.8", s.CurrentPrice.Decimal.String())
	assert.Equal(t, "21214.99", s.CurrentMarketCap.Decimal.String())
	assert.Equal(t, "12.56", s.TotalShares.Decimal.String())
	assert.Equal(t, "747.34", s.LastYearNetProfit.Decimal.String())
	assert.Equal(t, "2024-05-02", s.LastUpdated, "local date")
	assert.Equal(t, "2024-05-02T15:30:00Z", doc.LastUpdated, "UTC time")

	w := doc.Stocks[1]
	assert.Equal(t, "150.2", w.CurrentPrice.Decimal.String())
	assert.Equal(t, "5830.3", w.CurrentMarketCap.Decimal.String())
	assert.Equal(t, "38.82", w.TotalShares.Decimal.String())
	assert.Equal(t, "302.1", w.LastYearNetProfit.Decimal.String())

	var fields []string
	for _, c := range res.Changes {
		fields = append(fields, c.Code+" "+c.Field)
	}
	// unchanged values are not reported: 600519 kept its shares and net profit.
	assert.Equal(t, []string{
		"600519.SH currentPrice",
		"600519.SH currentMarketCap",
		"000858.SZ lastYearNetProfit",
		"000858.SZ currentPrice",
		"000858.SZ currentMarketCap",
		"000858.SZ totalShares",
	}, fields)
	assert.False(t, res.Changes[3].Old.Valid, "000858 had no price")
	assert.Equal(t, "五粮液(000858.SZ) currentPrice: null -> 150.2", res.Changes[3].String())
}

func TestUpdate_Unchanged(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"600519.SH": {Price: d("1705"), MarketCap: d("2141817249000"), TotalShares: d("1256197800")},
		},
		statements: map[Code]Statement{
			"600519.SH": {NetProfit: nd("74734071550.75")},
		},
	}
	var log bytes.Buffer
	doc := decodeMoutai(t)
	res := newUpdater(f, &log).Update(context.Background(), doc, "600519.SH")

	assert.Empty(t, res.Changes)
	assert.Equal(t, 1, res.Refreshed)
	assert.Equal(t, []Code{"600519.SH"}, f.calls, "only the selected stock is fetched")
	assert.Equal(t, "2024-05-02", doc.Stocks[0].LastUpdated)
	assert.Empty(t, doc.Stocks[1].LastUpdated, "not selected")

	var unchanged int
	for _, line := range strings.Split(strings.TrimSpace(log.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "unchanged" {
			unchanged++
		}
		assert.NotEqual(t, "updated", entry["message"])
	}
	assert.Equal(t, 4, unchanged)
}

func TestUpdate_FailureIsolation(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"000858.SZ": {Price: d("150.2"), MarketCap: d("583030000000"), TotalShares: d("3881608005")},
		},
		errs: map[Code]error{"600519.SH": errors.New("connection reset")},
	}
	doc := decodeMoutai(t)
	before := *doc.Stocks[0]
	res := newUpdater(f, nil).Update(context.Background(), doc)

	assert.Equal(t, 1, res.Refreshed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "600519.SH", res.Failures[0].Code)
	assert.ErrorContains(t, res.Err(), "connection reset")

	assert.Equal(t, before.CurrentPrice, doc.Stocks[0].CurrentPrice, "failed stock untouched")
	assert.Equal(t, "2024-05-01", doc.Stocks[0].LastUpdated)
	assert.Equal(t, "150.2", doc.Stocks[1].CurrentPrice.Decimal.String(), "other stocks processed")
	assert.Equal(t, "2024-05-02T15:30:00Z", doc.LastUpdated)
}

func TestUpdate_StatementFailure(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"600519.SH": {Price: d("1688.8"), MarketCap: d("2121498540000"), TotalShares: d("1256197800")},
			"000858.SZ": {Price: d("150.2"), MarketCap: d("583030000000"), TotalShares: d("3881608005")},
		},
		statements: map[Code]Statement{
			"000858.SZ": {ReportDate: "20231231", NetProfit: decimal.NullDecimal{}},
		},
		stErrs: map[Code]error{"600519.SH": errors.New("timeout")},
	}
	doc := decodeMoutai(t)
	res := newUpdater(f, nil).Update(context.Background(), doc)

	assert.NoError(t, res.Err(), "a statement failure is only a warning")
	assert.Equal(t, 2, res.Refreshed)
	assert.Equal(t, "747.34", doc.Stocks[0].LastYearNetProfit.Decimal.String())
	assert.Equal(t, "302.11", doc.Stocks[1].LastYearNetProfit.Decimal.String(), "missing net profit is ignored")
	assert.Equal(t, "1688.8", doc.Stocks[0].CurrentPrice.Decimal.String())
}

func TestUpdate_InvalidCode(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(`{"stocks":[{"code":"600519","name":"x"},{"code":"000858.SZ"}]}`))
	require.NoError(t, err)
	f := &fakeProvider{quotes: map[Code]Quote{"000858.SZ": {Price: d("1"), MarketCap: d("1"), TotalShares: d("1")}}}

	res := newUpdater(f, nil).Update(context.Background(), doc)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "600519", res.Failures[0].Code)
	assert.Equal(t, 1, res.Refreshed)
	assert.Len(t, doc.Stocks, 2)
}

func TestUpdate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeProvider{}
	doc := decodeMoutai(t)

	res := newUpdater(f, nil).Update(ctx, doc)
	assert.Empty(t, f.calls)
	assert.Len(t, res.Failures, 2)
	assert.ErrorIs(t, res.Err(), context.Canceled)
}

// TestUpdate_KeepsDocumentValid checks that the rewritten document is valid
// JSON with the same stocks, whatever the failures.
func TestUpdate_KeepsDocumentValid(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"000858.SZ": {Price: d("150.2"), MarketCap: d("583030000000"), TotalShares: d("3881608005")},
		},
	}
	doc := decodeMoutai(t)
	newUpdater(f, nil).Update(context.Background(), doc)

	var buf bytes.Buffer
	require.NoError(t, EncodeDocument(&buf, doc))
	require.True(t, json.Valid(buf.Bytes()))

	again, err := DecodeDocument(&buf)
	require.NoError(t, err)
	require.Len(t, again.Stocks, 2)
	assert.Equal(t, "600519.SH", again.Stocks[0].Code)
	assert.Equal(t, "000858.SZ", again.Stocks[1].Code)
}

func TestUpdate_UnknownCode(t *testing.T) {
	f := &fakeProvider{
		quotes: map[Code]Quote{
			"600519.SH": {Price: d("1705"), MarketCap: d("2141817249000"), TotalShares: d("1256197800")},
		},
	}
	doc := decodeMoutai(t)
	res := newUpdater(f, nil).Update(context.Background(), doc, "600519.SH", "000001.SZ", "000001.SZ")

	assert.Equal(t, 1, res.Refreshed)
	require.Len(t, res.Failures, 1, "reported once")
	assert.Equal(t, "000001.SZ", res.Failures[0].Code)
	assert.ErrorIs(t, res.Err(), ErrStockNotFound)
	assert.Equal(t, []Code{"600519.SH"}, f.calls)
}
