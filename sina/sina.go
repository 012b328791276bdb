// Package sina fetches income statements of China A-shares from the sina.com.cn finance API.
package sina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/remote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public finance report endpoint.
const DefaultBaseURL = "https://quotes.sina.cn"

const (
	// sourceIncome selects the income statement (利润表).
	sourceIncome = "lrb"
	// audited is the value of is_audit for audited reports.
	audited = "是"
	// NetProfitItem is the title of the net profit attributable to the owners of the parent.
	NetProfitItem = "归属于母公司所有者的净利润"
)

// report is a single period of a statement.
type report struct {
	Currency    string `json:"rCurrency"`
	Type        string `json:"rType"`
	DataSource  string `json:"data_source"`
	IsAudit     string `json:"is_audit"`
	PublishDate string `json:"publish_date"`
	Data        []struct {
		Title string          `json:"item_title"`
		Value json.RawMessage `json:"item_value"`
	} `json:"data"`
}

// response is the payload of getFinanceReport2022.
//
//	{"result":{"status":{"code":0},"data":{
//	  "report_date":[{"date_value":"20231231","date_description":"2023年报"}, ...],
//	  "report_list":{"20231231":{"is_audit":"是","data":[{"item_title":"...","item_value":"747340715508.8"}, ...]}, ...}
//	}}}
type response struct {
	Result struct {
		Status struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		} `json:"status"`
		Data struct {
			ReportDate []struct {
				DateValue string `json:"date_value"`
			} `json:"report_date"`
			ReportList map[string]report `json:"report_list"`
		} `json:"data"`
	} `json:"result"`
}

// Client is a stocks.StatementProvider backed by sina.com.cn.
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
		log:        log.With().Str("component", "sina").Logger(),
	}
}

// NetProfit implements stocks.StatementProvider. It returns the net profit of
// the most recent audited report.
func (c *Client) NetProfit(ctx context.Context, code stocks.Code) (stocks.Statement, error) {
	q := url.Values{}
	q.Set("paperCode", code.Prefixed())
	q.Set("source", sourceIncome)
	q.Set("type", "0")
	q.Set("page", "1")
	q.Set("num", "100")
	addr := c.BaseURL + "/cn/api/openapi.php/CompanyFinanceService.getFinanceReport2022?" + q.Encode()

	var resp response
	if err := remote.GetJSON(ctx, c.HTTPClient, addr, &resp); err != nil {
		return stocks.Statement{}, fmt.Errorf("cannot fetch income statement of %s: %w", code.Prefixed(), err)
	}
	if status := resp.Result.Status; status.Code != 0 {
		return stocks.Statement{}, fmt.Errorf("income statement of %s: status %d %s", code.Prefixed(), status.Code, status.Msg)
	}

	// report_date is sorted from the most recent.
	for _, d := range resp.Result.Data.ReportDate {
		r, ok := resp.Result.Data.ReportList[d.DateValue]
		if !ok || r.IsAudit != audited {
			continue
		}
		st := stocks.Statement{ReportDate: d.DateValue}
		for _, item := range r.Data {
			if item.Title == NetProfitItem {
				st.NetProfit = parseValue(item.Value)
				break
			}
		}
		c.log.Debug().Str("code", string(code)).Str("report", d.DateValue).Msg("audited statement")
		return st, nil
	}
	return stocks.Statement{}, fmt.Errorf("%s: %w", code.Prefixed(), stocks.ErrNoStatement)
}

// parseValue reads an item value, reported either as a number or as a string.
// Empty or non numeric values are unknown.
func parseValue(raw json.RawMessage) decimal.NullDecimal {
	raw = bytes.TrimSpace(raw)
	if s := bytes.Trim(raw, `"`); len(s) > 0 {
		if d, err := decimal.NewFromString(string(s)); err == nil {
			return decimal.NewNullDecimal(d)
		}
	}
	return decimal.NullDecimal{}
}
