package stocks

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// properties of a stock record, in their canonical order.
const (
	attrCode              = "code"
	attrName              = "name"
	attrCurrentPrice      = "currentPrice"
	attrCurrentMarketCap  = "currentMarketCap"
	attrTotalShares       = "totalShares"
	attrLastYearNetProfit = "lastYearNetProfit"
	attrLastUpdated       = "lastUpdated"

	attrMinDividendPayoutRatio      = "minDividendPayoutRatio"
	attrDefaultGrowthRate           = "defaultGrowthRate"
	attrDefaultTargetDividendRate   = "defaultTargetDividendRate"
	attrCancellationBuyback         = "cancellationBuyback"
	attrSpecialPreferenceAdjustment = "specialPreferenceAdjustment"
)

var stockAttrs = []string{
	attrCode, attrName,
	attrLastYearNetProfit, attrCurrentMarketCap, attrTotalShares, attrCurrentPrice,
	attrLastUpdated,
}

// Stock is a single record of the stocks file.
//
// Market fields are in the units of the file: price in yuan, market cap and
// net profit in 亿元, total shares in 亿股.
type Stock struct {
	Code              string // as written in the file, see ParseCode.
	Name              string
	CurrentPrice      decimal.NullDecimal
	CurrentMarketCap  decimal.NullDecimal
	TotalShares       decimal.NullDecimal
	LastYearNetProfit decimal.NullDecimal
	LastUpdated       string

	// Valuation parameters maintained by hand in the file. They are read-only:
	// the values written back are always the ones read.
	Parameters Parameters

	attrs object
}

// Parameters are the hand-maintained valuation inputs of a stock.
type Parameters struct {
	MinDividendPayoutRatio      decimal.NullDecimal // 0-1
	DefaultGrowthRate           decimal.NullDecimal
	DefaultTargetDividendRate   decimal.NullDecimal // 0-1
	CancellationBuyback         decimal.NullDecimal // 亿元
	SpecialPreferenceAdjustment decimal.NullDecimal // 亿元
}

// Label returns "name(code)" for messages.
func (s *Stock) Label() string { return fmt.Sprintf("%s(%s)", s.Name, s.Code) }

// UnmarshalJSON reads a stock record, keeping every property for a faithful rewrite.
//
// Numeric properties that are not numbers are read as unknown.
func (s *Stock) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*s = Stock{attrs: o}

	str := func(key string, dst *string) {
		if raw, ok := o.get(key); ok {
			_ = json.Unmarshal(raw, dst)
		}
	}
	dec := func(key string, dst *decimal.NullDecimal) {
		if raw, ok := o.get(key); ok {
			if err := dst.UnmarshalJSON(raw); err != nil {
				*dst = decimal.NullDecimal{}
			}
		}
	}

	str(attrCode, &s.Code)
	str(attrName, &s.Name)
	str(attrLastUpdated, &s.LastUpdated)
	dec(attrCurrentPrice, &s.CurrentPrice)
	dec(attrCurrentMarketCap, &s.CurrentMarketCap)
	dec(attrTotalShares, &s.TotalShares)
	dec(attrLastYearNetProfit, &s.LastYearNetProfit)

	p := &s.Parameters
	dec(attrMinDividendPayoutRatio, &p.MinDividendPayoutRatio)
	dec(attrDefaultGrowthRate, &p.DefaultGrowthRate)
	dec(attrDefaultTargetDividendRate, &p.DefaultTargetDividendRate)
	dec(attrCancellationBuyback, &p.CancellationBuyback)
	dec(attrSpecialPreferenceAdjustment, &p.SpecialPreferenceAdjustment)
	return nil
}

// MarshalJSON writes the record with its properties in the order they were read.
// Unknown market fields that were absent stay absent.
func (s Stock) MarshalJSON() ([]byte, error) {
	// values equal to the ones read are not overridden, so that the raw
	// property (1705.0, "贵...") is written back as it was.
	override := make(map[string][]byte)
	str := func(key, v string) error {
		if v == "" {
			return nil
		}
		if raw, ok := s.attrs.get(key); ok {
			var old string
			if json.Unmarshal(raw, &old) == nil && old == v {
				return nil
			}
		}
		b, err := marshal(v)
		override[key] = b
		return err
	}
	dec := func(key string, v decimal.NullDecimal) {
		if !v.Valid {
			return
		}
		if raw, ok := s.attrs.get(key); ok {
			var old decimal.NullDecimal
			if old.UnmarshalJSON(raw) == nil && old.Valid && old.Decimal.Equal(v.Decimal) {
				return
			}
		}
		override[key] = []byte(v.Decimal.String())
	}

	for key, v := range map[string]string{attrCode: s.Code, attrName: s.Name, attrLastUpdated: s.LastUpdated} {
		if err := str(key, v); err != nil {
			return nil, fmt.Errorf("failed to marshal %q: %w", key, err)
		}
	}
	dec(attrCurrentPrice, s.CurrentPrice)
	dec(attrCurrentMarketCap, s.CurrentMarketCap)
	dec(attrTotalShares, s.TotalShares)
	dec(attrLastYearNetProfit, s.LastYearNetProfit)

	return encodeObject(s.attrs, override, stockAttrs)
}
