package stocks

import (
	"fmt"
	"strings"
)

// Code identifies a listed stock as "<ticker>.<exchange>", e.g. "600519.SH".
type Code string

// ParseCode parses and normalizes a stock code.
//
// The exchange part is upper cased, so "600519.sh" is accepted and becomes "600519.SH".
func ParseCode(s string) (Code, error) {
	ticker, exchange, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || ticker == "" || exchange == "" || strings.Contains(exchange, ".") {
		return "", fmt.Errorf("invalid stock code %q want format <ticker>.<exchange>", s)
	}
	return Code(ticker + "." + strings.ToUpper(exchange)), nil
}

// MustParseCode is like ParseCode but panics on error.
func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err.Error())
	}
	return c
}

// Ticker returns the exchange-local symbol, "600519" for "600519.SH".
func (c Code) Ticker() string {
	ticker, _, _ := strings.Cut(string(c), ".")
	return ticker
}

// Exchange returns the exchange code, "SH" for "600519.SH".
func (c Code) Exchange() string {
	_, exchange, _ := strings.Cut(string(c), ".")
	return exchange
}

// Prefixed returns the code in the exchange-prefixed form used by
// financial statement providers: "600519.SH" becomes "sh600519".
func (c Code) Prefixed() string {
	return strings.ToLower(c.Exchange()) + c.Ticker()
}

func (c Code) String() string { return string(c) }
