package stocks

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHundredMillion(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2141817249000", "21418.17"},
		{"1256197800", "12.56"},
		{"74734071550.75", "747.34"},
		{"-123456789", "-1.23"},
		{"1500000", "0.02"}, // half away from zero
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := HundredMillion(decimal.RequireFromString(tt.raw))
			assert.Equal(t, tt.want, got.String())
		})
	}
}
