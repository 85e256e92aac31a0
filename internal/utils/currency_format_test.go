package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	testCases := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{name: "usd pads cents", amount: "12.3", currency: "USD", want: "12.30 USD"},
		{name: "usd rounds", amount: "12.345", currency: "usd", want: "12.35 USD"},
		{name: "btc keeps satoshis", amount: "0.5", currency: "BTC", want: "0.50000000 BTC"},
		{name: "unknown currency verbatim", amount: "7.125", currency: "XAU", want: "7.125 XAU"},
		{name: "no currency", amount: "10", currency: "", want: "10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatAmount(decimal.RequireFromString(tc.amount), tc.currency))
		})
	}
}
