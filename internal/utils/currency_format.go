package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// currencyPrecision lists the display precision for currencies the ledger accepts.
var currencyPrecision = map[string]int32{
	"USD":  2,
	"EUR":  2,
	"GBP":  2,
	"USDT": 2,
	"USDC": 2,
	"BTC":  8,
	"ETH":  18,
}

// FormatAmount renders an amount for humans, e.g. 12.3 USD -> "12.30 USD".
// Unknown or empty currencies keep the stored precision.
func FormatAmount(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	precision, ok := currencyPrecision[code]
	if !ok {
		return strings.TrimSpace(amount.String() + " " + currency)
	}
	return FormatWithPrecision(amount, precision) + " " + code
}

// FormatWithPrecision formats an amount with the given number of decimal places.
func FormatWithPrecision(amount decimal.Decimal, precision int32) string {
	return amount.StringFixed(precision)
}
