package domain

import (
	"fmt"
	"strings"
)

// Currency is the settlement currency of a record.
type Currency string

const (
	CurrencyCNY Currency = "CNY"
	CurrencyHKD Currency = "HKD"
	CurrencyUSD Currency = "USD"
)

// DefaultCurrency is applied when a record omits its currency.
const DefaultCurrency = CurrencyCNY

// IsValid checks if the currency is one of the supported values.
func (c Currency) IsValid() bool {
	return c == CurrencyCNY || c == CurrencyHKD || c == CurrencyUSD
}

// CurrencyFromString creates a Currency from a string (case-insensitive).
// An empty string resolves to the default currency.
func CurrencyFromString(value string) (Currency, error) {
	if value == "" {
		return DefaultCurrency, nil
	}
	c := Currency(strings.ToUpper(value))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid currency: %s", value)
	}
	return c, nil
}
