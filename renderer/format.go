// Package renderer turns statements and reports into markdown, HTML and CSV.
package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the currency code used to format amounts. The game has a single
// currency, shown with a dollar sign.
const Currency = "USD"

// currency returns the never nil currency of code.
func currency(code string) money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, code).Currency()
}

// rounded returns v rounded to the fraction digits of the currency.
func rounded(v float64, cur money.Currency) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(int32(cur.Fraction))
}

// FormatMoney formats v as an amount of code, e.g. "$1,234.50" or "-$12.00".
func FormatMoney(v float64, code string) string {
	cur := currency(code)
	dec := rounded(v, cur).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// FormatAmount formats v for a statement row: zero is shown as a dash.
func FormatAmount(v float64) string {
	if rounded(v, currency(Currency)).IsZero() {
		return "-"
	}
	return FormatMoney(v, Currency)
}

// FormatNumber formats v with at most two decimals and no currency.
func FormatNumber(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

// plain returns v rounded to cents as a plain decimal string, for exports.
func plain(v float64) string {
	return rounded(v, currency(Currency)).StringFixed(int32(currency(Currency).Fraction))
}
