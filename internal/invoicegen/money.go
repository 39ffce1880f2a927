package invoicegen

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders d with a currency symbol, thousands separators and the given
// number of decimal places: FormatMoney("$", 6000, 2) == "$6,000.00".
func FormatMoney(symbol string, d decimal.Decimal, places int32) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(places)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}

// Totals holds the computed money of one invoice.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums line amounts and applies rate (0.085 for 8.5%), rounding tax to cents.
func ComputeTotals(amounts []decimal.Decimal, rate decimal.Decimal) Totals {
	sub := decimal.Sum(decimal.Zero, amounts...)
	tax := sub.Mul(rate).Round(2)
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}
