package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a decimal amount for display, with thousands
// separators and two decimal places, e.g. "1,234.50".
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)

	return b.String()
}

// FormatCurrency prefixes the amount with the currency sign.
func FormatCurrency(d decimal.Decimal) string {
	return "¥" + FormatAmount(d)
}
