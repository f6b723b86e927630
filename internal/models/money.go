package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// USD formats a decimal amount as a dollar string with thousands grouping
// and exactly two decimal places, e.g. 10000 -> "$10,000.00". Negative
// amounts render as "-$1,234.56".
func USD(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
