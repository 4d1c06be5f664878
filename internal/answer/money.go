// internal/answer/money.go
package answer

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money renders an amount with thousands separators and two decimal
// places, e.g. 42242986.69 -> "42,242,986.69".
func Money(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	if neg {
		fixed = fixed[1:]
	}

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String() + "." + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}

// MoneyLKR appends the reporting currency.
func MoneyLKR(d decimal.Decimal) string {
	return Money(d) + " LKR"
}
