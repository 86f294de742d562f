package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineTotal scales a per-unit cost by quantity. Absence propagates: an
// unknown cost stays unknown, it is not coerced to zero here. Report
// aggregation is the one place that coerces (see internal/report).
func LineTotal(cost decimal.NullDecimal, quantity int64) decimal.NullDecimal {
	if !cost.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: cost.Decimal.Mul(decimal.NewFromInt(quantity)),
		Valid:   true,
	}
}

// FormatDOP renders an amount as Dominican pesos for display, e.g.
// "RD$1,234.56". Presentation only: callers must never parse this back
// for computation.
func FormatDOP(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := "RD$" + b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}

// FormatNullDOP renders an amount, showing an em dash for unknown values
// so the report never displays an unknown cost as zero.
func FormatNullDOP(d decimal.NullDecimal) string {
	if !d.Valid {
		return "—"
	}
	return FormatDOP(d.Decimal)
}
