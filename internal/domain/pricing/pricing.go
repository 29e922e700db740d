package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidDiscount indica si pct es un porcentaje de descuento aceptable: 0 < pct <= 100.
func ValidDiscount(pct decimal.Decimal) bool {
	return pct.GreaterThan(decimal.Zero) && pct.LessThanOrEqual(hundred)
}

// DiscountedPrice calcula base × (1 − pct/100) redondeado a 2 decimales.
// Siempre se deriva del precio original, nunca del precio vigente.
func DiscountedPrice(base, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return base.Mul(factor).Round(2)
}

// RangesOverlap indica si [aStart, aEnd] y [bStart, bEnd] se intersectan (extremos inclusive).
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
