package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/pricing"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDiscountedPrice(t *testing.T) {
	cases := []struct {
		base, pct, want string
	}{
		{"100000.00", "10", "90000"},
		{"100000.00", "5", "95000"},
		{"12345.67", "12.5", "10802.46"},
		{"999.99", "100", "0"},
		{"0.01", "50", "0.01"},
	}
	for _, tc := range cases {
		got := pricing.DiscountedPrice(decimal.RequireFromString(tc.base), decimal.RequireFromString(tc.pct))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s -%s%% = %s, se obtuvo %s", tc.base, tc.pct, tc.want, got)
	}
}

func TestValidDiscount(t *testing.T) {
	assert.False(t, pricing.ValidDiscount(decimal.Zero))
	assert.False(t, pricing.ValidDiscount(decimal.NewFromInt(-5)))
	assert.False(t, pricing.ValidDiscount(decimal.NewFromFloat(100.01)))
	assert.True(t, pricing.ValidDiscount(decimal.NewFromInt(100)))
	assert.True(t, pricing.ValidDiscount(decimal.NewFromFloat(0.5)))
}

func TestRangesOverlap(t *testing.T) {
	jan := [2]time.Time{day("2024-01-01"), day("2024-01-31")}

	assert.True(t, pricing.RangesOverlap(jan[0], jan[1], day("2024-01-15"), day("2024-02-15")))
	assert.True(t, pricing.RangesOverlap(jan[0], jan[1], day("2024-01-31"), day("2024-02-15")), "extremo compartido cuenta como superposición")
	assert.True(t, pricing.RangesOverlap(jan[0], jan[1], day("2023-12-01"), day("2024-03-01")), "rango que contiene al otro")
	assert.False(t, pricing.RangesOverlap(jan[0], jan[1], day("2024-02-01"), day("2024-02-28")))
	assert.False(t, pricing.RangesOverlap(jan[0], jan[1], day("2023-12-01"), day("2023-12-31")))
}
