package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcaja "github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
)

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":         "$0,00",
		"999.5":     "$999,50",
		"1234.5":    "$1.234,50",
		"1000000":   "$1.000.000,00",
		"-1234.56":  "-$1.234,56",
		"123456.78": "$123.456,78",
	}
	for in, want := range cases {
		assert.Equal(t, want, money(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateClosingPDF(t *testing.T) {
	now := time.Date(2024, 3, 5, 18, 30, 0, 0, time.Local)
	report := appcaja.ClosingReport{
		Caja: &entity.Caja{ID: "c1", Name: "Caja Principal", State: entity.CajaStateClosed, OpenedAt: now.Add(-8 * time.Hour)},
		Cierre: &entity.CierreCaja{
			ID:              "k1",
			CajaID:          "c1",
			Type:            entity.CierreTotal,
			OpeningBalance:  decimal.RequireFromString("1000"),
			ComputedBalance: decimal.RequireFromString("1150.50"),
			DeclaredBalance: decimal.RequireFromString("1140.50"),
			Discrepancy:     decimal.RequireFromString("-10"),
			Observations:    "faltante en efectivo",
			CreatedAt:       now,
		},
		UserName: "Sara Secretaria",
		Totals: map[string]decimal.Decimal{
			entity.MetodoEfectivo:      decimal.RequireFromString("250.50"),
			entity.MetodoTransferencia: decimal.RequireFromString("-100"),
		},
	}

	data, err := NewMarotoPDFGenerator("Inmobiliaria").GenerateClosingPDF(context.Background(), report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	report.Totals = nil
	data, err = NewMarotoPDFGenerator("Inmobiliaria").GenerateClosingPDF(context.Background(), report)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = NewMarotoPDFGenerator("").GenerateClosingPDF(context.Background(), appcaja.ClosingReport{})
	assert.Error(t, err)
}
