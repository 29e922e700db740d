package caja

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que movimiento y saldo (o cierre y estado) se confirmen juntos.
type TxRunner interface {
	RunCaja(ctx context.Context, fn func(
		cajaRepo repository.CajaRepository,
		movRepo repository.MovimientoCajaRepository,
		cierreRepo repository.CierreCajaRepository,
	) error) error
}

// ClosingReport datos del arqueo para su representación en PDF.
type ClosingReport struct {
	Caja     *entity.Caja
	Cierre   *entity.CierreCaja
	UserName string
	Totals   map[string]decimal.Decimal // neto por método de pago
}

// ClosingPDFGenerator puerto de salida para generar el PDF de un cierre.
type ClosingPDFGenerator interface {
	GenerateClosingPDF(ctx context.Context, report ClosingReport) ([]byte, error)
}
