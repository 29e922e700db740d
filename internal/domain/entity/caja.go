package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una caja.
const (
	CajaStateOpen   = "ABIERTA"
	CajaStateClosed = "CERRADA"
)

// Tipos de movimiento de caja.
const (
	MovimientoIngreso = "INGRESO"
	MovimientoEgreso  = "EGRESO"
)

// Tipos de cierre de caja.
const (
	CierreParcial = "PARCIAL"
	CierreTotal   = "TOTAL"
)

// Métodos de pago aceptados en movimientos de caja.
const (
	MetodoEfectivo      = "EFECTIVO"
	MetodoTransferencia = "TRANSFERENCIA"
	MetodoTarjeta       = "TARJETA"
	MetodoDeposito      = "DEPOSITO"
	MetodoCheque        = "CHEQUE"
)

// ValidPaymentMethod indica si m es un método de pago aceptado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MetodoEfectivo, MetodoTransferencia, MetodoTarjeta, MetodoDeposito, MetodoCheque:
		return true
	}
	return false
}

// Caja es una caja registradora con su sesión vigente.
// Mientras está ABIERTA: Balance = OpeningAmount + Σ(movimientos firmados desde OpenedAt).
type Caja struct {
	ID            string
	Name          string
	OpeningAmount decimal.Decimal
	Balance       decimal.Decimal
	State         string
	OpenedBy      string
	OpenedAt      time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOpen indica si la caja admite movimientos.
func (c *Caja) IsOpen() bool { return c.State == CajaStateOpen }

// MovimientoCaja es un asiento inmutable del libro de caja. Amount siempre es positivo;
// el signo lo da Type.
type MovimientoCaja struct {
	ID            string
	CajaID        string
	UserID        string
	Type          string
	Amount        decimal.Decimal
	PaymentMethod string
	Description   string
	Reference     string
	CreatedAt     time.Time
}

// Signed devuelve +Amount para INGRESO y -Amount para EGRESO.
func (m *MovimientoCaja) Signed() decimal.Decimal {
	if m.Type == MovimientoEgreso {
		return m.Amount.Neg()
	}
	return m.Amount
}

// CierreCaja es un registro de arqueo: saldo calculado vs saldo real declarado.
type CierreCaja struct {
	ID              string
	CajaID          string
	UserID          string
	Type            string
	OpeningBalance  decimal.Decimal
	ComputedBalance decimal.Decimal
	DeclaredBalance decimal.Decimal
	Discrepancy     decimal.Decimal // DeclaredBalance - ComputedBalance
	Observations    string
	CreatedAt       time.Time
}

// CajaStateAfter estado en que el cierre dejó la caja: un TOTAL la cierra, un PARCIAL no.
func (c *CierreCaja) CajaStateAfter() string {
	if c.Type == CierreTotal {
		return CajaStateClosed
	}
	return CajaStateOpen
}
