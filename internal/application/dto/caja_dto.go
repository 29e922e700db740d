package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CreateCajaRequest body para POST /api/cajas.
type CreateCajaRequest struct {
	Name          string          `json:"nombre"`
	OpeningAmount decimal.Decimal `json:"monto_apertura"`
}

// OpenCajaRequest body para POST /api/cajas/:id/abrir.
type OpenCajaRequest struct {
	OpeningAmount decimal.Decimal `json:"monto_apertura"`
}

// MovimientoRequest body para POST /api/cajas/:id/movimientos.
type MovimientoRequest struct {
	Type          string          `json:"tipo"` // INGRESO | EGRESO
	Amount        decimal.Decimal `json:"monto"`
	PaymentMethod string          `json:"metodo_pago"`
	Description   string          `json:"descripcion,omitempty"`
	Reference     string          `json:"referencia,omitempty"`
}

// CierreRequest body para POST /api/cajas/:id/cierres.
type CierreRequest struct {
	Type            string          `json:"tipo"` // PARCIAL | TOTAL
	DeclaredBalance decimal.Decimal `json:"saldo_real"`
	Observations    string          `json:"observaciones,omitempty"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// CajaResponse salida de una caja.
type CajaResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"nombre"`
	OpeningAmount decimal.Decimal `json:"monto_apertura"`
	Balance       decimal.Decimal `json:"saldo_actual"`
	State         string          `json:"estado"`
	OpenedBy      string          `json:"usuario_apertura_id"`
	OpenedAt      time.Time       `json:"fecha_apertura"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovimientoResponse salida de un movimiento.
type MovimientoResponse struct {
	ID            string          `json:"id"`
	CajaID        string          `json:"caja_id"`
	UserID        string          `json:"usuario_id"`
	Type          string          `json:"tipo"`
	Amount        decimal.Decimal `json:"monto"`
	PaymentMethod string          `json:"metodo_pago"`
	Description   string          `json:"descripcion,omitempty"`
	Reference     string          `json:"referencia,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecordMovementResponse movimiento registrado más el saldo resultante.
type RecordMovementResponse struct {
	Movement MovimientoResponse `json:"movimiento"`
	Balance  decimal.Decimal    `json:"saldo_actual"`
}

// CierreResponse salida de un cierre de caja.
type CierreResponse struct {
	ID              string          `json:"id"`
	CajaID          string          `json:"caja_id"`
	UserID          string          `json:"usuario_id"`
	Type            string          `json:"tipo"`
	OpeningBalance  decimal.Decimal `json:"saldo_inicial"`
	ComputedBalance decimal.Decimal `json:"saldo_final"`
	DeclaredBalance decimal.Decimal `json:"saldo_real"`
	Discrepancy     decimal.Decimal `json:"diferencia"`
	Observations    string          `json:"observaciones,omitempty"`
	CajaState       string          `json:"estado_caja"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CajaSummaryResponse resumen del día de una caja.
type CajaSummaryResponse struct {
	CajaID        string          `json:"caja_id"`
	IncomeTotal   decimal.Decimal `json:"total_ingresos"`
	ExpenseTotal  decimal.Decimal `json:"total_egresos"`
	MovementCount int             `json:"cantidad_movimientos"`
	Balance       decimal.Decimal `json:"saldo_actual"`
	OpeningAmount decimal.Decimal `json:"monto_apertura"`
	State         string          `json:"estado"`

	// LedgerBalance monto de apertura + Σ movimientos desde la apertura (solo caja abierta).
	LedgerBalance *decimal.Decimal `json:"saldo_libro,omitempty"`
}

// TotalsByMethodResponse neto firmado por método de pago.
type TotalsByMethodResponse struct {
	CajaID string                     `json:"caja_id"`
	Totals map[string]decimal.Decimal `json:"totales"`
}
