package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementSummary agregado de movimientos en un rango.
type MovementSummary struct {
	IncomeTotal   decimal.Decimal
	ExpenseTotal  decimal.Decimal
	MovementCount int
}

// CajaRepository define el puerto de persistencia para cajas.
type CajaRepository interface {
	Create(ctx context.Context, c *entity.Caja) error
	GetByID(ctx context.Context, id string) (*entity.Caja, error)
	// GetForUpdate bloquea la fila de la caja (SELECT FOR UPDATE) para serializar cambios de saldo.
	GetForUpdate(ctx context.Context, id string) (*entity.Caja, error)
	List(ctx context.Context) ([]*entity.Caja, error)
	// Update persiste estado, monto de apertura, saldo y datos de apertura.
	Update(ctx context.Context, c *entity.Caja) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

// MovimientoCajaRepository define el puerto de persistencia para movimientos (append-only).
type MovimientoCajaRepository interface {
	Create(ctx context.Context, m *entity.MovimientoCaja) error
	ListByCaja(ctx context.Context, cajaID string, from, to *time.Time) ([]*entity.MovimientoCaja, error)
	// Summarize agrega ingresos/egresos de la caja con created_at en [from, to).
	Summarize(ctx context.Context, cajaID string, from, to time.Time) (MovementSummary, error)
	// TotalsByMethod neto firmado por método de pago (ingresos +, egresos -).
	TotalsByMethod(ctx context.Context, cajaID string) (map[string]decimal.Decimal, error)
	// SumSignedSince Σ montos firmados con created_at >= from.
	SumSignedSince(ctx context.Context, cajaID string, from time.Time) (decimal.Decimal, error)
}

// CierreCajaRepository define el puerto de persistencia para cierres (append-only).
type CierreCajaRepository interface {
	Create(ctx context.Context, c *entity.CierreCaja) error
	GetByID(ctx context.Context, id string) (*entity.CierreCaja, error)
	ListByCaja(ctx context.Context, cajaID string) ([]*entity.CierreCaja, error)
}
