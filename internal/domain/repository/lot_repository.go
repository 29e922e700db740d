package repository

import (
	"context"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LotFilter criterios de búsqueda de lotes. Campos vacíos = sin filtro.
type LotFilter struct {
	UrbanizationID string
	State          string
	Limit          int
	Offset         int
}

// LotRepository define el puerto de persistencia para lotes (DIP).
// Los Get devuelven (nil, nil) cuando el lote no existe.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate obtiene el lote y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	List(ctx context.Context, filter LotFilter) ([]*entity.Lot, error)
	// UpdatePricing escribe precio vigente y estado; único camino para mutar precio_actual.
	UpdatePricing(ctx context.Context, id string, currentPrice decimal.Decimal, state string) error
	Delete(ctx context.Context, id string) error
}

// UrbanizationRepository define el puerto de persistencia para urbanizaciones.
type UrbanizationRepository interface {
	Create(ctx context.Context, u *entity.Urbanization) error
	GetByID(ctx context.Context, id string) (*entity.Urbanization, error)
	List(ctx context.Context) ([]*entity.Urbanization, error)
}
