package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de aplicación de una promoción (columna metodo_aplicacion).
const (
	ScopeKindLots         = "LOTES"
	ScopeKindUrbanization = "URBANIZACION"
	ScopeKindAll          = "TODOS"
)

// PromotionScope es el alcance de una promoción: exactamente uno de
// ScopeLots, ScopeUrbanization o ScopeAllAvailable.
type PromotionScope interface {
	Kind() string
	isScope()
}

// ScopeLots aplica la promoción a una lista explícita de lotes.
type ScopeLots struct {
	LotIDs []string
}

// ScopeUrbanization aplica la promoción a los lotes disponibles de una urbanización.
type ScopeUrbanization struct {
	UrbanizationID string
}

// ScopeAllAvailable aplica la promoción a todos los lotes disponibles.
type ScopeAllAvailable struct{}

func (ScopeLots) Kind() string         { return ScopeKindLots }
func (ScopeUrbanization) Kind() string { return ScopeKindUrbanization }
func (ScopeAllAvailable) Kind() string { return ScopeKindAll }

func (ScopeLots) isScope()         {}
func (ScopeUrbanization) isScope() {}
func (ScopeAllAvailable) isScope() {}

// Promotion es una campaña de descuento porcentual con vigencia [StartDate, EndDate].
type Promotion struct {
	ID          string
	Title       string
	Description string
	Discount    decimal.Decimal // porcentaje, 0 < d <= 100
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
	Scope       PromotionScope // nil mientras no se haya aplicado
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired indica si la vigencia terminó respecto a now.
func (p *Promotion) Expired(now time.Time) bool {
	return p.EndDate.Before(now)
}

// LotPromotion registra la participación de un lote en una promoción.
// OriginalPrice es la foto del precio del lote al aplicar; se restaura al quitar la promoción.
type LotPromotion struct {
	LotID           string
	PromotionID     string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
