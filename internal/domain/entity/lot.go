package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote.
const (
	LotStateAvailable = "DISPONIBLE"
	LotStateReserved  = "RESERVADO"
	LotStateSold      = "VENDIDO"
	LotStateWithOffer = "CON_OFERTA"
)

// Urbanization agrupa lotes (proyecto de lotización).
type Urbanization struct {
	ID          string
	Name        string
	Location    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Lot representa un lote vendible dentro de una urbanización.
// BasePrice es el precio de lista; CurrentPrice es el precio vigente (cotizaciones y ventas),
// derivado por las promociones aplicadas.
type Lot struct {
	ID             string
	UrbanizationID string
	Number         string // único por urbanización
	Area           decimal.Decimal
	BasePrice      decimal.Decimal
	CurrentPrice   decimal.Decimal
	State          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PriceMutable indica si las promociones pueden modificar el precio vigente del lote.
// Un lote RESERVADO o VENDIDO conserva su precio congelado.
func (l *Lot) PriceMutable() bool {
	return l.State == LotStateAvailable || l.State == LotStateWithOffer
}

// ValidLotState indica si s es un estado de lote conocido.
func ValidLotState(s string) bool {
	switch s {
	case LotStateAvailable, LotStateReserved, LotStateSold, LotStateWithOffer:
		return true
	}
	return false
}
