package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUrbanizationRequest body para POST /api/urbanizaciones.
type CreateUrbanizationRequest struct {
	Name        string `json:"nombre"`
	Location    string `json:"ubicacion"`
	Description string `json:"descripcion,omitempty"`
}

// UrbanizationResponse salida de una urbanización.
type UrbanizationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Location    string    `json:"ubicacion"`
	Description string    `json:"descripcion,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateLotRequest body para POST /api/urbanizaciones/:id/lotes.
type CreateLotRequest struct {
	Number    string          `json:"numero_lote"`
	Area      decimal.Decimal `json:"area"`
	BasePrice decimal.Decimal `json:"precio_base"`
}

// ChangeLotStateRequest body para PATCH /api/lotes/:id/estado.
type ChangeLotStateRequest struct {
	State string `json:"estado"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID             string          `json:"id"`
	UrbanizationID string          `json:"urbanizacion_id"`
	Number         string          `json:"numero_lote"`
	Area           decimal.Decimal `json:"area"`
	BasePrice      decimal.Decimal `json:"precio_base"`
	CurrentPrice   decimal.Decimal `json:"precio_actual"`
	State          string          `json:"estado"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// LotListResponse respuesta paginada de lotes.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}
