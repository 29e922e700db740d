package dto

import (
	"strings"
	"time"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PromotionScopeRequest selector de alcance: exactamente uno de LotIDs, UrbanizationID o ApplyToAll.
type PromotionScopeRequest struct {
	LotIDs         []string `json:"lotes_especificos,omitempty"`
	UrbanizationID string   `json:"urbanizacion_id,omitempty"`
	ApplyToAll     bool     `json:"aplicar_a_todos,omitempty"`
}

// Scope convierte el selector en la variante de alcance correspondiente.
// Falla con domain.ErrValidation si no hay selector o hay más de uno.
func (r PromotionScopeRequest) Scope() (entity.PromotionScope, error) {
	var selected []entity.PromotionScope
	if len(r.LotIDs) > 0 {
		selected = append(selected, entity.ScopeLots{LotIDs: dedupe(r.LotIDs)})
	}
	if strings.TrimSpace(r.UrbanizationID) != "" {
		selected = append(selected, entity.ScopeUrbanization{UrbanizationID: strings.TrimSpace(r.UrbanizationID)})
	}
	if r.ApplyToAll {
		selected = append(selected, entity.ScopeAllAvailable{})
	}
	switch len(selected) {
	case 0:
		return nil, domain.Validation("debe indicar lotes_especificos, urbanizacion_id o aplicar_a_todos")
	case 1:
		return selected[0], nil
	default:
		return nil, domain.Validation("solo se permite un método de aplicación a la vez")
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreatePromotionRequest body para POST /api/promociones.
type CreatePromotionRequest struct {
	Title       string          `json:"titulo"`
	Description string          `json:"descripcion"`
	Discount    decimal.Decimal `json:"descuento"`
	StartDate   time.Time       `json:"fecha_inicio"`
	EndDate     time.Time       `json:"fecha_fin"`
	PromotionScopeRequest
}

// UpdateDiscountRequest body para PATCH /api/promociones/:id/descuento.
type UpdateDiscountRequest struct {
	Discount decimal.Decimal `json:"descuento"`
}

// LotError fallo por lote dentro de una aplicación masiva.
type LotError struct {
	LotID   string `json:"lote_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ApplyResult resultado de aplicar una promoción a su alcance (best-effort por lote).
type ApplyResult struct {
	PromotionID  string     `json:"promocion_id"`
	Method       string     `json:"metodo_aplicacion"`
	AssignedLots int        `json:"lotes_asignados"`
	RestoredLots int        `json:"lotes_restaurados"`
	Errors       []LotError `json:"errores"`
}

// PromotionLotResponse lote enlazado a una promoción.
type PromotionLotResponse struct {
	LotID           string          `json:"lote_id"`
	OriginalPrice   decimal.Decimal `json:"precio_original"`
	DiscountedPrice decimal.Decimal `json:"precio_con_descuento"`
}

// PromotionResponse salida de una promoción.
type PromotionResponse struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"titulo"`
	Description    string                 `json:"descripcion"`
	Discount       decimal.Decimal        `json:"descuento"`
	StartDate      time.Time              `json:"fecha_inicio"`
	EndDate        time.Time              `json:"fecha_fin"`
	Active         bool                   `json:"activa"`
	Method         string                 `json:"metodo_aplicacion,omitempty"`
	LotIDs         []string               `json:"lotes_especificos,omitempty"`
	UrbanizationID string                 `json:"urbanizacion_id,omitempty"`
	Lots           []PromotionLotResponse `json:"lotes,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// CreatePromotionResponse promoción creada más el resultado de su aplicación inicial.
type CreatePromotionResponse struct {
	Promotion PromotionResponse `json:"promocion"`
	Applied   ApplyResult       `json:"aplicacion"`
}

// RemoveFromLotResult resultado de quitar una promoción de un lote.
type RemoveFromLotResult struct {
	Removed       bool `json:"eliminado"`
	PriceRestored bool `json:"precio_restaurado"`
}

// UpdateDiscountResult resultado de cambiar el descuento de una promoción.
type UpdateDiscountResult struct {
	PromotionID  string `json:"promocion_id"`
	RepricedLots int    `json:"lotes_actualizados"`
}

// DeletePromotionResult resultado de eliminar una promoción.
type DeletePromotionResult struct {
	PromotionID  string `json:"promocion_id"`
	RestoredLots int    `json:"lotes_restaurados"`
}

// SweepResult resultado del barrido de promociones vencidas.
type SweepResult struct {
	ProcessedPromotions int `json:"promociones_procesadas"`
	RestoredLots        int `json:"lotes_restaurados"`
}
