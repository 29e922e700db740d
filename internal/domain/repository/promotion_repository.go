package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
)

// PromotionRepository define el puerto de persistencia para promociones.
type PromotionRepository interface {
	Create(ctx context.Context, p *entity.Promotion) error
	GetByID(ctx context.Context, id string) (*entity.Promotion, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Promotion, error)
	List(ctx context.Context, onlyActive bool) ([]*entity.Promotion, error)
	// Update persiste título, descripción, descuento, vigencia, flag activa y alcance.
	Update(ctx context.Context, p *entity.Promotion) error
	Delete(ctx context.Context, id string) error
	// ListExpired devuelve las promociones activas con fecha_fin anterior a now.
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Promotion, error)
	// ListActiveByLot devuelve las promociones activas enlazadas al lote.
	ListActiveByLot(ctx context.Context, lotID string) ([]*entity.Promotion, error)
}

// LotPromotionRepository define el puerto de persistencia para la relación lote-promoción.
type LotPromotionRepository interface {
	// Upsert inserta o reemplaza el enlace (lote_id, promocion_id).
	Upsert(ctx context.Context, link *entity.LotPromotion) error
	Get(ctx context.Context, lotID, promotionID string) (*entity.LotPromotion, error)
	ListByPromotion(ctx context.Context, promotionID string) ([]*entity.LotPromotion, error)
	// ListByLot devuelve los enlaces del lote, el aplicado más recientemente (created_at) primero.
	ListByLot(ctx context.Context, lotID string) ([]*entity.LotPromotion, error)
	Delete(ctx context.Context, lotID, promotionID string) error
}
