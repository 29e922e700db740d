package promotion

import (
	"context"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de promociones.
type TxRunner interface {
	RunLots(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		promoRepo repository.PromotionRepository,
		linkRepo repository.LotPromotionRepository,
	) error) error
}
