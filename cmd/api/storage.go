package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/memory"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Inmobiliaria-api/pkg/config"
	"github.com/jhoicas/Inmobiliaria-api/pkg/logger"
)

// txRunner transacciones del catálogo/promociones y de caja.
type txRunner interface {
	promotion.TxRunner
	caja.TxRunner
}

// storage repositorios de la app sobre el backend elegido (STORAGE).
type storage struct {
	tx      txRunner
	users   repository.UserRepository
	urbs    repository.UrbanizationRepository
	lots    repository.LotRepository
	promos  repository.PromotionRepository
	links   repository.LotPromotionRepository
	cajas   repository.CajaRepository
	movs    repository.MovimientoCajaRepository
	cierres repository.CierreCajaRepository
	audit   repository.AuditRepository
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st := memory.New()
		return &storage{
			tx:      st,
			users:   st.Users(),
			urbs:    st.Urbanizations(),
			lots:    st.Lots(),
			promos:  st.Promotions(),
			links:   st.LotPromotions(),
			cajas:   st.Cajas(),
			movs:    st.Movimientos(),
			cierres: st.Cierres(),
			audit:   st.Audit(),
			close:   func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name, log.Component("postgres"))
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migraciones")); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
	}
	return &storage{
		tx:      postgres.NewTxRunner(pool),
		users:   postgres.NewUserRepository(pool),
		urbs:    postgres.NewUrbanizationRepository(pool),
		lots:    postgres.NewLotRepository(pool),
		promos:  postgres.NewPromotionRepository(pool),
		links:   postgres.NewLotPromotionRepository(pool),
		cajas:   postgres.NewCajaRepository(pool),
		movs:    postgres.NewMovimientoRepository(pool),
		cierres: postgres.NewCierreRepository(pool),
		audit:   postgres.NewAuditRepository(pool),
		close:   pool.Close,
	}, nil
}
