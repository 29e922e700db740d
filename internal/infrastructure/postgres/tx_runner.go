package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/usecase"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ promotion.TxRunner  = (*TxRunner)(nil)
	_ usecase.LotTxRunner = (*TxRunner)(nil)
	_ caja.TxRunner       = (*TxRunner)(nil)
)

// retryDelays esperas entre reintentos ante serialization failure o deadlock.
var retryDelays = []time.Duration{20 * time.Millisecond, 80 * time.Millisecond, 200 * time.Millisecond}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLots inicia una transacción con repos de lotes, promociones y enlaces lote-promoción.
func (r *TxRunner) RunLots(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	promoRepo repository.PromotionRepository,
	linkRepo repository.LotPromotionRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewLotRepository(tx), NewPromotionRepository(tx), NewLotPromotionRepository(tx))
	})
}

// RunCaja inicia una transacción con repos de caja, movimientos y cierres.
func (r *TxRunner) RunCaja(ctx context.Context, fn func(
	cajaRepo repository.CajaRepository,
	movRepo repository.MovimientoCajaRepository,
	cierreRepo repository.CierreCajaRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewCajaRepository(tx), NewMovimientoRepository(tx), NewCierreRepository(tx))
	})
}

// run hace Begin, fn, Commit; ante serialization failure o deadlock repite la transacción completa.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.once(ctx, fn)
		if err == nil || !isRetryable(err) || attempt >= len(retryDelays) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelays[attempt]):
		}
	}
}

func (r *TxRunner) once(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
