package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ repository.PromotionRepository     = (*PromotionRepo)(nil)
	_ repository.LotPromotionRepository = (*LotPromotionRepo)(nil)
)

const promotionColumns = `p.id, p.titulo, p.descripcion, p.descuento, p.fecha_inicio, p.fecha_fin, p.activa,
	p.metodo_aplicacion, p.lotes_especificos, p.urbanizacion_id::text, p.aplicar_a_todos, p.created_at, p.updated_at`

// PromotionRepo implementación de PromotionRepository sobre PostgreSQL.
// El alcance se guarda en metodo_aplicacion + una columna por variante.
type PromotionRepo struct {
	db Querier
}

// NewPromotionRepository construye el adaptador (pool o tx).
func NewPromotionRepository(db Querier) *PromotionRepo {
	return &PromotionRepo{db: db}
}

func (r *PromotionRepo) Create(ctx context.Context, p *entity.Promotion) error {
	method, lotIDs, urbID, all := scopeColumns(p.Scope)
	query := `
		INSERT INTO promociones (id, titulo, descripcion, descuento, fecha_inicio, fecha_fin, activa,
			metodo_aplicacion, lotes_especificos, urbanizacion_id, aplicar_a_todos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Discount, p.StartDate, p.EndDate, p.Active,
		method, lotIDs, urbID, all, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promoción: %w", err)
	}
	return nil
}

func (r *PromotionRepo) GetByID(ctx context.Context, id string) (*entity.Promotion, error) {
	return r.get(ctx, `SELECT `+promotionColumns+` FROM promociones p WHERE p.id = $1`, id)
}

// GetForUpdate bloquea la fila de la promoción.
func (r *PromotionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Promotion, error) {
	return r.get(ctx, `SELECT `+promotionColumns+` FROM promociones p WHERE p.id = $1 FOR UPDATE`, id)
}

func (r *PromotionRepo) List(ctx context.Context, onlyActive bool) ([]*entity.Promotion, error) {
	return r.list(ctx, `SELECT `+promotionColumns+` FROM promociones p
		WHERE (NOT $1 OR p.activa) ORDER BY p.created_at DESC, p.id`, onlyActive)
}

func (r *PromotionRepo) Update(ctx context.Context, p *entity.Promotion) error {
	method, lotIDs, urbID, all := scopeColumns(p.Scope)
	query := `
		UPDATE promociones SET titulo = $2, descripcion = $3, descuento = $4, fecha_inicio = $5, fecha_fin = $6,
			activa = $7, metodo_aplicacion = $8, lotes_especificos = $9, urbanizacion_id = $10, aplicar_a_todos = $11,
			updated_at = $12
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Title, p.Description, p.Discount, p.StartDate, p.EndDate,
		p.Active, method, lotIDs, urbID, all, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update promoción: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("promoción %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina la promoción; sus enlaces caen por ON DELETE CASCADE.
func (r *PromotionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM promociones WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete promoción: %w", err)
	}
	return nil
}

func (r *PromotionRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Promotion, error) {
	return r.list(ctx, `SELECT `+promotionColumns+` FROM promociones p
		WHERE p.activa AND p.fecha_fin < $1 ORDER BY p.fecha_fin, p.id`, now)
}

func (r *PromotionRepo) ListActiveByLot(ctx context.Context, lotID string) ([]*entity.Promotion, error) {
	if !validID(lotID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+promotionColumns+` FROM promociones p
		JOIN lote_promocion lp ON lp.promocion_id = p.id
		WHERE lp.lote_id = $1 AND p.activa ORDER BY p.created_at DESC, p.id`, lotID)
}

func (r *PromotionRepo) get(ctx context.Context, query, id string) (*entity.Promotion, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanPromotion(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PromotionRepo) list(ctx context.Context, query string, arg any) ([]*entity.Promotion, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list promociones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPromotion(row pgx.Row) (*entity.Promotion, error) {
	var (
		p      entity.Promotion
		method *string
		lotIDs []string
		urbID  *string
		all    bool
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Discount, &p.StartDate, &p.EndDate, &p.Active,
		&method, &lotIDs, &urbID, &all, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan promoción: %w", err)
	}
	switch deref(method) {
	case entity.ScopeKindLots:
		p.Scope = entity.ScopeLots{LotIDs: lotIDs}
	case entity.ScopeKindUrbanization:
		p.Scope = entity.ScopeUrbanization{UrbanizationID: deref(urbID)}
	case entity.ScopeKindAll:
		p.Scope = entity.ScopeAllAvailable{}
	}
	return &p, nil
}

// scopeColumns descompone el alcance en (metodo_aplicacion, lotes_especificos, urbanizacion_id, aplicar_a_todos).
func scopeColumns(scope entity.PromotionScope) (method *string, lotIDs []string, urbID *string, all bool) {
	switch s := scope.(type) {
	case entity.ScopeLots:
		return nullable(s.Kind()), s.LotIDs, nil, false
	case entity.ScopeUrbanization:
		return nullable(s.Kind()), nil, nullable(s.UrbanizationID), false
	case entity.ScopeAllAvailable:
		return nullable(s.Kind()), nil, nil, true
	}
	return nil, nil, nil, false
}

// ─── Enlaces lote-promoción ──────────────────────────────────────────────────

const linkColumns = `lote_id, promocion_id, precio_original, precio_con_descuento, created_at, updated_at`

// LotPromotionRepo implementación de LotPromotionRepository sobre PostgreSQL.
type LotPromotionRepo struct {
	db Querier
}

// NewLotPromotionRepository construye el adaptador (pool o tx).
func NewLotPromotionRepository(db Querier) *LotPromotionRepo {
	return &LotPromotionRepo{db: db}
}

// Upsert inserta o reemplaza el enlace conservando created_at.
func (r *LotPromotionRepo) Upsert(ctx context.Context, l *entity.LotPromotion) error {
	query := `
		INSERT INTO lote_promocion (` + linkColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lote_id, promocion_id) DO UPDATE SET
			precio_original = EXCLUDED.precio_original,
			precio_con_descuento = EXCLUDED.precio_con_descuento,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, l.LotID, l.PromotionID, l.OriginalPrice, l.DiscountedPrice, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert lote_promocion: %w", err)
	}
	return nil
}

func (r *LotPromotionRepo) Get(ctx context.Context, lotID, promotionID string) (*entity.LotPromotion, error) {
	if !validID(lotID) || !validID(promotionID) {
		return nil, nil
	}
	var l entity.LotPromotion
	err := r.db.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM lote_promocion WHERE lote_id = $1 AND promocion_id = $2`,
		lotID, promotionID,
	).Scan(&l.LotID, &l.PromotionID, &l.OriginalPrice, &l.DiscountedPrice, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lote_promocion: %w", err)
	}
	return &l, nil
}

func (r *LotPromotionRepo) ListByPromotion(ctx context.Context, promotionID string) ([]*entity.LotPromotion, error) {
	if !validID(promotionID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+linkColumns+` FROM lote_promocion
		WHERE promocion_id = $1 ORDER BY created_at DESC, lote_id`, promotionID)
}

func (r *LotPromotionRepo) ListByLot(ctx context.Context, lotID string) ([]*entity.LotPromotion, error) {
	if !validID(lotID) {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+linkColumns+` FROM lote_promocion
		WHERE lote_id = $1 ORDER BY created_at DESC, promocion_id`, lotID)
}

func (r *LotPromotionRepo) Delete(ctx context.Context, lotID, promotionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM lote_promocion WHERE lote_id = $1 AND promocion_id = $2`, lotID, promotionID)
	if err != nil {
		return fmt.Errorf("delete lote_promocion: %w", err)
	}
	return nil
}

func (r *LotPromotionRepo) list(ctx context.Context, query string, id string) ([]*entity.LotPromotion, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("list lote_promocion: %w", err)
	}
	defer rows.Close()
	var list []*entity.LotPromotion
	for rows.Next() {
		var l entity.LotPromotion
		if err := rows.Scan(&l.LotID, &l.PromotionID, &l.OriginalPrice, &l.DiscountedPrice, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan lote_promocion: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
