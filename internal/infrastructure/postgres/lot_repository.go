package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var (
	_ repository.UrbanizationRepository = (*UrbanizationRepo)(nil)
	_ repository.LotRepository          = (*LotRepo)(nil)
)

// ─── Urbanizaciones ──────────────────────────────────────────────────────────

// UrbanizationRepo implementación de UrbanizationRepository sobre PostgreSQL.
type UrbanizationRepo struct {
	db Querier
}

// NewUrbanizationRepository construye el adaptador.
func NewUrbanizationRepository(db Querier) *UrbanizationRepo {
	return &UrbanizationRepo{db: db}
}

func (r *UrbanizationRepo) Create(ctx context.Context, u *entity.Urbanization) error {
	query := `
		INSERT INTO urbanizaciones (id, nombre, ubicacion, descripcion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, u.ID, u.Name, u.Location, u.Description, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("urbanización %q: %w", u.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert urbanización: %w", err)
	}
	return nil
}

func (r *UrbanizationRepo) GetByID(ctx context.Context, id string) (*entity.Urbanization, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT id, nombre, ubicacion, descripcion, created_at, updated_at FROM urbanizaciones WHERE id = $1`
	var u entity.Urbanization
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Location, &u.Description, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get urbanización: %w", err)
	}
	return &u, nil
}

func (r *UrbanizationRepo) List(ctx context.Context) ([]*entity.Urbanization, error) {
	query := `SELECT id, nombre, ubicacion, descripcion, created_at, updated_at FROM urbanizaciones ORDER BY nombre`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list urbanizaciones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Urbanization
	for rows.Next() {
		var u entity.Urbanization
		if err := rows.Scan(&u.ID, &u.Name, &u.Location, &u.Description, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan urbanización: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// ─── Lotes ───────────────────────────────────────────────────────────────────

const lotColumns = `id, urbanizacion_id, numero_lote, area, precio_base, precio_actual, estado, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL.
type LotRepo struct {
	db Querier
}

// NewLotRepository construye el adaptador (pool o tx).
func NewLotRepository(db Querier) *LotRepo {
	return &LotRepo{db: db}
}

func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lotes (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.UrbanizationID, l.Number, l.Area, l.BasePrice, l.CurrentPrice, l.State, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s: %w", l.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert lote: %w", err)
	}
	return nil
}

func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lotes WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del lote hasta el fin de la transacción.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lotes WHERE id = $1 FOR UPDATE`, id)
}

// List filtra por urbanización y estado; Limit 0 = sin límite.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM lotes
		WHERE ($1 = '' OR urbanizacion_id::text = $1)
		  AND ($2 = '' OR estado = $2)
		ORDER BY urbanizacion_id, numero_lote
		LIMIT NULLIF($3, 0) OFFSET $4`
	rows, err := r.db.Query(ctx, query, f.UrbanizationID, f.State, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list lotes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// UpdatePricing escribe precio vigente y estado.
func (r *LotRepo) UpdatePricing(ctx context.Context, id string, currentPrice decimal.Decimal, state string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE lotes SET precio_actual = $2, estado = $3, updated_at = $4 WHERE id = $1`,
		id, currentPrice, state, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update precio lote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el lote; sus enlaces caen por ON DELETE CASCADE.
func (r *LotRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM lotes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lote: %w", err)
	}
	return nil
}

func (r *LotRepo) get(ctx context.Context, query, id string) (*entity.Lot, error) {
	if !validID(id) {
		return nil, nil
	}
	l, err := scanLot(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return l, err
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.UrbanizationID, &l.Number, &l.Area, &l.BasePrice, &l.CurrentPrice, &l.State, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lote: %w", err)
	}
	return &l, nil
}
