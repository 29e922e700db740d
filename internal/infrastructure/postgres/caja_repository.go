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
	_ repository.CajaRepository           = (*CajaRepo)(nil)
	_ repository.MovimientoCajaRepository = (*MovimientoRepo)(nil)
	_ repository.CierreCajaRepository     = (*CierreRepo)(nil)
)

// ─── Cajas ───────────────────────────────────────────────────────────────────

const cajaColumns = `id, nombre, monto_apertura, saldo_actual, estado, usuario_apertura_id::text, fecha_apertura, created_at, updated_at`

// CajaRepo implementación de CajaRepository sobre PostgreSQL.
type CajaRepo struct {
	db Querier
}

// NewCajaRepository construye el adaptador (pool o tx).
func NewCajaRepository(db Querier) *CajaRepo {
	return &CajaRepo{db: db}
}

func (r *CajaRepo) Create(ctx context.Context, c *entity.Caja) error {
	query := `
		INSERT INTO cajas (id, nombre, monto_apertura, saldo_actual, estado, usuario_apertura_id, fecha_apertura, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.OpeningAmount, c.Balance, c.State, nullable(c.OpenedBy), c.OpenedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("caja %q: %w", c.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert caja: %w", err)
	}
	return nil
}

func (r *CajaRepo) GetByID(ctx context.Context, id string) (*entity.Caja, error) {
	return r.get(ctx, `SELECT `+cajaColumns+` FROM cajas WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la caja (SELECT FOR UPDATE) para serializar cambios de saldo.
func (r *CajaRepo) GetForUpdate(ctx context.Context, id string) (*entity.Caja, error) {
	return r.get(ctx, `SELECT `+cajaColumns+` FROM cajas WHERE id = $1 FOR UPDATE`, id)
}

func (r *CajaRepo) List(ctx context.Context) ([]*entity.Caja, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cajaColumns+` FROM cajas ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list cajas: %w", err)
	}
	defer rows.Close()
	var list []*entity.Caja
	for rows.Next() {
		c, err := scanCaja(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CajaRepo) Update(ctx context.Context, c *entity.Caja) error {
	query := `
		UPDATE cajas SET nombre = $2, monto_apertura = $3, saldo_actual = $4, estado = $5,
			usuario_apertura_id = $6, fecha_apertura = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.OpeningAmount, c.Balance, c.State, nullable(c.OpenedBy), c.OpenedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update caja: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("caja %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *CajaRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE cajas SET saldo_actual = $2, updated_at = $3 WHERE id = $1`, id, balance, time.Now())
	if err != nil {
		return fmt.Errorf("update saldo caja: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("caja %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *CajaRepo) get(ctx context.Context, query, id string) (*entity.Caja, error) {
	if !validID(id) {
		return nil, nil
	}
	c, err := scanCaja(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func scanCaja(row pgx.Row) (*entity.Caja, error) {
	var c entity.Caja
	var openedBy *string
	err := row.Scan(&c.ID, &c.Name, &c.OpeningAmount, &c.Balance, &c.State, &openedBy, &c.OpenedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan caja: %w", err)
	}
	c.OpenedBy = deref(openedBy)
	return &c, nil
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

const movColumns = `id, caja_id, usuario_id, tipo, monto, metodo_pago, descripcion, referencia, created_at`

// signedAmount expresión SQL del monto con signo según el tipo.
const signedAmount = `CASE WHEN tipo = 'EGRESO' THEN -monto ELSE monto END`

// MovimientoRepo implementación de MovimientoCajaRepository (append-only).
type MovimientoRepo struct {
	db Querier
}

// NewMovimientoRepository construye el adaptador (pool o tx).
func NewMovimientoRepository(db Querier) *MovimientoRepo {
	return &MovimientoRepo{db: db}
}

func (r *MovimientoRepo) Create(ctx context.Context, m *entity.MovimientoCaja) error {
	query := `INSERT INTO movimientos_caja (` + movColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		m.ID, m.CajaID, m.UserID, m.Type, m.Amount, m.PaymentMethod, m.Description, m.Reference, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// ListByCaja movimientos en [from, to), el más reciente primero. Extremos nil = abiertos.
func (r *MovimientoRepo) ListByCaja(ctx context.Context, cajaID string, from, to *time.Time) ([]*entity.MovimientoCaja, error) {
	if !validID(cajaID) {
		return nil, nil
	}
	query := `
		SELECT ` + movColumns + `
		FROM movimientos_caja
		WHERE caja_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id`
	rows, err := r.db.Query(ctx, query, cajaID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovimientoCaja
	for rows.Next() {
		var m entity.MovimientoCaja
		if err := rows.Scan(&m.ID, &m.CajaID, &m.UserID, &m.Type, &m.Amount, &m.PaymentMethod, &m.Description, &m.Reference, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

func (r *MovimientoRepo) Summarize(ctx context.Context, cajaID string, from, to time.Time) (repository.MovementSummary, error) {
	sum := repository.MovementSummary{IncomeTotal: decimal.Zero, ExpenseTotal: decimal.Zero}
	if !validID(cajaID) {
		return sum, nil
	}
	query := `
		SELECT COALESCE(SUM(monto) FILTER (WHERE tipo = 'INGRESO'), 0),
		       COALESCE(SUM(monto) FILTER (WHERE tipo = 'EGRESO'), 0),
		       COUNT(*)
		FROM movimientos_caja
		WHERE caja_id = $1 AND created_at >= $2 AND created_at < $3`
	if err := r.db.QueryRow(ctx, query, cajaID, from, to).Scan(&sum.IncomeTotal, &sum.ExpenseTotal, &sum.MovementCount); err != nil {
		return sum, fmt.Errorf("resumen movimientos: %w", err)
	}
	return sum, nil
}

func (r *MovimientoRepo) TotalsByMethod(ctx context.Context, cajaID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	if !validID(cajaID) {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT metodo_pago, SUM(`+signedAmount+`) FROM movimientos_caja WHERE caja_id = $1 GROUP BY metodo_pago`,
		cajaID,
	)
	if err != nil {
		return nil, fmt.Errorf("totales por método: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var method string
		var total decimal.Decimal
		if err := rows.Scan(&method, &total); err != nil {
			return nil, fmt.Errorf("scan total por método: %w", err)
		}
		out[method] = total
	}
	return out, rows.Err()
}

func (r *MovimientoRepo) SumSignedSince(ctx context.Context, cajaID string, from time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	if !validID(cajaID) {
		return total, nil
	}
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(`+signedAmount+`), 0) FROM movimientos_caja WHERE caja_id = $1 AND created_at >= $2`,
		cajaID, from,
	).Scan(&total)
	if err != nil {
		return total, fmt.Errorf("suma de movimientos: %w", err)
	}
	return total, nil
}

// ─── Cierres ─────────────────────────────────────────────────────────────────

const cierreColumns = `id, caja_id, usuario_id, tipo, saldo_inicial, saldo_final, saldo_real, diferencia, observaciones, created_at`

// CierreRepo implementación de CierreCajaRepository (append-only).
type CierreRepo struct {
	db Querier
}

// NewCierreRepository construye el adaptador (pool o tx).
func NewCierreRepository(db Querier) *CierreRepo {
	return &CierreRepo{db: db}
}

func (r *CierreRepo) Create(ctx context.Context, c *entity.CierreCaja) error {
	query := `INSERT INTO cierres_caja (` + cierreColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.CajaID, c.UserID, c.Type, c.OpeningBalance, c.ComputedBalance, c.DeclaredBalance, c.Discrepancy,
		c.Observations, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cierre: %w", err)
	}
	return nil
}

func (r *CierreRepo) GetByID(ctx context.Context, id string) (*entity.CierreCaja, error) {
	if !validID(id) {
		return nil, nil
	}
	c, err := scanCierre(r.db.QueryRow(ctx, `SELECT `+cierreColumns+` FROM cierres_caja WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *CierreRepo) ListByCaja(ctx context.Context, cajaID string) ([]*entity.CierreCaja, error) {
	if !validID(cajaID) {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+cierreColumns+` FROM cierres_caja WHERE caja_id = $1 ORDER BY created_at DESC, id`, cajaID)
	if err != nil {
		return nil, fmt.Errorf("list cierres: %w", err)
	}
	defer rows.Close()
	var list []*entity.CierreCaja
	for rows.Next() {
		c, err := scanCierre(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func scanCierre(row pgx.Row) (*entity.CierreCaja, error) {
	var c entity.CierreCaja
	err := row.Scan(&c.ID, &c.CajaID, &c.UserID, &c.Type, &c.OpeningBalance, &c.ComputedBalance, &c.DeclaredBalance,
		&c.Discrepancy, &c.Observations, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan cierre: %w", err)
	}
	return &c, nil
}
