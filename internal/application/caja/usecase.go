package caja

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/access"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

const (
	tableCajas       = "cajas"
	tableMovimientos = "movimientos_caja"
	tableCierres     = "cierres_caja"
)

// UseCase libro de caja: apertura, cierre, movimientos con actualización atómica del saldo y arqueos.
type UseCase struct {
	tx      TxRunner
	users   repository.UserRepository
	cajas   repository.CajaRepository
	movs    repository.MovimientoCajaRepository
	cierres repository.CierreCajaRepository
	audit   *audit.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// Option configura el caso de uso.
type Option func(*UseCase)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

// NewUseCase construye el libro de caja.
func NewUseCase(
	tx TxRunner,
	users repository.UserRepository,
	cajas repository.CajaRepository,
	movs repository.MovimientoCajaRepository,
	cierres repository.CierreCajaRepository,
	recorder *audit.Recorder,
	log zerolog.Logger,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		tx:      tx,
		users:   users,
		cajas:   cajas,
		movs:    movs,
		cierres: cierres,
		audit:   recorder,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ─── Ciclo de vida ───────────────────────────────────────────────────────────

// CreateRegister crea una caja ABIERTA con saldo igual al monto de apertura.
func (uc *UseCase) CreateRegister(ctx context.Context, actor audit.Actor, in dto.CreateCajaRequest) (*dto.CajaResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageRegister); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("el nombre de la caja es obligatorio")
	}
	if err := validateAmount(in.OpeningAmount, true); err != nil {
		return nil, err
	}
	now := uc.now()
	c := &entity.Caja{
		ID:            uuid.New().String(),
		Name:          name,
		OpeningAmount: in.OpeningAmount,
		Balance:       in.OpeningAmount,
		State:         entity.CajaStateOpen,
		OpenedBy:      actor.UserID,
		OpenedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.cajas.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreate, tableCajas, c.ID, nil, c)
	out := toCajaResponse(c)
	return &out, nil
}

// OpenRegister reabre una caja CERRADA: reinicia monto de apertura, saldo y usuario de apertura.
func (uc *UseCase) OpenRegister(ctx context.Context, actor audit.Actor, cajaID string, openingAmount decimal.Decimal) (*dto.CajaResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageRegister); err != nil {
		return nil, err
	}
	if err := validateAmount(openingAmount, true); err != nil {
		return nil, err
	}
	var before, after entity.Caja
	err := uc.tx.RunCaja(ctx, func(cajas repository.CajaRepository, _ repository.MovimientoCajaRepository, _ repository.CierreCajaRepository) error {
		c, err := lockCaja(ctx, cajas, cajaID)
		if err != nil {
			return err
		}
		if c.IsOpen() {
			return domain.State("la caja %s ya está abierta", c.Name)
		}
		before = *c
		now := uc.now()
		c.State = entity.CajaStateOpen
		c.OpeningAmount = openingAmount
		c.Balance = openingAmount
		c.OpenedBy = actor.UserID
		c.OpenedAt = now
		c.UpdatedAt = now
		if err := cajas.Update(ctx, c); err != nil {
			return err
		}
		after = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditOpen, tableCajas, cajaID, before, after)
	out := toCajaResponse(&after)
	return &out, nil
}

// CloseRegister pasa la caja a CERRADA sin registrar arqueo.
func (uc *UseCase) CloseRegister(ctx context.Context, actor audit.Actor, cajaID string) (*dto.CajaResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageRegister); err != nil {
		return nil, err
	}
	var before, after entity.Caja
	err := uc.tx.RunCaja(ctx, func(cajas repository.CajaRepository, _ repository.MovimientoCajaRepository, _ repository.CierreCajaRepository) error {
		c, err := lockCaja(ctx, cajas, cajaID)
		if err != nil {
			return err
		}
		if !c.IsOpen() {
			return domain.State("la caja %s ya está cerrada", c.Name)
		}
		before = *c
		c.State = entity.CajaStateClosed
		c.UpdatedAt = uc.now()
		if err := cajas.Update(ctx, c); err != nil {
			return err
		}
		after = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditClose, tableCajas, cajaID, before, after)
	out := toCajaResponse(&after)
	return &out, nil
}

// ─── Movimientos y arqueos ───────────────────────────────────────────────────

// RecordMovement registra un ingreso o egreso y actualiza el saldo en la misma transacción,
// con la fila de la caja bloqueada para serializar escrituras concurrentes.
func (uc *UseCase) RecordMovement(ctx context.Context, actor audit.Actor, cajaID string, in dto.MovimientoRequest) (*dto.RecordMovementResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.RecordMovement); err != nil {
		return nil, err
	}
	movType := strings.ToUpper(strings.TrimSpace(in.Type))
	if movType != entity.MovimientoIngreso && movType != entity.MovimientoEgreso {
		return nil, domain.Validation("tipo de movimiento inválido: %q", in.Type)
	}
	if err := validateAmount(in.Amount, false); err != nil {
		return nil, err
	}
	method := strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	if !entity.ValidPaymentMethod(method) {
		return nil, domain.Validation("método de pago inválido: %q", in.PaymentMethod)
	}

	m := &entity.MovimientoCaja{
		ID:            uuid.New().String(),
		CajaID:        cajaID,
		UserID:        actor.UserID,
		Type:          movType,
		Amount:        in.Amount,
		PaymentMethod: method,
		Description:   strings.TrimSpace(in.Description),
		Reference:     strings.TrimSpace(in.Reference),
	}
	var balance decimal.Decimal
	err := uc.tx.RunCaja(ctx, func(cajas repository.CajaRepository, movs repository.MovimientoCajaRepository, _ repository.CierreCajaRepository) error {
		c, err := lockCaja(ctx, cajas, cajaID)
		if err != nil {
			return err
		}
		if !c.IsOpen() {
			return domain.State("la caja %s está cerrada", c.Name)
		}
		m.CreatedAt = uc.now()
		if err := movs.Create(ctx, m); err != nil {
			return err
		}
		balance = c.Balance.Add(m.Signed())
		return cajas.UpdateBalance(ctx, cajaID, balance)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreate, tableMovimientos, m.ID, nil, m)
	return &dto.RecordMovementResponse{Movement: toMovimientoResponse(m), Balance: balance}, nil
}

// RegisterClosing registra un arqueo: diferencia = saldo real declarado − saldo calculado.
// Un cierre TOTAL además cierra la caja en la misma transacción.
func (uc *UseCase) RegisterClosing(ctx context.Context, actor audit.Actor, cajaID string, in dto.CierreRequest) (*dto.CierreResponse, error) {
	if _, err := access.Resolve(ctx, uc.users, actor.UserID, access.ManageRegister); err != nil {
		return nil, err
	}
	closingType := strings.ToUpper(strings.TrimSpace(in.Type))
	if closingType != entity.CierreParcial && closingType != entity.CierreTotal {
		return nil, domain.Validation("tipo de cierre inválido: %q", in.Type)
	}
	if err := validateAmount(in.DeclaredBalance, true); err != nil {
		return nil, err
	}

	var cierre *entity.CierreCaja
	var before, after entity.Caja
	err := uc.tx.RunCaja(ctx, func(cajas repository.CajaRepository, _ repository.MovimientoCajaRepository, cierres repository.CierreCajaRepository) error {
		c, err := lockCaja(ctx, cajas, cajaID)
		if err != nil {
			return err
		}
		if !c.IsOpen() {
			return domain.State("la caja %s está cerrada", c.Name)
		}
		now := uc.now()
		cierre = &entity.CierreCaja{
			ID:              uuid.New().String(),
			CajaID:          cajaID,
			UserID:          actor.UserID,
			Type:            closingType,
			OpeningBalance:  c.OpeningAmount,
			ComputedBalance: c.Balance,
			DeclaredBalance: in.DeclaredBalance,
			Discrepancy:     in.DeclaredBalance.Sub(c.Balance),
			Observations:    strings.TrimSpace(in.Observations),
			CreatedAt:       now,
		}
		if err := cierres.Create(ctx, cierre); err != nil {
			return err
		}
		before = *c
		if closingType == entity.CierreTotal {
			c.State = entity.CajaStateClosed
			c.UpdatedAt = now
			if err := cajas.Update(ctx, c); err != nil {
				return err
			}
		}
		after = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actor, entity.AuditCreate, tableCierres, cierre.ID, nil, cierre)
	if before.State != after.State {
		uc.audit.Record(ctx, actor, entity.AuditClose, tableCajas, cajaID, before, after)
	}
	if !cierre.Discrepancy.IsZero() {
		uc.log.Warn().
			Str("caja_id", cajaID).
			Str("cierre_id", cierre.ID).
			Str("diferencia", cierre.Discrepancy.StringFixed(2)).
			Msg("arqueo con diferencia")
	}
	out := toCierreResponse(cierre)
	return &out, nil
}

// ─── Consultas ───────────────────────────────────────────────────────────────

// GetSummary agrega los movimientos del día (hora local) y verifica el saldo contra el libro.
func (uc *UseCase) GetSummary(ctx context.Context, cajaID string) (*dto.CajaSummaryResponse, error) {
	c, err := uc.getCaja(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	sum, err := uc.movs.Summarize(ctx, cajaID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	out := &dto.CajaSummaryResponse{
		CajaID:        cajaID,
		IncomeTotal:   sum.IncomeTotal,
		ExpenseTotal:  sum.ExpenseTotal,
		MovementCount: sum.MovementCount,
		Balance:       c.Balance,
		OpeningAmount: c.OpeningAmount,
		State:         c.State,
	}
	if c.IsOpen() {
		signed, err := uc.movs.SumSignedSince(ctx, cajaID, c.OpenedAt)
		if err != nil {
			return nil, err
		}
		ledger := c.OpeningAmount.Add(signed)
		out.LedgerBalance = &ledger
		if !ledger.Equal(c.Balance) {
			uc.log.Error().
				Str("caja_id", cajaID).
				Str("saldo", c.Balance.StringFixed(2)).
				Str("saldo_libro", ledger.StringFixed(2)).
				Msg("saldo de caja inconsistente con sus movimientos")
		}
	}
	return out, nil
}

// GetTotalsByMethod neto firmado por método de pago sobre todos los movimientos de la caja.
func (uc *UseCase) GetTotalsByMethod(ctx context.Context, cajaID string) (*dto.TotalsByMethodResponse, error) {
	if _, err := uc.getCaja(ctx, cajaID); err != nil {
		return nil, err
	}
	totals, err := uc.movs.TotalsByMethod(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	return &dto.TotalsByMethodResponse{CajaID: cajaID, Totals: totals}, nil
}

// GetRegister devuelve una caja.
func (uc *UseCase) GetRegister(ctx context.Context, cajaID string) (*dto.CajaResponse, error) {
	c, err := uc.getCaja(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	out := toCajaResponse(c)
	return &out, nil
}

// ListRegisters lista las cajas.
func (uc *UseCase) ListRegisters(ctx context.Context) ([]dto.CajaResponse, error) {
	list, err := uc.cajas.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CajaResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCajaResponse(c))
	}
	return out, nil
}

// ListMovements lista los movimientos de la caja, opcionalmente en [from, to).
func (uc *UseCase) ListMovements(ctx context.Context, cajaID string, from, to *time.Time) ([]dto.MovimientoResponse, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, domain.Validation("el rango de fechas es inválido")
	}
	if _, err := uc.getCaja(ctx, cajaID); err != nil {
		return nil, err
	}
	list, err := uc.movs.ListByCaja(ctx, cajaID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovimientoResponse(m))
	}
	return out, nil
}

// ListClosings lista los arqueos de la caja.
func (uc *UseCase) ListClosings(ctx context.Context, cajaID string) ([]dto.CierreResponse, error) {
	if _, err := uc.getCaja(ctx, cajaID); err != nil {
		return nil, err
	}
	list, err := uc.cierres.ListByCaja(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CierreResponse, 0, len(list))
	for _, cierre := range list {
		out = append(out, toCierreResponse(cierre))
	}
	return out, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (uc *UseCase) getCaja(ctx context.Context, cajaID string) (*entity.Caja, error) {
	c, err := uc.cajas.GetByID(ctx, cajaID)
	if err != nil {
		return nil, fmt.Errorf("obtener caja: %w", err)
	}
	if c == nil {
		return nil, domain.NotFound("caja %s no encontrada", cajaID)
	}
	return c, nil
}

func lockCaja(ctx context.Context, cajas repository.CajaRepository, cajaID string) (*entity.Caja, error) {
	c, err := cajas.GetForUpdate(ctx, cajaID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("caja %s no encontrada", cajaID)
	}
	return c, nil
}

// validateAmount exige a lo sumo 2 decimales; allowZero admite 0 (montos de apertura y saldos declarados).
func validateAmount(v decimal.Decimal, allowZero bool) error {
	if v.IsNegative() || (!allowZero && v.IsZero()) {
		return domain.Validation("monto inválido: %s", v.String())
	}
	if !v.Equal(v.Round(2)) {
		return domain.Validation("el monto admite máximo 2 decimales: %s", v.String())
	}
	return nil
}

func toCajaResponse(c *entity.Caja) dto.CajaResponse {
	return dto.CajaResponse{
		ID:            c.ID,
		Name:          c.Name,
		OpeningAmount: c.OpeningAmount,
		Balance:       c.Balance,
		State:         c.State,
		OpenedBy:      c.OpenedBy,
		OpenedAt:      c.OpenedAt,
		CreatedAt:     c.CreatedAt,
	}
}

func toMovimientoResponse(m *entity.MovimientoCaja) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:            m.ID,
		CajaID:        m.CajaID,
		UserID:        m.UserID,
		Type:          m.Type,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		Description:   m.Description,
		Reference:     m.Reference,
		CreatedAt:     m.CreatedAt,
	}
}

func toCierreResponse(c *entity.CierreCaja) dto.CierreResponse {
	return dto.CierreResponse{
		ID:              c.ID,
		CajaID:          c.CajaID,
		UserID:          c.UserID,
		Type:            c.Type,
		OpeningBalance:  c.OpeningBalance,
		ComputedBalance: c.ComputedBalance,
		DeclaredBalance: c.DeclaredBalance,
		Discrepancy:     c.Discrepancy,
		Observations:    c.Observations,
		CajaState:       c.CajaStateAfter(),
		CreatedAt:       c.CreatedAt,
	}
}
