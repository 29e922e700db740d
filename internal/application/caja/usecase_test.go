package caja_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/memory"
)

// ─── Fixture ─────────────────────────────────────────────────────────────────

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

// tick avanza el reloj un minuto para que cada movimiento tenga su propio instante.
func (c *clock) tick() { c.t = c.t.Add(time.Minute) }

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	uc      *caja.UseCase
	clock   *clock
	admin   audit.Actor
	secre   audit.Actor
	asesor  audit.Actor
	cliente audit.Actor
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "se esperaba %s, se obtuvo %s", want, got.String())
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	clk := &clock{t: time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local)}

	for _, u := range []entity.User{
		{ID: "admin", Name: "Ana Admin", Email: "admin@inmo.test", Role: entity.RoleAdmin, Active: true},
		{ID: "secre", Name: "Sara Secretaria", Email: "secre@inmo.test", Role: entity.RoleSecretary, Active: true},
		{ID: "asesor", Name: "Andrés Asesor", Email: "asesor@inmo.test", Role: entity.RoleAdvisor, Active: true},
		{ID: "cliente", Name: "Carla Cliente", Email: "cliente@inmo.test", Role: entity.RoleClient, Active: true},
		{ID: "inactivo", Name: "Iván", Email: "inactivo@inmo.test", Role: entity.RoleSecretary, Active: false},
	} {
		u := u
		require.NoError(t, st.Users().Create(ctx, &u))
	}

	rec := audit.NewRecorder(st.Audit(), zerolog.Nop())
	uc := caja.NewUseCase(st, st.Users(), st.Cajas(), st.Movimientos(), st.Cierres(), rec, zerolog.Nop(), caja.WithClock(clk.Now))
	return &fixture{
		ctx:     ctx,
		store:   st,
		uc:      uc,
		clock:   clk,
		admin:   audit.Actor{UserID: "admin"},
		secre:   audit.Actor{UserID: "secre", IP: "192.168.1.20", Device: "Firefox"},
		asesor:  audit.Actor{UserID: "asesor"},
		cliente: audit.Actor{UserID: "cliente"},
	}
}

func (f *fixture) newCaja(t *testing.T, name, opening string) string {
	t.Helper()
	c, err := f.uc.CreateRegister(f.ctx, f.secre, dto.CreateCajaRequest{Name: name, OpeningAmount: money(opening)})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) move(t *testing.T, actor audit.Actor, cajaID, tipo, amount, method string) *dto.RecordMovementResponse {
	t.Helper()
	f.clock.tick()
	res, err := f.uc.RecordMovement(f.ctx, actor, cajaID, dto.MovimientoRequest{Type: tipo, Amount: money(amount), PaymentMethod: method})
	require.NoError(t, err)
	return res
}

// ─── Escenario completo de un día ────────────────────────────────────────────

func TestCaja_DiaCompleto(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja Principal", "1000.00")

	r := f.move(t, f.asesor, id, "INGRESO", "250.50", "EFECTIVO")
	assertMoney(t, "1250.50", r.Balance)
	assert.Equal(t, "asesor", r.Movement.UserID)

	r = f.move(t, f.secre, id, "egreso", "100.00", "transferencia")
	assertMoney(t, "1150.50", r.Balance)
	assert.Equal(t, entity.MovimientoEgreso, r.Movement.Type)
	assert.Equal(t, entity.MetodoTransferencia, r.Movement.PaymentMethod)

	sum, err := f.uc.GetSummary(f.ctx, id)
	require.NoError(t, err)
	assertMoney(t, "250.50", sum.IncomeTotal)
	assertMoney(t, "100.00", sum.ExpenseTotal)
	assert.Equal(t, 2, sum.MovementCount)
	assertMoney(t, "1150.50", sum.Balance)
	require.NotNil(t, sum.LedgerBalance)
	assertMoney(t, "1150.50", *sum.LedgerBalance)

	f.clock.tick()
	cierre, err := f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "TOTAL", DeclaredBalance: money("1150.50")})
	require.NoError(t, err)
	assertMoney(t, "1000.00", cierre.OpeningBalance)
	assertMoney(t, "1150.50", cierre.ComputedBalance)
	assertMoney(t, "0", cierre.Discrepancy)
	assert.Equal(t, entity.CajaStateClosed, cierre.CajaState)

	got, err := f.uc.GetRegister(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.CajaStateClosed, got.State)
}

func TestRecordMovement_CajaCerradaNoCambiaSaldo(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 2", "500.00")
	_, err := f.uc.CloseRegister(f.ctx, f.secre, id)
	require.NoError(t, err)

	_, err = f.uc.RecordMovement(f.ctx, f.secre, id, dto.MovimientoRequest{Type: "INGRESO", Amount: money("10"), PaymentMethod: "EFECTIVO"})
	assert.True(t, errors.Is(err, domain.ErrState))

	got, err := f.uc.GetRegister(f.ctx, id)
	require.NoError(t, err)
	assertMoney(t, "500.00", got.Balance)

	movs, err := f.uc.ListMovements(f.ctx, id, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRecordMovement_ConcurrenteNoPierdeActualizaciones(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja concurrida", "1000.00")
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.RecordMovement(f.ctx, f.secre, id, dto.MovimientoRequest{
				Type: "INGRESO", Amount: money("1.01"), PaymentMethod: "EFECTIVO",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := f.uc.GetRegister(f.ctx, id)
	require.NoError(t, err)
	assertMoney(t, "1050.50", got.Balance)

	movs, err := f.uc.ListMovements(f.ctx, id, nil, nil)
	require.NoError(t, err)
	assert.Len(t, movs, n)
}

func TestRecordMovement_Validaciones(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 3", "100.00")

	cases := map[string]dto.MovimientoRequest{
		"tipo desconocido":   {Type: "AJUSTE", Amount: money("10"), PaymentMethod: "EFECTIVO"},
		"monto cero":         {Type: "INGRESO", Amount: decimal.Zero, PaymentMethod: "EFECTIVO"},
		"monto negativo":     {Type: "INGRESO", Amount: money("-5"), PaymentMethod: "EFECTIVO"},
		"tres decimales":     {Type: "INGRESO", Amount: money("1.005"), PaymentMethod: "EFECTIVO"},
		"método desconocido": {Type: "INGRESO", Amount: money("10"), PaymentMethod: "BITCOIN"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.RecordMovement(f.ctx, f.secre, id, in)
			assert.True(t, errors.Is(err, domain.ErrValidation), "err = %v", err)
		})
	}

	_, err := f.uc.RecordMovement(f.ctx, f.secre, "no-existe", dto.MovimientoRequest{Type: "INGRESO", Amount: money("10"), PaymentMethod: "EFECTIVO"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	got, err := f.uc.GetRegister(f.ctx, id)
	require.NoError(t, err)
	assertMoney(t, "100.00", got.Balance)
}

func TestCaja_Permisos(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 4", "0")

	_, err := f.uc.CreateRegister(f.ctx, f.asesor, dto.CreateCajaRequest{Name: "Otra", OpeningAmount: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrPermission), "el asesor no administra cajas")

	_, err = f.uc.CloseRegister(f.ctx, f.asesor, id)
	assert.True(t, errors.Is(err, domain.ErrPermission))

	_, err = f.uc.RecordMovement(f.ctx, f.cliente, id, dto.MovimientoRequest{Type: "INGRESO", Amount: money("1"), PaymentMethod: "EFECTIVO"})
	assert.True(t, errors.Is(err, domain.ErrPermission))

	_, err = f.uc.RecordMovement(f.ctx, audit.Actor{UserID: "inactivo"}, id, dto.MovimientoRequest{Type: "INGRESO", Amount: money("1"), PaymentMethod: "EFECTIVO"})
	assert.True(t, errors.Is(err, domain.ErrPermission))

	_, err = f.uc.RegisterClosing(f.ctx, f.asesor, id, dto.CierreRequest{Type: "PARCIAL", DeclaredBalance: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrPermission))

	_, err = f.uc.RecordMovement(f.ctx, audit.Actor{}, id, dto.MovimientoRequest{Type: "INGRESO", Amount: money("1"), PaymentMethod: "EFECTIVO"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	f.move(t, f.asesor, id, "INGRESO", "1.00", "EFECTIVO")
}

// ─── Ciclo de vida ───────────────────────────────────────────────────────────

func TestOpenRegister_ReiniciaSesion(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 5", "100.00")
	f.move(t, f.secre, id, "INGRESO", "50.00", "EFECTIVO")

	_, err := f.uc.OpenRegister(f.ctx, f.admin, id, money("10"))
	assert.True(t, errors.Is(err, domain.ErrState), "ya está abierta")

	_, err = f.uc.CloseRegister(f.ctx, f.secre, id)
	require.NoError(t, err)
	_, err = f.uc.CloseRegister(f.ctx, f.secre, id)
	assert.True(t, errors.Is(err, domain.ErrState), "ya está cerrada")

	f.clock.t = f.clock.t.Add(time.Hour)
	opened, err := f.uc.OpenRegister(f.ctx, f.admin, id, money("300.00"))
	require.NoError(t, err)
	assert.Equal(t, entity.CajaStateOpen, opened.State)
	assertMoney(t, "300.00", opened.OpeningAmount)
	assertMoney(t, "300.00", opened.Balance)
	assert.Equal(t, "admin", opened.OpenedBy)

	f.move(t, f.secre, id, "EGRESO", "20.00", "EFECTIVO")
	sum, err := f.uc.GetSummary(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, sum.LedgerBalance)
	assertMoney(t, "280.00", *sum.LedgerBalance)
	assertMoney(t, "280.00", sum.Balance)
	assert.Equal(t, 2, sum.MovementCount, "el resumen cubre el día completo")

	_, err = f.uc.OpenRegister(f.ctx, f.admin, "no-existe", decimal.Zero)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRegisterClosing_ParcialMantieneAbierta(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 6", "200.00")
	f.move(t, f.secre, id, "INGRESO", "100.00", "TARJETA")

	parcial, err := f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "parcial", DeclaredBalance: money("290.00"), Observations: " faltante "})
	require.NoError(t, err)
	assert.Equal(t, entity.CierreParcial, parcial.Type)
	assertMoney(t, "-10.00", parcial.Discrepancy)
	assert.Equal(t, entity.CajaStateOpen, parcial.CajaState)
	assert.Equal(t, "faltante", parcial.Observations)

	f.move(t, f.secre, id, "INGRESO", "5.00", "EFECTIVO")

	f.clock.tick()
	total, err := f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "TOTAL", DeclaredBalance: money("310.00")})
	require.NoError(t, err)
	assertMoney(t, "5.00", total.Discrepancy)

	closings, err := f.uc.ListClosings(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, closings, 2)
	assert.Equal(t, entity.CierreTotal, closings[0].Type)
	assert.Equal(t, entity.CajaStateClosed, closings[0].CajaState)
	assert.Equal(t, entity.CierreParcial, closings[1].Type)
	assert.Equal(t, entity.CajaStateOpen, closings[1].CajaState, "el parcial conserva el estado en que dejó la caja")

	_, err = f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "TOTAL", DeclaredBalance: money("310.00")})
	assert.True(t, errors.Is(err, domain.ErrState))

	_, err = f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "SEMANAL", DeclaredBalance: decimal.Zero})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// ─── Consultas ───────────────────────────────────────────────────────────────

func TestGetTotalsByMethod_NetoFirmado(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 7", "0")
	f.move(t, f.secre, id, "INGRESO", "100.00", "EFECTIVO")
	f.move(t, f.secre, id, "EGRESO", "30.00", "EFECTIVO")
	f.move(t, f.secre, id, "INGRESO", "400.00", "TRANSFERENCIA")
	f.move(t, f.secre, id, "EGRESO", "50.00", "CHEQUE")

	got, err := f.uc.GetTotalsByMethod(f.ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Totals, 3)
	assertMoney(t, "70.00", got.Totals["EFECTIVO"])
	assertMoney(t, "400.00", got.Totals["TRANSFERENCIA"])
	assertMoney(t, "-50.00", got.Totals["CHEQUE"])

	_, err = f.uc.GetTotalsByMethod(f.ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGetSummary_SoloDiaActual(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 8", "1000.00")
	f.move(t, f.secre, id, "INGRESO", "100.00", "EFECTIVO")

	f.clock.t = f.clock.t.AddDate(0, 0, 1)
	f.move(t, f.secre, id, "EGRESO", "40.00", "EFECTIVO")

	sum, err := f.uc.GetSummary(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.MovementCount)
	assertMoney(t, "0", sum.IncomeTotal)
	assertMoney(t, "40.00", sum.ExpenseTotal)
	assertMoney(t, "1060.00", sum.Balance)
	require.NotNil(t, sum.LedgerBalance)
	assertMoney(t, "1060.00", *sum.LedgerBalance)

	_, err = f.uc.CloseRegister(f.ctx, f.secre, id)
	require.NoError(t, err)
	sum, err = f.uc.GetSummary(f.ctx, id)
	require.NoError(t, err)
	assert.Nil(t, sum.LedgerBalance, "sin sesión abierta no hay saldo de libro")
}

func TestListMovements_RangoYOrden(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 9", "0")
	start := f.clock.t
	f.move(t, f.secre, id, "INGRESO", "1.00", "EFECTIVO")
	f.move(t, f.secre, id, "INGRESO", "2.00", "EFECTIVO")
	f.move(t, f.secre, id, "INGRESO", "3.00", "EFECTIVO")

	all, err := f.uc.ListMovements(f.ctx, id, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assertMoney(t, "3.00", all[0].Amount)

	from := start.Add(2 * time.Minute)
	to := start.Add(3 * time.Minute)
	window, err := f.uc.ListMovements(f.ctx, id, &from, &to)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assertMoney(t, "2.00", window[0].Amount)

	_, err = f.uc.ListMovements(f.ctx, id, &to, &from)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestCaja_Auditoria(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja 10", "10.00")
	f.move(t, f.secre, id, "INGRESO", "5.00", "EFECTIVO")
	_, err := f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "TOTAL", DeclaredBalance: money("15.00")})
	require.NoError(t, err)

	var tables []string
	for _, e := range f.store.AuditEntries() {
		tables = append(tables, e.Table+":"+e.Action)
		assert.Equal(t, "secre", e.UserID)
		assert.Equal(t, "192.168.1.20", e.ClientIP)
		assert.Equal(t, "Firefox", e.ClientAgent)
	}
	assert.Equal(t, []string{
		"cajas:CREAR",
		"movimientos_caja:CREAR",
		"cierres_caja:CREAR",
		"cajas:CERRAR",
	}, tables)
}

// ─── PDF de cierre ───────────────────────────────────────────────────────────

type fakePDF struct {
	got caja.ClosingReport
}

func (p *fakePDF) GenerateClosingPDF(_ context.Context, r caja.ClosingReport) ([]byte, error) {
	p.got = r
	return []byte("%PDF-fake"), nil
}

func TestDownloadClosingPDF(t *testing.T) {
	f := newFixture(t)
	id := f.newCaja(t, "Caja Norte", "100.00")
	f.move(t, f.secre, id, "INGRESO", "20.00", "TARJETA")
	f.clock.tick()
	cierre, err := f.uc.RegisterClosing(f.ctx, f.secre, id, dto.CierreRequest{Type: "PARCIAL", DeclaredBalance: money("120.00")})
	require.NoError(t, err)

	gen := &fakePDF{}
	report := caja.NewReportUseCase(f.store.Cajas(), f.store.Movimientos(), f.store.Cierres(), f.store.Users(), gen)

	data, filename, err := report.DownloadClosingPDF(f.ctx, id, cierre.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), data)
	assert.Equal(t, "cierre_Caja_Norte_20240305_0902.pdf", filename)
	assert.Equal(t, "Sara Secretaria", gen.got.UserName)
	assertMoney(t, "20.00", gen.got.Totals["TARJETA"])
	assert.Equal(t, cierre.ID, gen.got.Cierre.ID)

	otra := f.newCaja(t, "Caja Sur", "0")
	_, _, err = report.DownloadClosingPDF(f.ctx, otra, cierre.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
