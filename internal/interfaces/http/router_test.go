package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/auth"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/usecase"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/memory"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Inmobiliaria-api/internal/interfaces/http"
)

// ─── Fixture ─────────────────────────────────────────────────────────────────

type api struct {
	t     *testing.T
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *api {
	t.Helper()
	st := memory.New()
	rec := audit.NewRecorder(st.Audit(), zerolog.Nop())
	authUC := auth.NewAuthUseCase(st.Users(), rec, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	_, err := authUC.EnsureAdmin(context.Background(), "admin@inmo.test", "admin-inicial")
	require.NoError(t, err)

	app := apphttp.NewApp("inmobiliaria-test", apphttp.RouterDeps{
		AuthUC:         authUC,
		UrbanizationUC: usecase.NewUrbanizationUseCase(st.Urbanizations(), st.Users(), rec),
		LotUC:          usecase.NewLotUseCase(st, st.Lots(), st.Urbanizations(), st.Users(), rec),
		PromotionUC:    promotion.NewUseCase(st, st.Users(), st.Urbanizations(), st.Promotions(), st.LotPromotions(), rec, zerolog.Nop()),
		CajaUC:         caja.NewUseCase(st, st.Users(), st.Cajas(), st.Movimientos(), st.Cierres(), rec, zerolog.Nop()),
		CajaReportUC:   caja.NewReportUseCase(st.Cajas(), st.Movimientos(), st.Cierres(), st.Users(), pdf.NewMarotoPDFGenerator("Inmobiliaria")),
		JWTSecret:      testJWTSecret,
	})
	return &api{t: t, app: app, store: st}
}

// do envía body como JSON y decodifica la respuesta en out (si no es nil).
func (a *api) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "router-test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	var res struct {
		Token string `json:"token"`
	}
	status := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password}, &res)
	require.Equal(a.t, http.StatusOK, status)
	require.NotEmpty(a.t, res.Token)
	return res.Token
}

type errBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil, nil))
}

func TestAPI_CatalogoYPromocion(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@inmo.test", "admin-inicial")

	var urb struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/urbanizaciones", admin,
		map[string]string{"nombre": "Los Pinos", "ubicacion": "Km 5"}, &urb))

	var lot struct {
		ID           string          `json:"id"`
		CurrentPrice decimal.Decimal `json:"precio_actual"`
		State        string          `json:"estado"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/urbanizaciones/"+urb.ID+"/lotes", admin,
		map[string]any{"numero_lote": "A-01", "area": "200", "precio_base": "100000.00"}, &lot))
	assert.Equal(t, entity.LotStateAvailable, lot.State)

	now := time.Now()
	var created struct {
		Promotion struct {
			ID string `json:"id"`
		} `json:"promocion"`
		Applied struct {
			AssignedLots int `json:"lotes_asignados"`
		} `json:"aplicacion"`
	}
	status := a.do(http.MethodPost, "/api/promociones", admin, map[string]any{
		"titulo":            "Temporada",
		"descuento":         "10",
		"fecha_inicio":      now.AddDate(0, 0, -1).Format(time.RFC3339),
		"fecha_fin":         now.AddDate(0, 1, 0).Format(time.RFC3339),
		"lotes_especificos": []string{lot.ID},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, created.Applied.AssignedLots)

	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/lotes/"+lot.ID, admin, nil, &lot))
	assert.True(t, decimal.RequireFromString("90000").Equal(lot.CurrentPrice), lot.CurrentPrice.String())
	assert.Equal(t, entity.LotStateWithOffer, lot.State)

	var e errBody
	status = a.do(http.MethodPost, "/api/promociones", admin, map[string]any{
		"titulo":          "Choque",
		"descuento":       "5",
		"fecha_inicio":    now.Format(time.RFC3339),
		"fecha_fin":       now.AddDate(0, 0, 10).Format(time.RFC3339),
		"urbanizacion_id": urb.ID,
		"aplicar_a_todos": true,
	}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", e.Code)

	status = a.do(http.MethodDelete, "/api/promociones/"+created.Promotion.ID+"/lotes/"+lot.ID, admin, nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/lotes/"+lot.ID, admin, nil, &lot))
	assert.True(t, decimal.RequireFromString("100000").Equal(lot.CurrentPrice))

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/lotes/no-existe", admin, nil, &e))
	assert.Equal(t, "NOT_FOUND", e.Code)
}

func TestAPI_PermisosPorRol(t *testing.T) {
	a := newAPI(t)
	var cliente struct {
		Role string `json:"role"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "cliente@correo.com", "password": "clave-segura", "role": entity.RoleAdmin}, &cliente))
	assert.Equal(t, entity.RoleClient, cliente.Role)

	token := a.login("cliente@correo.com", "clave-segura")

	var e errBody
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/cajas", token, nil, &e))
	assert.Equal(t, "FORBIDDEN", e.Code)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/urbanizaciones", token,
		map[string]string{"nombre": "X", "ubicacion": "Y"}, &e))
	assert.Equal(t, "PERMISSION_DENIED", e.Code)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "cliente@correo.com", "password": "incorrecta"}, &e))
	assert.Equal(t, "UNAUTHORIZED", e.Code)
}

func TestAPI_CajaConCierreYPDF(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@inmo.test", "admin-inicial")

	var secre struct {
		ID string `json:"id"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/usuarios", admin, map[string]string{
		"email": "secre@inmo.test", "password": "clave-segura", "name": "Sara", "role": entity.RoleSecretary,
	}, &secre))
	token := a.login("secre@inmo.test", "clave-segura")

	var cj struct {
		ID      string          `json:"id"`
		Balance decimal.Decimal `json:"saldo_actual"`
		State   string          `json:"estado"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cajas", token,
		map[string]string{"nombre": "Caja Norte", "monto_apertura": "1000"}, &cj))
	assert.Equal(t, entity.CajaStateOpen, cj.State)

	var mov struct {
		Balance decimal.Decimal `json:"saldo_actual"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cajas/"+cj.ID+"/movimientos", token,
		map[string]string{"tipo": "INGRESO", "monto": "250.50", "metodo_pago": "EFECTIVO"}, &mov))
	assert.True(t, decimal.RequireFromString("1250.50").Equal(mov.Balance))

	var e errBody
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/cajas/"+cj.ID+"/movimientos", token,
		map[string]string{"tipo": "INGRESO", "monto": "10.123", "metodo_pago": "EFECTIVO"}, &e))
	assert.Equal(t, "VALIDATION_ERROR", e.Code)

	var cierre struct {
		ID          string          `json:"id"`
		Discrepancy decimal.Decimal `json:"diferencia"`
		CajaState   string          `json:"estado_caja"`
	}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/cajas/"+cj.ID+"/cierres", token,
		map[string]string{"tipo": "TOTAL", "saldo_real": "1250.00"}, &cierre))
	assert.True(t, decimal.RequireFromString("-0.50").Equal(cierre.Discrepancy))
	assert.Equal(t, entity.CajaStateClosed, cierre.CajaState)

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/cajas/"+cj.ID+"/movimientos", token,
		map[string]string{"tipo": "EGRESO", "monto": "1", "metodo_pago": "EFECTIVO"}, &e))
	assert.Equal(t, "STATE_ERROR", e.Code)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/cajas/%s/cierres/%s/pdf", cj.ID, cierre.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	entries := a.store.AuditEntries()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, secre.ID, last.UserID)
	assert.Equal(t, "router-test", last.ClientAgent)
}
