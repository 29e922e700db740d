package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain"
)

// CajaHandler libro de caja: apertura, movimientos, arqueos y reportes.
type CajaHandler struct {
	uc      *caja.UseCase
	reports *caja.ReportUseCase
}

// NewCajaHandler construye el handler.
func NewCajaHandler(uc *caja.UseCase, reports *caja.ReportUseCase) *CajaHandler {
	return &CajaHandler{uc: uc, reports: reports}
}

// Create godoc
// @Summary      Crear caja (queda abierta)
// @Tags         cajas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCajaRequest  true  "nombre, monto_apertura"
// @Success      201   {object}  dto.CajaResponse
// @Router       /api/cajas [post]
func (h *CajaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCajaRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateRegister(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar cajas
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CajaResponse
// @Router       /api/cajas [get]
func (h *CajaHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListRegisters(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener caja
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.CajaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cajas/{id} [get]
func (h *CajaHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetRegister(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Open godoc
// @Summary      Abrir caja con un nuevo monto de apertura
// @Tags         cajas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la caja"
// @Param        body  body  dto.OpenCajaRequest  true  "monto_apertura"
// @Success      200   {object}  dto.CajaResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cajas/{id}/abrir [post]
func (h *CajaHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCajaRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.OpenRegister(c.UserContext(), actorFrom(c), c.Params("id"), in.OpeningAmount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar caja
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.CajaResponse
// @Router       /api/cajas/{id}/cerrar [post]
func (h *CajaHandler) Close(c *fiber.Ctx) error {
	out, err := h.uc.CloseRegister(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RecordMovement godoc
// @Summary      Registrar ingreso o egreso
// @Tags         cajas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la caja"
// @Param        body  body  dto.MovimientoRequest  true  "tipo, monto, metodo_pago"
// @Success      201   {object}  dto.RecordMovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/cajas/{id}/movimientos [post]
func (h *CajaHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.MovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RecordMovement(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos de la caja
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID de la caja"
// @Param        desde  query  string  false  "Inicio (RFC 3339 o AAAA-MM-DD)"
// @Param        hasta  query  string  false  "Fin exclusivo (RFC 3339 o AAAA-MM-DD)"
// @Success      200  {array}  dto.MovimientoResponse
// @Router       /api/cajas/{id}/movimientos [get]
func (h *CajaHandler) ListMovements(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c.Query("desde"))
	if err != nil {
		return respondError(c, err)
	}
	to, err := parseTimeQuery(c.Query("hasta"))
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RegisterClosing godoc
// @Summary      Registrar arqueo (PARCIAL o TOTAL)
// @Tags         cajas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la caja"
// @Param        body  body  dto.CierreRequest  true  "tipo, saldo_real"
// @Success      201   {object}  dto.CierreResponse
// @Router       /api/cajas/{id}/cierres [post]
func (h *CajaHandler) RegisterClosing(c *fiber.Ctx) error {
	var in dto.CierreRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RegisterClosing(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListClosings godoc
// @Summary      Listar arqueos de la caja
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {array}  dto.CierreResponse
// @Router       /api/cajas/{id}/cierres [get]
func (h *CajaHandler) ListClosings(c *fiber.Ctx) error {
	out, err := h.uc.ListClosings(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ClosingPDF godoc
// @Summary      Descargar el arqueo en PDF
// @Tags         cajas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id        path  string  true  "ID de la caja"
// @Param        cierreId  path  string  true  "ID del cierre"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cajas/{id}/cierres/{cierreId}/pdf [get]
func (h *CajaHandler) ClosingPDF(c *fiber.Ctx) error {
	data, filename, err := h.reports.DownloadClosingPDF(c.UserContext(), c.Params("id"), c.Params("cierreId"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(filename)
	return c.Send(data)
}

// Summary godoc
// @Summary      Resumen del día de la caja
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.CajaSummaryResponse
// @Router       /api/cajas/{id}/resumen [get]
func (h *CajaHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.GetSummary(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TotalsByMethod godoc
// @Summary      Neto por método de pago
// @Tags         cajas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la caja"
// @Success      200  {object}  dto.TotalsByMethodResponse
// @Router       /api/cajas/{id}/totales-metodo [get]
func (h *CajaHandler) TotalsByMethod(c *fiber.Ctx) error {
	out, err := h.uc.GetTotalsByMethod(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// parseTimeQuery acepta RFC 3339 o una fecha AAAA-MM-DD en hora local. Vacío = nil.
func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil, domain.Validation("fecha inválida: %q", s)
	}
	return &t, nil
}
