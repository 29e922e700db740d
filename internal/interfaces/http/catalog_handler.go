package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/usecase"
)

// CatalogHandler urbanizaciones y lotes.
type CatalogHandler struct {
	urbs *usecase.UrbanizationUseCase
	lots *usecase.LotUseCase
}

// NewCatalogHandler construye el handler del catálogo.
func NewCatalogHandler(urbs *usecase.UrbanizationUseCase, lots *usecase.LotUseCase) *CatalogHandler {
	return &CatalogHandler{urbs: urbs, lots: lots}
}

// CreateUrbanization godoc
// @Summary      Crear urbanización
// @Tags         catalogo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUrbanizationRequest  true  "nombre, ubicacion"
// @Success      201   {object}  dto.UrbanizationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/urbanizaciones [post]
func (h *CatalogHandler) CreateUrbanization(c *fiber.Ctx) error {
	var in dto.CreateUrbanizationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.urbs.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListUrbanizations godoc
// @Summary      Listar urbanizaciones
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UrbanizationResponse
// @Router       /api/urbanizaciones [get]
func (h *CatalogHandler) ListUrbanizations(c *fiber.Ctx) error {
	out, err := h.urbs.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetUrbanization godoc
// @Summary      Obtener urbanización
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la urbanización"
// @Success      200  {object}  dto.UrbanizationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/urbanizaciones/{id} [get]
func (h *CatalogHandler) GetUrbanization(c *fiber.Ctx) error {
	out, err := h.urbs.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateLot godoc
// @Summary      Crear lote en una urbanización
// @Tags         catalogo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la urbanización"
// @Param        body  body  dto.CreateLotRequest  true  "numero_lote, area, precio_base"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/urbanizaciones/{id}/lotes [post]
func (h *CatalogHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.lots.Create(c.UserContext(), actorFrom(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListLots godoc
// @Summary      Listar lotes
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Param        urbanizacion_id  query  string  false  "Filtro por urbanización"
// @Param        estado           query  string  false  "Filtro por estado"
// @Param        limit            query  int     false  "Límite"  default(20)
// @Param        offset           query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lotes [get]
func (h *CatalogHandler) ListLots(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.lots.List(c.UserContext(), c.Query("urbanizacion_id"), c.Query("estado"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetLot godoc
// @Summary      Obtener lote
// @Tags         catalogo
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [get]
func (h *CatalogHandler) GetLot(c *fiber.Ctx) error {
	out, err := h.lots.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ChangeLotState godoc
// @Summary      Cambiar estado del lote (reservar, vender, liberar)
// @Tags         catalogo
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del lote"
// @Param        body  body  dto.ChangeLotStateRequest  true  "estado"
// @Success      200   {object}  dto.LotResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lotes/{id}/estado [patch]
func (h *CatalogHandler) ChangeLotState(c *fiber.Ctx) error {
	var in dto.ChangeLotStateRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.lots.ChangeState(c.UserContext(), actorFrom(c), c.Params("id"), in.State)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteLot godoc
// @Summary      Eliminar lote
// @Tags         catalogo
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lotes/{id} [delete]
func (h *CatalogHandler) DeleteLot(c *fiber.Ctx) error {
	if err := h.lots.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
