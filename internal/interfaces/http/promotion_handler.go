package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/dto"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
)

// PromotionHandler expone el motor de promociones.
type PromotionHandler struct {
	uc *promotion.UseCase
}

// NewPromotionHandler construye el handler.
func NewPromotionHandler(uc *promotion.UseCase) *PromotionHandler {
	return &PromotionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear promoción y aplicarla a su alcance
// @Description  Exactamente uno de lotes_especificos, urbanizacion_id o aplicar_a_todos. Fechas en RFC 3339.
// @Tags         promociones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePromotionRequest  true  "Datos de la promoción"
// @Success      201   {object}  dto.CreatePromotionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/promociones [post]
func (h *PromotionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePromotionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreatePromotion(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar promociones
// @Tags         promociones
// @Security     Bearer
// @Produce      json
// @Param        activas  query  bool  false  "Sólo activas"
// @Success      200  {array}  dto.PromotionResponse
// @Router       /api/promociones [get]
func (h *PromotionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListPromotions(c.UserContext(), c.QueryBool("activas", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener promoción con sus lotes
// @Tags         promociones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la promoción"
// @Success      200  {object}  dto.PromotionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/promociones/{id} [get]
func (h *PromotionHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetPromotion(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Apply godoc
// @Summary      Aplicar promoción a lotes, a una urbanización o a todos los disponibles
// @Tags         promociones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la promoción"
// @Param        body  body  dto.PromotionScopeRequest  true  "Alcance"
// @Success      200   {object}  dto.ApplyResult
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/promociones/{id}/aplicar [post]
func (h *PromotionHandler) Apply(c *fiber.Ctx) error {
	var in dto.PromotionScopeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	scope, err := in.Scope()
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Apply(c.UserContext(), actorFrom(c), c.Params("id"), scope)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveFromLot godoc
// @Summary      Quitar la promoción de un lote
// @Tags         promociones
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la promoción"
// @Param        loteId  path  string  true  "ID del lote"
// @Success      200  {object}  dto.RemoveFromLotResult
// @Router       /api/promociones/{id}/lotes/{loteId} [delete]
func (h *PromotionHandler) RemoveFromLot(c *fiber.Ctx) error {
	out, err := h.uc.RemoveFromLot(c.UserContext(), actorFrom(c), c.Params("loteId"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateDiscount godoc
// @Summary      Cambiar el descuento y recalcular precios
// @Tags         promociones
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la promoción"
// @Param        body  body  dto.UpdateDiscountRequest  true  "descuento"
// @Success      200   {object}  dto.UpdateDiscountResult
// @Router       /api/promociones/{id}/descuento [patch]
func (h *PromotionHandler) UpdateDiscount(c *fiber.Ctx) error {
	var in dto.UpdateDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateDiscount(c.UserContext(), actorFrom(c), c.Params("id"), in.Discount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar promoción restaurando precios
// @Tags         promociones
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la promoción"
// @Success      200  {object}  dto.DeletePromotionResult
// @Router       /api/promociones/{id} [delete]
func (h *PromotionHandler) Delete(c *fiber.Ctx) error {
	out, err := h.uc.DeletePromotion(c.UserContext(), actorFrom(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Sweep godoc
// @Summary      Desactivar promociones vencidas
// @Tags         promociones
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SweepResult
// @Router       /api/promociones/barrido [post]
func (h *PromotionHandler) Sweep(c *fiber.Ctx) error {
	out, err := h.uc.SweepExpired(c.UserContext())
	if err != nil {
		if out == nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusMultiStatus).JSON(dto.PartialResponse{Result: out, Error: err.Error()})
	}
	return c.JSON(out)
}
