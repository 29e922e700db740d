package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/auth"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/usecase"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UrbanizationUC *usecase.UrbanizationUseCase
	LotUC          *usecase.LotUseCase
	PromotionUC    *promotion.UseCase
	CajaUC         *caja.UseCase
	CajaReportUC   *caja.ReportUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(entity.RoleAdmin, entity.RoleSecretary, entity.RoleAdvisor)
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/usuarios", adminOnly, authHandler.CreateUser)

	// Catálogo
	catalog := NewCatalogHandler(deps.UrbanizationUC, deps.LotUC)
	urbs := protected.Group("/urbanizaciones")
	urbs.Get("/", catalog.ListUrbanizations)
	urbs.Post("/", catalog.CreateUrbanization)
	urbs.Get("/:id", catalog.GetUrbanization)
	urbs.Post("/:id/lotes", catalog.CreateLot)

	lots := protected.Group("/lotes")
	lots.Get("/", catalog.ListLots)
	lots.Get("/:id", catalog.GetLot)
	lots.Patch("/:id/estado", catalog.ChangeLotState)
	lots.Delete("/:id", catalog.DeleteLot)

	// Promociones
	promos := NewPromotionHandler(deps.PromotionUC)
	promoGroup := protected.Group("/promociones")
	promoGroup.Get("/", promos.List)
	promoGroup.Post("/", promos.Create)
	promoGroup.Post("/barrido", adminOnly, promos.Sweep)
	promoGroup.Get("/:id", promos.GetByID)
	promoGroup.Post("/:id/aplicar", promos.Apply)
	promoGroup.Patch("/:id/descuento", promos.UpdateDiscount)
	promoGroup.Delete("/:id/lotes/:loteId", promos.RemoveFromLot)
	promoGroup.Delete("/:id", promos.Delete)

	// Cajas (personal de la inmobiliaria)
	cajas := NewCajaHandler(deps.CajaUC, deps.CajaReportUC)
	cajaGroup := protected.Group("/cajas", staff)
	cajaGroup.Get("/", cajas.List)
	cajaGroup.Post("/", cajas.Create)
	cajaGroup.Get("/:id", cajas.GetByID)
	cajaGroup.Post("/:id/abrir", cajas.Open)
	cajaGroup.Post("/:id/cerrar", cajas.Close)
	cajaGroup.Get("/:id/movimientos", cajas.ListMovements)
	cajaGroup.Post("/:id/movimientos", cajas.RecordMovement)
	cajaGroup.Get("/:id/cierres", cajas.ListClosings)
	cajaGroup.Post("/:id/cierres", cajas.RegisterClosing)
	cajaGroup.Get("/:id/cierres/:cierreId/pdf", cajas.ClosingPDF)
	cajaGroup.Get("/:id/resumen", cajas.Summary)
	cajaGroup.Get("/:id/totales-metodo", cajas.TotalsByMethod)
}
