package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inmobiliaria-api/internal/application/audit"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/auth"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/caja"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/promotion"
	"github.com/jhoicas/Inmobiliaria-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Inmobiliaria-api/internal/infrastructure/redislock"
	httpRouter "github.com/jhoicas/Inmobiliaria-api/internal/interfaces/http"
	"github.com/jhoicas/Inmobiliaria-api/pkg/config"
	"github.com/jhoicas/Inmobiliaria-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// @title                       Inmobiliaria API
// @version                     1.0
// @description                 Catálogo de lotes, promociones y libro de caja.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:    cfg.App.Name,
		Env:    cfg.App.Env,
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.close()

	recorder := audit.NewRecorder(st.audit, log.Component("auditoria"))

	authUC := auth.NewAuthUseCase(st.users, recorder, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	if cfg.Seed.AdminEmail != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("crear administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.Seed.AdminEmail).Msg("administrador inicial creado")
		}
	}

	urbanizationUC := usecase.NewUrbanizationUseCase(st.urbs, st.users, recorder)
	lotUC := usecase.NewLotUseCase(st.tx, st.lots, st.urbs, st.users, recorder)
	promotionUC := promotion.NewUseCase(st.tx, st.users, st.urbs, st.promos, st.links, recorder, log.Component("promociones"))
	cajaUC := caja.NewUseCase(st.tx, st.users, st.cajas, st.movs, st.cierres, recorder, log.Component("caja"))
	cajaReportUC := caja.NewReportUseCase(st.cajas, st.movs, st.cierres, st.users, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	// Barrido de promociones vencidas; con REDIS_URL se coordina entre instancias.
	var locker promotion.Locker
	if cfg.Redis.URL != "" {
		rl, err := redislock.New(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rl.Close()
		locker = rl
	}
	promotion.NewSweeper(promotionUC, cfg.Promo.SweepInterval, locker, log.Component("barrido")).Start(ctx)

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.RouterDeps{
		AuthUC:         authUC,
		UrbanizationUC: urbanizationUC,
		LotUC:          lotUC,
		PromotionUC:    promotionUC,
		CajaUC:         cajaUC,
		CajaReportUC:   cajaReportUC,
		JWTSecret:      cfg.JWT.Secret,
	}, func(app *fiber.App) {
		if _, err := os.Stat(swaggerFile); err != nil {
			log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
			return
		}
		// Swagger UI en local: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inmobiliaria API",
		}))
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
