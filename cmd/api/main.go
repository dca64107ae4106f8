package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/logistica-api/internal/application/session"
	"github.com/jhoicas/logistica-api/internal/infrastructure/authapi"
	"github.com/jhoicas/logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/logistica-api/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/logistica-api/internal/interfaces/http"
	"github.com/jhoicas/logistica-api/pkg/config"
	"github.com/jhoicas/logistica-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando servicio de sesión")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es el almacenamiento persistido del snapshot. Puede no estar
	// disponible: se sigue arrancando y la caché degrada a memoria sola.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second); true {
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible; el snapshot no se persistirá")
		}
		cancel()
	}

	bus := authapi.NewEventBus()
	authClient := authapi.NewClient(cfg.Auth.BaseURL, cfg.Auth.AnonKey, cfg.Auth.JWTSecret, bus, log)

	snapshotStore := redisstore.NewSnapshotStore(redisClient, cfg.App.Name, cfg.Session.SnapshotTTL())
	affiliationStore := postgres.NewAffiliationStore(pool)
	elevatedRegistry := postgres.NewElevatedRoleRegistry(pool)

	resolver := session.NewRoleResolver(log)
	cache := session.NewSessionCache(snapshotStore, log)
	cache.Hydrate(ctx) // hidratación optimista en frío; la primera resolución la confirma

	coordinator := session.NewFetchCoordinator(
		cache, authClient, affiliationStore, elevatedRegistry, resolver,
		session.CoordinatorConfig{
			TTL:              cfg.Session.TTL(),
			Timeout:          cfg.Session.Timeout(),
			PrivilegedEmails: cfg.Session.PrivilegedEmailList(),
		},
		log,
	)

	navigator := httpRouter.NewLoginNavigator(log)
	listener := session.NewLifecycleListener(coordinator, cache, bus, navigator, log)
	if err := listener.Start(); err != nil {
		log.Fatal().Err(err).Msg("suscripción del listener de ciclo de vida")
	}
	defer listener.Close()

	gateway := session.NewContextGateway(cache, coordinator, authClient, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Gateway:        gateway,
		SessionHandler: httpRouter.NewSessionHandler(gateway, authClient, bus),
		Navigator:      navigator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("servicio detenido")
}
