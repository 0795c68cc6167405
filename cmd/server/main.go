// Package main is the entry point for the API server.
// It initializes all dependencies, starts the price oracle, sets up the
// HTTP server, and handles graceful shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moonex/internal/config"
	applog "moonex/internal/logger"
	"moonex/internal/repositories"
	"moonex/internal/routes"
	"moonex/internal/services/marketdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()
	applog.Init()
	log := applog.WithComponent("server")

	if err := repositories.InitDB(); err != nil {
		log.WithError(err).Fatal("failed to initialize databases")
	}

	sqlDB, err := repositories.DB.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get database instance")
	}
	if err := sqlDB.Ping(); err != nil {
		log.WithError(err).Fatal("failed to ping database")
	}
	log.Info("connected to database")

	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("failed to close database connection")
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.WithError(err).Warn("failed to close redis connection")
			}
		}
	}()

	// Price oracle polls until shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	priceClient := marketdata.NewClient(
		config.GetEnv("COINGECKO_BASE_URL", ""),
		config.GetDurationEnv("COINGECKO_TIMEOUT", 10*time.Second),
	)
	oracle := marketdata.NewOracle(
		priceClient,
		repositories.CacheService,
		config.GetDurationEnv("PRICE_POLL_INTERVAL", marketdata.DefaultPollInterval),
	)
	oracle.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName: "moonex",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Auth endpoints are the brute-force surface; everything else is
	// token-gated already.
	authLimiter := limiter.New(limiter.Config{
		Max:        config.GetIntEnv("AUTH_RATE_LIMIT", 5),
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, please try again later",
			})
		},
	})
	app.Use("/api/register", authLimiter)
	app.Use("/api/login", authLimiter)

	routes.SetupRoutes(app, oracle)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Warn("shutdown did not finish cleanly")
		}
	}()

	if err := app.Listen(":" + config.GetEnv("PORT", "3000")); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
