// Package main is the entry point for the settlement API.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"freelink/internal/config"
	"freelink/internal/handlers"
	"freelink/internal/logging"
	"freelink/internal/middleware"
	"freelink/internal/repositories"
	"freelink/internal/repositories/cache"
	"freelink/internal/repositories/lock"
	"freelink/internal/repositories/memory"
	"freelink/internal/routes"
	"freelink/internal/services/auth"
	"freelink/internal/services/escrow"
	"freelink/internal/services/funding"
	"freelink/internal/services/transaction"
	"freelink/internal/services/wallet"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	envErr := config.LoadEnv()
	cfg := config.Load()

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if envErr != nil {
		log.Debug("no .env file loaded", zap.Error(envErr))
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	checks := map[string]handlers.Check{}

	var store repositories.Store
	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		store = memory.NewStore()
	default:
		db, err := repositories.InitDB(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := repositories.Close(db); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}()
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		checks["database"] = sqlDB.PingContext
		store = repositories.NewStore(db)
	}

	var (
		walletCache wallet.Cache
		locker      lock.Locker
		idempotency fiber.Handler
	)
	if cfg.RedisEnabled() {
		rdb := cache.NewRedisClient(&cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := cache.Ping(ctx, rdb)
		cancel()
		if err != nil {
			return err
		}

		cacheService := cache.NewCacheService(rdb, cfg.CacheTTL)
		defer func() {
			if err := cacheService.Close(); err != nil {
				log.Warn("failed to close redis connection", zap.Error(err))
			}
		}()

		walletCache = cacheService
		lockOpts := lock.DefaultOptions()
		lockOpts.Expiry = cfg.LockTTL
		locker = lock.NewRedisLocker(rdb, lockOpts, log.Named("lock"))
		idempotency = middleware.Idempotency(rdb, middleware.IdempotencyConfig{
			TTL:         cfg.IdempotencyTTL,
			LockTimeout: cfg.LockTTL,
		}, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("redis connected", zap.String("host", cfg.RedisHost))
	} else {
		log.Warn("redis not configured: wallet cache, distributed locks and idempotency replay are disabled")
	}

	var gateway funding.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = funding.NewStripeGateway(cfg.StripeSecretKey, log)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set: card funding and payouts are disabled")
	}

	tokens := utils.NewTokenManager(cfg)
	walletMetrics := wallet.NewCounterMetrics(log)

	app := fiber.New(fiber.Config{
		AppName:      "freelink",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.IdempotencyHeader,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	for _, path := range []string{"/api/auth/register", "/api/auth/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many requests, please try again later",
				})
			},
		}))
	}

	routes.SetupRoutes(app, routes.Deps{
		Auth:         auth.NewService(store, tokens, cfg.Currency, log),
		Wallets:      wallet.NewService(store, walletCache, gateway, wallet.Config{DefaultCurrency: cfg.Currency}, log, walletMetrics),
		Transactions: transaction.NewService(store, walletCache, log),
		Escrows:      escrow.NewService(store, locker, walletCache, log),
		Tokens:       tokens,
		Idempotency:  idempotency,
		Health:       handlers.NewHealthHandler(version, checks).WithCounters("wallet", walletMetrics.Snapshot),
		SecureCookie: cfg.IsProduction(),
		Logger:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(10 * time.Second)
}
