// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"freelink/internal/handlers"
	"freelink/internal/middleware"
	"freelink/internal/models"
	"freelink/internal/services/auth"
	"freelink/internal/services/escrow"
	"freelink/internal/services/transaction"
	"freelink/internal/services/wallet"
	"freelink/internal/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Deps carries everything the routes need. Idempotency is nil when redis
// is not configured; money-moving routes then run without replay.
type Deps struct {
	Auth         auth.Service
	Wallets      wallet.Service
	Transactions transaction.Service
	Escrows      escrow.Service
	Tokens       *utils.TokenManager
	Idempotency  fiber.Handler
	Health       *handlers.HealthHandler
	SecureCookie bool
	Logger       *zap.Logger
}

// SetupRoutes configures all application routes.
// It groups routes by functionality and applies appropriate middleware.
func SetupRoutes(app *fiber.App, d Deps) {
	log := d.Logger.Named("http")

	authHandler := handlers.NewAuthHandler(d.Auth, d.SecureCookie, log)
	walletHandler := handlers.NewWalletHandler(d.Wallets, log)
	transactionHandler := handlers.NewTransactionHandler(d.Transactions, log)
	escrowHandler := handlers.NewEscrowHandler(d.Escrows, log)
	disputeHandler := handlers.NewDisputeHandler(d.Escrows, log)
	adminHandler := handlers.NewAdminHandler(d.Auth, log)
	authMiddleware := middleware.NewAuthMiddleware(d.Tokens, d.Auth, d.Logger)

	idempotent := d.Idempotency
	if idempotent == nil {
		idempotent = func(c *fiber.Ctx) error { return c.Next() }
	}

	if d.Health != nil {
		app.Get("/health", d.Health.HealthCheck)
		app.Get("/health/stats", d.Health.Stats)
	}

	api := app.Group("/api")

	// Public routes
	api.Post("/auth/register", authHandler.RegisterUser)
	api.Post("/auth/login", authHandler.LoginUser)
	api.Post("/auth/refresh", authHandler.RefreshToken)

	authenticated := api.Group("", authMiddleware.Handler)

	authenticated.Get("/auth/me", authHandler.Me)
	authenticated.Post("/auth/logout", authHandler.LogoutUser)
	authenticated.Post("/auth/change-password", authHandler.ChangePassword)

	// Wallet routes
	walletRoutes := authenticated.Group("/wallet")
	walletRoutes.Get("/", middleware.HasPermission(models.PermissionWalletRead), walletHandler.GetWallet)
	walletRoutes.Get("/history", middleware.HasPermission(models.PermissionWalletRead), walletHandler.History)
	walletRoutes.Post("/deposit", middleware.HasPermission(models.PermissionWalletWrite), idempotent, walletHandler.Deposit)
	walletRoutes.Post("/withdraw", middleware.HasPermission(models.PermissionWalletWrite), idempotent, walletHandler.Withdraw)
	walletRoutes.Post("/fund", middleware.HasPermission(models.PermissionWalletWrite), idempotent, walletHandler.Fund)
	walletRoutes.Put("/payout-account", middleware.HasPermission(models.PermissionWalletWrite), walletHandler.SetPayoutAccount)
	walletRoutes.Post("/payout", middleware.HasPermission(models.PermissionWalletWrite), idempotent, walletHandler.Payout)

	// Transaction routes
	transactions := authenticated.Group("/transactions")
	transactions.Get("/", middleware.HasPermission(models.PermissionTransactionRead), transactionHandler.GetUserTransactions)
	transactions.Post("/", middleware.HasPermission(models.PermissionTransactionWrite), idempotent, transactionHandler.CreateTransaction)
	transactions.Get("/:id", middleware.HasPermission(models.PermissionTransactionRead), transactionHandler.GetTransaction)
	transactions.Put("/:id/status", middleware.HasPermission(models.PermissionTransactionWrite), idempotent, transactionHandler.UpdateStatus)

	// Escrow routes
	escrows := authenticated.Group("/escrows", middleware.HasPermission(models.PermissionEscrowWrite))
	escrows.Post("/", idempotent, escrowHandler.CreateEscrow)
	escrows.Get("/", escrowHandler.GetUserEscrows)
	escrows.Get("/:id", escrowHandler.GetEscrow)
	escrows.Post("/:id/release", idempotent, escrowHandler.Release)
	escrows.Post("/:id/refund", idempotent, escrowHandler.Refund)
	escrows.Post("/:id/dispute", escrowHandler.OpenDispute)

	disputes := authenticated.Group("/disputes")
	disputes.Get("/:id", disputeHandler.GetDispute)
	disputes.Post("/:id/cancel", disputeHandler.CancelDispute)

	// Staff routes
	admin := authenticated.Group("/admin", middleware.StaffOnly)
	admin.Get("/disputes", disputeHandler.ListDisputes)
	admin.Post("/disputes/:id/resolve", middleware.HasPermission(models.PermissionDisputeResolve), idempotent, disputeHandler.ResolveDispute)
	admin.Post("/users/:id/verify", adminHandler.VerifyUser)
}
