// Package routes defines the API routing configuration.
// It wires repositories, services, and handlers, and groups routes by
// the authentication they require.
package routes

import (
	"moonex/internal/config"
	"moonex/internal/handlers"
	"moonex/internal/middleware"
	"moonex/internal/repositories"
	"moonex/internal/services/addresses"
	"moonex/internal/services/auth"
	"moonex/internal/services/authz"
	"moonex/internal/services/ledger"
	"moonex/internal/services/marketdata"
	"moonex/internal/services/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, oracle *marketdata.Oracle) {
	// Repositories
	userRepo := repositories.NewUserRepository(repositories.DB)
	ledgerRepo := repositories.NewLedgerRepository(repositories.DB)
	addressRepo := repositories.NewAddressRepository(repositories.DB)
	roleRepo := repositories.NewRoleRepository(repositories.DB)

	// Services
	authService := auth.NewService(userRepo)
	authzService := authz.NewService(roleRepo)
	ledgerService := ledger.NewService(
		ledgerRepo,
		repositories.CacheService,
		authzService,
		ledger.Config{
			StartingBalance: config.GetDecimalEnv("STARTING_BALANCE", decimal.NewFromInt(ledger.DefaultStartingBalance)),
			BonusAmount:     config.GetDecimalEnv("BONUS_AMOUNT", decimal.NewFromInt(ledger.DefaultBonusAmount)),
			BonusCooldown:   config.GetDurationEnv("BONUS_COOLDOWN", ledger.DefaultBonusCooldown),
		},
		&ledger.NoopMetricsCollector{},
	)
	settlementService := settlement.NewService(ledgerRepo, authzService)
	addressService := addresses.NewService(addressRepo, addresses.NewGenerator())

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, ledgerService, addressService)
	walletHandler := handlers.NewWalletHandler(ledgerService, addressService)
	tradeHandler := handlers.NewTradeHandler(settlementService, ledgerService, oracle)
	marketHandler := handlers.NewMarketHandler(oracle)
	codeHandler := handlers.NewCodeHandler(authzService)
	adminHandler := handlers.NewAdminHandler(ledgerService, settlementService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	api.Get("/market/prices", marketHandler.ListPrices)
	api.Get("/market/prices/:coinID", marketHandler.GetPrice)

	// Protected routes
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	wallet := protected.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Post("/bonus", walletHandler.ClaimBonus)
	wallet.Get("/addresses", walletHandler.GetAddresses)

	protected.Post("/trades", tradeHandler.ExecuteTrade)
	protected.Get("/trades", tradeHandler.ListTrades)
	protected.Get("/portfolio", tradeHandler.GetPortfolio)

	protected.Post("/codes/redeem", codeHandler.RedeemCode)

	// Admin routes re-check the role on every request.
	admin := app.Group("/api/admin", authMiddleware.Handler, middleware.RequireAdmin(authzService))
	admin.Get("/wallets", adminHandler.ListWallets)
	admin.Put("/wallets/:userID/balance", adminHandler.SetBalance)
	admin.Get("/trades", adminHandler.ListAllTrades)
	admin.Post("/bonus/distribute", adminHandler.DistributeBonus)
}
