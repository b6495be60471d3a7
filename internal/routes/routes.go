// Package routes wires repositories, services and handlers into the fiber
// application and defines every HTTP route.
package routes

import (
	"confia/internal/config"
	"confia/internal/events"
	"confia/internal/gateway"
	"confia/internal/handlers"
	"confia/internal/middleware"
	"confia/internal/repositories"
	"confia/internal/services/auth"
	"confia/internal/services/ledger"
	"confia/internal/services/risk"
	"confia/internal/services/score"
	"confia/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Services bundles the long-lived services the server needs a handle on
// after routing is set up, mainly for graceful shutdown.
type Services struct {
	Transfer transfer.Service
}

// SetupRoutes builds the full dependency graph and registers every route.
func SetupRoutes(app *fiber.App, cfg *config.Config, publisher events.Publisher) *Services {
	// Repositories
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB)
	scoreRepo := repositories.NewScoreRepository(repositories.DB)
	connectionRepo := repositories.NewConnectionRepository(repositories.DB)
	alertRepo := repositories.NewAlertRepository(repositories.DB)

	// External verification provider
	verificationClient := gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)

	// Services
	authService := auth.NewService(userRepo)

	startingBalance, err := decimal.NewFromString(cfg.Ledger.StartingBalance)
	if err != nil {
		startingBalance = decimal.RequireFromString(ledger.DefaultStartingBalance)
	}
	ledgerService := ledger.NewService(
		walletRepo,
		repositories.CacheService,
		ledger.Config{
			StartingBalance: startingBalance,
			Currency:        cfg.Ledger.Currency,
		},
		&ledger.NoopMetricsCollector{},
	)

	riskService := risk.NewService(alertRepo, publisher, risk.Config{
		ReviewAmountThreshold: cfg.Risk.ReviewAmountThreshold,
		HighAmountThreshold:   cfg.Risk.HighAmountThreshold,
		AlertThreshold:        cfg.Risk.AlertThreshold,
	})

	scoreService := score.NewService(scoreRepo, connectionRepo, verificationClient, repositories.CacheService, score.Config{
		Seed:           cfg.Score.Seed,
		GatewayTimeout: cfg.Score.GatewayTimeout,
	})

	transferService := transfer.NewService(
		ledgerService,
		riskService,
		scoreService,
		userRepo,
		repositories.CacheService,
		publisher,
		transfer.Config{StepUpTTL: cfg.Transfer.StepUpTTL},
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService)
	transferHandler := handlers.NewTransferHandler(transferService)
	scoreHandler := handlers.NewScoreHandler(scoreService)
	communityHandler := handlers.NewCommunityHandler(scoreService)
	alertHandler := handlers.NewAlertHandler(riskService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Protected endpoints
	authMiddleware := middleware.NewAuthMiddleware(authService)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.Logout)

	wallet := protected.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.ListTransactions)
	wallet.Post("/deposit", walletHandler.Deposit)
	wallet.Post("/withdraw", walletHandler.Withdraw)

	transfers := protected.Group("/transfers")
	transfers.Post("/", transferHandler.Initiate)
	transfers.Post("/:id/confirm", transferHandler.Confirm)
	transfers.Post("/:id/abandon", transferHandler.Abandon)

	protected.Get("/score", scoreHandler.GetScore)

	community := protected.Group("/community")
	community.Post("/connections", communityHandler.Connect)
	community.Post("/endorsements", communityHandler.Endorse)

	alerts := protected.Group("/alerts")
	alerts.Get("/", alertHandler.ListAlerts)
	alerts.Post("/:id/resolve", middleware.AdminOnly, alertHandler.ResolveAlert)

	return &Services{
		Transfer: transferService,
	}
}
