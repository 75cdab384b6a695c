package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/turbobet/platform/internal/auth"
	"github.com/turbobet/platform/internal/bonus"
	"github.com/turbobet/platform/internal/guard"
	"github.com/turbobet/platform/internal/handler"
	adminhandler "github.com/turbobet/platform/internal/handler/admin"
	"github.com/turbobet/platform/internal/provider"
	"github.com/turbobet/platform/internal/repository"
	"github.com/turbobet/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	PlayFivers         provider.PlayFiversConfig
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	userRepo := repository.NewUserRepository()
	offerRepo := repository.NewOfferRepository()
	grantRepo := repository.NewGrantRepository()
	wagerRepo := repository.NewWagerRepository()
	txRepo := repository.NewTransactionRepository()
	providerRepo := repository.NewProviderRepository()
	gameRepo := repository.NewGameRepository()
	settingsRepo := repository.NewSettingsRepository()
	statsRepo := repository.NewStatsRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Bonus engine
	engine := bonus.NewEngine(userRepo, offerRepo, grantRepo, wagerRepo, txRepo, outboxRepo)

	// External providers
	playfivers := provider.NewPlayFiversClient(deps.PlayFivers, logger)
	dispatcher := provider.NewWebhookDispatcher(logger)

	// Services
	tracker := service.NewTracker(pool, settingsRepo, dispatcher, logger)
	authSvc := service.NewAuthService(pool, userRepo, outboxRepo, jwtMgr, tracker)
	bonusSvc := service.NewBonusService(pool, engine, offerRepo, grantRepo, userRepo, gameRepo)
	paymentSvc := service.NewPaymentService(pool, txRepo, userRepo, outboxRepo, engine, tracker, logger)
	catalogSvc := service.NewCatalogService(pool, providerRepo, gameRepo, userRepo, playfivers, tracker, logger)
	statsSvc := service.NewStatsService(pool, statsRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	bonusHandler := handler.NewBonusHandler(bonusSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	gameHandler := handler.NewGameHandler(catalogSvc)
	webhookHandler := handler.NewWebhookHandler(bonusSvc)

	// Admin handlers
	bonusAdmin := adminhandler.NewBonusAdminHandler(bonusSvc)
	catalogAdmin := adminhandler.NewCatalogAdminHandler(catalogSvc)
	statsAdmin := adminhandler.NewStatsAdminHandler(statsSvc)
	trackingAdmin := adminhandler.NewTrackingAdminHandler(tracker)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Gateway and aggregator callbacks (no auth)
	r.Post("/webhooks/payment", paymentHandler.GatewayCallback)
	r.Post("/webhooks/game", webhookHandler.GameRound)

	// Auth routes (no auth, rate limited against credential stuffing)
	authLimiter := guard.NewRateLimiter(10, time.Minute)
	r.Route("/auth", func(r chi.Router) {
		r.Use(guard.LimitByIP(authLimiter))
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Public catalog
	r.Get("/providers", gameHandler.ListProviders)
	r.Get("/games", gameHandler.ListGames)
	r.Get("/bonuses", bonusHandler.ListOffers)

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Get("/users/me", authHandler.Me)
		r.Get("/bonuses/me", bonusHandler.MyBonuses)
		r.Get("/withdrawals/check", bonusHandler.WithdrawalCheck)

		r.Route("/payments", func(r chi.Router) {
			r.Post("/deposits", paymentHandler.Deposit)
			r.Post("/withdrawals", paymentHandler.Withdraw)
			r.Get("/transactions", paymentHandler.ListTransactions)
		})

		r.Post("/games/{id}/launch", gameHandler.Launch)
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/bonuses", func(r chi.Router) {
			r.Get("/", bonusAdmin.ListOffers)
			r.Post("/", bonusAdmin.CreateOffer)
			r.Get("/{id}", bonusAdmin.GetOffer)
			r.Patch("/{id}", bonusAdmin.UpdateOffer)
			r.Delete("/{id}", bonusAdmin.DeleteOffer)
		})
		r.Post("/grants/{id}/cancel", bonusAdmin.CancelGrant)

		r.Route("/providers", func(r chi.Router) {
			r.Get("/", catalogAdmin.ListProviders)
			r.Patch("/{id}/active", catalogAdmin.SetProviderActive)
		})
		r.Route("/games", func(r chi.Router) {
			r.Get("/", catalogAdmin.ListGames)
			r.Patch("/{id}/active", catalogAdmin.SetGameActive)
		})
		r.Post("/catalog/sync", catalogAdmin.SyncCatalog)

		r.Get("/stats/dashboard", statsAdmin.Dashboard)

		r.Route("/tracking/webhooks", func(r chi.Router) {
			r.Get("/", trackingAdmin.ListWebhooks)
			r.Put("/", trackingAdmin.SaveWebhook)
		})
	})

	return r
}
