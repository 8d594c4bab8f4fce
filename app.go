package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/config"
	"github.com/kendall-kelly/ppe-pickup-api/controllers"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/kendall-kelly/ppe-pickup-api/web"
	"gorm.io/gorm"
)

// app holds the process-wide dependencies
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	gateway  services.PaymentGateway
	mailer   services.Mailer
	storage  services.S3Interface // nil serves images from disk
	dedup    services.EventDeduper
	userInfo services.UserInfoFetcher
	closers  []func() error
}

// newApp builds the real dependencies from cfg. Optional integrations that
// are not configured fall back to local behaviour.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*app, error) {
	a := &app{
		cfg:     cfg,
		db:      db,
		gateway: services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		mailer:  services.LogMailer{},
		dedup:   services.NewMemoryEventDeduper(),
	}

	if !cfg.PaymentsConfigured() {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	if cfg.MailConfigured() {
		mailer, err := services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			return nil, err
		}
		a.mailer = mailer
	} else {
		slog.Warn("SMTP_HOST not set, confirmation emails will only be logged")
	}

	if cfg.ImageStorageConfigured() {
		storage, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.storage = storage
	}

	if cfg.RedisAddr != "" {
		dedup := services.NewRedisEventDeduper(cfg.RedisAddr)
		if err := dedup.Ping(ctx); err != nil {
			slog.Warn("Redis unreachable, webhook dedup falls back to memory", "addr", cfg.RedisAddr, "error", err)
			_ = dedup.Close()
		} else {
			a.dedup = dedup
			a.closers = append(a.closers, dedup.Close)
		}
	}

	if cfg.AuthConfigured() {
		a.userInfo = services.NewAuth0Service(cfg.Auth0Domain)
	}

	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("Failed to close resource", "error", err)
		}
	}
}

// router builds the engine. CSRF is off only for in-process tests that post
// forms without a browser.
func (a *app) router(withCSRF bool) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.SetHTMLTemplate(web.Templates(a.cfg.PickupLocation()))

	if len(a.cfg.CORSAllowedOrigins) > 0 {
		corsHandler, err := middleware.CORS(a.cfg.CORSAllowedOrigins)
		if err != nil {
			return nil, err
		}
		router.Use(corsHandler)
	}

	optionalAuth, err := middleware.Authenticate(a.cfg, false)
	if err != nil {
		return nil, fmt.Errorf("optional auth: %w", err)
	}
	requireAuth, err := middleware.Authenticate(a.cfg, true)
	if err != nil {
		return nil, fmt.Errorf("required auth: %w", err)
	}

	mw := controllers.RouteMiddleware{
		OptionalAuth: optionalAuth,
		RequireAuth:  requireAuth,
	}
	if withCSRF {
		mw.CSRF = middleware.CSRF(a.cfg.CSRFKey, a.cfg.CookieSecure)
	}

	flashes := middleware.NewFlashStore(a.cfg.SessionKey, a.cfg.CookieSecure)
	customers := services.NewCustomerService(a.db, a.userInfo)
	notifier := services.NewEmailNotifier(a.mailer, a.cfg.PickupLocation())
	fulfillment := services.NewFulfillmentService(a.db, notifier)

	controllers.RegisterRoutes(router, &controllers.Handlers{
		Catalog:  controllers.NewCatalogController(a.db, services.NewItemImageService(a.storage), flashes, a.cfg.Currency),
		Orders:   controllers.NewOrderController(a.db, a.gateway, customers, flashes, a.cfg),
		Payments: controllers.NewPaymentController(a.db, flashes),
		Webhooks: controllers.NewWebhookController(a.gateway, fulfillment, a.dedup),
		Images:   controllers.NewImageController(a.cfg.ItemImageDir),
		Users:    controllers.NewUserController(customers),
	}, mw)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
	}

	return router, nil
}
