package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	integrationapp "github.com/storefront/backend/internal/application/integration"
	orderapp "github.com/storefront/backend/internal/application/order"
	partnerapp "github.com/storefront/backend/internal/application/partner"
	promotionapp "github.com/storefront/backend/internal/application/promotion"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/messaging"
	"github.com/storefront/backend/internal/infrastructure/notify"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, logger.ParseLevel(cfg.Log.Level))

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.SpanProfiles {
		profiler.LinkSpans(tracerProvider)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, log).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Store.CartTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).CreateStores()
	if err != nil {
		log.Fatal("Failed to create cart stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing stores", zap.Error(err))
		}
	}()

	currency, err := valueobject.ParseCurrency(cfg.Store.Currency)
	if err != nil {
		log.Fatal("Invalid store currency", zap.String("currency", cfg.Store.Currency), zap.Error(err))
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	couponRepo := persistence.NewGormCouponRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	rateRepo := persistence.NewGormShippingRateRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	settingsRepo := persistence.NewGormIntegrationSettingsRepository(db.DB)
	adminRepo := persistence.NewGormAdminUserRepository(db.DB)

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	webhookSender := notify.NewWebhookSender(cfg.Notify)
	chatwootClient := notify.NewChatwootClient(cfg.Notify, string(currency))
	dispatcher := integrationapp.NewNotificationDispatcher(settingsRepo, webhookSender, chatwootClient, cfg.Notify.Timeout, log)
	eventBus.Subscribe(dispatcher)

	commissionHandler := partnerapp.NewCommissionHandler(partnerRepo, eventBus, log)
	eventBus.Subscribe(event.NewIdempotentHandler(commissionHandler, stores.Idempotency, log,
		event.WithKeyFunc(partnerapp.CommissionKey),
	))

	if meterProvider.IsEnabled() {
		storeMetrics, err := telemetry.NewStoreMetrics(meterProvider.Meter("storefront.orders"), log)
		if err != nil {
			log.Fatal("Failed to create order metrics", zap.Error(err))
		}
		eventBus.Subscribe(storeMetrics)
	}

	var kafkaPublisher *messaging.OrderEventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher = messaging.NewOrderEventPublisher(cfg.Kafka, log)
		eventBus.Subscribe(kafkaPublisher)
		log.Info("Kafka order events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	imageStorage := newImageStorage(ctx, cfg, log)
	paymentGateway := newPaymentGateway(cfg, log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(adminRepo, jwtService, log)
	if created, err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		log.Fatal("Failed to bootstrap admin account", zap.Error(err))
	} else if created {
		log.Info("Bootstrap admin account created", zap.String("email", cfg.Admin.Email))
	}

	productService := catalogapp.NewProductService(productRepo, categoryRepo, imageStorage, eventBus, log)
	importService := catalogapp.NewProductImportService(productService, productRepo, categoryRepo, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	couponService := promotionapp.NewCouponService(couponRepo, partnerRepo)
	partnerService := partnerapp.NewPartnerService(partnerRepo)
	rateService := shippingapp.NewRateService(rateRepo)
	cartService := cartapp.NewCartService(stores.Carts, productRepo, couponService.Validator(), productService.Images(), currency, log)
	orderService := orderapp.NewOrderService(orderRepo, eventBus, currency, log)

	checkoutConfig := orderapp.CheckoutServiceConfig{
		Orders:    orderRepo,
		Products:  productRepo,
		Rates:     rateRepo,
		Validator: couponService.Validator(),
		Carts:     cartService,
		Events:    eventBus,
		Config:    orderapp.CheckoutConfig{Currency: currency, OrderNumberPrefix: cfg.Store.OrderNumberPrefix},
		Logger:    log,
	}
	webhookConfig := orderapp.StripeWebhookServiceConfig{
		Orders:      orderRepo,
		Idempotency: stores.Idempotency,
		Events:      eventBus,
		Logger:      log,
	}
	// a typed nil gateway would defeat the services' nil checks
	if paymentGateway != nil {
		checkoutConfig.Payments = paymentGateway
		webhookConfig.Gateway = paymentGateway
	}
	checkoutService := orderapp.NewCheckoutService(checkoutConfig)
	webhookService := orderapp.NewStripeWebhookService(webhookConfig)
	settingsService := integrationapp.NewSettingsService(settingsRepo, webhookSender, chatwootClient, cfg.Notify.Timeout, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// Order matters: the request ID must exist before logging and tracing
	// read it, and recovery must wrap everything after it.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanAttributes())
	if meterProvider.IsEnabled() {
		engine.Use(middleware.HTTPMetrics(meterProvider.Meter("http.server"), log))
	}
	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.Secure(securityConfig))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	var authRateLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		limiters = append(limiters, limiter)
		authRateLimit = middleware.RateLimit(limiter)
	}

	router.Mount(engine, router.Handlers{
		Health:      handler.NewHealthHandler(db, version),
		Auth:        handler.NewAuthHandler(authService),
		Product:     handler.NewProductHandler(productService),
		Import:      handler.NewProductImportHandler(importService),
		Category:    handler.NewCategoryHandler(categoryService),
		Coupon:      handler.NewCouponHandler(couponService),
		Partner:     handler.NewPartnerHandler(partnerService),
		Shipping:    handler.NewShippingHandler(rateService),
		Cart:        handler.NewCartHandler(cartService),
		Checkout:    handler.NewCheckoutHandler(checkoutService, orderService),
		Order:       handler.NewOrderHandler(orderService),
		Integration: handler.NewIntegrationHandler(settingsService),
		Webhook:     handler.NewStripeWebhookHandler(webhookService),

		AdminAuth:     middleware.JWTAuth(jwtService, log),
		AuthRateLimit: authRateLimit,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for _, limiter := range limiters {
		limiter.Stop()
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		log.Warn("Notifications still in flight at shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Failed to stop event bus", zap.Error(err))
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Warn("Failed to close Kafka writer", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Failed to stop profiler", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush logs", zap.Error(err))
	}
}

// newImageStorage returns S3 storage when enabled. Misconfigured storage
// is fatal; disabled storage refuses uploads.
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalogapp.ImageStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, image uploads are refused")
		return storage.DisabledImageStorage{}
	}

	s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Warn("Image bucket is not reachable", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
	}
	return s3Storage
}

// newPaymentGateway returns nil when card payments are disabled; orders
// are then placed as manual payments.
func newPaymentGateway(cfg *config.Config, log *zap.Logger) *payment.StripeGateway {
	if !cfg.Stripe.Enabled {
		log.Info("Stripe disabled, orders use manual payment")
		return nil
	}

	gateway, err := payment.NewStripeGateway(cfg.Stripe, payment.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize Stripe", zap.Error(err))
	}
	return gateway
}
