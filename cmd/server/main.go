package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	escrowapp "github.com/biasharahub/backend/internal/application/escrow"
	"github.com/biasharahub/backend/internal/application/notification"
	paymentapp "github.com/biasharahub/backend/internal/application/payment"
	payoutapp "github.com/biasharahub/backend/internal/application/payout"
	walletapp "github.com/biasharahub/backend/internal/application/wallet"
	domainpayment "github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/infrastructure/auth"
	"github.com/biasharahub/backend/internal/infrastructure/config"
	"github.com/biasharahub/backend/internal/infrastructure/crypto"
	"github.com/biasharahub/backend/internal/infrastructure/event"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
	"github.com/biasharahub/backend/internal/infrastructure/mpesa"
	"github.com/biasharahub/backend/internal/infrastructure/persistence"
	"github.com/biasharahub/backend/internal/infrastructure/telemetry"
	"github.com/biasharahub/backend/internal/interfaces/http/handler"
	"github.com/biasharahub/backend/internal/interfaces/http/middleware"
	"github.com/biasharahub/backend/internal/interfaces/http/router"
)

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

	log.Info("Starting BiasharaHub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected")

	// Redis backs the Daraja OAuth token cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	var tokenCache mpesa.TokenCache = mpesa.NewMemoryTokenCache()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-process token cache", zap.Error(err))
	} else {
		tokenCache = mpesa.NewRedisTokenCache(redisClient)
	}

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	escrowRepo := persistence.NewGormEscrowRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	bookingDirectory := persistence.NewGormBookingDirectory(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()
	eventBus.Subscribe(notification.NewPaymentNotifier(),
		domainpayment.EventTypePaymentCompleted, domainpayment.EventTypePaymentFailed)

	// Outbound adapters
	gateway := mpesa.NewDarajaAdapter(cfg.Mpesa, tokenCache)
	encryptor, err := crypto.NewFieldEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatal("Failed to initialize field encryption", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	walletService, err := walletapp.NewService(ledgerRepo, cfg.Wallet.CommissionRate)
	if err != nil {
		log.Fatal("Invalid commission rate", zap.Error(err))
	}
	payoutService, err := payoutapp.NewService(payoutRepo, tenantRepo, walletService,
		gateway, txManager, encryptor, cfg.Wallet.MinimumPayout)
	if err != nil {
		log.Fatal("Invalid minimum payout", zap.Error(err))
	}
	escrowService := escrowapp.NewService(escrowRepo, walletService, gateway, txManager, payoutService)
	paymentService := paymentapp.NewService(paymentRepo, escrowRepo, walletService,
		gateway, bookingDirectory, txManager, eventBus)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	router.Setup(engine, router.Deps{
		Logger:       log,
		JWT:          jwtService,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Limiter:      middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateLimitWindow),
		Tenants:      tenantRepo,
		System:       handler.NewSystemHandler(db),
		Payments:     handler.NewPaymentHandler(paymentService),
		Wallet:       handler.NewWalletHandler(walletService),
		Payouts:      handler.NewPayoutHandler(payoutService),
		Escrows:      handler.NewEscrowHandler(escrowService),
		Callbacks:    handler.NewCallbackHandler(paymentService, payoutService),
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
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped")
}
