package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	affiliateapp "github.com/englishbooster/affiliate/internal/application/affiliate"
	catalogapp "github.com/englishbooster/affiliate/internal/application/catalog"
	identityapp "github.com/englishbooster/affiliate/internal/application/identity"
	referralapp "github.com/englishbooster/affiliate/internal/application/referral"
	reportapp "github.com/englishbooster/affiliate/internal/application/report"
	"github.com/englishbooster/affiliate/internal/domain/affiliate"
	"github.com/englishbooster/affiliate/internal/infrastructure/auth"
	"github.com/englishbooster/affiliate/internal/infrastructure/config"
	"github.com/englishbooster/affiliate/internal/infrastructure/event"
	"github.com/englishbooster/affiliate/internal/infrastructure/logger"
	"github.com/englishbooster/affiliate/internal/infrastructure/persistence"
	"github.com/englishbooster/affiliate/internal/infrastructure/telemetry"
	"github.com/englishbooster/affiliate/internal/interfaces/http/handler"
	"github.com/englishbooster/affiliate/internal/interfaces/http/middleware"
	"github.com/englishbooster/affiliate/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Fields:     map[string]string{"service": cfg.App.Name, "env": cfg.App.Env},
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting affiliate service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	otelProviders, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	meter := otelProviders.Meter(cfg.Telemetry.ServiceName)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.Options{
		Logger:        log,
		LogLevel:      cfg.Log.Level,
		SlowThreshold: cfg.Telemetry.DBSlowQueryThresh,
		TraceEnabled:  cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	var (
		blacklist   auth.TokenBlacklist
		rateLimiter middleware.Limiter
		authLimiter middleware.Limiter
		redisClient redis.UniversalClient
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		blacklist = auth.NewRedisTokenBlacklist(redisClient, "")
		rateLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, "")
		authLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow, "affiliate:ratelimit:auth:")
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		memLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer memLimiter.Stop()
		memAuthLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer memAuthLimiter.Stop()
		rateLimiter, authLimiter = memLimiter, memAuthLimiter
	}

	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if referralMetrics, err := telemetry.NewReferralMetrics(meter); err != nil {
		log.Warn("Referral metrics disabled", zap.Error(err))
	} else {
		eventBus.Subscribe(referralMetrics)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	userRepo := persistence.NewGormUserRepository(db.DB)
	affiliateRepo := persistence.NewGormAffiliateRepository(db.DB)
	programRepo := persistence.NewGormProgramRepository(db.DB)
	referralRepo := persistence.NewGormReferralRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	registryService := affiliateapp.NewRegistryService(
		affiliateRepo, userRepo, referralRepo,
		affiliate.NewRandomCodeGenerator(cfg.Affiliate.ReferralCodeLength),
		txManager, eventBus,
		affiliateapp.RegistryConfig{
			DefaultCommissionRate: cfg.Affiliate.DefaultCommissionRate,
			MaxCodeAttempts:       cfg.Affiliate.ReferralCodeMaxAttempts,
			PageSize:              cfg.Affiliate.PageSize,
		},
		log,
	)
	ledgerService := referralapp.NewLedgerService(referralRepo, affiliateRepo, programRepo, eventBus, cfg.Affiliate.PageSize, log)
	programService := catalogapp.NewProgramService(programRepo)
	reportService := reportapp.NewReportService(affiliateRepo, programRepo, referralRepo, reportapp.Config{
		BaseURL: cfg.App.BaseURL,
		Contact: reportapp.Contact{
			Name:      cfg.Contact.Name,
			Address:   cfg.Contact.Address,
			Instagram: cfg.Contact.Instagram,
			Phone:     cfg.Contact.Phone,
		},
	}, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies", zap.Error(err))
	}

	// Order matters: the request id feeds the logger, tracing must exist
	// before the span marker and JWT runs per group after rate limiting.
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(meter, log))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction() && strings.HasPrefix(cfg.App.BaseURL, "https://")
	engine.Use(middleware.SecureWithConfig(security))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(rateLimiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	guards := router.Guards{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthRateLimit = middleware.RateLimit(authLimiter, log)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterAPI(engine, r, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Affiliate: handler.NewAffiliateHandler(registryService),
		Program:   handler.NewProgramHandler(programService),
		Referral:  handler.NewReferralHandler(ledgerService),
		Report:    handler.NewReportHandler(reportService),
		System:    handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, db, log),
	}, guards)
	r.Setup()

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop event bus", zap.Error(err))
	}
	if err := otelProviders.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
