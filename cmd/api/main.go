package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/myautoimport/site-api/internal/api/router"
	"github.com/myautoimport/site-api/internal/catalog"
	appconfig "github.com/myautoimport/site-api/internal/config"
	"github.com/myautoimport/site-api/internal/leads"
	"github.com/myautoimport/site-api/internal/matches"
	"github.com/myautoimport/site-api/internal/notify"
	"github.com/myautoimport/site-api/internal/observability/metrics"
	"github.com/myautoimport/site-api/internal/ratelimit"
	"github.com/myautoimport/site-api/internal/site"
	"github.com/myautoimport/site-api/internal/vitals"
	"github.com/myautoimport/site-api/pkg/logging"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting site API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(reg)

	// Rate limiter: Redis when configured, process-local otherwise
	limiterCfg := ratelimit.Config{Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow}
	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		limiter = ratelimit.NewRedisLimiter(redis.NewClient(opts), limiterCfg, logger)
		logger.Info("rate limiter using redis", "addr", cfg.RedisAddr)
	} else {
		limiter = ratelimit.NewMemoryLimiter(limiterCfg)
		logger.Warn("REDIS_ADDR not set, rate limiting is per-instance only")
	}

	// Database pool (fallback insert path and the match notifier)
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		var err error
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	// Lead store: data API primary, direct SQL fallback
	if !cfg.PersistenceConfigured() {
		logger.Error("no lead store configured, submissions will fail",
			"hint", "set DATA_API_URL and DATA_API_SERVICE_KEY or DATABASE_URL")
	}
	var leadsRepo leads.Repository
	var primary leads.Repository
	if cfg.DataAPIURL != "" && cfg.DataAPIServiceKey != "" {
		primary = leads.NewDataAPIRepository(cfg.DataAPIURL, cfg.DataAPIServiceKey, logger)
	}
	switch {
	case primary != nil && pool != nil:
		fb := leads.NewFallbackRepository(primary, leads.NewPostgresRepository(pool), logger)
		fb.OnFallback(leadMetrics.ObserveFallback)
		leadsRepo = fb
	case primary != nil:
		leadsRepo = primary
	case pool != nil:
		leadsRepo = leads.NewPostgresRepository(pool)
	}

	// Email sender
	sender := buildEmailSender(cfg, logger)
	notifier := leads.NewNotifier(sender, cfg.LeadsToEmail, cfg.SiteOrigin, logger)
	if notifier == nil {
		logger.Warn("lead email notifications disabled", "provider", cfg.EmailProvider)
	}
	notifier.OnResult(leadMetrics.ObserveEmail)

	// Initialize handlers
	leadsHandler := leads.NewHandler(leadsRepo, limiter, notifier, logger, leadMetrics)
	siteHandler := site.NewHandler(cfg.DataAPIURL, cfg.DataAPIAnonKey, cfg.SiteOrigin)

	var matchesHandler *matches.Handler
	if pool != nil && sender != nil {
		matchesService := matches.NewService(
			catalog.NewPostgresRepository(pool),
			matches.NewPostgresRepository(pool),
			sender,
			cfg.SiteOrigin,
			logger,
			leadMetrics,
		)
		matchesHandler = matches.NewHandler(matchesService, logger)
	}

	var vitalsHandler *vitals.Handler
	if cfg.PSIAPIKey != "" {
		checker := vitals.NewChecker(vitals.NewPSIClient(cfg.PSIAPIKey), sender,
			cfg.SiteOrigin, cfg.AlertTo, cfg.AlertFrom, logger)
		vitalsHandler = vitals.NewHandler(checker, logger)
	}

	// Setup router
	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		MatchesHandler:     matchesHandler,
		SiteHandler:        siteHandler,
		VitalsHandler:      vitalsHandler,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("failed to load AWS config, email disabled", "error", err)
			return nil
		}
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.LeadsFromEmail,
			FromName:  cfg.LeadsFromName,
		}, logger)
	case "stub":
		return notify.NewStubEmailSender(logger)
	default:
		sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.LeadsFromEmail,
			FromName:  cfg.LeadsFromName,
		}, logger)
		if sg == nil {
			return nil
		}
		return sg
	}
}
