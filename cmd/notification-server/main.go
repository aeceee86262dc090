package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tablenotify/internal/api"
	"tablenotify/internal/audit"
	"tablenotify/internal/common/aws"
	"tablenotify/internal/common/config"
	"tablenotify/internal/common/database"
	"tablenotify/internal/common/logger"
	"tablenotify/internal/common/observability"
	"tablenotify/internal/dispatch"
	"tablenotify/internal/notify"
	"tablenotify/internal/sender"
	"tablenotify/internal/templates"
	"tablenotify/internal/tenant"
	"tablenotify/internal/waitlist"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting notification server",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Delivery audit log (optional) ---
	var recorder audit.Recorder = audit.NoOpRecorder{}
	if cfg.Audit.Enabled && cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		recorder = audit.NewElasticsearchRecorder(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Domain wiring ---
	pgSettings := tenant.NewPostgresSettings(pg.DB)

	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Second
	// Each send reads settings for both the placeholder map and the sender
	// display name; the cache keeps that to one database hit.
	settings := tenant.NewCachedSettings(pgSettings, redis.Client, cacheTTL, log)

	overrides := templates.NewCachedOverrides(
		templates.NewPostgresOverrides(pg.DB),
		redis.Client,
		cacheTTL,
		log,
	)
	store := templates.NewStore(overrides, log)

	resolver := sender.NewResolver(settings, cfg.Email.FromAddress, cfg.Email.FallbackName, log)

	var dispatcher dispatch.Dispatcher
	switch cfg.Email.Provider {
	case "ses":
		sesClient, err := aws.NewSESClient(ctx, cfg.Email.SES.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		dispatcher = dispatch.NewSESDispatcher(sesClient, log)
	default:
		dispatcher = dispatch.NewBrevoDispatcher(
			cfg.Email.Brevo.APIKey,
			cfg.Email.Brevo.Endpoint,
			time.Duration(cfg.Email.Brevo.Timeout)*time.Millisecond,
			log,
		)
	}
	zapLog.Info("email dispatcher configured", zap.String("provider", dispatcher.Provider()))

	service := notify.NewService(store, settings, resolver, dispatcher, recorder, obs, cfg.Email.FallbackName, log)

	advisor := waitlist.NewAdvisor(waitlist.Config{
		BaseURL:     cfg.Advisor.BaseURL,
		APIKey:      cfg.Advisor.APIKey,
		Timeout:     time.Duration(cfg.Advisor.Timeout) * time.Millisecond,
		MaxRetries:  cfg.Advisor.MaxRetries,
		MaxTokens:   cfg.Advisor.MaxTokens,
		Temperature: cfg.Advisor.Temperature,
	}, log)

	// --- HTTP server ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(
		router,
		api.NewNotificationHandler(service, log),
		api.NewTemplateHandler(store, log),
		api.NewWaitlistHandler(advisor, log),
		pgSettings,
		log,
	)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("server stopped")
}
