package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"financial-mirror/internal/api"
	"financial-mirror/internal/config"
	"financial-mirror/internal/database"
	"financial-mirror/internal/middleware"
	"financial-mirror/internal/services"
	"financial-mirror/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		logging.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.InitDatabase(cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}

	redisClient, err := database.InitRedis(cfg)
	if err != nil {
		logging.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer database.CloseDatabase(db, redisClient)

	if cfg.HotmartWebhookSecret == "" {
		logging.Warnf("HOTMART_WEBHOOK_SECRET is not set, webhook deliveries will fail with 500")
	}
	if !cfg.IdentityConfigured() {
		logging.Warnf("SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY is not set, webhook deliveries will fail with 500")
	}

	store := database.NewSubscriptionStore(db)
	events := database.NewEventLog(db)

	directoryOpts := services.UserDirectoryOptions{
		PageSize: cfg.DirectoryPageSize,
		MaxPages: cfg.DirectoryMaxPages,
		Timeout:  cfg.DirectoryTimeout,
	}
	var redisService *services.RedisService
	if redisClient != nil {
		redisService = services.NewRedisService(redisClient, cfg.DirectoryCacheTTL)
		directoryOpts.Cache = redisService
	}

	identity := services.NewSupabaseAdminClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.DirectoryTimeout)
	directory := services.NewUserDirectory(identity, directoryOpts)

	var processorOpts []services.ProcessorOption
	if cfg.BrevoAPIKey != "" && cfg.SignupURL != "" {
		brevoOpts := services.BrevoOptions{
			APIKey:    cfg.BrevoAPIKey,
			FromEmail: cfg.BrevoFromEmail,
			FromName:  cfg.BrevoFromName,
			AppName:   cfg.AppName,
			SignupURL: cfg.SignupURL,
			Cooldown:  cfg.InviteCooldown,
		}
		if redisService != nil {
			brevoOpts.Limiter = redisService
		}
		processorOpts = append(processorOpts, services.WithInviter(services.NewBrevoService(brevoOpts)))
		logging.Infof("Signup invites enabled")
	}

	processor := services.NewWebhookProcessor(directory, store, events,
		services.NewSubscriptionStateMachine(cfg.DefaultValidity()), processorOpts...)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	api.SetupRoutes(r, api.Dependencies{
		Config:        cfg,
		Processor:     processor,
		Subscriptions: services.NewSubscriptionQueryService(store),
		Events:        events,
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown failed: %v", err)
	}
}
