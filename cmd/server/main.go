package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/wekeepgrowing/closerlink/internal/adapter/handler/http"
	"github.com/wekeepgrowing/closerlink/internal/config"
	"github.com/wekeepgrowing/closerlink/internal/infrastructure/cache"
	"github.com/wekeepgrowing/closerlink/internal/infrastructure/database"
	grpcServer "github.com/wekeepgrowing/closerlink/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/closerlink/internal/infrastructure/http"
	"github.com/wekeepgrowing/closerlink/internal/infrastructure/signature"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	pkgcache "github.com/wekeepgrowing/closerlink/pkg/cache"
	"github.com/wekeepgrowing/closerlink/pkg/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
		Service:     cfg.Service.Name,
	})
	if err != nil {
		zapLogger = logger.DefaultZapLogger()
		zapLogger.Warn("Invalid log settings, using defaults", zap.Error(err))
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)
	settings := usecase.NewStoredSettings(repos.Settings, cfg.Webhook.Secret, cfg.Outbound.URL)

	// Optional in-flight guard
	var guard usecase.InflightGuard
	if cfg.Redis.Enabled() {
		redisClient, err := pkgcache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Warn("Redis unavailable, running without in-flight guard", zap.Error(err))
		} else {
			defer redisClient.Close()
			guard = cache.NewInflightGuard(redisClient, cfg.Redis.InflightTTL)
			zapLogger.Info("In-flight guard enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Pipeline
	verifier := signature.NewVerifier(zapLogger, cfg.Webhook.SecretHeaders, cfg.Webhook.TimestampTolerance)
	ledger := usecase.NewLedgerWriter(repos.Payment, zapLogger)
	eventHandler := usecase.NewPaymentEventHandler(
		usecase.NewPlanResolver(repos.Plan, zapLogger),
		usecase.RateCommissionCalculator{},
		usecase.NewInstallmentSequencer(repos.Payment),
		ledger,
		zapLogger,
	)
	notifier := usecase.NewOutboundNotifier(repos.Payment, settings, nil, usecase.NotifierConfig{
		Timeout:       cfg.Outbound.Timeout,
		MaxAttempts:   cfg.Outbound.MaxAttempts,
		Backoff:       cfg.Outbound.Backoff,
		ErrorMaxChars: cfg.Outbound.ErrorMaxChars,
	}, zapLogger)
	dispatcher := usecase.NewDispatcher(verifier, settings, repos.WebhookEvent, eventHandler, notifier, guard, zapLogger)
	adminService := usecase.NewAdminService(repos.WebhookEvent, repos.Payment, repos.Plan, repos.Settings, settings, notifier, zapLogger)

	// Initialize servers
	httpSrv := httpServer.NewServer(cfg, zapLogger,
		handlers.NewWebhookHandler(dispatcher, zapLogger),
		handlers.NewAdminHandler(adminService, zapLogger))

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown servers
	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(ctx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Servers shut down successfully")
}
