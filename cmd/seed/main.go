package main

import (
	"context"
	"flag"
	"log"

	"github.com/wekeepgrowing/closerlink/internal/config"
	"github.com/wekeepgrowing/closerlink/internal/infrastructure/database"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"github.com/wekeepgrowing/closerlink/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	catalogPath := flag.String("file", "configs/catalog.yaml", "YAML file of closers and payment plans")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:   cfg.Log.Level,
		Format:  "console",
		Output:  "stdout",
		Service: "closerlink-seed",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	closers, plans, err := loadCatalog(*catalogPath)
	if err != nil {
		zapLogger.Fatal("Failed to load catalog", zap.String("path", *catalogPath), zap.Error(err))
	}

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

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)
	planSync := usecase.NewPlanSyncService(repos.Closer, repos.Plan, zapLogger)

	summary, err := planSync.Sync(context.Background(), closers, plans)
	if err != nil {
		zapLogger.Error("Catalog sync finished with errors", zap.Error(err))
	}

	zapLogger.Info("Catalog sync completed",
		zap.Int("closers_upserted", summary.ClosersUpserted),
		zap.Int("plans_upserted", summary.PlansUpserted),
		zap.Int("plans_skipped", summary.PlansSkipped))
}
