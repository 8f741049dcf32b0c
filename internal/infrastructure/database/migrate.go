package database

import (
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Closer{},
		&model.PaymentPlan{},
		&model.Payment{},
		&model.WebhookEvent{},
		&model.AppSettings{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}
	logger.Info("GORM auto-migrations completed successfully")

	// Partial indexes are PostgreSQL only
	if db.Dialector.Name() == "postgres" {
		logger.Info("Creating custom indexes...")
		if err := createCustomIndexes(db); err != nil {
			logger.Error("Failed to create custom indexes", zap.Error(err))
			return err
		}
		logger.Info("Custom indexes created successfully")
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates custom indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Event log view of deliveries that failed or are still open
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON webhook_events (received_at) WHERE processed_at IS NULL`).Error; err != nil {
		return err
	}

	// Installment counting per plan
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_plan_succeeded ON payments (plan_id) WHERE status = 'succeeded'`).Error; err != nil {
		return err
	}

	// Succeeded payments that never reached the notifier
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_missing_delivery ON payments (created_at) WHERE status = 'succeeded' AND delivery_status IS NULL`).Error; err != nil {
		return err
	}

	return nil
}
