package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SettingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the settings row
func (r *settingsRepository) Get(ctx context.Context) (*model.AppSettings, error) {
	var settings model.AppSettings

	err := r.db.WithContext(ctx).
		Where("id = ?", model.DefaultSettingsID).
		First(&settings).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get settings", zap.Error(err))
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &settings, nil
}

// SaveOutboundURL stores the automation endpoint; nil clears it
func (r *settingsRepository) SaveOutboundURL(ctx context.Context, url *string) error {
	settings := &model.AppSettings{
		ID:                 model.DefaultSettingsID,
		OutboundWebhookURL: url,
		UpdatedAt:          time.Now(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"outbound_webhook_url", "updated_at"}),
		}).
		Create(settings).Error

	if err != nil {
		r.logger.Error("Failed to save outbound webhook url", zap.Error(err))
		return fmt.Errorf("failed to save outbound webhook url: %w", err)
	}

	return nil
}
