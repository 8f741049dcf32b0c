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

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// GetByMessageID retrieves a webhook event by its delivery message id
func (r *webhookEventRepository) GetByMessageID(ctx context.Context, messageID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("message_id", messageID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// SaveIfAbsent records the raw delivery. Concurrent duplicates converge on
// the unique message id.
func (r *webhookEventRepository) SaveIfAbsent(ctx context.Context, event *model.WebhookEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoNothing: true,
		}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("message_id", event.MessageID),
			zap.String("event_type", event.EventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkProcessed moves an event to its terminal state and clears any earlier error
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, messageID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("message_id = ? AND processed_at IS NULL", messageID).
		Updates(map[string]interface{}{
			"processed_at":        &now,
			"error":               nil,
			"processing_attempts": gorm.Expr("processing_attempts + 1"),
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as processed",
			zap.String("message_id", messageID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		r.logger.Debug("Webhook event already terminal",
			zap.String("message_id", messageID))
	}

	return nil
}

// MarkFailed records the handler error and leaves the event open for redelivery
func (r *webhookEventRepository) MarkFailed(ctx context.Context, messageID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("message_id = ? AND processed_at IS NULL", messageID).
		Updates(map[string]interface{}{
			"error":               &errorMsg,
			"processing_attempts": gorm.Expr("processing_attempts + 1"),
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as failed",
			zap.String("message_id", messageID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as failed: %w", result.Error)
	}

	return nil
}

// ListRecent returns the newest events first
func (r *webhookEventRepository) ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).
		Order("received_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to list webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}

	return events, nil
}
