package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type closerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCloserRepository creates a new closer repository
func NewCloserRepository(db *gorm.DB, logger *zap.Logger) domainRepo.CloserRepository {
	return &closerRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertByEmail creates or updates a closer keyed by email. Payments already
// recorded keep the commission computed at the time.
func (r *closerRepository) UpsertByEmail(ctx context.Context, closer *model.Closer) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "phone", "commission_type", "commission_value", "is_active", "updated_at",
			}),
		}).
		Create(closer).Error

	if err != nil {
		r.logger.Error("Failed to upsert closer",
			zap.String("email", closer.Email),
			zap.Error(err))
		return fmt.Errorf("failed to upsert closer: %w", err)
	}

	stored, err := r.GetByEmail(ctx, closer.Email)
	if err != nil {
		return err
	}
	if stored != nil {
		*closer = *stored
	}

	return nil
}

// GetByEmail retrieves a closer by email
func (r *closerRepository) GetByEmail(ctx context.Context, email string) (*model.Closer, error) {
	var closer model.Closer

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&closer).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get closer",
			zap.String("email", email),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get closer: %w", err)
	}

	return &closer, nil
}
