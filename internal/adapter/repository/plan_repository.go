package repository

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type planRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PlanRepository {
	return &planRepository{
		db:     db,
		logger: logger,
	}
}

// GetByExternalPlanID retrieves a plan and its closer by the platform plan id
func (r *planRepository) GetByExternalPlanID(ctx context.Context, externalPlanID string) (*model.PaymentPlan, error) {
	var plan model.PaymentPlan

	err := r.db.WithContext(ctx).
		Preload("Closer").
		Where("external_plan_id = ?", externalPlanID).
		First(&plan).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get plan by external plan ID",
			zap.String("external_plan_id", externalPlanID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

// GetByID retrieves a plan by its internal id
func (r *planRepository) GetByID(ctx context.Context, id int64) (*model.PaymentPlan, error) {
	var plan model.PaymentPlan

	err := r.db.WithContext(ctx).
		Preload("Closer").
		Where("id = ?", id).
		First(&plan).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get plan",
			zap.Int64("plan_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

// Upsert creates a plan or refreshes its descriptive fields. Amounts, kind
// and the owning closer are fixed once the plan exists.
func (r *planRepository) Upsert(ctx context.Context, plan *model.PaymentPlan) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_plan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"product_name", "purchase_url", "title", "client_name", "status", "updated_at",
			}),
		}).
		Create(plan).Error

	if err != nil {
		r.logger.Error("Failed to upsert plan",
			zap.String("external_plan_id", plan.ExternalPlanID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	stored, err := r.GetByExternalPlanID(ctx, plan.ExternalPlanID)
	if err != nil {
		return err
	}
	if stored != nil {
		*plan = *stored
	}

	return nil
}

// UpdateDownPaymentStatus sets or clears the settlement status of a plan
func (r *planRepository) UpdateDownPaymentStatus(ctx context.Context, id int64, status *model.DownPaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.PaymentPlan{}).
		Where("id = ?", id).
		Update("down_payment_status", status)

	if result.Error != nil {
		r.logger.Error("Failed to update down payment status",
			zap.Int64("plan_id", id),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update down payment status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrPlanNotFound
	}

	return nil
}
