package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// paymentMergeAssignments resolves a redelivered payment against the stored row
// inside the INSERT itself, so concurrent deliveries need no explicit locking.
// A collected charge is never downgraded by a late pending or failed event.
func paymentMergeAssignments() clause.Set {
	return clause.Assignments(map[string]interface{}{
		"status": gorm.Expr(
			"CASE WHEN payments.status = ? THEN payments.status "+
				"WHEN payments.status = ? AND excluded.status IN (?, ?) THEN payments.status "+
				"ELSE excluded.status END",
			model.PaymentStatusRefunded,
			model.PaymentStatusSucceeded, model.PaymentStatusPending, model.PaymentStatusFailed,
		),
		"paid_at":            gorm.Expr("COALESCE(excluded.paid_at, payments.paid_at)"),
		"webhook_data":       gorm.Expr("excluded.webhook_data"),
		"commission_amount":  gorm.Expr("COALESCE(payments.commission_amount, excluded.commission_amount)"),
		"installment_number": gorm.Expr("COALESCE(payments.installment_number, excluded.installment_number)"),
		"updated_at":         gorm.Expr("excluded.updated_at"),
	})
}

// UpsertByExternalID creates the payment or merges it into the existing row
func (r *paymentRepository) UpsertByExternalID(ctx context.Context, payment *model.Payment) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_payment_id"}},
			DoUpdates: paymentMergeAssignments(),
		}).
		Create(payment).Error

	if err != nil {
		r.logger.Error("Failed to upsert payment",
			zap.String("external_payment_id", payment.ExternalPaymentID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	stored, err := r.GetByExternalID(ctx, payment.ExternalPaymentID)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("payment %s missing after upsert", payment.ExternalPaymentID)
	}
	*payment = *stored

	return nil
}

// ApplyRefund sets the refund fields on an existing payment
func (r *paymentRepository) ApplyRefund(ctx context.Context, externalPaymentID string, amount decimal.Decimal, refundedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("external_payment_id = ?", externalPaymentID).
		Updates(map[string]interface{}{
			"status":        model.PaymentStatusRefunded,
			"refund_amount": decimal.NullDecimal{Decimal: amount, Valid: true},
			"refunded_at":   refundedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to apply refund",
			zap.String("external_payment_id", externalPaymentID),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to apply refund: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// CountSucceededByPlan counts succeeded payments on a plan, leaving out the
// payment currently being recorded
func (r *paymentRepository) CountSucceededByPlan(ctx context.Context, planID int64, excludeExternalPaymentID string) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("plan_id = ? AND status = ? AND external_payment_id <> ?",
			planID, model.PaymentStatusSucceeded, excludeExternalPaymentID).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count succeeded payments",
			zap.Int64("plan_id", planID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count succeeded payments: %w", err)
	}

	return count, nil
}

// GetByID retrieves a payment with its closer and plan
func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Preload("Closer").
		Preload("Plan").
		Where("id = ?", id).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment",
			zap.Int64("payment_id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// GetByExternalID retrieves a payment by the platform's payment id
func (r *paymentRepository) GetByExternalID(ctx context.Context, externalPaymentID string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where("external_payment_id = ?", externalPaymentID).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get payment by external id",
			zap.String("external_payment_id", externalPaymentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

// UpdateDelivery stores the outcome of an outbound notification
func (r *paymentRepository) UpdateDelivery(ctx context.Context, id int64, update domainRepo.DeliveryUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivery_status":  update.Status,
			"delivery_error":   update.Error,
			"delivery_sent_at": update.SentAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update delivery status",
			zap.Int64("payment_id", id),
			zap.String("delivery_status", string(update.Status)),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update delivery status: %w", result.Error)
	}

	return nil
}

// ListRecentDeliveries returns payments with a recorded delivery outcome, newest first
func (r *paymentRepository) ListRecentDeliveries(ctx context.Context, limit int) ([]*model.Payment, error) {
	var payments []*model.Payment

	query := r.db.WithContext(ctx).
		Preload("Closer").
		Where("delivery_status IS NOT NULL").
		Order("updated_at DESC, id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&payments).Error; err != nil {
		r.logger.Error("Failed to list deliveries", zap.Error(err))
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return payments, nil
}

// CountMissingDeliveries counts succeeded payments never handed to the notifier
func (r *paymentRepository) CountMissingDeliveries(ctx context.Context) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ? AND delivery_status IS NULL", model.PaymentStatusSucceeded).
		Count(&count).Error

	if err != nil {
		r.logger.Error("Failed to count missing deliveries", zap.Error(err))
		return 0, fmt.Errorf("failed to count missing deliveries: %w", err)
	}

	return count, nil
}
