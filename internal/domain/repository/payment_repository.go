package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

// DeliveryUpdate is the outcome of one outbound notification run.
type DeliveryUpdate struct {
	Status model.DeliveryStatus
	Error  *string
	SentAt *time.Time
}

type PaymentRepository interface {
	// UpsertByExternalID inserts the payment or merges it into the existing row
	// with the same external payment id, then reloads payment from the store.
	// Commission and installment number are never overwritten once set, and a
	// refunded payment keeps its refunded status.
	UpsertByExternalID(ctx context.Context, payment *model.Payment) error
	// ApplyRefund marks the payment refunded. It reports false when no
	// payment has the external id.
	ApplyRefund(ctx context.Context, externalPaymentID string, amount decimal.Decimal, refundedAt time.Time) (bool, error)
	CountSucceededByPlan(ctx context.Context, planID int64, excludeExternalPaymentID string) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	GetByExternalID(ctx context.Context, externalPaymentID string) (*model.Payment, error)
	UpdateDelivery(ctx context.Context, id int64, update DeliveryUpdate) error
	ListRecentDeliveries(ctx context.Context, limit int) ([]*model.Payment, error)
	CountMissingDeliveries(ctx context.Context) (int64, error)
}
