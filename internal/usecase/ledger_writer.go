package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
)

// LedgerWriter is the only writer of payment records. All writes are keyed
// by the external payment id.
type LedgerWriter struct {
	payments domainRepo.PaymentRepository
	logger   *zap.Logger
}

func NewLedgerWriter(payments domainRepo.PaymentRepository, logger *zap.Logger) *LedgerWriter {
	return &LedgerWriter{
		payments: payments,
		logger:   logger,
	}
}

// Existing returns the recorded payment for an external id, if any.
func (w *LedgerWriter) Existing(ctx context.Context, externalPaymentID string) (*model.Payment, error) {
	payment, err := w.payments.GetByExternalID(ctx, externalPaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}
	return payment, nil
}

// Record creates or merges the payment. On return payment reflects the stored row.
func (w *LedgerWriter) Record(ctx context.Context, payment *model.Payment) error {
	if err := w.payments.UpsertByExternalID(ctx, payment); err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	w.logger.Info("Payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.String("external_payment_id", payment.ExternalPaymentID),
		zap.String("status", string(payment.Status)),
		zap.String("amount", payment.Amount.String()))

	return nil
}

// Refund applies a refund to a recorded payment. It reports false when the
// payment is unknown, which callers treat as a no-op.
func (w *LedgerWriter) Refund(ctx context.Context, externalPaymentID string, amount decimal.Decimal, refundedAt time.Time) (bool, error) {
	found, err := w.payments.ApplyRefund(ctx, externalPaymentID, amount, refundedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record refund: %w", err)
	}

	if found {
		w.logger.Info("Refund recorded",
			zap.String("external_payment_id", externalPaymentID),
			zap.String("refund_amount", amount.String()))
	}

	return found, nil
}
