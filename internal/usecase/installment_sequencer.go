package usecase

import (
	"context"
	"fmt"

	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
)

// InstallmentSequencer assigns the 1-based position of a payment within its
// plan. Concurrent deliveries for the same plan may receive the same ordinal;
// payments stay keyed by their external id regardless.
type InstallmentSequencer struct {
	payments domainRepo.PaymentRepository
}

func NewInstallmentSequencer(payments domainRepo.PaymentRepository) *InstallmentSequencer {
	return &InstallmentSequencer{payments: payments}
}

// Next counts succeeded payments on the plan other than externalPaymentID.
func (s *InstallmentSequencer) Next(ctx context.Context, planID int64, externalPaymentID string) (int, error) {
	count, err := s.payments.CountSucceededByPlan(ctx, planID, externalPaymentID)
	if err != nil {
		return 0, fmt.Errorf("failed to sequence installment: %w", err)
	}
	return int(count) + 1, nil
}
