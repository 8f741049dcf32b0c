package usecase

import (
	"context"
	"fmt"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
)

// PlanResolver correlates inbound events with the plans closers created.
type PlanResolver struct {
	plans  domainRepo.PlanRepository
	logger *zap.Logger
}

func NewPlanResolver(plans domainRepo.PlanRepository, logger *zap.Logger) *PlanResolver {
	return &PlanResolver{
		plans:  plans,
		logger: logger,
	}
}

// Resolve returns the plan and its closer, or nil when the event references
// a plan this service does not track. Test events and plans created outside
// the link generator land here and are not errors.
func (r *PlanResolver) Resolve(ctx context.Context, externalPlanID string) (*model.PaymentPlan, error) {
	if externalPlanID == "" {
		r.logger.Warn("Payment event has no plan reference")
		return nil, nil
	}

	plan, err := r.plans.GetByExternalPlanID(ctx, externalPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan: %w", err)
	}

	if plan == nil {
		r.logger.Warn("No payment plan found for event",
			zap.String("external_plan_id", externalPlanID))
		return nil, nil
	}

	if plan.Closer == nil {
		r.logger.Warn("Payment plan has no closer",
			zap.String("external_plan_id", externalPlanID),
			zap.Int64("plan_id", plan.ID))
		return nil, nil
	}

	return plan, nil
}
