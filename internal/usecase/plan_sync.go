package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
)

// PlanSeed is a payment plan to import, owned by the closer with CloserEmail.
type PlanSeed struct {
	CloserEmail string
	Plan        *model.PaymentPlan
}

// SyncSummary counts what a catalog sync wrote.
type SyncSummary struct {
	ClosersUpserted int
	PlansUpserted   int
	PlansSkipped    int
}

// PlanSyncService imports closers and plans created outside the service so
// incoming payments can be attributed to them.
type PlanSyncService struct {
	closers domainRepo.CloserRepository
	plans   domainRepo.PlanRepository
	logger  *zap.Logger
}

func NewPlanSyncService(closers domainRepo.CloserRepository, plans domainRepo.PlanRepository, logger *zap.Logger) *PlanSyncService {
	return &PlanSyncService{
		closers: closers,
		plans:   plans,
		logger:  logger,
	}
}

// Sync upserts closers by email, then plans by external plan id. A plan
// whose closer cannot be found is skipped and reported in the returned error;
// the remaining plans are still written.
func (s *PlanSyncService) Sync(ctx context.Context, closers []*model.Closer, plans []PlanSeed) (SyncSummary, error) {
	var summary SyncSummary

	for _, closer := range closers {
		if err := s.closers.UpsertByEmail(ctx, closer); err != nil {
			return summary, err
		}
		summary.ClosersUpserted++
	}

	var errs []error
	for _, seed := range plans {
		closer, err := s.closers.GetByEmail(ctx, seed.CloserEmail)
		if err != nil {
			return summary, err
		}
		if closer == nil {
			s.logger.Warn("Skipping plan with unknown closer",
				zap.String("external_plan_id", seed.Plan.ExternalPlanID),
				zap.String("closer_email", seed.CloserEmail))
			summary.PlansSkipped++
			errs = append(errs, fmt.Errorf("plan %s: closer %s not found", seed.Plan.ExternalPlanID, seed.CloserEmail))
			continue
		}

		seed.Plan.CloserID = closer.ID
		if seed.Plan.Status == "" {
			seed.Plan.Status = model.PlanStatusActive
		}
		if err := s.plans.Upsert(ctx, seed.Plan); err != nil {
			return summary, err
		}
		summary.PlansUpserted++

		s.logger.Info("Synced plan",
			zap.String("external_plan_id", seed.Plan.ExternalPlanID),
			zap.String("plan_kind", string(seed.Plan.Kind)),
			zap.Int64("closer_id", closer.ID))
	}

	return summary, errors.Join(errs...)
}
