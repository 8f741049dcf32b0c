package repository

import (
	"context"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

type PlanRepository interface {
	// GetByExternalPlanID loads the plan with its closer; nil, nil when absent.
	GetByExternalPlanID(ctx context.Context, externalPlanID string) (*model.PaymentPlan, error)
	GetByID(ctx context.Context, id int64) (*model.PaymentPlan, error)
	Upsert(ctx context.Context, plan *model.PaymentPlan) error
	UpdateDownPaymentStatus(ctx context.Context, id int64, status *model.DownPaymentStatus) error
}

type CloserRepository interface {
	// UpsertByEmail inserts or updates the closer keyed by email and reloads it.
	UpsertByEmail(ctx context.Context, closer *model.Closer) error
	GetByEmail(ctx context.Context, email string) (*model.Closer, error)
}

type SettingsRepository interface {
	// Get returns the settings row, or nil, nil when none has been saved.
	Get(ctx context.Context) (*model.AppSettings, error)
	SaveOutboundURL(ctx context.Context, url *string) error
}
