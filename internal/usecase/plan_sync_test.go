package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/closerlink/internal/adapter/repository"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"github.com/wekeepgrowing/closerlink/internal/testutil"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"go.uber.org/zap"
)

func TestPlanSyncService_Sync(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	db := testutil.NewDB(t)
	closers := repository.NewCloserRepository(db, logger)
	plans := repository.NewPlanRepository(db, logger)
	service := usecase.NewPlanSyncService(closers, plans, logger)

	seedClosers := []*model.Closer{{
		Name:            "Sam Rivera",
		Email:           "sam@closers.test",
		CommissionType:  model.CommissionTypePercentage,
		CommissionValue: decimal.RequireFromString("10"),
		IsActive:        true,
	}}
	seedPlans := []usecase.PlanSeed{
		{
			CloserEmail: "sam@closers.test",
			Plan: &model.PaymentPlan{
				ExternalPlanID: "plan_1",
				ProductName:    "Coaching",
				Kind:           model.PlanKindSplitPay,
				TotalAmount:    decimal.NewNullDecimal(decimal.RequireFromString("900")),
			},
		},
		{
			CloserEmail: "nobody@closers.test",
			Plan:        &model.PaymentPlan{ExternalPlanID: "plan_2", Kind: model.PlanKindOneTime},
		},
	}

	summary, err := service.Sync(ctx, seedClosers, seedPlans)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan_2")
	assert.Equal(t, usecase.SyncSummary{ClosersUpserted: 1, PlansUpserted: 1, PlansSkipped: 1}, summary)

	stored, err := plans.GetByExternalPlanID(ctx, "plan_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, seedClosers[0].ID, stored.CloserID)
	assert.Equal(t, model.PlanStatusActive, stored.Status)
	assert.True(t, stored.TotalAmount.Decimal.Equal(decimal.RequireFromString("900")))

	missing, err := plans.GetByExternalPlanID(ctx, "plan_2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// a second run updates in place
	seedClosers = []*model.Closer{{
		Name:            "Sam Rivera",
		Email:           "sam@closers.test",
		CommissionType:  model.CommissionTypePercentage,
		CommissionValue: decimal.RequireFromString("12.5"),
		IsActive:        true,
	}}
	seedPlans[0].Plan = &model.PaymentPlan{ExternalPlanID: "plan_1", ProductName: "Coaching Plus", Kind: model.PlanKindSplitPay}
	summary, err = service.Sync(ctx, seedClosers, seedPlans[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PlansUpserted)

	closer, err := closers.GetByEmail(ctx, "sam@closers.test")
	require.NoError(t, err)
	assert.True(t, closer.CommissionValue.Equal(decimal.RequireFromString("12.5")))

	var count int64
	require.NoError(t, db.Model(&model.PaymentPlan{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stored, err = plans.GetByExternalPlanID(ctx, "plan_1")
	require.NoError(t, err)
	assert.Equal(t, "Coaching Plus", stored.ProductName)
}
