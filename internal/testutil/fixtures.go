package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"gorm.io/gorm"
)

// CreateCloser inserts an active closer with the given commission rule.
func CreateCloser(t *testing.T, db *gorm.DB, name string, commissionType model.CommissionType, value string) *model.Closer {
	t.Helper()

	closer := &model.Closer{
		Name:            name,
		Email:           name + "@closers.test",
		CommissionType:  commissionType,
		CommissionValue: decimal.RequireFromString(value),
		IsActive:        true,
	}
	require.NoError(t, db.Create(closer).Error)
	return closer
}

// CreatePlan inserts an active plan owned by closer. total may be empty.
func CreatePlan(t *testing.T, db *gorm.DB, closer *model.Closer, externalPlanID string, kind model.PlanKind, total string) *model.PaymentPlan {
	t.Helper()

	plan := &model.PaymentPlan{
		CloserID:          closer.ID,
		ExternalPlanID:    externalPlanID,
		ExternalProductID: "prod_" + externalPlanID,
		ProductName:       "Product " + externalPlanID,
		Kind:              kind,
		Status:            model.PlanStatusActive,
	}
	if total != "" {
		plan.TotalAmount = decimal.NewNullDecimal(decimal.RequireFromString(total))
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}
