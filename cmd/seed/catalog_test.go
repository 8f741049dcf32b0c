package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

const sampleCatalog = `
closers:
  - name: Sam Rivera
    email: Sam@Closers.test
    commission_type: percentage
    commission_value: "12.5"
  - name: Jo Park
    email: jo@closers.test
    commission_type: flat
    commission_value: "100"
    is_active: false
plans:
  - closer_email: sam@closers.test
    external_plan_id: plan_abc
    product_name: Coaching
    purchase_url: https://whop.com/checkout/plan_abc
    client_name: Dana
    plan_kind: split_pay
    total_amount: "1500"
    installment_count: 3
    billing_period_days: 30
`

func TestParseCatalog(t *testing.T) {
	closers, plans, err := parseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	require.Len(t, closers, 2)
	assert.Equal(t, "sam@closers.test", closers[0].Email)
	assert.True(t, closers[0].IsActive)
	assert.True(t, closers[0].CommissionValue.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, model.CommissionTypeFlat, closers[1].CommissionType)
	assert.False(t, closers[1].IsActive)

	require.Len(t, plans, 1)
	plan := plans[0].Plan
	assert.Equal(t, "sam@closers.test", plans[0].CloserEmail)
	assert.Equal(t, model.PlanKindSplitPay, plan.Kind)
	assert.True(t, plan.TotalAmount.Valid)
	assert.False(t, plan.InitialPrice.Valid)
	require.NotNil(t, plan.ClientName)
	assert.Equal(t, "Dana", *plan.ClientName)
	assert.Nil(t, plan.Title)
	require.NotNil(t, plan.InstallmentCount)
	assert.Equal(t, 3, *plan.InstallmentCount)
}

func TestParseCatalog_Empty(t *testing.T) {
	closers, plans, err := parseCatalog([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, closers)
	assert.Empty(t, plans)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad email", "closers:\n  - name: A\n    email: nope\n    commission_type: flat\n    commission_value: \"1\"\n"},
		{"unknown commission type", "closers:\n  - name: A\n    email: a@b.co\n    commission_type: tiered\n    commission_value: \"1\"\n"},
		{"non numeric commission", "closers:\n  - name: A\n    email: a@b.co\n    commission_type: flat\n    commission_value: ten\n"},
		{"missing plan id", "plans:\n  - closer_email: a@b.co\n    plan_kind: one_time\n"},
		{"unknown plan kind", "plans:\n  - closer_email: a@b.co\n    external_plan_id: p\n    plan_kind: lifetime\n"},
		{"not yaml", "closers: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
