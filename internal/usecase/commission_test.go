package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name           string
		amount         string
		commissionType model.CommissionType
		value          string
		expected       string
	}{
		{"percentage", "200.00", model.CommissionTypePercentage, "15", "30"},
		{"percentage rounds to cents", "33.33", model.CommissionTypePercentage, "10", "3.33"},
		{"percentage of zero", "0", model.CommissionTypePercentage, "15", "0"},
		{"flat small payment", "10.00", model.CommissionTypeFlat, "50", "50"},
		{"flat large payment", "10000.00", model.CommissionTypeFlat, "50", "50"},
		{"flat on zero amount", "0", model.CommissionTypeFlat, "50", "0"},
		{"negative value", "200.00", model.CommissionTypePercentage, "-5", "0"},
		{"unknown type", "200.00", model.CommissionType("tiered"), "15", "0"},
		{"empty type", "200.00", model.CommissionType(""), "15", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCommission(
				decimal.RequireFromString(tt.amount),
				tt.commissionType,
				decimal.RequireFromString(tt.value),
			)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got),
				"expected %s, got %s", tt.expected, got)
		})
	}
}

func TestRateCommissionCalculator_NilCloser(t *testing.T) {
	got := RateCommissionCalculator{}.Calculate(decimal.NewFromInt(100), nil)
	assert.True(t, got.IsZero())
}
