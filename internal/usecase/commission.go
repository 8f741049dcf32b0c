package usecase

import (
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// CommissionCalculator derives a closer's commission for one payment.
type CommissionCalculator interface {
	Calculate(amount decimal.Decimal, closer *model.Closer) decimal.Decimal
}

// RateCommissionCalculator applies the closer's configured rule.
type RateCommissionCalculator struct{}

func (RateCommissionCalculator) Calculate(amount decimal.Decimal, closer *model.Closer) decimal.Decimal {
	if closer == nil {
		return decimal.Zero
	}
	return CalculateCommission(amount, closer.CommissionType, closer.CommissionValue)
}

// CalculateCommission returns amount * value / 100 for percentage rules and
// value for flat rules, rounded to cents. A zero amount earns nothing under
// either rule. Unknown types and negative values yield zero.
func CalculateCommission(amount decimal.Decimal, commissionType model.CommissionType, value decimal.Decimal) decimal.Decimal {
	if amount.IsZero() || value.IsNegative() {
		return decimal.Zero
	}

	switch commissionType {
	case model.CommissionTypePercentage:
		return amount.Mul(value).Div(hundred).Round(2)
	case model.CommissionTypeFlat:
		return value.Round(2)
	default:
		return decimal.Zero
	}
}
