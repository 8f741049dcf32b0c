package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanKind is the checkout shape a closer chose when generating the link.
type PlanKind string

const (
	PlanKindOneTime     PlanKind = "one_time"
	PlanKindRenewal     PlanKind = "renewal"
	PlanKindSplitPay    PlanKind = "split_pay"
	PlanKindCustomSplit PlanKind = "custom_split"
	PlanKindDownPayment PlanKind = "down_payment"
)

// IsRecurring reports whether payments against the plan repeat.
func (k PlanKind) IsRecurring() bool {
	return k != "" && k != PlanKindOneTime
}

// CollectsTotal reports whether the plan collects a fixed total over
// several payments, so the outstanding total is meaningful downstream.
func (k PlanKind) CollectsTotal() bool {
	switch k {
	case PlanKindDownPayment, PlanKindSplitPay, PlanKindCustomSplit:
		return true
	}
	return false
}

type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusExpired   PlanStatus = "expired"
	PlanStatusCompleted PlanStatus = "completed"
)

// DownPaymentStatus tracks manual settlement of the balance on a down payment plan.
type DownPaymentStatus string

const (
	DownPaymentPending   DownPaymentStatus = "pending"
	DownPaymentFullyPaid DownPaymentStatus = "fully_paid"
	DownPaymentCancelled DownPaymentStatus = "cancelled"
)

// PaymentPlan is a checkout link created by a closer, correlated to the
// commerce platform by ExternalPlanID.
type PaymentPlan struct {
	ID                     int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	CloserID               int64               `gorm:"not null;index" json:"closer_id"`
	ExternalPlanID         string              `gorm:"column:external_plan_id;not null;size:100;uniqueIndex" json:"external_plan_id"`
	ExternalProductID      string              `gorm:"column:external_product_id;size:100" json:"external_product_id"`
	ProductName            string              `gorm:"size:200" json:"product_name"`
	PurchaseURL            string              `gorm:"size:500" json:"purchase_url"`
	Title                  *string             `gorm:"size:200" json:"title,omitempty"`
	ClientName             *string             `gorm:"size:200" json:"client_name,omitempty"`
	Kind                   PlanKind            `gorm:"column:plan_kind;not null;size:20" json:"plan_kind"`
	TotalAmount            decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	InitialPrice           decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"initial_price"`
	RenewalPrice           decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"renewal_price"`
	BillingPeriodDays      *int                `json:"billing_period_days,omitempty"`
	InstallmentCount       *int                `json:"installment_count,omitempty"`
	CustomSplitDescription *string             `gorm:"type:text" json:"custom_split_description,omitempty"`
	Status                 PlanStatus          `gorm:"not null;size:20;index" json:"status"`
	DownPaymentStatus      *DownPaymentStatus  `gorm:"size:20" json:"down_payment_status,omitempty"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`

	// Relations
	Closer *Closer `gorm:"foreignKey:CloserID" json:"closer,omitempty"`
}

// Settlement returns the settlement status of a down payment plan, treating
// an unset status as pending. It is empty for every other plan kind.
func (p *PaymentPlan) Settlement() DownPaymentStatus {
	if p.Kind != PlanKindDownPayment {
		return ""
	}
	if p.DownPaymentStatus == nil {
		return DownPaymentPending
	}
	return *p.DownPaymentStatus
}

// TableName specifies the table name for GORM
func (PaymentPlan) TableName() string {
	return "payment_plans"
}
