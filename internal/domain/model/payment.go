package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus is the ledger state of one charge.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Scan implements sql.Scanner interface
func (s *PaymentStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		*s = PaymentStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// DeliveryStatus is the outcome of forwarding a payment to the automation endpoint.
type DeliveryStatus string

const (
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
	DeliveryStatusSkipped DeliveryStatus = "skipped"
)

// Payment is one charge against a plan, keyed by the platform's payment id.
type Payment struct {
	ID                int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalPaymentID string              `gorm:"column:external_payment_id;not null;size:100;uniqueIndex" json:"external_payment_id"`
	CloserID          int64               `gorm:"not null;index" json:"closer_id"`
	PlanID            *int64              `gorm:"index" json:"plan_id,omitempty"`
	ExternalPlanID    string              `gorm:"column:external_plan_id;size:100" json:"external_plan_id"`
	ExternalProductID *string             `gorm:"column:external_product_id;size:100" json:"external_product_id,omitempty"`
	ProductName       *string             `gorm:"size:200" json:"product_name,omitempty"`
	CustomerID        *string             `gorm:"size:100" json:"customer_id,omitempty"`
	CustomerName      *string             `gorm:"size:200" json:"customer_name,omitempty"`
	CustomerEmail     *string             `gorm:"size:255;index" json:"customer_email,omitempty"`
	MembershipID      *string             `gorm:"size:100" json:"membership_id,omitempty"`
	Amount            decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency          string              `gorm:"size:10;not null" json:"currency"`
	Status            PaymentStatus       `gorm:"size:20;not null;index" json:"status"`
	PaidAt            *time.Time          `gorm:"index" json:"paid_at,omitempty"`
	IsRecurring       bool                `gorm:"not null" json:"is_recurring"`
	InstallmentNumber *int                `json:"installment_number,omitempty"`
	CommissionAmount  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"commission_amount"`
	RefundAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"refund_amount"`
	RefundedAt        *time.Time          `json:"refunded_at,omitempty"`
	WebhookData       datatypes.JSON      `json:"webhook_data,omitempty"`
	DeliveryStatus    *DeliveryStatus     `gorm:"size:20;index" json:"delivery_status,omitempty"`
	DeliveryError     *string             `gorm:"type:text" json:"delivery_error,omitempty"`
	DeliverySentAt    *time.Time          `json:"delivery_sent_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`

	// Relations
	Closer *Closer      `gorm:"foreignKey:CloserID" json:"closer,omitempty"`
	Plan   *PaymentPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
