// Package event normalizes inbound commerce-platform notifications into one
// canonical shape. Handlers only ever see an Envelope; field-name variations
// across platform protocol versions are resolved here.
package event

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrMalformedPayload is returned for bodies that are not a JSON object.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Kind is the normalized event type.
type Kind string

const (
	KindPaymentSucceeded Kind = "payment.succeeded"
	KindPaymentFailed    Kind = "payment.failed"
	KindPaymentPending   Kind = "payment.pending"
	KindRefundCreated    Kind = "refund.created"
	KindRefundUpdated    Kind = "refund.updated"
	KindUnknown          Kind = "unknown"
)

// IsPayment reports whether the kind carries a Payment body.
func (k Kind) IsPayment() bool {
	switch k {
	case KindPaymentSucceeded, KindPaymentFailed, KindPaymentPending:
		return true
	}
	return false
}

// IsRefund reports whether the kind carries a Refund body.
func (k Kind) IsRefund() bool {
	return k == KindRefundCreated || k == KindRefundUpdated
}

// Envelope is the parsed notification. Exactly one of Payment or Refund is
// set for known kinds; both are nil for KindUnknown.
type Envelope struct {
	// Type is the event name as sent by the platform, or "unknown".
	Type      string
	Kind      Kind
	PayloadID string

	Payment *Payment
	Refund  *Refund
}

// Party identifies a customer or membership on the platform.
type Party struct {
	ID    string
	Name  string
	Email string
}

type Payment struct {
	ID           string
	PlanID       string
	ProductID    string
	ProductTitle string
	Customer     Party
	Membership   Party
	Amount       decimal.Decimal
	Currency     string
	PaidAt       *time.Time
}

// CustomerEmail prefers the user's email over the membership's.
func (p *Payment) CustomerEmail() string {
	if p.Customer.Email != "" {
		return p.Customer.Email
	}
	return p.Membership.Email
}

// CustomerName prefers the user's name over the membership's.
func (p *Payment) CustomerName() string {
	if p.Customer.Name != "" {
		return p.Customer.Name
	}
	return p.Membership.Name
}

type Refund struct {
	// PaymentID is the external id of the refunded charge.
	PaymentID  string
	Amount     decimal.Decimal
	RefundedAt *time.Time
}
