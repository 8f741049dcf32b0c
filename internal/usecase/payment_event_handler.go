package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/event"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// PaymentEventHandler turns normalized events into ledger writes.
type PaymentEventHandler struct {
	resolver   *PlanResolver
	commission CommissionCalculator
	sequencer  *InstallmentSequencer
	ledger     *LedgerWriter
	logger     *zap.Logger
	now        func() time.Time
}

func NewPaymentEventHandler(
	resolver *PlanResolver,
	commission CommissionCalculator,
	sequencer *InstallmentSequencer,
	ledger *LedgerWriter,
	logger *zap.Logger,
) *PaymentEventHandler {
	return &PaymentEventHandler{
		resolver:   resolver,
		commission: commission,
		sequencer:  sequencer,
		ledger:     ledger,
		logger:     logger,
		now:        time.Now,
	}
}

// Handle routes the envelope by kind. It returns the recorded payment when
// the event produced a succeeded charge worth notifying about.
func (h *PaymentEventHandler) Handle(ctx context.Context, env *event.Envelope, raw []byte) (*model.Payment, error) {
	switch env.Kind {
	case event.KindPaymentSucceeded:
		return h.HandleSucceeded(ctx, env.Payment, raw)
	case event.KindPaymentFailed:
		return nil, h.HandleStatus(ctx, env.Payment, model.PaymentStatusFailed, raw)
	case event.KindPaymentPending:
		return nil, h.HandleStatus(ctx, env.Payment, model.PaymentStatusPending, raw)
	case event.KindRefundCreated, event.KindRefundUpdated:
		return nil, h.HandleRefund(ctx, env.Refund)
	default:
		h.logger.Info("Ignoring unhandled webhook event type",
			zap.String("event_type", env.Type))
		return nil, nil
	}
}

// HandleSucceeded records a successful charge. Commission and installment
// ordinal are computed only for payments that do not have them yet.
func (h *PaymentEventHandler) HandleSucceeded(ctx context.Context, p *event.Payment, raw []byte) (*model.Payment, error) {
	if p == nil || p.ID == "" {
		h.logger.Warn("Succeeded event has no payment id")
		return nil, nil
	}

	plan, err := h.resolver.Resolve(ctx, p.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	existing, err := h.ledger.Existing(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	payment := h.newPayment(plan, p, model.PaymentStatusSucceeded, raw)
	paidAt := h.now().UTC()
	if p.PaidAt != nil {
		paidAt = *p.PaidAt
	}
	payment.PaidAt = &paidAt

	if existing == nil || !existing.CommissionAmount.Valid {
		payment.CommissionAmount = decimal.NewNullDecimal(h.commission.Calculate(p.Amount, plan.Closer))
	}
	if existing == nil || existing.InstallmentNumber == nil {
		ordinal, err := h.sequencer.Next(ctx, plan.ID, p.ID)
		if err != nil {
			return nil, err
		}
		payment.InstallmentNumber = &ordinal
	}

	if err := h.ledger.Record(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// HandleStatus records a failed or pending charge without commission.
func (h *PaymentEventHandler) HandleStatus(ctx context.Context, p *event.Payment, status model.PaymentStatus, raw []byte) error {
	if p == nil || p.ID == "" {
		h.logger.Warn("Payment event has no payment id",
			zap.String("status", string(status)))
		return nil
	}

	plan, err := h.resolver.Resolve(ctx, p.PlanID)
	if err != nil {
		return err
	}
	if plan == nil {
		return nil
	}

	return h.ledger.Record(ctx, h.newPayment(plan, p, status, raw))
}

// HandleRefund marks a tracked payment refunded. Refunds of charges this
// service never saw are ignored.
func (h *PaymentEventHandler) HandleRefund(ctx context.Context, r *event.Refund) error {
	if r == nil || r.PaymentID == "" {
		h.logger.Warn("Refund event has no payment reference")
		return nil
	}

	refundedAt := h.now().UTC()
	if r.RefundedAt != nil {
		refundedAt = *r.RefundedAt
	}

	found, err := h.ledger.Refund(ctx, r.PaymentID, r.Amount, refundedAt)
	if err != nil {
		return err
	}
	if !found {
		h.logger.Info("Refund for untracked payment ignored",
			zap.String("external_payment_id", r.PaymentID))
	}
	return nil
}

func (h *PaymentEventHandler) newPayment(plan *model.PaymentPlan, p *event.Payment, status model.PaymentStatus, raw []byte) *model.Payment {
	planID := plan.ID
	return &model.Payment{
		ExternalPaymentID: p.ID,
		CloserID:          plan.CloserID,
		PlanID:            &planID,
		ExternalPlanID:    plan.ExternalPlanID,
		ExternalProductID: optional(firstNonEmpty(p.ProductID, plan.ExternalProductID)),
		ProductName:       optional(firstNonEmpty(p.ProductTitle, plan.ProductName)),
		CustomerID:        optional(p.Customer.ID),
		CustomerName:      optional(p.CustomerName()),
		CustomerEmail:     optional(p.CustomerEmail()),
		MembershipID:      optional(p.Membership.ID),
		Amount:            p.Amount,
		Currency:          p.Currency,
		Status:            status,
		IsRecurring:       plan.Kind.IsRecurring(),
		WebhookData:       datatypes.JSON(raw),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
