package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
)

// StatusListLimit caps the event and delivery lists on the status view.
const StatusListLimit = 50

// EventSummary is one row of the webhook event log.
type EventSummary struct {
	ID                 int64      `json:"id"`
	MessageID          string     `json:"message_id"`
	EventType          string     `json:"event_type"`
	ProcessedAt        *time.Time `json:"processed_at"`
	Error              *string    `json:"error"`
	ProcessingAttempts int        `json:"processing_attempts"`
	ReceivedAt         time.Time  `json:"received_at"`
}

// DeliverySummary is one outbound delivery outcome.
type DeliverySummary struct {
	PaymentID         int64                `json:"payment_id"`
	ExternalPaymentID string               `json:"external_payment_id"`
	CloserName        string               `json:"closer_name"`
	CustomerEmail     string               `json:"customer_email"`
	Amount            string               `json:"amount"`
	Status            model.DeliveryStatus `json:"status"`
	Error             *string              `json:"error"`
	SentAt            *time.Time           `json:"sent_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// WebhookStatus is the operator view of inbound and outbound health.
type WebhookStatus struct {
	SecretConfigured   bool              `json:"secret_configured"`
	OutboundConfigured bool              `json:"outbound_configured"`
	RecentEvents       []EventSummary    `json:"recent_events"`
	RecentDeliveries   []DeliverySummary `json:"recent_deliveries"`
	MissingDeliveries  int64             `json:"missing_deliveries"`
}

// AdminService backs the operator endpoints.
type AdminService struct {
	events   domainRepo.WebhookEventRepository
	payments domainRepo.PaymentRepository
	plans    domainRepo.PlanRepository
	stored   domainRepo.SettingsRepository
	settings SettingsProvider
	notifier *OutboundNotifier
	logger   *zap.Logger
}

func NewAdminService(
	events domainRepo.WebhookEventRepository,
	payments domainRepo.PaymentRepository,
	plans domainRepo.PlanRepository,
	stored domainRepo.SettingsRepository,
	settings SettingsProvider,
	notifier *OutboundNotifier,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		events:   events,
		payments: payments,
		plans:    plans,
		stored:   stored,
		settings: settings,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *AdminService) WebhookStatus(ctx context.Context) (*WebhookStatus, error) {
	secret, err := s.settings.WebhookSecret(ctx)
	if err != nil {
		return nil, err
	}
	outboundURL, err := s.settings.OutboundURL(ctx)
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListRecent(ctx, StatusListLimit)
	if err != nil {
		return nil, err
	}
	deliveries, err := s.payments.ListRecentDeliveries(ctx, StatusListLimit)
	if err != nil {
		return nil, err
	}
	missing, err := s.payments.CountMissingDeliveries(ctx)
	if err != nil {
		return nil, err
	}

	status := &WebhookStatus{
		SecretConfigured:   secret != "",
		OutboundConfigured: outboundURL != "",
		RecentEvents:       make([]EventSummary, 0, len(events)),
		RecentDeliveries:   make([]DeliverySummary, 0, len(deliveries)),
		MissingDeliveries:  missing,
	}

	for _, e := range events {
		status.RecentEvents = append(status.RecentEvents, EventSummary{
			ID:                 e.ID,
			MessageID:          e.MessageID,
			EventType:          e.EventType,
			ProcessedAt:        e.ProcessedAt,
			Error:              e.Error,
			ProcessingAttempts: e.ProcessingAttempts,
			ReceivedAt:         e.ReceivedAt,
		})
	}

	for _, p := range deliveries {
		summary := DeliverySummary{
			PaymentID:         p.ID,
			ExternalPaymentID: p.ExternalPaymentID,
			CustomerEmail:     deref(p.CustomerEmail),
			Amount:            p.Amount.StringFixed(2),
			Error:             p.DeliveryError,
			SentAt:            p.DeliverySentAt,
			UpdatedAt:         p.UpdatedAt,
		}
		if p.DeliveryStatus != nil {
			summary.Status = *p.DeliveryStatus
		}
		if p.Closer != nil {
			summary.CloserName = p.Closer.Name
		}
		status.RecentDeliveries = append(status.RecentDeliveries, summary)
	}

	return status, nil
}

// RetryDelivery re-sends the outbound notification for one payment.
func (s *AdminService) RetryDelivery(ctx context.Context, paymentID int64) (*DeliveryResult, error) {
	result, err := s.notifier.Retry(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Manual outbound retry",
		zap.Int64("payment_id", paymentID),
		zap.String("status", string(result.Status)))

	return result, nil
}

// OutboundURL returns the effective automation endpoint.
func (s *AdminService) OutboundURL(ctx context.Context) (string, error) {
	return s.settings.OutboundURL(ctx)
}

// UpdateOutboundURL stores the automation endpoint. An empty value clears
// the stored override.
func (s *AdminService) UpdateOutboundURL(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)

	var value *string
	if raw != "" {
		if err := validateOutboundURL(raw); err != nil {
			return err
		}
		value = &raw
	}

	if err := s.stored.SaveOutboundURL(ctx, value); err != nil {
		return err
	}

	s.logger.Info("Outbound webhook url updated", zap.Bool("cleared", value == nil))
	return nil
}

func validateOutboundURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return domainErrors.ErrInvalidOutboundURL
	}
	return nil
}

// UpdateDownPaymentStatus sets the settlement status of a down payment plan.
func (s *AdminService) UpdateDownPaymentStatus(ctx context.Context, planID int64, status model.DownPaymentStatus) (*model.PaymentPlan, error) {
	switch status {
	case model.DownPaymentPending, model.DownPaymentFullyPaid, model.DownPaymentCancelled:
	default:
		return nil, domainErrors.ErrInvalidDownPaymentStatus
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, domainErrors.ErrPlanNotFound
	}
	if plan.Kind != model.PlanKindDownPayment {
		return nil, domainErrors.ErrNotDownPaymentPlan
	}

	if err := s.plans.UpdateDownPaymentStatus(ctx, planID, &status); err != nil {
		return nil, err
	}
	plan.DownPaymentStatus = &status

	s.logger.Info("Down payment status updated",
		zap.Int64("plan_id", planID),
		zap.String("status", string(status)))

	return plan, nil
}
