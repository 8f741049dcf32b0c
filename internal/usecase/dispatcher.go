package usecase

import (
	"context"
	"fmt"
	"net/http"

	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/event"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// WebhookVerifier authenticates inbound deliveries.
type WebhookVerifier interface {
	Verify(body []byte, header http.Header, secret string) error
	MessageID(header http.Header) string
}

// InflightGuard keeps concurrent deliveries of one message id from running
// handlers at the same time.
type InflightGuard interface {
	Acquire(ctx context.Context, messageID string) (bool, error)
	Release(ctx context.Context, messageID string) error
}

// EventHandler applies a parsed event to the ledger. The returned payment,
// if any, is forwarded to the outbound notifier.
type EventHandler interface {
	Handle(ctx context.Context, env *event.Envelope, raw []byte) (*model.Payment, error)
}

// PaymentNotifier forwards recorded payments downstream.
type PaymentNotifier interface {
	Notify(ctx context.Context, paymentID int64) (*DeliveryResult, error)
}

// Outcome is the acknowledgment returned to the sender.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeInProgress acknowledges a duplicate while another request holds
	// the same message id.
	OutcomeInProgress Outcome = "in_progress"
)

// DispatchResult describes what happened to one delivery.
type DispatchResult struct {
	Outcome   Outcome
	MessageID string
	EventType string
	// HandlerError is set when the handler failed; the delivery is still acknowledged.
	HandlerError error
	Delivery     *DeliveryResult
}

// Dispatcher is the inbound webhook entry point.
type Dispatcher struct {
	verifier WebhookVerifier
	settings SettingsProvider
	events   domainRepo.WebhookEventRepository
	handler  EventHandler
	notifier PaymentNotifier
	guard    InflightGuard
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher. guard may be nil.
func NewDispatcher(
	verifier WebhookVerifier,
	settings SettingsProvider,
	events domainRepo.WebhookEventRepository,
	handler EventHandler,
	notifier PaymentNotifier,
	guard InflightGuard,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		verifier: verifier,
		settings: settings,
		events:   events,
		handler:  handler,
		notifier: notifier,
		guard:    guard,
		logger:   logger,
	}
}

// Dispatch processes one delivery. Errors are returned only for requests
// that must not be acknowledged: failed authentication, an unparseable body,
// a missing message id, or an unavailable event store. Handler failures and
// concurrent duplicates are acknowledged.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte, header http.Header) (*DispatchResult, error) {
	secret, err := d.settings.WebhookSecret(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.verifier.Verify(body, header, secret); err != nil {
		d.logger.Warn("Webhook signature verification failed",
			zap.String("message_id", d.verifier.MessageID(header)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidSignature, err)
	}

	env, err := event.Parse(body)
	if err != nil {
		return nil, err
	}

	messageID := d.verifier.MessageID(header)
	if messageID == "" {
		messageID = env.PayloadID
	}
	if messageID == "" {
		return nil, domainErrors.ErrMissingMessageID
	}

	log := d.logger.With(
		zap.String("message_id", messageID),
		zap.String("event_type", env.Type))

	if d.guard != nil {
		acquired, err := d.guard.Acquire(ctx, messageID)
		if err != nil {
			log.Warn("In-flight guard unavailable, continuing without it", zap.Error(err))
		} else if !acquired {
			log.Info("Webhook event in progress elsewhere", zap.Error(domainErrors.ErrEventInProgress))
			return &DispatchResult{
				Outcome:   OutcomeInProgress,
				MessageID: messageID,
				EventType: env.Type,
			}, nil
		} else {
			defer func() {
				if err := d.guard.Release(context.WithoutCancel(ctx), messageID); err != nil {
					log.Warn("Failed to release in-flight guard", zap.Error(err))
				}
			}()
		}
	}

	existing, err := d.events.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if existing.Processed() {
		log.Info("Webhook event already processed")
		return &DispatchResult{
			Outcome:   OutcomeAlreadyProcessed,
			MessageID: messageID,
			EventType: env.Type,
		}, nil
	}

	inserted, err := d.events.SaveIfAbsent(ctx, &model.WebhookEvent{
		MessageID: messageID,
		EventType: env.Type,
		Payload:   datatypes.JSON(body),
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		log.Info("Retrying previously failed webhook event")
	}

	result := &DispatchResult{
		Outcome:   OutcomeOK,
		MessageID: messageID,
		EventType: env.Type,
	}

	payment, err := d.handler.Handle(ctx, env, body)
	if err != nil {
		log.Error("Webhook handler failed", zap.Error(err))
		result.HandlerError = err
		if markErr := d.events.MarkFailed(ctx, messageID, err); markErr != nil {
			log.Error("Failed to record webhook handler error", zap.Error(markErr))
		}
		return result, nil
	}

	if err := d.events.MarkProcessed(ctx, messageID); err != nil {
		// the payment is durable; a redelivery will converge on the same row
		log.Error("Failed to mark webhook event processed", zap.Error(err))
		return result, nil
	}

	log.Info("Webhook event processed")

	if payment != nil && payment.Status == model.PaymentStatusSucceeded && d.notifier != nil {
		delivery, err := d.notifier.Notify(context.WithoutCancel(ctx), payment.ID)
		if err != nil {
			log.Error("Outbound notification failed",
				zap.Int64("payment_id", payment.ID),
				zap.Error(err))
		}
		result.Delivery = delivery
	}

	return result, nil
}
