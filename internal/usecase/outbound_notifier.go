package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	defaultOutboundTimeout  = 5 * time.Second
	defaultOutboundAttempts = 2
	defaultErrorMaxChars    = 500

	// cap on how much of an error response body is read
	maxResponseSnippet = 2048
)

// NotifierConfig bounds outbound delivery.
type NotifierConfig struct {
	Timeout       time.Duration
	MaxAttempts   int
	Backoff       time.Duration
	ErrorMaxChars int
}

// OutboundPayload is the summary posted to the automation endpoint.
type OutboundPayload struct {
	ClientName         string   `json:"client_name"`
	ClientEmail        string   `json:"client_email"`
	Package            string   `json:"package"`
	AmountCollected    float64  `json:"amount_collected"`
	TotalToBeCollected *float64 `json:"total_to_be_collected"`
	PaymentType        string   `json:"payment_type"`
	CloserFirstName    string   `json:"closer_first_name"`
	CloserLastName     string   `json:"closer_last_name"`
}

// DeliveryResult is the recorded outcome of one notification run.
type DeliveryResult struct {
	Status model.DeliveryStatus `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// OutboundNotifier forwards recorded payments to the operator's automation
// endpoint and tracks the outcome on the payment.
type OutboundNotifier struct {
	payments domainRepo.PaymentRepository
	settings SettingsProvider
	client   *http.Client
	config   NotifierConfig
	logger   *zap.Logger
	now      func() time.Time
}

func NewOutboundNotifier(
	payments domainRepo.PaymentRepository,
	settings SettingsProvider,
	client *http.Client,
	config NotifierConfig,
	logger *zap.Logger,
) *OutboundNotifier {
	if client == nil {
		client = &http.Client{}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultOutboundTimeout
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaultOutboundAttempts
	}
	if config.ErrorMaxChars <= 0 {
		config.ErrorMaxChars = defaultErrorMaxChars
	}
	return &OutboundNotifier{
		payments: payments,
		settings: settings,
		client:   client,
		config:   config,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify delivers a freshly recorded payment. Payments already delivered are
// left alone, and a missing endpoint is recorded as skipped.
func (n *OutboundNotifier) Notify(ctx context.Context, paymentID int64) (*DeliveryResult, error) {
	payment, err := n.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.DeliveryStatus != nil && *payment.DeliveryStatus == model.DeliveryStatusSent {
		return &DeliveryResult{Status: model.DeliveryStatusSent}, nil
	}

	url, err := n.settings.OutboundURL(ctx)
	if err != nil {
		return nil, err
	}

	if url == "" {
		result := &DeliveryResult{Status: model.DeliveryStatusSkipped}
		if err := n.record(ctx, payment.ID, result); err != nil {
			return nil, err
		}
		n.logger.Debug("Outbound webhook url not configured, delivery skipped",
			zap.Int64("payment_id", payment.ID))
		return result, nil
	}

	return n.deliver(ctx, url, payment)
}

// Retry re-sends a payment on operator request, whatever its current status.
func (n *OutboundNotifier) Retry(ctx context.Context, paymentID int64) (*DeliveryResult, error) {
	url, err := n.settings.OutboundURL(ctx)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, domainErrors.ErrOutboundURLNotConfigured
	}

	payment, err := n.loadPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return n.deliver(ctx, url, payment)
}

func (n *OutboundNotifier) loadPayment(ctx context.Context, paymentID int64) (*model.Payment, error) {
	payment, err := n.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment for delivery: %w", err)
	}
	if payment == nil {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return payment, nil
}

func (n *OutboundNotifier) deliver(ctx context.Context, url string, payment *model.Payment) (*DeliveryResult, error) {
	body, err := json.Marshal(BuildOutboundPayload(payment))
	if err != nil {
		return nil, fmt.Errorf("failed to encode outbound payload: %w", err)
	}

	attempts := 0
	operation := func() error {
		attempts++
		return n.post(ctx, url, body)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(n.config.Backoff), uint64(n.config.MaxAttempts-1)),
		ctx,
	)

	result := &DeliveryResult{Status: model.DeliveryStatusSent}
	if err := backoff.Retry(operation, policy); err != nil {
		result = &DeliveryResult{
			Status: model.DeliveryStatusFailed,
			Error:  truncate(err.Error(), n.config.ErrorMaxChars),
		}
		n.logger.Warn("Outbound webhook delivery failed",
			zap.Int64("payment_id", payment.ID),
			zap.Int("attempts", attempts),
			zap.Error(err))
	} else {
		n.logger.Info("Outbound webhook delivered",
			zap.Int64("payment_id", payment.ID),
			zap.Int("attempts", attempts))
	}

	if err := n.record(ctx, payment.ID, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (n *OutboundNotifier) post(ctx context.Context, url string, body []byte) error {
	attemptCtx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("invalid outbound request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSnippet))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (n *OutboundNotifier) record(ctx context.Context, paymentID int64, result *DeliveryResult) error {
	update := domainRepo.DeliveryUpdate{Status: result.Status}
	switch result.Status {
	case model.DeliveryStatusSent:
		sentAt := n.now()
		update.SentAt = &sentAt
	case model.DeliveryStatusFailed:
		msg := result.Error
		update.Error = &msg
	}

	if err := n.payments.UpdateDelivery(ctx, paymentID, update); err != nil {
		return fmt.Errorf("failed to record delivery status: %w", err)
	}
	return nil
}

// BuildOutboundPayload derives the notification from stored payment, plan
// and closer state, so a retry sends the same document as the first attempt.
func BuildOutboundPayload(payment *model.Payment) OutboundPayload {
	payload := OutboundPayload{
		ClientEmail:     deref(payment.CustomerEmail),
		AmountCollected: payment.Amount.InexactFloat64(),
		PaymentType:     "unknown",
	}

	plan := payment.Plan
	clientName := deref(payment.CustomerName)
	pkg := deref(payment.ProductName)
	if plan != nil {
		if clientName == "" {
			clientName = deref(plan.ClientName)
		}
		if pkg == "" {
			pkg = plan.ProductName
		}
		if plan.Kind != "" {
			payload.PaymentType = string(plan.Kind)
		}
		if plan.Kind.CollectsTotal() && plan.TotalAmount.Valid {
			total := plan.TotalAmount.Decimal.InexactFloat64()
			payload.TotalToBeCollected = &total
		}
	}
	if clientName == "" {
		clientName = payload.ClientEmail
	}
	payload.ClientName = clientName
	payload.Package = pkg

	if payment.Closer != nil {
		payload.CloserFirstName, payload.CloserLastName = splitName(payment.Closer.Name)
	}

	return payload
}

// splitName treats the first word as the first name and the rest as the last name.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
