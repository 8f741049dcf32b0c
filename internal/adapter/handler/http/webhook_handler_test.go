package http

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/event"
	"github.com/wekeepgrowing/closerlink/internal/infrastructure/signature"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"github.com/wekeepgrowing/closerlink/pkg/logger"
	"go.uber.org/zap"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, body []byte, header http.Header) (*usecase.DispatchResult, error) {
	args := m.Called(ctx, body, header)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DispatchResult), args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	logger.WithEchoLogger(e, zap.NewNop())
	return e
}

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	tests := []struct {
		name       string
		result     *usecase.DispatchResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{"processed", &usecase.DispatchResult{Outcome: usecase.OutcomeOK}, nil, http.StatusOK, `{"status":"ok"}`},
		{"handler failure is acknowledged", &usecase.DispatchResult{Outcome: usecase.OutcomeOK, HandlerError: errors.New("db down")}, nil, http.StatusOK, `{"status":"ok"}`},
		{"duplicate", &usecase.DispatchResult{Outcome: usecase.OutcomeAlreadyProcessed}, nil, http.StatusOK, `{"status":"already_processed"}`},
		{"bad signature", nil, fmt.Errorf("%w: mismatch", domainErrors.ErrInvalidSignature), http.StatusUnauthorized, `{"status":"error","message":"Invalid signature"}`},
		{"malformed", nil, event.ErrMalformedPayload, http.StatusBadRequest, `{"status":"error","message":"Invalid JSON payload"}`},
		{"missing message id", nil, domainErrors.ErrMissingMessageID, http.StatusBadRequest, `{"status":"error","message":"Missing webhook message id"}`},
		{"in progress elsewhere", &usecase.DispatchResult{Outcome: usecase.OutcomeInProgress}, nil, http.StatusOK, `{"status":"in_progress"}`},
		{"store unavailable", nil, errors.New("connection refused"), http.StatusInternalServerError, `{"status":"error","message":"Internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"type":"payment.succeeded"}`
			dispatcher := new(MockDispatcher)
			dispatcher.On("Dispatch", mock.Anything, []byte(body), mock.Anything).Return(tt.result, tt.err)

			e := newTestEcho()
			handler := NewWebhookHandler(dispatcher, zap.NewNop())
			e.POST("/webhooks/whop", handler.HandleWebhook)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/whop", strings.NewReader(body))
			req.Header.Set("webhook-id", "msg_1")
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			dispatcher.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_PassesHeaders(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.MatchedBy(func(h http.Header) bool {
		return h.Get("webhook-id") == "msg_42" && h.Get("webhook-signature") == "v1,abc"
	})).Return(&usecase.DispatchResult{Outcome: usecase.OutcomeOK}, nil)

	e := newTestEcho()
	e.POST("/webhook", NewWebhookHandler(dispatcher, zap.NewNop()).HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	req.Header.Set("webhook-id", "msg_42")
	req.Header.Set("webhook-signature", "v1,abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	dispatcher.AssertExpectations(t)
}

type heldGuard struct{}

func (heldGuard) Acquire(context.Context, string) (bool, error) { return false, nil }
func (heldGuard) Release(context.Context, string) error { return nil }

func TestWebhookHandler_ConcurrentDuplicateIsAcknowledged(t *testing.T) {
	const secret = "handler-test-secret"
	body := []byte(`{"type":"payment.succeeded","data":{"id":"pay_1","plan":{"id":"plan_A"},"final_amount":200}}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := signature.Sign([]byte(secret), "msg_1", ts, body)

	dispatcher := usecase.NewDispatcher(
		signature.NewVerifier(zap.NewNop(), nil, 0),
		usecase.StaticSettings{Secret: secret},
		nil, nil, nil,
		heldGuard{},
		zap.NewNop(),
	)

	e := newTestEcho()
	e.POST("/webhooks/whop", NewWebhookHandler(dispatcher, zap.NewNop()).HandleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/whop", strings.NewReader(string(body)))
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", ts)
	req.Header.Set("webhook-signature", "v1,"+base64.StdEncoding.EncodeToString(sig))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"in_progress"}`, rec.Body.String())
}
