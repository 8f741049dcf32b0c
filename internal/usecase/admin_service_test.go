package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/closerlink/internal/adapter/repository"
	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"github.com/wekeepgrowing/closerlink/internal/testutil"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type adminFixture struct {
	db       *gorm.DB
	service  *usecase.AdminService
	payments domainRepo.PaymentRepository
	events   domainRepo.WebhookEventRepository
	closer   *model.Closer
}

func newAdminFixture(t *testing.T, fallbackSecret, fallbackURL string) *adminFixture {
	t.Helper()

	logger := zap.NewNop()
	db := testutil.NewDB(t)
	payments := repository.NewPaymentRepository(db, logger)
	events := repository.NewWebhookEventRepository(db, logger)
	plans := repository.NewPlanRepository(db, logger)
	stored := repository.NewSettingsRepository(db, logger)
	settings := usecase.NewStoredSettings(stored, fallbackSecret, fallbackURL)
	notifier := usecase.NewOutboundNotifier(payments, settings, nil,
		usecase.NotifierConfig{Timeout: time.Second, MaxAttempts: 1}, logger)

	return &adminFixture{
		db:       db,
		service:  usecase.NewAdminService(events, payments, plans, stored, settings, notifier, logger),
		payments: payments,
		events:   events,
		closer:   testutil.CreateCloser(t, db, "alex", model.CommissionTypeFlat, "50"),
	}
}

func TestAdminService_WebhookStatus(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t, "secret", "")
	plan := testutil.CreatePlan(t, f.db, f.closer, "plan_A", model.PlanKindOneTime, "")

	for _, id := range []string{"msg_1", "msg_2"} {
		_, err := f.events.SaveIfAbsent(ctx, &model.WebhookEvent{
			MessageID: id,
			EventType: "payment.succeeded",
			Payload:   datatypes.JSON(`{}`),
		})
		require.NoError(t, err)
	}
	require.NoError(t, f.events.MarkProcessed(ctx, "msg_1"))

	delivered := seedPayment(t, f.db, plan, "pay_1")
	require.NoError(t, f.payments.UpdateDelivery(ctx, delivered.ID, domainRepo.DeliveryUpdate{
		Status: model.DeliveryStatusSkipped,
	}))
	seedPayment(t, f.db, plan, "pay_2")

	status, err := f.service.WebhookStatus(ctx)
	require.NoError(t, err)

	assert.True(t, status.SecretConfigured)
	assert.False(t, status.OutboundConfigured)
	assert.Len(t, status.RecentEvents, 2)
	require.Len(t, status.RecentDeliveries, 1)
	assert.Equal(t, "pay_1", status.RecentDeliveries[0].ExternalPaymentID)
	assert.Equal(t, "alex", status.RecentDeliveries[0].CloserName)
	assert.Equal(t, "200.00", status.RecentDeliveries[0].Amount)
	assert.Equal(t, model.DeliveryStatusSkipped, status.RecentDeliveries[0].Status)
	assert.Equal(t, int64(1), status.MissingDeliveries)
}

func TestAdminService_OutboundURL(t *testing.T) {
	ctx := context.Background()

	t.Run("stored value overrides the config fallback", func(t *testing.T) {
		f := newAdminFixture(t, "", "https://fallback.example.com/hook")

		got, err := f.service.OutboundURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://fallback.example.com/hook", got)

		require.NoError(t, f.service.UpdateOutboundURL(ctx, " https://hooks.example.com/catch/1 "))
		got, err = f.service.OutboundURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://hooks.example.com/catch/1", got)

		require.NoError(t, f.service.UpdateOutboundURL(ctx, ""))
		got, err = f.service.OutboundURL(ctx)
		require.NoError(t, err)
		assert.Equal(t, "https://fallback.example.com/hook", got)
	})

	t.Run("rejects non-http urls", func(t *testing.T) {
		f := newAdminFixture(t, "", "")

		for _, raw := range []string{"ftp://example.com", "example.com/hook", "https://"} {
			assert.ErrorIs(t, f.service.UpdateOutboundURL(ctx, raw), domainErrors.ErrInvalidOutboundURL, raw)
		}
	})
}

func TestAdminService_RetryDelivery(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t, "", "")
	plan := testutil.CreatePlan(t, f.db, f.closer, "plan_A", model.PlanKindOneTime, "")
	payment := seedPayment(t, f.db, plan, "pay_1")

	_, err := f.service.RetryDelivery(ctx, payment.ID)
	assert.ErrorIs(t, err, domainErrors.ErrOutboundURLNotConfigured)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()
	require.NoError(t, f.service.UpdateOutboundURL(ctx, server.URL))

	result, err := f.service.RetryDelivery(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryStatusFailed, result.Status)
	assert.Equal(t, "HTTP 500: upstream down", result.Error)
}

func TestAdminService_UpdateDownPaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t, "", "")
	downPayment := testutil.CreatePlan(t, f.db, f.closer, "plan_dp", model.PlanKindDownPayment, "3000")
	oneTime := testutil.CreatePlan(t, f.db, f.closer, "plan_ot", model.PlanKindOneTime, "")

	assert.Equal(t, model.DownPaymentPending, downPayment.Settlement())

	plan, err := f.service.UpdateDownPaymentStatus(ctx, downPayment.ID, model.DownPaymentFullyPaid)
	require.NoError(t, err)
	assert.Equal(t, model.DownPaymentFullyPaid, plan.Settlement())

	var stored model.PaymentPlan
	require.NoError(t, f.db.First(&stored, downPayment.ID).Error)
	assert.Equal(t, model.DownPaymentFullyPaid, stored.Settlement())

	_, err = f.service.UpdateDownPaymentStatus(ctx, oneTime.ID, model.DownPaymentFullyPaid)
	assert.ErrorIs(t, err, domainErrors.ErrNotDownPaymentPlan)

	_, err = f.service.UpdateDownPaymentStatus(ctx, downPayment.ID, model.DownPaymentStatus("settled"))
	assert.ErrorIs(t, err, domainErrors.ErrInvalidDownPaymentStatus)

	_, err = f.service.UpdateDownPaymentStatus(ctx, 9999, model.DownPaymentCancelled)
	assert.ErrorIs(t, err, domainErrors.ErrPlanNotFound)
}
