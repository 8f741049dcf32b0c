package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"github.com/wekeepgrowing/closerlink/internal/middleware/auth"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	apperrors "github.com/wekeepgrowing/closerlink/pkg/errors"
	"go.uber.org/zap"
)

// AdminService is the operator surface the admin handler exposes.
type AdminService interface {
	WebhookStatus(ctx context.Context) (*usecase.WebhookStatus, error)
	RetryDelivery(ctx context.Context, paymentID int64) (*usecase.DeliveryResult, error)
	OutboundURL(ctx context.Context) (string, error)
	UpdateOutboundURL(ctx context.Context, url string) error
	UpdateDownPaymentStatus(ctx context.Context, planID int64, status model.DownPaymentStatus) (*model.PaymentPlan, error)
}

type RetryDeliveryRequest struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
}

type RetryDeliveryResponse struct {
	Success bool                 `json:"success"`
	Status  model.DeliveryStatus `json:"status"`
	Error   string               `json:"error,omitempty"`
}

type OutboundSettingsRequest struct {
	OutboundURL string `json:"outbound_url" validate:"omitempty,url"`
}

type OutboundSettingsResponse struct {
	OutboundURL string `json:"outbound_url"`
}

type DownPaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending fully_paid cancelled"`
}

type AdminHandler struct {
	service AdminService
	logger  *zap.Logger
}

func NewAdminHandler(service AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdminHandler) GetWebhookStatus(c echo.Context) error {
	status, err := h.service.WebhookStatus(c.Request().Context())
	if err != nil {
		return h.fail(err, "Failed to load webhook status")
	}
	return c.JSON(http.StatusOK, status)
}

func (h *AdminHandler) RetryDelivery(c echo.Context) error {
	var req RetryDeliveryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return apperrors.ToHTTPError(err)
	}

	result, err := h.service.RetryDelivery(c.Request().Context(), req.PaymentID)
	if err != nil {
		return h.fail(err, "Failed to retry outbound delivery", zap.Int64("payment_id", req.PaymentID))
	}

	h.logger.Info("Outbound delivery retried",
		actor(c),
		zap.Int64("payment_id", req.PaymentID),
		zap.String("delivery_status", string(result.Status)))

	return c.JSON(http.StatusOK, RetryDeliveryResponse{
		Success: result.Status == model.DeliveryStatusSent,
		Status:  result.Status,
		Error:   result.Error,
	})
}

func (h *AdminHandler) GetOutboundSettings(c echo.Context) error {
	url, err := h.service.OutboundURL(c.Request().Context())
	if err != nil {
		return h.fail(err, "Failed to load outbound settings")
	}
	return c.JSON(http.StatusOK, OutboundSettingsResponse{OutboundURL: url})
}

func (h *AdminHandler) UpdateOutboundSettings(c echo.Context) error {
	var req OutboundSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return apperrors.ToHTTPError(err)
	}

	if err := h.service.UpdateOutboundURL(c.Request().Context(), req.OutboundURL); err != nil {
		return h.fail(err, "Failed to update outbound settings")
	}

	h.logger.Info("Outbound URL updated",
		actor(c),
		zap.Bool("cleared", req.OutboundURL == ""))

	return h.GetOutboundSettings(c)
}

func (h *AdminHandler) UpdateDownPaymentStatus(c echo.Context) error {
	planID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || planID <= 0 {
		return apperrors.ToHTTPError(apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid plan id", err))
	}

	var req DownPaymentStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return apperrors.ToHTTPError(err)
	}

	plan, err := h.service.UpdateDownPaymentStatus(c.Request().Context(), planID, model.DownPaymentStatus(req.Status))
	if err != nil {
		return h.fail(err, "Failed to update down payment status", zap.Int64("plan_id", planID))
	}

	h.logger.Info("Down payment status updated",
		actor(c),
		zap.Int64("plan_id", planID),
		zap.String("status", req.Status))

	return c.JSON(http.StatusOK, plan)
}

// fail classifies a usecase error into an HTTP error. Unexpected errors are
// logged and reported without detail.
func (h *AdminHandler) fail(err error, msg string, fields ...zap.Field) error {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, domainErrors.ErrPaymentNotFound), errors.Is(err, domainErrors.ErrPlanNotFound):
		appErr = apperrors.NewAppError(apperrors.ErrNotFound, err.Error(), err)
	case errors.Is(err, domainErrors.ErrOutboundURLNotConfigured),
		errors.Is(err, domainErrors.ErrInvalidOutboundURL),
		errors.Is(err, domainErrors.ErrNotDownPaymentPlan),
		errors.Is(err, domainErrors.ErrInvalidDownPaymentStatus):
		appErr = apperrors.NewAppError(apperrors.ErrInvalidArgument, err.Error(), err)
	default:
		apperrors.LogError(h.logger, err, msg, fields...)
		appErr = apperrors.NewAppError(apperrors.ErrInternal, msg, err)
	}
	return apperrors.ToHTTPError(appErr)
}

// actor names the authenticated admin in audit log lines.
func actor(c echo.Context) zap.Field {
	admin, err := auth.GetAdminFromContext(c)
	if err != nil {
		return zap.Skip()
	}
	return zap.String("admin", admin.Subject)
}
