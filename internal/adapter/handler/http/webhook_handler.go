package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/closerlink/internal/domain/errors"
	"github.com/wekeepgrowing/closerlink/internal/domain/event"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"go.uber.org/zap"
)

// WebhookDispatcher processes one raw delivery.
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, body []byte, header http.Header) (*usecase.DispatchResult, error)
}

type WebhookHandler struct {
	dispatcher WebhookDispatcher
	logger     *zap.Logger
}

func NewWebhookHandler(dispatcher WebhookDispatcher, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleWebhook acknowledges every authenticated, parseable delivery with 200.
// Processing failures are recorded on the event, not returned to the sender.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Error reading request body"})
	}

	result, err := h.dispatcher.Dispatch(c.Request().Context(), body, c.Request().Header)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidSignature):
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": "Invalid signature"})
		case errors.Is(err, event.ErrMalformedPayload):
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid JSON payload"})
		case errors.Is(err, domainErrors.ErrMissingMessageID):
			return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "Missing webhook message id"})
		default:
			h.logger.Error("Webhook dispatch failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "Internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"status": string(result.Outcome)})
}
