package errors

import "errors"

var (
	// ErrInvalidSignature indicates a delivery that failed authentication
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMissingMessageID indicates a verified delivery without any usable message id
	ErrMissingMessageID = errors.New("webhook message id is missing")

	// ErrEventInProgress indicates that another request is handling the same message id
	ErrEventInProgress = errors.New("webhook event is already being processed")

	// ErrOutboundURLNotConfigured indicates a manual delivery with no endpoint to send to
	ErrOutboundURLNotConfigured = errors.New("outbound webhook url is not configured")

	// ErrInvalidOutboundURL indicates an outbound url without an http or https scheme
	ErrInvalidOutboundURL = errors.New("outbound webhook url must start with http:// or https://")
)
