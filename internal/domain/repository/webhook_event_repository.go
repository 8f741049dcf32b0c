package repository

import (
	"context"

	"github.com/wekeepgrowing/closerlink/internal/domain/model"
)

// WebhookEventRepository is the idempotency ledger for inbound deliveries.
type WebhookEventRepository interface {
	// GetByMessageID returns nil, nil when the message id has not been seen.
	GetByMessageID(ctx context.Context, messageID string) (*model.WebhookEvent, error)
	// SaveIfAbsent inserts the event unless its message id already exists.
	// The reported bool is true when this call inserted the row.
	SaveIfAbsent(ctx context.Context, event *model.WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, messageID string) error
	MarkFailed(ctx context.Context, messageID string, cause error) error
	ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}
