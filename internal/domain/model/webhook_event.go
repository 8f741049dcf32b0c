package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is one inbound notification, unique by the delivery's message id.
// A non-nil ProcessedAt is terminal: the event is never handled again.
type WebhookEvent struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID          string         `gorm:"column:message_id;not null;size:255;uniqueIndex" json:"message_id"`
	EventType          string         `gorm:"not null;size:100;index" json:"event_type"`
	Payload            datatypes.JSON `gorm:"not null" json:"payload"`
	ProcessedAt        *time.Time     `gorm:"index" json:"processed_at,omitempty"`
	Error              *string        `gorm:"type:text" json:"error,omitempty"`
	ProcessingAttempts int            `gorm:"not null;default:0" json:"processing_attempts"`
	ReceivedAt         time.Time      `gorm:"autoCreateTime;index" json:"received_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Processed reports whether the event reached its terminal state.
func (e *WebhookEvent) Processed() bool {
	return e != nil && e.ProcessedAt != nil
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
