package model

import "time"

// DefaultSettingsID is the key of the single settings row.
const DefaultSettingsID = "default"

// AppSettings holds operator-editable configuration that overrides the
// config file at runtime.
type AppSettings struct {
	ID                 string    `gorm:"primaryKey;size:32" json:"id"`
	WebhookSecret      *string   `gorm:"size:255" json:"-"`
	OutboundWebhookURL *string   `gorm:"size:500" json:"outbound_webhook_url,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (AppSettings) TableName() string {
	return "app_settings"
}
