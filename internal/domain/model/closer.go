package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionType selects how a closer's commission is derived from a payment.
type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFlat       CommissionType = "flat"
)

// Closer is a sales representative earning commission on the plans they create.
type Closer struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"not null;size:200" json:"name"`
	Email           string          `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Phone           *string         `gorm:"size:50" json:"phone,omitempty"`
	CommissionType  CommissionType  `gorm:"not null;size:20" json:"commission_type"`
	CommissionValue decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_value"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Closer) TableName() string {
	return "closers"
}
