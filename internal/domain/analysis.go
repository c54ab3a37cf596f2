package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Analysis is an opaque result set saved by a user. Data holds the raw
// JSON payload exactly as submitted; its schema is not validated here.
type Analysis struct {
	ID           uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name         string          `json:"name" gorm:"size:200;index;not null"`
	UserID       uuid.UUID       `json:"userId" gorm:"type:uuid;not null"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"index"`
	ModifiedAt   *time.Time      `json:"modifiedAt,omitempty"`
	Data         datatypes.JSON  `json:"data" gorm:"not null"`
	Filters      datatypes.JSON  `json:"filters,omitempty"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalValue   decimal.Decimal `json:"totalValue" gorm:"type:decimal(18,2)"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}
