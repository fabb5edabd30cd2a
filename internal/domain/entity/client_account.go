package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientAccount is a house account that can be charged at the till.
// Balance may go negative down to -CreditLimit.
type ClientAccount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Phone       *string         `gorm:"size:50" json:"phone,omitempty"`
	Email       *string         `gorm:"size:255" json:"email,omitempty"`
	Balance     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"balance"`
	CreditLimit decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"credit_limit"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new client account
func (c *ClientAccount) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ClientAccount model
func (ClientAccount) TableName() string {
	return "client_accounts"
}

// AvailableCredit is how much more can be charged to the account
func (c *ClientAccount) AvailableCredit() decimal.Decimal {
	return c.Balance.Add(c.CreditLimit)
}
