package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductStock is the on-hand quantity of a product at a storage location.
// Rows are created lazily at zero and only ever shifted by movements.
type ProductStock struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_stock_location" json:"product_id"`
	StorageLocationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_stock_location" json:"storage_location_id"`
	Quantity          decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"quantity"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new stock row
func (s *ProductStock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ProductStock model
func (ProductStock) TableName() string {
	return "product_stocks"
}

// StockMovement is an append-only ledger entry: NewQuantity = PreviousQuantity + Quantity
type StockMovement struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	ProductID         uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movement_product_location" json:"product_id"`
	StorageLocationID uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movement_product_location" json:"storage_location_id"`
	MovementType      enum.MovementType `gorm:"not null" json:"movement_type"`
	Quantity          decimal.Decimal   `gorm:"type:numeric(14,3);not null" json:"quantity"`
	PreviousQuantity  decimal.Decimal   `gorm:"type:numeric(14,3);not null" json:"previous_quantity"`
	NewQuantity       decimal.Decimal   `gorm:"type:numeric(14,3);not null" json:"new_quantity"`
	Reference         string            `gorm:"size:100;index" json:"reference"`
	Note              *string           `gorm:"type:text" json:"note,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new movement
func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StockMovement model
func (StockMovement) TableName() string {
	return "stock_movements"
}
