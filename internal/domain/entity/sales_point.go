package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"gorm.io/gorm"
)

// SalesPoint is a till (restaurant, bar, pool bar...). Sales at a point consume
// ingredients from its default storage location.
type SalesPoint struct {
	ID                       uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name                     string     `gorm:"size:255;not null" json:"name"`
	Code                     string     `gorm:"size:20;uniqueIndex;not null" json:"code"`
	DefaultStorageLocationID *uuid.UUID `gorm:"type:uuid" json:"default_storage_location_id,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new sales point
func (s *SalesPoint) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SalesPoint model
func (SalesPoint) TableName() string {
	return "sales_points"
}

// StorageLocation is a stock-holding place (kitchen, bar store, cellar)
type StorageLocation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new storage location
func (s *StorageLocation) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StorageLocation model
func (StorageLocation) TableName() string {
	return "storage_locations"
}

// RestaurantTable is a seat group that a ticket can be attached to
type RestaurantTable struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SalesPointID uuid.UUID        `gorm:"type:uuid;not null;index" json:"sales_point_id"`
	Label        string           `gorm:"size:50;not null" json:"label"`
	Status       enum.TableStatus `gorm:"size:20;not null;default:'available'" json:"status"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new table
func (t *RestaurantTable) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RestaurantTable model
func (RestaurantTable) TableName() string {
	return "restaurant_tables"
}
