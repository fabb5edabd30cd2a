package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable item. Price is tax-inclusive.
// A composed product consumes its recipe components on every sale.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Code       string          `gorm:"size:100;uniqueIndex;not null" json:"code"`
	Price      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
	TaxRate    decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	IsComposed bool            `gorm:"default:false" json:"is_composed"`
	IsActive   bool            `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Recipe []RecipeComponent `gorm:"foreignKey:ProductID" json:"recipe,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// RecipeComponent is one ingredient of a composed product, per sold unit
type RecipeComponent struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	QuantityPerUnit decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_per_unit"`

	Ingredient *Product `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

// BeforeCreate generates a UUID before creating a new recipe component
func (r *RecipeComponent) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RecipeComponent model
func (RecipeComponent) TableName() string {
	return "recipe_components"
}
