package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for catalogue lookups used at the till
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	// GetRecipes returns the recipe components of each product, keyed by product ID.
	// Products without a recipe are absent from the map.
	GetRecipes(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]entity.RecipeComponent, error)
}

// StockRepository owns ProductStock and the movement ledger
type StockRepository interface {
	// ApplyMovement shifts the stock row of (ProductID, StorageLocationID) by
	// movement.Quantity with a single atomic update, creating the row at zero if
	// needed, then fills PreviousQuantity/NewQuantity and appends the movement.
	ApplyMovement(ctx context.Context, movement *entity.StockMovement) error
	GetQuantity(ctx context.Context, productID, storageLocationID uuid.UUID) (decimal.Decimal, error)
	ListMovements(ctx context.Context, reference string) ([]entity.StockMovement, error)
}

// SalesPointRepository defines lookups for sales points and their tables
type SalesPointRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.SalesPoint, error)
	GetTable(ctx context.Context, id uuid.UUID) (*entity.RestaurantTable, error)
	SetTableStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) error
}
