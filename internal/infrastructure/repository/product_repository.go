package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	domainRepo "github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := conn(ctx, r.db).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := conn(ctx, r.db).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetRecipes(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]entity.RecipeComponent, error) {
	recipes := make(map[uuid.UUID][]entity.RecipeComponent)
	if len(productIDs) == 0 {
		return recipes, nil
	}
	var components []entity.RecipeComponent
	if err := conn(ctx, r.db).Where("product_id IN ?", productIDs).Find(&components).Error; err != nil {
		return nil, err
	}
	for _, c := range components {
		recipes[c.ProductID] = append(recipes[c.ProductID], c)
	}
	return recipes, nil
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock ledger repository
func NewStockRepository(db *gorm.DB) domainRepo.StockRepository {
	return &stockRepository{db: db}
}

// ApplyMovement never reads the stock level before writing it: the row is
// shifted in place and the new value comes back through RETURNING, so two
// tickets selling the same ingredient cannot lose each other's update.
func (r *stockRepository) ApplyMovement(ctx context.Context, movement *entity.StockMovement) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		seed := entity.ProductStock{
			ProductID:         movement.ProductID,
			StorageLocationID: movement.StorageLocationID,
			Quantity:          decimal.Zero,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "storage_location_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var stock entity.ProductStock
		result := tx.Model(&stock).
			Clauses(clause.Returning{}).
			Where("product_id = ? AND storage_location_id = ?", movement.ProductID, movement.StorageLocationID).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", movement.Quantity),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		movement.NewQuantity = stock.Quantity
		movement.PreviousQuantity = stock.Quantity.Sub(movement.Quantity)
		return tx.Create(movement).Error
	})
}

func (r *stockRepository) GetQuantity(ctx context.Context, productID, storageLocationID uuid.UUID) (decimal.Decimal, error) {
	var stock entity.ProductStock
	err := conn(ctx, r.db).
		Where("product_id = ? AND storage_location_id = ?", productID, storageLocationID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	return stock.Quantity, err
}

func (r *stockRepository) ListMovements(ctx context.Context, reference string) ([]entity.StockMovement, error) {
	var movements []entity.StockMovement
	err := conn(ctx, r.db).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&movements).Error
	return movements, err
}

type salesPointRepository struct {
	db *gorm.DB
}

// NewSalesPointRepository creates a new sales point repository
func NewSalesPointRepository(db *gorm.DB) domainRepo.SalesPointRepository {
	return &salesPointRepository{db: db}
}

func (r *salesPointRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.SalesPoint, error) {
	var sp entity.SalesPoint
	err := conn(ctx, r.db).First(&sp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &sp, err
}

func (r *salesPointRepository) GetTable(ctx context.Context, id uuid.UUID) (*entity.RestaurantTable, error) {
	var table entity.RestaurantTable
	err := conn(ctx, r.db).First(&table, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &table, err
}

func (r *salesPointRepository) SetTableStatus(ctx context.Context, id uuid.UUID, status enum.TableStatus) error {
	return conn(ctx, r.db).Model(&entity.RestaurantTable{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
