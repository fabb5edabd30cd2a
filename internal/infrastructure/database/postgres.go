package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sangkips/hospitality-pos/internal/config"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool, zlog *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		// Unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	zlog.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, zlog *zap.Logger) error {
	zlog.Info("running database migrations")

	err := db.AutoMigrate(
		// Catalogue and stock
		&entity.StorageLocation{},
		&entity.SalesPoint{},
		&entity.RestaurantTable{},
		&entity.Product{},
		&entity.RecipeComponent{},
		&entity.ProductStock{},
		&entity.StockMovement{},

		// Accounts
		&entity.ClientAccount{},

		// Sessions
		&entity.POSSession{},
		&entity.SessionReport{},

		// Transaction entities
		&entity.Order{},
		&entity.OrderLine{},
		&entity.Payment{},
		&entity.VoidLogEntry{},

		// System entities
		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zlog.Info("database migrations completed")
	return nil
}

// SeedDefaultData creates a demo restaurant: one sales point with its kitchen
// store, a few tables, a simple and a composed product. Running it twice is harmless.
func SeedDefaultData(db *gorm.DB, zlog *zap.Logger) error {
	zlog.Info("seeding demo data")

	kitchen := entity.StorageLocation{Name: "Kitchen"}
	if err := db.Where(entity.StorageLocation{Name: kitchen.Name}).FirstOrCreate(&kitchen).Error; err != nil {
		return fmt.Errorf("seed storage location: %w", err)
	}

	restaurant := entity.SalesPoint{Name: "Restaurant", Code: "RST", DefaultStorageLocationID: &kitchen.ID}
	if err := db.Where(entity.SalesPoint{Code: restaurant.Code}).FirstOrCreate(&restaurant).Error; err != nil {
		return fmt.Errorf("seed sales point: %w", err)
	}

	for _, label := range []string{"T1", "T2", "T3", "T4"} {
		table := entity.RestaurantTable{SalesPointID: restaurant.ID, Label: label, Status: enum.TableStatusAvailable}
		if err := db.Where(entity.RestaurantTable{SalesPointID: restaurant.ID, Label: label}).FirstOrCreate(&table).Error; err != nil {
			zlog.Warn("failed to seed table", zap.String("label", label), zap.Error(err))
		}
	}

	products := []entity.Product{
		{Name: "Bun", Code: "ING-BUN", Price: decimal.Zero, IsActive: true},
		{Name: "Beef patty", Code: "ING-PATTY", Price: decimal.Zero, IsActive: true},
		{Name: "Burger", Code: "BURGER", Price: decimal.NewFromInt(3500), TaxRate: decimal.NewFromInt(18), IsComposed: true, IsActive: true},
		{Name: "Soda", Code: "SODA", Price: decimal.NewFromInt(1000), TaxRate: decimal.NewFromInt(18), IsActive: true},
	}
	byCode := make(map[string]entity.Product, len(products))
	for i := range products {
		p := products[i]
		if err := db.Where(entity.Product{Code: p.Code}).Attrs(p).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", p.Code, err)
		}
		byCode[p.Code] = p
	}

	burger := byCode["BURGER"]
	for _, code := range []string{"ING-BUN", "ING-PATTY"} {
		component := entity.RecipeComponent{
			ProductID:       burger.ID,
			IngredientID:    byCode[code].ID,
			QuantityPerUnit: decimal.NewFromInt(1),
		}
		if err := db.Where(entity.RecipeComponent{ProductID: burger.ID, IngredientID: byCode[code].ID}).
			FirstOrCreate(&component).Error; err != nil {
			zlog.Warn("failed to seed recipe component", zap.String("ingredient", code), zap.Error(err))
		}

		stock := entity.ProductStock{ProductID: byCode[code].ID, StorageLocationID: kitchen.ID, Quantity: decimal.NewFromInt(100)}
		if err := db.Where(entity.ProductStock{ProductID: stock.ProductID, StorageLocationID: kitchen.ID}).
			Attrs(stock).FirstOrCreate(&stock).Error; err != nil {
			zlog.Warn("failed to seed stock", zap.String("ingredient", code), zap.Error(err))
		}
	}

	house := entity.ClientAccount{Name: "House account", CreditLimit: decimal.NewFromInt(50000)}
	if err := db.Where(entity.ClientAccount{Name: house.Name}).Attrs(house).FirstOrCreate(&house).Error; err != nil {
		zlog.Warn("failed to seed client account", zap.Error(err))
	}

	zlog.Info("demo data seeded", zap.String("sales_point_id", restaurant.ID.String()))
	return nil
}
