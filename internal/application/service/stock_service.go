package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService posts ingredient movements for sold and voided lines.
// Only composed products move stock: each line is exploded through its
// recipe and every component gets its own movement.
type StockService struct {
	productRepo    repository.ProductRepository
	stockRepo      repository.StockRepository
	salesPointRepo repository.SalesPointRepository
	logger         *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	salesPointRepo repository.SalesPointRepository,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		productRepo:    productRepo,
		stockRepo:      stockRepo,
		salesPointRepo: salesPointRepo,
		logger:         logger,
	}
}

// Deduct posts a sale movement per recipe component of every composed line
func (s *StockService) Deduct(ctx context.Context, lines []entity.OrderLine, reference string, salesPointID uuid.UUID) ([]string, error) {
	return s.post(ctx, lines, reference, salesPointID, enum.MovementTypeSale)
}

// Restore posts the compensating adjustment_in movements for voided lines
func (s *StockService) Restore(ctx context.Context, lines []entity.OrderLine, reference string, salesPointID uuid.UUID) ([]string, error) {
	return s.post(ctx, lines, reference, salesPointID, enum.MovementTypeAdjustmentIn)
}

type plannedMovement struct {
	ingredientID uuid.UUID
	quantity     decimal.Decimal
	note         string
}

func (s *StockService) post(ctx context.Context, lines []entity.OrderLine, reference string, salesPointID uuid.UUID, movementType enum.MovementType) ([]string, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	// Resolve the location before writing anything so a misconfigured
	// sales point leaves stock untouched.
	sp, err := s.salesPointRepo.GetByID(ctx, salesPointID)
	if err != nil {
		return nil, fmt.Errorf("load sales point: %w", err)
	}
	if sp == nil {
		return nil, ErrSalesPointNotFound
	}
	if sp.DefaultStorageLocationID == nil {
		return nil, ErrStorageLocationMissing
	}
	locationID := *sp.DefaultStorageLocationID

	productIDs := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			productIDs = append(productIDs, l.ProductID)
		}
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	var composedIDs []uuid.UUID
	composed := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		if p.IsComposed {
			composed[p.ID] = true
			composedIDs = append(composedIDs, p.ID)
		}
	}
	if len(composedIDs) == 0 {
		return nil, nil
	}

	recipes, err := s.productRepo.GetRecipes(ctx, composedIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	var warnings []string
	var planned []plannedMovement
	for _, l := range lines {
		if !composed[l.ProductID] {
			continue
		}
		recipe := recipes[l.ProductID]
		if len(recipe) == 0 {
			msg := fmt.Sprintf("No recipe for composed product %q, stock not moved", l.ProductName)
			s.logger.Warn("missing recipe", zap.String("product_id", l.ProductID.String()), zap.String("reference", reference))
			warnings = append(warnings, msg)
			continue
		}
		for _, c := range recipe {
			qty := c.QuantityPerUnit.Mul(l.Quantity)
			if movementType == enum.MovementTypeSale {
				qty = qty.Neg()
			}
			planned = append(planned, plannedMovement{
				ingredientID: c.IngredientID,
				quantity:     qty,
				note:         l.ProductName,
			})
		}
	}

	// Concurrent tickets lock stock rows in the same order.
	sort.SliceStable(planned, func(i, j int) bool {
		return planned[i].ingredientID.String() < planned[j].ingredientID.String()
	})

	for _, p := range planned {
		note := p.note
		movement := &entity.StockMovement{
			ProductID:         p.ingredientID,
			StorageLocationID: locationID,
			MovementType:      movementType,
			Quantity:          p.quantity,
			Reference:         reference,
			Note:              &note,
		}
		if err := s.stockRepo.ApplyMovement(ctx, movement); err != nil {
			return warnings, fmt.Errorf("post %s movement for %s: %w", movementType, p.ingredientID, err)
		}
	}

	return warnings, nil
}
