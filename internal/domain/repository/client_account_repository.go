package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ClientAccountRepository defines the interface for house account operations
type ClientAccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ClientAccount, error)
	// Debit atomically lowers the balance by amount if the credit limit allows it.
	// Returns (false, nil) when the limit would be exceeded.
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error)
}
