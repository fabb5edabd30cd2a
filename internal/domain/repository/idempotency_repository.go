package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
)

// ErrDuplicate is returned when a unique constraint rejects an insert
var ErrDuplicate = errors.New("duplicate record")

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and employee ID
	GetByKey(ctx context.Context, key string, employeeID uuid.UUID) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired idempotency keys (for cleanup)
	DeleteExpired(ctx context.Context) (int64, error)
}
