package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create inserts the order together with its Lines
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// GetWithLines loads the order and all its lines, voided ones included
	GetWithLines(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// Update writes the order header columns; lines are left untouched
	Update(ctx context.Context, order *entity.Order) error
	ListPaidBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Order, error)
}

// OrderLineRepository defines the interface for order line data operations
type OrderLineRepository interface {
	CreateBatch(ctx context.Context, lines []entity.OrderLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.OrderLine, error)
	// MarkVoided flags a live line as voided. Returns false if the line was already voided.
	MarkVoided(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLine, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	CreateBatch(ctx context.Context, payments []entity.Payment) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]entity.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error)
}

// VoidLogRepository is append-only
type VoidLogRepository interface {
	Create(ctx context.Context, entry *entity.VoidLogEntry) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.VoidLogEntry, error)
}
