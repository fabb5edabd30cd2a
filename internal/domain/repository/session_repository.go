package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SessionRepository defines the interface for cashier session operations
type SessionRepository interface {
	// Create inserts a session. Returns ErrDuplicate if an active one already
	// exists for the same employee, sales point and business day.
	Create(ctx context.Context, session *entity.POSSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.POSSession, error)
	FindActive(ctx context.Context, employeeID, salesPointID uuid.UUID, businessDay time.Time) (*entity.POSSession, error)
	// Close moves an active session to closed. Returns false if it was already closed.
	Close(ctx context.Context, id uuid.UUID, closedAt time.Time, closingBalance decimal.Decimal) (bool, error)
	CreateReport(ctx context.Context, report *entity.SessionReport) error
}
