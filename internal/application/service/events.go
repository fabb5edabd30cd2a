package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Event subjects
const (
	SubjectTicketHeld    = "pos.ticket.held"
	SubjectTicketPrinted = "pos.ticket.printed"
	SubjectTicketPaid    = "pos.ticket.paid"
	SubjectTicketVoided  = "pos.ticket.voided"
	SubjectLineVoided    = "pos.line.voided"
	SubjectSessionClosed = "pos.session.closed"
)

// EventPublisher delivers encoded events to a broker
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}

// TicketEvent is published after a lifecycle transition commits
type TicketEvent struct {
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNumber  string          `json:"order_number"`
	SalesPointID uuid.UUID       `json:"sales_point_id"`
	SessionID    uuid.UUID       `json:"session_id"`
	EmployeeID   uuid.UUID       `json:"employee_id"`
	Total        decimal.Decimal `json:"total"`
	LineIDs      []uuid.UUID     `json:"line_ids,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// SessionEvent is published when a session is closed by a Z report
type SessionEvent struct {
	SessionID     uuid.UUID       `json:"session_id"`
	SalesPointID  uuid.UUID       `json:"sales_point_id"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	TotalVariance decimal.Decimal `json:"total_variance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// publish never fails the caller: the transition it reports has already committed
func publish(ctx context.Context, pub EventPublisher, logger *zap.Logger, subject string, event interface{}) {
	if pub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to encode event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := pub.Publish(ctx, subject, payload); err != nil {
		logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
