package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// VoidService voids order lines and whole tickets. Every void flips the
// line flag, appends a VoidLogEntry and puts the ingredients back in stock.
type VoidService struct {
	tx             repository.Transactor
	orderRepo      repository.OrderRepository
	orderLineRepo  repository.OrderLineRepository
	voidLogRepo    repository.VoidLogRepository
	salesPointRepo repository.SalesPointRepository
	stock          *StockService
	printer        *PrinterService
	events         EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewVoidService creates a new void service
func NewVoidService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	orderLineRepo repository.OrderLineRepository,
	voidLogRepo repository.VoidLogRepository,
	salesPointRepo repository.SalesPointRepository,
	stock *StockService,
	printer *PrinterService,
	events EventPublisher,
	logger *zap.Logger,
) *VoidService {
	return &VoidService{
		tx:             tx,
		orderRepo:      orderRepo,
		orderLineRepo:  orderLineRepo,
		voidLogRepo:    voidLogRepo,
		salesPointRepo: salesPointRepo,
		stock:          stock,
		printer:        printer,
		events:         events,
		logger:         logger,
		now:            time.Now,
	}
}

// CommitPendingCancellations voids the order lines behind the pending cart
// lines. It must run inside the caller's transaction and updates order.Lines
// in place. A line that is missing or already voided is skipped, so replaying
// the same cancellations writes nothing twice.
func (s *VoidService) CommitPendingCancellations(ctx context.Context, order *entity.Order, pending []pos.CartLine, employeeID uuid.UUID) ([]entity.OrderLine, []string, error) {
	var voided []entity.OrderLine
	var warnings []string
	now := s.now()

	for _, p := range pending {
		idx := lineIndex(order, *p.OrderLineID)
		if idx < 0 {
			s.logger.Warn("order line to void not found",
				zap.String("order", order.OrderNumber),
				zap.String("line_id", p.OrderLineID.String()))
			warnings = append(warnings, fmt.Sprintf("Line %q is no longer on the order, skipped", p.ProductName))
			continue
		}
		line := &order.Lines[idx]
		if line.IsVoided {
			continue
		}

		ok, err := s.orderLineRepo.MarkVoided(ctx, line.ID, now)
		if err != nil {
			return nil, warnings, fmt.Errorf("void line %s: %w", line.ID, err)
		}
		if !ok {
			line.IsVoided = true
			continue
		}
		line.IsVoided = true
		line.VoidedAt = &now

		lineID := line.ID
		entry := &entity.VoidLogEntry{
			OrderID:      order.ID,
			OrderLineID:  &lineID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Total:        line.Total,
			EmployeeID:   employeeID,
			Reason:       p.CancellationReason,
			SalesPointID: order.SalesPointID,
		}
		if err := s.voidLogRepo.Create(ctx, entry); err != nil {
			return nil, warnings, fmt.Errorf("write void log: %w", err)
		}
		voided = append(voided, *line)
	}

	w, err := s.stock.Restore(ctx, voided, order.OrderNumber, order.SalesPointID)
	warnings = append(warnings, w...)
	warnings, err = tolerateStockError(warnings, err)
	if err != nil {
		return nil, warnings, err
	}
	return voided, warnings, nil
}

// CancelTicket voids the whole ticket. An unsaved ticket is simply emptied;
// a saved one needs a reason and is voided in one transaction.
func (s *VoidService) CancelTicket(ctx context.Context, ticket *pos.Ticket, reason string, confirmed bool) (*TransitionResult, error) {
	if !confirmed {
		return nil, pos.ErrConfirmationRequired
	}
	if ticket.State.Terminal() {
		return nil, pos.ErrTicketClosed
	}

	work := ticket.Clone()
	if !work.Persisted() {
		work.Clear()
		return &TransitionResult{Ticket: work}, nil
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pos.ErrReasonRequired
	}

	var order *entity.Order
	var voided []entity.OrderLine
	var warnings []string
	var total decimal.Decimal
	now := s.now()

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetWithLines(ctx, *work.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.Status.IsTerminal() {
			return pos.ErrTicketClosed
		}

		total = order.TotalAmount
		quantity := decimal.Zero
		for i := range order.Lines {
			line := &order.Lines[i]
			if line.IsVoided {
				continue
			}
			ok, err := s.orderLineRepo.MarkVoided(ctx, line.ID, now)
			if err != nil {
				return fmt.Errorf("void line %s: %w", line.ID, err)
			}
			line.IsVoided = true
			if !ok {
				continue
			}
			line.VoidedAt = &now
			quantity = quantity.Add(line.Quantity)
			voided = append(voided, *line)
		}

		entry := &entity.VoidLogEntry{
			OrderID:      order.ID,
			ProductName:  "Ticket " + order.OrderNumber,
			Quantity:     quantity,
			Total:        total,
			EmployeeID:   work.EmployeeID,
			Reason:       reason,
			SalesPointID: order.SalesPointID,
		}
		if err := s.voidLogRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("write void log: %w", err)
		}

		w, err := s.stock.Restore(ctx, voided, order.OrderNumber, order.SalesPointID)
		warnings = append(warnings, w...)
		if warnings, err = tolerateStockError(warnings, err); err != nil {
			return err
		}

		markVoided(order)
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if order.TableID != nil {
			if err := s.salesPointRepo.SetTableStatus(ctx, *order.TableID, enum.TableStatusAvailable); err != nil {
				return fmt.Errorf("release table: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.printer.PrintCancellation(ctx, order, voided); err != nil {
		warnings = append(warnings, "Cancellation slip not printed: "+err.Error())
	}

	publish(ctx, s.events, s.logger, SubjectTicketVoided, TicketEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		SalesPointID: order.SalesPointID,
		SessionID:    order.SessionID,
		EmployeeID:   work.EmployeeID,
		Total:        total,
		LineIDs:      lineIDs(voided),
		Reason:       reason,
		OccurredAt:   now,
	})

	s.logger.Info("ticket voided",
		zap.String("order", order.OrderNumber),
		zap.Int("lines", len(voided)),
		zap.String("employee_id", work.EmployeeID.String()))

	work.Clear()
	return &TransitionResult{Ticket: work, Order: order, Warnings: warnings}, nil
}

func lineIndex(order *entity.Order, id uuid.UUID) int {
	for i := range order.Lines {
		if order.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

func lineIDs(lines []entity.OrderLine) []uuid.UUID {
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	return ids
}
