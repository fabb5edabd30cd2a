package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/sangkips/hospitality-pos/pkg/apperror"
	"github.com/sangkips/hospitality-pos/pkg/hotel"
	"github.com/sangkips/hospitality-pos/pkg/printer"
	"github.com/sangkips/hospitality-pos/pkg/utils"
	"go.uber.org/zap"
)

// HotelCharger posts a restaurant bill onto a hotel stay
type HotelCharger interface {
	PostRestaurantCharge(ctx context.Context, charge hotel.Charge) error
}

// TransitionResult is what a lifecycle transition hands back. Ticket is the
// new ticket value; the one passed in is never modified.
type TransitionResult struct {
	Ticket   *pos.Ticket      `json:"ticket"`
	Order    *entity.Order    `json:"order,omitempty"`
	Payments []entity.Payment `json:"payments,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

// OrderDeps groups the collaborators of OrderService
type OrderDeps struct {
	Tx             repository.Transactor
	OrderRepo      repository.OrderRepository
	OrderLineRepo  repository.OrderLineRepository
	PaymentRepo    repository.PaymentRepository
	ClientRepo     repository.ClientAccountRepository
	SalesPointRepo repository.SalesPointRepository
	SessionRepo    repository.SessionRepository
	Stock          *StockService
	Voids          *VoidService
	Printer        *PrinterService
	Hotel          HotelCharger
	Events         EventPublisher
	Logger         *zap.Logger
}

// OrderService drives a ticket through hold, print and pay. Each transition
// runs its database writes in one transaction; printing and events happen
// after the commit and only produce warnings when they fail.
type OrderService struct {
	tx             repository.Transactor
	orderRepo      repository.OrderRepository
	orderLineRepo  repository.OrderLineRepository
	paymentRepo    repository.PaymentRepository
	clientRepo     repository.ClientAccountRepository
	salesPointRepo repository.SalesPointRepository
	sessionRepo    repository.SessionRepository
	stock          *StockService
	voids          *VoidService
	printer        *PrinterService
	hotel          HotelCharger
	events         EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new order lifecycle service
func NewOrderService(deps OrderDeps) *OrderService {
	return &OrderService{
		tx:             deps.Tx,
		orderRepo:      deps.OrderRepo,
		orderLineRepo:  deps.OrderLineRepo,
		paymentRepo:    deps.PaymentRepo,
		clientRepo:     deps.ClientRepo,
		salesPointRepo: deps.SalesPointRepo,
		sessionRepo:    deps.SessionRepo,
		stock:          deps.Stock,
		voids:          deps.Voids,
		printer:        deps.Printer,
		hotel:          deps.Hotel,
		events:         deps.Events,
		logger:         deps.Logger,
		now:            time.Now,
	}
}

// Hold saves the ticket and parks it for later recall
func (s *OrderService) Hold(ctx context.Context, ticket *pos.Ticket) (*TransitionResult, error) {
	return s.save(ctx, ticket, pos.StateHeld)
}

// Print saves the ticket and sends it to the printers
func (s *OrderService) Print(ctx context.Context, ticket *pos.Ticket) (*TransitionResult, error) {
	return s.save(ctx, ticket, pos.StatePrinted)
}

// persisted is what persist wrote for one transition
type persisted struct {
	order    *entity.Order
	created  bool
	added    []entity.OrderLine
	voided   []entity.OrderLine
	warnings []string
}

func (s *OrderService) save(ctx context.Context, ticket *pos.Ticket, target pos.TicketState) (*TransitionResult, error) {
	if ticket.State.Terminal() {
		return nil, pos.ErrTicketClosed
	}

	work := ticket.Clone()
	if !work.Persisted() {
		if work.IsEmpty() {
			return nil, pos.ErrEmptyCart
		}
		if work.NeedsAssignment() {
			return nil, pos.ErrAssignmentRequired
		}
	}
	if err := s.requireActiveSession(ctx, work.SessionID); err != nil {
		return nil, err
	}

	now := s.now()
	var out *persisted
	var fullVoid, reprint bool

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.persist(ctx, work, now)
		if err != nil {
			return err
		}

		order := out.order
		if len(order.ActiveLines()) == 0 {
			fullVoid = true
			markVoided(order)
			if order.TableID != nil {
				if err := s.salesPointRepo.SetTableStatus(ctx, *order.TableID, enum.TableStatusAvailable); err != nil {
					return fmt.Errorf("release table: %w", err)
				}
			}
		} else {
			order.Status = enum.OrderStatusPending
			order.IsOnHold = target == pos.StateHeld
			if order.IsOnHold {
				order.HeldAt = &now
			}
			reprint = out.created || len(out.added) > 0 || target == pos.StatePrinted
			if reprint {
				order.PrintCount++
				order.LastPrintedAt = &now
			}
		}
		return s.orderRepo.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	order := out.order
	warnings := out.warnings
	syncTicket(work, order)
	work.State = target
	if fullVoid {
		work.State = pos.StateVoided
	}

	var printErr error
	switch {
	case fullVoid:
		printErr = s.printer.PrintCancellation(ctx, order, out.voided)
	case out.created && target == pos.StateHeld:
		printErr = s.printer.PrintTemplates(ctx, order, printer.TemplateFabrication)
	case out.created:
		printErr = s.printer.PrintTemplates(ctx, order, printer.TemplateFabrication, printer.TemplateCaisse)
	default:
		errs := []error{s.printer.PrintCancellation(ctx, order, out.voided)}
		if len(out.added) > 0 {
			errs = append(errs, s.printer.PrintItems(ctx, order, out.added, printer.TemplateCaisse))
		} else if reprint {
			errs = append(errs, s.printer.PrintTemplates(ctx, order, printer.TemplateCaisse))
		}
		printErr = errors.Join(errs...)
	}
	if printErr != nil {
		warnings = append(warnings, "Printing failed: "+printErr.Error())
	}

	s.publishVoidedLines(ctx, order, work.EmployeeID, out.voided, now)
	subject := SubjectTicketPrinted
	switch {
	case fullVoid:
		subject = SubjectTicketVoided
	case target == pos.StateHeld:
		subject = SubjectTicketHeld
	}
	publish(ctx, s.events, s.logger, subject, ticketEvent(order, work.EmployeeID, now))

	s.logger.Info("ticket saved",
		zap.String("order", order.OrderNumber),
		zap.String("state", work.State.String()),
		zap.Int("added", len(out.added)),
		zap.Int("voided", len(out.voided)),
		zap.Int("warnings", len(warnings)))

	return &TransitionResult{Ticket: work, Order: order, Warnings: warnings}, nil
}

// persist writes the unsaved state of work into its order: the order itself
// on the first save, otherwise the queued voids and then the new lines.
// Voids always go first so a product removed and re-added in the same save is
// not deducted twice. Must run inside a transaction.
func (s *OrderService) persist(ctx context.Context, work *pos.Ticket, now time.Time) (*persisted, error) {
	out := &persisted{}

	if !work.Persisted() {
		order := &entity.Order{
			ID:            uuid.New(),
			OrderNumber:   newOrderNumber(now),
			SalesPointID:  work.SalesPointID,
			SessionID:     work.SessionID,
			EmployeeID:    work.EmployeeID,
			TableID:       work.TableID,
			ClientID:      work.ClientID,
			Status:        enum.OrderStatusPending,
			PaymentStatus: enum.PaymentStatusPending,
		}
		order.Lines = buildLines(order.ID, work.NewLines())
		applyTotals(order)
		if err := s.orderRepo.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		if order.TableID != nil {
			if err := s.salesPointRepo.SetTableStatus(ctx, *order.TableID, enum.TableStatusOccupied); err != nil {
				return nil, fmt.Errorf("occupy table: %w", err)
			}
		}
		out.order = order
		out.created = true
		out.added = order.Lines
	} else {
		order, err := s.orderRepo.GetWithLines(ctx, *work.OrderID)
		if err != nil {
			return nil, fmt.Errorf("load order: %w", err)
		}
		if order == nil {
			return nil, ErrOrderNotFound
		}
		if order.Status.IsTerminal() {
			return nil, pos.ErrTicketClosed
		}

		voided, warnings, err := s.voids.CommitPendingCancellations(ctx, order, work.PendingCancellations(), work.EmployeeID)
		if err != nil {
			return nil, err
		}
		out.voided = voided
		out.warnings = warnings

		added := buildLines(order.ID, work.NewLines())
		if err := s.orderLineRepo.CreateBatch(ctx, added); err != nil {
			return nil, fmt.Errorf("add order lines: %w", err)
		}
		order.Lines = append(order.Lines, added...)
		out.added = added

		if err := s.moveTable(ctx, order.TableID, work.TableID); err != nil {
			return nil, err
		}
		order.TableID = work.TableID
		order.ClientID = work.ClientID
		order.SessionID = work.SessionID
		out.order = order
	}

	w, err := s.stock.Deduct(ctx, out.added, out.order.OrderNumber, out.order.SalesPointID)
	out.warnings = append(out.warnings, w...)
	if out.warnings, err = tolerateStockError(out.warnings, err); err != nil {
		return nil, err
	}

	applyTotals(out.order)
	return out, nil
}

// Pay settles the ticket with the given tenders. Unsaved changes are written
// first, in the same transaction as the payment rows and the side ledgers.
// Hotel charges are posted last so that a rejected charge rolls everything back.
func (s *OrderService) Pay(ctx context.Context, ticket *pos.Ticket, tenders []pos.Tender) (*TransitionResult, error) {
	if ticket.State.Terminal() {
		return nil, pos.ErrTicketClosed
	}

	work := ticket.Clone()
	if work.IsEmpty() {
		return nil, pos.ErrEmptyCart
	}
	if err := pos.ValidateTenders(tenders, work.Totals().Total); err != nil {
		return nil, err
	}
	for _, t := range tenders {
		if _, ok := t.(pos.HotelTransferTender); ok && s.hotel == nil {
			return nil, apperror.NewFieldError("payments", "Hotel transfer is not available")
		}
	}
	if err := s.requireActiveSession(ctx, work.SessionID); err != nil {
		return nil, err
	}

	now := s.now()
	var out *persisted
	var payments []entity.Payment
	var posted []hotel.Charge

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.persist(ctx, work, now)
		if err != nil {
			return err
		}
		order := out.order
		if len(order.ActiveLines()) == 0 {
			return pos.ErrEmptyCart
		}
		if err := pos.ValidateTenders(tenders, order.TotalAmount); err != nil {
			return err
		}

		payments = buildPayments(order, tenders)
		for _, t := range tenders {
			ct, ok := t.(pos.ClientAccountTender)
			if !ok || !ct.Value.IsPositive() {
				continue
			}
			if err := s.debitClient(ctx, ct); err != nil {
				return err
			}
		}
		if err := s.paymentRepo.CreateBatch(ctx, payments); err != nil {
			return fmt.Errorf("record payments: %w", err)
		}

		order.Status = enum.OrderStatusCompleted
		order.PaymentStatus = enum.PaymentStatusPaid
		order.IsOnHold = false
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if order.TableID != nil {
			if err := s.salesPointRepo.SetTableStatus(ctx, *order.TableID, enum.TableStatusAvailable); err != nil {
				return fmt.Errorf("release table: %w", err)
			}
		}

		for _, t := range tenders {
			ht, ok := t.(pos.HotelTransferTender)
			if !ok || !ht.Value.IsPositive() {
				continue
			}
			charge := hotel.Charge{StayID: ht.StayID, Amount: ht.Value, OrderNumber: order.OrderNumber}
			if err := s.hotel.PostRestaurantCharge(ctx, charge); err != nil {
				if errors.Is(err, hotel.ErrStayNotActive) {
					return apperror.NewFieldError("payments", "Hotel stay is not active")
				}
				return apperror.NewBadGatewayError("Hotel charge could not be posted", err)
			}
			posted = append(posted, charge)
		}
		return nil
	})
	if err != nil {
		for _, c := range posted {
			s.logger.Error("hotel charge posted but payment rolled back, reconcile manually",
				zap.String("order", c.OrderNumber),
				zap.String("stay_id", c.StayID.String()),
				zap.String("amount", c.Amount.String()),
				zap.Error(err))
		}
		return nil, err
	}

	order := out.order
	warnings := out.warnings

	var printErr error
	if out.created {
		printErr = s.printer.PrintTemplates(ctx, order, printer.TemplateFabrication, printer.TemplateCaisse)
	} else {
		printErr = errors.Join(
			s.printer.PrintCancellation(ctx, order, out.voided),
			s.printer.PrintTemplates(ctx, order, printer.TemplateCaisse),
		)
	}
	if printErr != nil {
		warnings = append(warnings, "Printing failed: "+printErr.Error())
	}

	s.publishVoidedLines(ctx, order, work.EmployeeID, out.voided, now)
	publish(ctx, s.events, s.logger, SubjectTicketPaid, ticketEvent(order, work.EmployeeID, now))

	s.logger.Info("ticket paid",
		zap.String("order", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("payments", len(payments)))

	work.Clear()
	return &TransitionResult{Ticket: work, Order: order, Payments: payments, Warnings: warnings}, nil
}

// Recall loads a held or printed order back into a ticket on the caller's session
func (s *OrderService) Recall(ctx context.Context, orderID, sessionID, employeeID uuid.UUID) (*pos.Ticket, error) {
	session, err := s.requireSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetWithLines(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return nil, pos.ErrTicketClosed
	}
	if order.SalesPointID != session.SalesPointID {
		return nil, apperror.NewUnprocessableError("Order belongs to another sales point")
	}

	t := pos.NewTicket(session.ID, order.SalesPointID, employeeID)
	id := order.ID
	t.OrderID = &id
	t.OrderNumber = order.OrderNumber
	t.TableID = order.TableID
	t.ClientID = order.ClientID
	t.AssignmentDecided = true
	t.State = pos.StatePrinted
	if order.IsOnHold {
		t.State = pos.StateHeld
	}
	for _, l := range order.Lines {
		t.Lines = append(t.Lines, pos.LineFromOrderLine(l))
	}
	return t, nil
}

func (s *OrderService) debitClient(ctx context.Context, t pos.ClientAccountTender) error {
	account, err := s.clientRepo.GetByID(ctx, t.ClientID)
	if err != nil {
		return fmt.Errorf("load client account: %w", err)
	}
	if account == nil {
		return ErrClientNotFound
	}
	ok, err := s.clientRepo.Debit(ctx, t.ClientID, t.Value)
	if err != nil {
		return fmt.Errorf("debit client account: %w", err)
	}
	if !ok {
		return ErrCreditLimitExceeded
	}
	return nil
}

// moveTable keeps table occupancy in step with a reassignment after the first save
func (s *OrderService) moveTable(ctx context.Context, from, to *uuid.UUID) error {
	if sameID(from, to) {
		return nil
	}
	if from != nil {
		if err := s.salesPointRepo.SetTableStatus(ctx, *from, enum.TableStatusAvailable); err != nil {
			return fmt.Errorf("release table: %w", err)
		}
	}
	if to != nil {
		if err := s.salesPointRepo.SetTableStatus(ctx, *to, enum.TableStatusOccupied); err != nil {
			return fmt.Errorf("occupy table: %w", err)
		}
	}
	return nil
}

func (s *OrderService) requireActiveSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.requireSession(ctx, id)
	return err
}

func (s *OrderService) requireSession(ctx context.Context, id uuid.UUID) (*entity.POSSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive() {
		return nil, ErrSessionClosed
	}
	return session, nil
}

func (s *OrderService) publishVoidedLines(ctx context.Context, order *entity.Order, employeeID uuid.UUID, voided []entity.OrderLine, at time.Time) {
	if len(voided) == 0 {
		return
	}
	event := ticketEvent(order, employeeID, at)
	event.LineIDs = lineIDs(voided)
	publish(ctx, s.events, s.logger, SubjectLineVoided, event)
}

func ticketEvent(order *entity.Order, employeeID uuid.UUID, at time.Time) TicketEvent {
	return TicketEvent{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		SalesPointID: order.SalesPointID,
		SessionID:    order.SessionID,
		EmployeeID:   employeeID,
		Total:        order.TotalAmount,
		OccurredAt:   at,
	}
}

// syncTicket records on the ticket what the committed save wrote
func syncTicket(t *pos.Ticket, order *entity.Order) {
	id := order.ID
	t.OrderID = &id
	t.OrderNumber = order.OrderNumber
	t.AssignmentDecided = true
	for i := range t.Lines {
		l := &t.Lines[i]
		switch {
		case l.Persisted() && l.PendingCancellation:
			l.PendingCancellation = false
			l.Voided = true
		case !l.Persisted() && l.Counts():
			lineID := l.ID
			l.OrderLineID = &lineID
		}
	}
	t.UpdatedAt = time.Now()
}

// buildLines turns unsaved cart lines into order lines. An order line reuses
// the ID of its cart line.
func buildLines(orderID uuid.UUID, lines []pos.CartLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		amounts := l.Amounts()
		out = append(out, entity.OrderLine{
			ID:          l.ID,
			OrderID:     orderID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Subtotal:    amounts.Subtotal,
			TaxAmount:   amounts.Tax,
			Total:       amounts.Total,
		})
	}
	return out
}

func buildPayments(order *entity.Order, tenders []pos.Tender) []entity.Payment {
	var payments []entity.Payment
	for _, t := range tenders {
		if t.Amount().IsZero() {
			continue
		}
		p := entity.Payment{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			Method:    t.Method(),
			Amount:    t.Amount().Round(2),
		}
		switch v := t.(type) {
		case pos.ClientAccountTender:
			id := v.ClientID
			p.ClientID = &id
		case pos.HotelTransferTender:
			id := v.StayID
			p.HotelStayID = &id
		}
		payments = append(payments, p)
	}
	return payments
}

// applyTotals recomputes the order header from its non-voided lines
func applyTotals(order *entity.Order) {
	lines := make([]pos.CartLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, pos.LineFromOrderLine(l))
	}
	totals := pos.ComputeTotals(lines)
	order.Subtotal = totals.Subtotal
	order.TaxAmount = totals.Tax
	order.TotalAmount = totals.Total
}

// markVoided turns an order with no live lines into a voided one
func markVoided(order *entity.Order) {
	applyTotals(order)
	order.Status = enum.OrderStatusVoided
	order.PaymentStatus = enum.PaymentStatusVoided
	order.IsOnHold = false
}

// tolerateStockError downgrades a missing storage location to a warning:
// nothing was written, and the sale itself must not be blocked by it.
func tolerateStockError(warnings []string, err error) ([]string, error) {
	if errors.Is(err, ErrStorageLocationMissing) {
		return append(warnings, "Stock not updated: "+err.Error()), nil
	}
	return warnings, err
}

func newOrderNumber(now time.Time) string {
	return utils.GenerateOrderNumber("POS", now)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
