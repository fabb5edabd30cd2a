package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/internal/domain/repository"
	"github.com/sangkips/hospitality-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ErrUnsavedChanges is returned when discarding a ticket that still has work on it
var ErrUnsavedChanges = apperror.NewConflictError("Ticket has unsaved changes")

// TicketService keeps the open tickets of every till. Stored tickets are
// never modified in place: each change is made on a clone that replaces the
// stored value, so a ticket handed out stays consistent.
type TicketService struct {
	mu      sync.RWMutex
	tickets map[uuid.UUID]*ticketEntry

	productRepo    repository.ProductRepository
	sessionRepo    repository.SessionRepository
	salesPointRepo repository.SalesPointRepository
	clientRepo     repository.ClientAccountRepository
	orders         *OrderService
	voids          *VoidService
}

// ticketEntry serializes the operations on one ticket
type ticketEntry struct {
	mu      sync.Mutex
	ticket  *pos.Ticket
	touched time.Time
}

// NewTicketService creates a new ticket registry
func NewTicketService(
	productRepo repository.ProductRepository,
	sessionRepo repository.SessionRepository,
	salesPointRepo repository.SalesPointRepository,
	clientRepo repository.ClientAccountRepository,
	orders *OrderService,
	voids *VoidService,
) *TicketService {
	return &TicketService{
		tickets:        make(map[uuid.UUID]*ticketEntry),
		productRepo:    productRepo,
		sessionRepo:    sessionRepo,
		salesPointRepo: salesPointRepo,
		clientRepo:     clientRepo,
		orders:         orders,
		voids:          voids,
	}
}

// Open starts an empty ticket on an active session
func (s *TicketService) Open(ctx context.Context, sessionID, employeeID uuid.UUID) (*pos.Ticket, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive() {
		return nil, ErrSessionClosed
	}

	t := pos.NewTicket(session.ID, session.SalesPointID, employeeID)
	s.store(t)
	return t, nil
}

// Get returns the current value of a ticket
func (s *TicketService) Get(id uuid.UUID) (*pos.Ticket, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticket, nil
}

// Discard forgets a ticket. Unsaved lines or queued voids must be dealt with first.
func (s *TicketService) Discard(id uuid.UUID) error {
	e, err := s.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.ticket
	if hasUnsavedWork(t) {
		return ErrUnsavedChanges
	}

	s.mu.Lock()
	delete(s.tickets, id)
	s.mu.Unlock()
	return nil
}

// AddItem puts quantity units of a product on the ticket
func (s *TicketService) AddItem(ctx context.Context, id, productID uuid.UUID, quantity decimal.Decimal) (*pos.Ticket, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	item := pos.Item{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		TaxRate:   product.TaxRate,
	}
	return s.mutate(id, func(t *pos.Ticket) error {
		_, err := t.AddItem(item, quantity)
		return err
	})
}

// UpdateQuantity changes the quantity of a line that is not saved yet
func (s *TicketService) UpdateQuantity(ctx context.Context, id, lineID uuid.UUID, quantity decimal.Decimal) (*pos.Ticket, error) {
	return s.mutate(id, func(t *pos.Ticket) error {
		return t.UpdateQuantity(lineID, quantity)
	})
}

// RemoveLine drops an unsaved line; saved lines must be cancelled instead
func (s *TicketService) RemoveLine(ctx context.Context, id, lineID uuid.UUID) (*pos.Ticket, error) {
	return s.mutate(id, func(t *pos.Ticket) error {
		return t.RemoveLine(lineID)
	})
}

// MarkForCancellation queues a saved line for voiding at the next save
func (s *TicketService) MarkForCancellation(ctx context.Context, id, lineID uuid.UUID, reason string) (*pos.Ticket, error) {
	return s.mutate(id, func(t *pos.Ticket) error {
		return t.MarkForCancellation(lineID, reason)
	})
}

// UndoCancellation takes a line back off the void queue
func (s *TicketService) UndoCancellation(ctx context.Context, id, lineID uuid.UUID) (*pos.Ticket, error) {
	return s.mutate(id, func(t *pos.Ticket) error {
		return t.UndoCancellation(lineID)
	})
}

// Assign records the table/client decision. Both nil means the ticket is
// deliberately left unassigned.
func (s *TicketService) Assign(ctx context.Context, id uuid.UUID, tableID, clientID *uuid.UUID) (*pos.Ticket, error) {
	current, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if tableID != nil {
		table, err := s.salesPointRepo.GetTable(ctx, *tableID)
		if err != nil {
			return nil, err
		}
		if table == nil || table.SalesPointID != current.SalesPointID {
			return nil, ErrTableNotFound
		}
	}
	if clientID != nil {
		client, err := s.clientRepo.GetByID(ctx, *clientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, ErrClientNotFound
		}
	}

	return s.mutate(id, func(t *pos.Ticket) error {
		return t.Assign(tableID, clientID)
	})
}

// Hold saves the ticket and parks it for later recall
func (s *TicketService) Hold(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(id, func(t *pos.Ticket) (*TransitionResult, error) {
		return s.orders.Hold(ctx, t)
	})
}

// Print saves the ticket and sends its production and bill slips
func (s *TicketService) Print(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(id, func(t *pos.Ticket) (*TransitionResult, error) {
		return s.orders.Print(ctx, t)
	})
}

// Pay saves and settles the ticket; the ticket comes back as an empty cart
func (s *TicketService) Pay(ctx context.Context, id uuid.UUID, tenders []pos.Tender) (*TransitionResult, error) {
	return s.transition(id, func(t *pos.Ticket) (*TransitionResult, error) {
		return s.orders.Pay(ctx, t, tenders)
	})
}

// Cancel voids the whole ticket once confirmed
func (s *TicketService) Cancel(ctx context.Context, id uuid.UUID, reason string, confirmed bool) (*TransitionResult, error) {
	return s.transition(id, func(t *pos.Ticket) (*TransitionResult, error) {
		return s.voids.CancelTicket(ctx, t, reason, confirmed)
	})
}

// Recall brings a saved order back as a ticket. An order that is already
// open on a ticket returns that ticket.
func (s *TicketService) Recall(ctx context.Context, orderID, sessionID, employeeID uuid.UUID) (*pos.Ticket, error) {
	if t := s.findByOrder(orderID); t != nil {
		return t, nil
	}
	t, err := s.orders.Recall(ctx, orderID, sessionID, employeeID)
	if err != nil {
		return nil, err
	}
	s.store(t)
	return t, nil
}

// SplitByAmount previews payer shares of the ticket; nothing is saved
func (s *TicketService) SplitByAmount(ctx context.Context, id uuid.UUID, amounts []decimal.Decimal) (*pos.SplitResult, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return pos.SplitByAmount(t.Lines, amounts)
}

// SplitByProduct previews a partition of the ticket units; nothing is saved
func (s *TicketService) SplitByProduct(ctx context.Context, id uuid.UUID, assignments []pos.ProductAssignment) (*pos.SplitResult, error) {
	t, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return pos.SplitByProduct(t.Lines, assignments)
}

func (s *TicketService) mutate(id uuid.UUID, fn func(t *pos.Ticket) error) (*pos.Ticket, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.ticket.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	e.ticket = work
	e.touched = time.Now()
	return work, nil
}

func (s *TicketService) transition(id uuid.UUID, fn func(t *pos.Ticket) (*TransitionResult, error)) (*TransitionResult, error) {
	e, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := fn(e.ticket)
	if err != nil {
		return nil, err
	}
	e.ticket = result.Ticket
	e.touched = time.Now()
	return result, nil
}

func (s *TicketService) entry(id uuid.UUID) (*ticketEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return e, nil
}

func (s *TicketService) store(t *pos.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = &ticketEntry{ticket: t, touched: time.Now()}
}

// DropSession forgets every ticket of a closed session and reports how many
// were dropped. Their orders stay in the database and can be recalled.
func (s *TicketService) DropSession(sessionID uuid.UUID) int {
	return s.evict(func(e *ticketEntry) bool {
		return e.ticket.SessionID == sessionID
	})
}

// Cleanup forgets tickets untouched for longer than idle that Discard would
// accept: nothing on them is lost, saved orders can be recalled. Tickets with
// unsaved lines or queued voids are kept.
func (s *TicketService) Cleanup(now time.Time, idle time.Duration) int {
	cutoff := now.Add(-idle)
	return s.evict(func(e *ticketEntry) bool {
		return e.touched.Before(cutoff) && !hasUnsavedWork(e.ticket)
	})
}

func hasUnsavedWork(t *pos.Ticket) bool {
	return !t.State.Terminal() && (len(t.NewLines()) > 0 || len(t.PendingCancellations()) > 0)
}

// evict takes the ticket lock before the registry lock, like Discard
func (s *TicketService) evict(match func(e *ticketEntry) bool) int {
	s.mu.RLock()
	entries := make(map[uuid.UUID]*ticketEntry, len(s.tickets))
	for id, e := range s.tickets {
		entries[id] = e
	}
	s.mu.RUnlock()

	dropped := 0
	for id, e := range entries {
		e.mu.Lock()
		if match(e) {
			s.mu.Lock()
			if s.tickets[id] == e {
				delete(s.tickets, id)
				dropped++
			}
			s.mu.Unlock()
		}
		e.mu.Unlock()
	}
	return dropped
}

func (s *TicketService) findByOrder(orderID uuid.UUID) *pos.Ticket {
	s.mu.RLock()
	entries := make([]*ticketEntry, 0, len(s.tickets))
	for _, e := range s.tickets {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		t := e.ticket
		e.mu.Unlock()
		if t.OrderID != nil && *t.OrderID == orderID && !t.State.Terminal() {
			return t
		}
	}
	return nil
}
