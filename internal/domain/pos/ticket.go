package pos

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// TicketState is the position of a ticket in its lifecycle
type TicketState int

const (
	StateCart TicketState = iota
	StateHeld
	StatePrinted
	StatePaid
	StateVoided
)

var ticketStateNames = [...]string{"cart", "held", "printed", "paid", "voided"}

func (s TicketState) String() string {
	if s < 0 || int(s) >= len(ticketStateNames) {
		return "unknown"
	}
	return ticketStateNames[s]
}

func (s TicketState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Terminal reports whether the ticket can no longer change
func (s TicketState) Terminal() bool {
	return s == StatePaid || s == StateVoided
}

// Item is the catalogue data needed to put a product on a ticket
type Item struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// CartLine is one line of the ticket being built. OrderLineID is set once the
// line has been written to the order.
type CartLine struct {
	ID                  uuid.UUID       `json:"id"`
	OrderLineID         *uuid.UUID      `json:"order_line_id,omitempty"`
	ProductID           uuid.UUID       `json:"product_id"`
	ProductName         string          `json:"product_name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	Quantity            decimal.Decimal `json:"quantity"`
	Voided              bool            `json:"voided"`
	PendingCancellation bool            `json:"pending_cancellation"`
	CancellationReason  string          `json:"cancellation_reason,omitempty"`
}

// Persisted reports whether the line exists on the order
func (l CartLine) Persisted() bool {
	return l.OrderLineID != nil
}

// Counts reports whether the line contributes to totals
func (l CartLine) Counts() bool {
	return !l.Voided && !l.PendingCancellation
}

// Amounts returns the derived money columns of the line
func (l CartLine) Amounts() LineAmounts {
	return ComputeLineAmounts(l.UnitPrice, l.Quantity, l.TaxRate)
}

// LineFromOrderLine rebuilds a cart line from its persisted row. A persisted
// line keeps the ID of its order line.
func LineFromOrderLine(ol entity.OrderLine) CartLine {
	id := ol.ID
	return CartLine{
		ID:          ol.ID,
		OrderLineID: &id,
		ProductID:   ol.ProductID,
		ProductName: ol.ProductName,
		UnitPrice:   ol.UnitPrice,
		TaxRate:     ol.TaxRate,
		Quantity:    ol.Quantity,
		Voided:      ol.IsVoided,
	}
}

// Ticket is the in-memory transaction a cashier is working on. It is a plain
// value: the lifecycle controller clones it, mutates the clone, and keeps the
// clone only when every persistence step succeeded.
type Ticket struct {
	ID                uuid.UUID   `json:"id"`
	SessionID         uuid.UUID   `json:"session_id"`
	SalesPointID      uuid.UUID   `json:"sales_point_id"`
	EmployeeID        uuid.UUID   `json:"employee_id"`
	OrderID           *uuid.UUID  `json:"order_id,omitempty"`
	OrderNumber       string      `json:"order_number,omitempty"`
	TableID           *uuid.UUID  `json:"table_id,omitempty"`
	ClientID          *uuid.UUID  `json:"client_id,omitempty"`
	AssignmentDecided bool        `json:"assignment_decided"`
	State             TicketState `json:"state"`
	Lines             []CartLine  `json:"lines"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// NewTicket starts an empty cart for a session
func NewTicket(sessionID, salesPointID, employeeID uuid.UUID) *Ticket {
	return &Ticket{
		ID:           uuid.New(),
		SessionID:    sessionID,
		SalesPointID: salesPointID,
		EmployeeID:   employeeID,
		State:        StateCart,
		Lines:        []CartLine{},
		UpdatedAt:    time.Now(),
	}
}

// Clone returns a deep copy of the ticket
func (t *Ticket) Clone() *Ticket {
	c := *t
	c.OrderID = cloneID(t.OrderID)
	c.TableID = cloneID(t.TableID)
	c.ClientID = cloneID(t.ClientID)
	c.Lines = make([]CartLine, len(t.Lines))
	for i, l := range t.Lines {
		l.OrderLineID = cloneID(l.OrderLineID)
		c.Lines[i] = l
	}
	return &c
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Persisted reports whether an order row exists for the ticket
func (t *Ticket) Persisted() bool {
	return t.OrderID != nil
}

// Totals computes the ticket totals over the lines that still count
func (t *Ticket) Totals() Totals {
	return ComputeTotals(t.Lines)
}

// LiveLines returns the lines that still count
func (t *Ticket) LiveLines() []CartLine {
	var lines []CartLine
	for _, l := range t.Lines {
		if l.Counts() {
			lines = append(lines, l)
		}
	}
	return lines
}

// NewLines returns the counted lines that are not on the order yet
func (t *Ticket) NewLines() []CartLine {
	var lines []CartLine
	for _, l := range t.Lines {
		if !l.Persisted() && l.Counts() {
			lines = append(lines, l)
		}
	}
	return lines
}

// PendingCancellations returns the persisted lines queued for a void
func (t *Ticket) PendingCancellations() []CartLine {
	var lines []CartLine
	for _, l := range t.Lines {
		if l.Persisted() && l.PendingCancellation && !l.Voided {
			lines = append(lines, l)
		}
	}
	return lines
}

// IsEmpty reports whether no line counts towards the total
func (t *Ticket) IsEmpty() bool {
	return len(t.LiveLines()) == 0
}

// NeedsAssignment is the gate before the first save: a new ticket without a
// table or client must get an explicit decision, even if that decision is "none".
func (t *Ticket) NeedsAssignment() bool {
	return !t.Persisted() && t.TableID == nil && t.ClientID == nil && !t.AssignmentDecided
}

// Assign records the table/client decision. Both nil means "no assignment".
func (t *Ticket) Assign(tableID, clientID *uuid.UUID) error {
	if t.State.Terminal() {
		return ErrTicketClosed
	}
	t.TableID = cloneID(tableID)
	t.ClientID = cloneID(clientID)
	t.AssignmentDecided = true
	t.touch()
	return nil
}

// AddItem puts quantity units of item on the ticket. Units of a product that
// is not on the order yet are merged into its unsaved line.
func (t *Ticket) AddItem(item Item, quantity decimal.Decimal) (*CartLine, error) {
	if t.State.Terminal() {
		return nil, ErrTicketClosed
	}
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	for i := range t.Lines {
		l := &t.Lines[i]
		if !l.Persisted() && l.Counts() && l.ProductID == item.ProductID && l.UnitPrice.Equal(item.UnitPrice) {
			l.Quantity = l.Quantity.Add(quantity)
			t.touch()
			return l, nil
		}
	}
	t.Lines = append(t.Lines, CartLine{
		ID:          uuid.New(),
		ProductID:   item.ProductID,
		ProductName: item.Name,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		Quantity:    quantity,
	})
	t.touch()
	return &t.Lines[len(t.Lines)-1], nil
}

// UpdateQuantity changes the quantity of a line that is not on the order yet
func (t *Ticket) UpdateQuantity(lineID uuid.UUID, quantity decimal.Decimal) error {
	if t.State.Terminal() {
		return ErrTicketClosed
	}
	if !quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	l, err := t.line(lineID)
	if err != nil {
		return err
	}
	if l.Persisted() {
		return ErrLineAlreadyPersisted
	}
	l.Quantity = quantity
	t.touch()
	return nil
}

// RemoveLine drops a line that was never saved. No reason or audit is needed.
func (t *Ticket) RemoveLine(lineID uuid.UUID) error {
	if t.State.Terminal() {
		return ErrTicketClosed
	}
	for i, l := range t.Lines {
		if l.ID != lineID {
			continue
		}
		if l.Persisted() {
			return ErrLineAlreadyPersisted
		}
		t.Lines = append(t.Lines[:i], t.Lines[i+1:]...)
		t.touch()
		return nil
	}
	return ErrLineNotFound
}

// MarkForCancellation queues a saved line for a void on the next save
func (t *Ticket) MarkForCancellation(lineID uuid.UUID, reason string) error {
	if t.State.Terminal() {
		return ErrTicketClosed
	}
	if !t.Persisted() {
		return ErrTicketNotPersisted
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrReasonRequired
	}
	l, err := t.line(lineID)
	if err != nil {
		return err
	}
	if !l.Persisted() {
		return ErrTicketNotPersisted
	}
	if l.Voided {
		return ErrLineAlreadyVoided
	}
	l.PendingCancellation = true
	l.CancellationReason = reason
	t.touch()
	return nil
}

// UndoCancellation removes a line from the void queue
func (t *Ticket) UndoCancellation(lineID uuid.UUID) error {
	if t.State.Terminal() {
		return ErrTicketClosed
	}
	l, err := t.line(lineID)
	if err != nil {
		return err
	}
	l.PendingCancellation = false
	l.CancellationReason = ""
	t.touch()
	return nil
}

// Clear resets the ticket to an empty cart on the same session
func (t *Ticket) Clear() {
	t.OrderID = nil
	t.OrderNumber = ""
	t.TableID = nil
	t.ClientID = nil
	t.AssignmentDecided = false
	t.State = StateCart
	t.Lines = []CartLine{}
	t.touch()
}

func (t *Ticket) line(lineID uuid.UUID) (*CartLine, error) {
	for i := range t.Lines {
		if t.Lines[i].ID == lineID {
			return &t.Lines[i], nil
		}
	}
	return nil, ErrLineNotFound
}

func (t *Ticket) touch() {
	t.UpdatedAt = time.Now()
}
