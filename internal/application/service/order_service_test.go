package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/pkg/apperror"
	"github.com/sangkips/hospitality-pos/pkg/hotel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemOf(p entity.Product) pos.Item {
	return pos.Item{ProductID: p.ID, Name: p.Name, UnitPrice: p.Price, TaxRate: p.TaxRate}
}

// newTicket builds an unsaved ticket on the harness session with the given
// products, one unit each, and no table or client.
func (h *harness) newTicket(t *testing.T, products ...entity.Product) *pos.Ticket {
	t.Helper()
	ticket := pos.NewTicket(h.session.ID, h.point.ID, h.employee)
	for _, p := range products {
		_, err := ticket.AddItem(itemOf(p), decimal.NewFromInt(1))
		require.NoError(t, err)
	}
	require.NoError(t, ticket.Assign(nil, nil))
	return ticket
}

func lineFor(t *testing.T, ticket *pos.Ticket, product entity.Product) pos.CartLine {
	t.Helper()
	for _, l := range ticket.Lines {
		if l.ProductID == product.ID && l.Counts() {
			return l
		}
	}
	t.Fatalf("no live line for %s", product.Name)
	return pos.CartLine{}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOrderService_SaveRequiresAssignmentDecision(t *testing.T) {
	h := newHarness(t)
	ticket := pos.NewTicket(h.session.ID, h.point.ID, h.employee)
	_, err := ticket.AddItem(itemOf(h.soda), dec("1"))
	require.NoError(t, err)

	_, err = h.orders.Hold(h.ctx, ticket)
	assert.ErrorIs(t, err, pos.ErrAssignmentRequired)
	assert.Empty(t, h.db.orders)
}

func TestOrderService_SaveRejectsEmptyCart(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t)

	_, err := h.orders.Print(h.ctx, ticket)
	assert.ErrorIs(t, err, pos.ErrEmptyCart)
}

func TestOrderService_SaveRejectsClosedSession(t *testing.T) {
	h := newHarness(t)
	s := h.db.sessions[h.session.ID]
	s.Status = enum.SessionStatusClosed
	h.db.sessions[h.session.ID] = s

	_, err := h.orders.Print(h.ctx, h.newTicket(t, h.soda))
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, h.db.orders)
}

func TestOrderService_PrintCreatesOrder(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.soda)
	_, err := ticket.AddItem(itemOf(h.burger), dec("1"))
	require.NoError(t, err)

	result, err := h.orders.Print(h.ctx, ticket)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	order := h.order(result.Order.ID)
	require.NotNil(t, order)
	assert.Equal(t, enum.OrderStatusPending, order.Status)
	assert.Equal(t, enum.PaymentStatusPending, order.PaymentStatus)
	assert.False(t, order.IsOnHold)
	assert.Equal(t, 1, order.PrintCount)
	assert.Regexp(t, `^POS-\d{6}-[0-9A-F]{8}$`, order.OrderNumber)
	assert.True(t, order.TotalAmount.Equal(dec("7000")), order.TotalAmount.String())
	assert.True(t, order.Subtotal.Add(order.TaxAmount).Equal(order.TotalAmount))
	assert.Len(t, order.Lines, 2)

	// Two burgers consume two buns and two patties; soda is not composed.
	assert.True(t, h.stockOf(h.bun).Equal(dec("-2")))
	assert.True(t, h.stockOf(h.patty).Equal(dec("-2")))
	assert.Len(t, h.db.movements, 2)

	assert.Equal(t, []string{"print:fabrication", "print:caisse"}, h.printer.kinds())
	assert.Equal(t, []string{SubjectTicketPrinted}, h.events.published())

	assert.Equal(t, pos.StatePrinted, result.Ticket.State)
	require.NotNil(t, result.Ticket.OrderID)
	assert.Equal(t, order.ID, *result.Ticket.OrderID)
	for _, l := range result.Ticket.Lines {
		require.True(t, l.Persisted())
		assert.Equal(t, l.ID, *l.OrderLineID)
	}

	// The ticket passed in is left alone.
	assert.Nil(t, ticket.OrderID)
	assert.Equal(t, pos.StateCart, ticket.State)
}

func TestOrderService_OrderTotalsMatchLinesWithFractionalQuantities(t *testing.T) {
	h := newHarness(t)
	juice := h.addProduct("Juice", "1.05", "18", false)
	tea := h.addProduct("Tea", "1.05", "18", false)
	ticket := h.newTicket(t)
	_, err := ticket.AddItem(itemOf(juice), dec("0.5"))
	require.NoError(t, err)
	_, err = ticket.AddItem(itemOf(tea), dec("0.5"))
	require.NoError(t, err)

	result, err := h.orders.Print(h.ctx, ticket)
	require.NoError(t, err)

	order := h.order(result.Order.ID)
	require.NotNil(t, order)
	total, subtotal := decimal.Zero, decimal.Zero
	for _, l := range order.ActiveLines() {
		total = total.Add(l.Total)
		subtotal = subtotal.Add(l.Subtotal)
	}
	assert.True(t, order.TotalAmount.Equal(total), "order %s lines %s", order.TotalAmount, total)
	assert.True(t, order.Subtotal.Equal(subtotal), "order %s lines %s", order.Subtotal, subtotal)
	assert.True(t, order.TotalAmount.Equal(dec("1.06")), order.TotalAmount.String())
	assert.True(t, order.Subtotal.Add(order.TaxAmount).Equal(order.TotalAmount))
}

func TestOrderService_HoldOccupiesTableAndPrintsFabrication(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.soda)
	require.NoError(t, ticket.Assign(&h.table.ID, nil))

	result, err := h.orders.Hold(h.ctx, ticket)
	require.NoError(t, err)

	order := h.order(result.Order.ID)
	assert.True(t, order.IsOnHold)
	assert.NotNil(t, order.HeldAt)
	assert.Equal(t, enum.TableStatusOccupied, h.db.tables[h.table.ID].Status)
	assert.Equal(t, []string{"print:fabrication"}, h.printer.kinds())
	assert.Equal(t, []string{SubjectTicketHeld}, h.events.published())
	assert.Equal(t, pos.StateHeld, result.Ticket.State)
}

func TestOrderService_ReentryVoidsThenAddsLines(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.fries)
	_, err := ticket.AddItem(itemOf(h.fries), dec("1"))
	require.NoError(t, err)

	first, err := h.orders.Print(h.ctx, ticket)
	require.NoError(t, err)
	assert.True(t, h.stockOf(h.potato).Equal(dec("-0.5")))

	work := first.Ticket.Clone()
	fries := lineFor(t, work, h.fries)
	require.NoError(t, work.MarkForCancellation(fries.ID, "customer changed mind"))
	_, err = work.AddItem(itemOf(h.soda), dec("1"))
	require.NoError(t, err)

	second, err := h.orders.Print(h.ctx, work)
	require.NoError(t, err)

	order := h.order(first.Order.ID)
	assert.Len(t, order.Lines, 3)
	assert.Len(t, order.ActiveLines(), 2)
	assert.True(t, order.TotalAmount.Equal(dec("4000")), order.TotalAmount.String())
	assert.Equal(t, 2, order.PrintCount)

	require.Len(t, h.db.voidLogs, 1)
	entry := h.db.voidLogs[0]
	assert.Equal(t, "customer changed mind", entry.Reason)
	require.NotNil(t, entry.OrderLineID)
	assert.Equal(t, fries.ID, *entry.OrderLineID)

	assert.True(t, h.stockOf(h.potato).IsZero())
	assert.Len(t, h.movementsOf(h.potato, enum.MovementTypeAdjustmentIn), 1)

	assert.Equal(t, []string{
		"print:fabrication", "print:caisse",
		"cancellation", "items:caisse",
	}, h.printer.kinds())
	printed := h.printer.calls[3]
	require.Len(t, printed.itemIDs, 1)
	assert.Equal(t, lineFor(t, second.Ticket, h.soda).ID, printed.itemIDs[0])

	assert.Equal(t, []string{SubjectTicketPrinted, SubjectLineVoided, SubjectTicketPrinted}, h.events.published())

	voided := second.Ticket.Lines[1]
	assert.True(t, voided.Voided)
	assert.False(t, voided.PendingCancellation)
	assert.True(t, second.Ticket.Totals().Total.Equal(dec("4000")))
}

func TestOrderService_HoldAfterPrintWithoutChangesDoesNotReprint(t *testing.T) {
	h := newHarness(t)
	first, err := h.orders.Print(h.ctx, h.newTicket(t, h.soda))
	require.NoError(t, err)

	_, err = h.orders.Hold(h.ctx, first.Ticket)
	require.NoError(t, err)

	order := h.order(first.Order.ID)
	assert.Equal(t, 1, order.PrintCount)
	assert.True(t, order.IsOnHold)
	assert.Equal(t, []string{"print:fabrication", "print:caisse"}, h.printer.kinds())
}

func TestOrderService_ReprintWithoutChanges(t *testing.T) {
	h := newHarness(t)
	first, err := h.orders.Hold(h.ctx, h.newTicket(t, h.soda))
	require.NoError(t, err)

	_, err = h.orders.Print(h.ctx, first.Ticket)
	require.NoError(t, err)

	assert.Equal(t, 2, h.order(first.Order.ID).PrintCount)
	assert.Equal(t, []string{"print:fabrication", "print:caisse"}, h.printer.kinds())
}

func TestOrderService_CancellingEveryLineVoidsOrder(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.soda)
	require.NoError(t, ticket.Assign(&h.table.ID, nil))
	first, err := h.orders.Print(h.ctx, ticket)
	require.NoError(t, err)

	work := first.Ticket.Clone()
	for _, l := range work.Lines {
		require.NoError(t, work.MarkForCancellation(l.ID, "wrong table"))
	}

	result, err := h.orders.Print(h.ctx, work)
	require.NoError(t, err)

	order := h.order(first.Order.ID)
	assert.Equal(t, enum.OrderStatusVoided, order.Status)
	assert.Equal(t, enum.PaymentStatusVoided, order.PaymentStatus)
	assert.True(t, order.TotalAmount.IsZero())
	assert.Equal(t, enum.TableStatusAvailable, h.db.tables[h.table.ID].Status)
	assert.Equal(t, pos.StateVoided, result.Ticket.State)
	assert.True(t, h.stockOf(h.bun).IsZero())

	kinds := h.printer.kinds()
	assert.Equal(t, "cancellation", kinds[len(kinds)-1])
	assert.Contains(t, h.events.published(), SubjectTicketVoided)
}

func TestOrderService_FailedSaveChangesNothing(t *testing.T) {
	h := newHarness(t)
	first, err := h.orders.Print(h.ctx, h.newTicket(t, h.burger))
	require.NoError(t, err)

	work := first.Ticket.Clone()
	burger := lineFor(t, work, h.burger)
	require.NoError(t, work.MarkForCancellation(burger.ID, "burnt"))
	_, err = work.AddItem(itemOf(h.fries), dec("1"))
	require.NoError(t, err)

	h.db.fail["lines.create"] = errors.New("connection reset")
	printsBefore := len(h.printer.calls)

	_, err = h.orders.Print(h.ctx, work)
	require.Error(t, err)

	order := h.order(first.Order.ID)
	assert.Len(t, order.Lines, 1)
	assert.False(t, order.Lines[0].IsVoided)
	assert.Empty(t, h.db.voidLogs)
	assert.True(t, h.stockOf(h.bun).Equal(dec("-1")))
	assert.True(t, h.stockOf(h.potato).IsZero())
	assert.Len(t, h.printer.calls, printsBefore)

	assert.True(t, work.Lines[0].PendingCancellation)
	assert.Len(t, work.NewLines(), 1)
}

func TestOrderService_MissingRecipeIsWarning(t *testing.T) {
	h := newHarness(t)

	result, err := h.orders.Print(h.ctx, h.newTicket(t, h.pizza))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Pizza")
	assert.Empty(t, h.db.movements)
	assert.NotNil(t, h.order(result.Order.ID))
}

func TestOrderService_MissingStorageLocationIsWarning(t *testing.T) {
	h := newHarness(t)
	sp := h.db.salesPoints[h.point.ID]
	sp.DefaultStorageLocationID = nil
	h.db.salesPoints[h.point.ID] = sp

	result, err := h.orders.Print(h.ctx, h.newTicket(t, h.burger))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Stock not updated")
	assert.Empty(t, h.db.movements)
	assert.NotNil(t, h.order(result.Order.ID))
}

func TestOrderService_PrintFailureIsWarning(t *testing.T) {
	h := newHarness(t)
	h.printer.err = errors.New("printer offline")

	result, err := h.orders.Print(h.ctx, h.newTicket(t, h.soda))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Printing failed")
	assert.Contains(t, result.Warnings[0], "printer offline")
	assert.Equal(t, 1, h.order(result.Order.ID).PrintCount)
}

func TestOrderService_PayCash(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.soda)
	require.NoError(t, ticket.Assign(&h.table.ID, nil))

	result, err := h.orders.Pay(h.ctx, ticket, []pos.Tender{pos.CashTender{Value: dec("4000")}})
	require.NoError(t, err)

	order := h.order(result.Order.ID)
	assert.Equal(t, enum.OrderStatusCompleted, order.Status)
	assert.Equal(t, enum.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, enum.TableStatusAvailable, h.db.tables[h.table.ID].Status)

	require.Len(t, h.db.payments, 1)
	p := h.db.payments[0]
	assert.Equal(t, enum.PaymentMethodCash, p.Method)
	assert.True(t, p.Amount.Equal(dec("4000")))
	assert.Equal(t, h.session.ID, p.SessionID)

	assert.True(t, h.stockOf(h.bun).Equal(dec("-1")))
	assert.Equal(t, []string{"print:fabrication", "print:caisse"}, h.printer.kinds())
	assert.Equal(t, []string{SubjectTicketPaid}, h.events.published())

	assert.Equal(t, ticket.ID, result.Ticket.ID)
	assert.Equal(t, pos.StateCart, result.Ticket.State)
	assert.Empty(t, result.Ticket.Lines)
	assert.Nil(t, result.Ticket.OrderID)
}

func TestOrderService_PaySavedOrderPrintsCancellationsAndReceipt(t *testing.T) {
	h := newHarness(t)
	first, err := h.orders.Hold(h.ctx, h.newTicket(t, h.burger, h.soda))
	require.NoError(t, err)

	work := first.Ticket.Clone()
	require.NoError(t, work.MarkForCancellation(lineFor(t, work, h.soda).ID, "not served"))

	result, err := h.orders.Pay(h.ctx, work, []pos.Tender{pos.CardTender{Value: dec("3000")}})
	require.NoError(t, err)

	assert.True(t, result.Order.TotalAmount.Equal(dec("3000")))
	assert.False(t, h.order(first.Order.ID).IsOnHold)
	assert.Equal(t, []string{"print:fabrication", "cancellation", "print:caisse"}, h.printer.kinds())
}

func TestOrderService_PayRejectsMismatch(t *testing.T) {
	h := newHarness(t)

	_, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{pos.CashTender{Value: dec("900")}})
	assert.ErrorIs(t, err, pos.ErrPaymentMismatch)
	assert.Empty(t, h.db.orders)
}

func TestOrderService_PayAcceptsOneCentTolerance(t *testing.T) {
	h := newHarness(t)

	_, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{pos.CashTender{Value: dec("999.99")}})
	assert.NoError(t, err)
}

func TestOrderService_PayRejectsEmptyCart(t *testing.T) {
	h := newHarness(t)

	_, err := h.orders.Pay(h.ctx, h.newTicket(t), nil)
	assert.ErrorIs(t, err, pos.ErrEmptyCart)
}

func TestOrderService_PaySkipsZeroTenders(t *testing.T) {
	h := newHarness(t)

	result, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{
		pos.CashTender{Value: dec("600")},
		pos.CardTender{Value: decimal.Zero},
		pos.WaveTender{Value: dec("400")},
	})
	require.NoError(t, err)

	require.Len(t, result.Payments, 2)
	assert.Equal(t, enum.PaymentMethodCash, result.Payments[0].Method)
	assert.Equal(t, enum.PaymentMethodWave, result.Payments[1].Method)
}

func TestOrderService_PayDebitsClientAccount(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.soda)
	require.NoError(t, ticket.Assign(nil, &h.client.ID))

	result, err := h.orders.Pay(h.ctx, ticket, []pos.Tender{
		pos.ClientAccountTender{Value: dec("1000"), ClientID: h.client.ID},
	})
	require.NoError(t, err)

	assert.True(t, h.db.clients[h.client.ID].Balance.Equal(dec("-1000")))
	require.Len(t, result.Payments, 1)
	require.NotNil(t, result.Payments[0].ClientID)
	assert.Equal(t, h.client.ID, *result.Payments[0].ClientID)
}

func TestOrderService_CreditLimitRollsBackPayment(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.burger, h.soda)

	_, err := h.orders.Pay(h.ctx, ticket, []pos.Tender{
		pos.ClientAccountTender{Value: dec("7000"), ClientID: h.client.ID},
	})
	assert.ErrorIs(t, err, ErrCreditLimitExceeded)

	assert.Empty(t, h.db.orders)
	assert.Empty(t, h.db.payments)
	assert.Empty(t, h.db.movements)
	assert.True(t, h.db.clients[h.client.ID].Balance.IsZero())
	assert.Empty(t, h.printer.calls)
}

func TestOrderService_HotelTransfer(t *testing.T) {
	h := newHarness(t)
	stay := uuid.New()

	result, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{
		pos.HotelTransferTender{Value: dec("1000"), StayID: stay},
	})
	require.NoError(t, err)

	require.Len(t, h.hotel.charges, 1)
	charge := h.hotel.charges[0]
	assert.Equal(t, stay, charge.StayID)
	assert.True(t, charge.Amount.Equal(dec("1000")))
	assert.Equal(t, result.Order.OrderNumber, charge.OrderNumber)
	require.NotNil(t, result.Payments[0].HotelStayID)
	assert.Equal(t, stay, *result.Payments[0].HotelStayID)
}

func TestOrderService_HotelFailureRollsBackPayment(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "stay not active", err: hotel.ErrStayNotActive, code: http.StatusUnprocessableEntity},
		{name: "hotel unreachable", err: errors.New("dial tcp: connection refused"), code: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.hotel.err = tt.err

			_, err := h.orders.Pay(h.ctx, h.newTicket(t, h.burger), []pos.Tender{
				pos.HotelTransferTender{Value: dec("3000"), StayID: uuid.New()},
			})
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.GetAppError(err).Code)

			assert.Empty(t, h.db.orders)
			assert.Empty(t, h.db.payments)
			assert.Empty(t, h.db.movements)
		})
	}
}

func TestOrderService_HotelTransferUnavailable(t *testing.T) {
	h := newHarness(t)
	h.orders.hotel = nil

	_, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{
		pos.HotelTransferTender{Value: dec("1000"), StayID: uuid.New()},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestOrderService_PayClosedTicket(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.soda)
	ticket.State = pos.StatePaid

	_, err := h.orders.Pay(h.ctx, ticket, []pos.Tender{pos.CashTender{Value: dec("1000")}})
	assert.ErrorIs(t, err, pos.ErrTicketClosed)
}

func TestOrderService_Recall(t *testing.T) {
	h := newHarness(t)
	ticket := h.newTicket(t, h.burger, h.soda)
	require.NoError(t, ticket.Assign(&h.table.ID, nil))
	held, err := h.orders.Hold(h.ctx, ticket)
	require.NoError(t, err)

	recalled, err := h.orders.Recall(h.ctx, held.Order.ID, h.session.ID, h.employee)
	require.NoError(t, err)

	assert.NotEqual(t, ticket.ID, recalled.ID)
	assert.Equal(t, pos.StateHeld, recalled.State)
	assert.Equal(t, held.Order.OrderNumber, recalled.OrderNumber)
	require.NotNil(t, recalled.TableID)
	assert.Equal(t, h.table.ID, *recalled.TableID)
	require.Len(t, recalled.Lines, 2)
	for _, l := range recalled.Lines {
		assert.True(t, l.Persisted())
	}
	assert.True(t, recalled.Totals().Total.Equal(held.Order.TotalAmount))
}

func TestOrderService_RecallRejectsOtherSalesPoint(t *testing.T) {
	h := newHarness(t)
	held, err := h.orders.Hold(h.ctx, h.newTicket(t, h.soda))
	require.NoError(t, err)

	other := entity.POSSession{
		ID:           uuid.New(),
		SalesPointID: uuid.New(),
		EmployeeID:   h.employee,
		Status:       enum.SessionStatusActive,
	}
	h.db.sessions[other.ID] = other

	_, err = h.orders.Recall(h.ctx, held.Order.ID, other.ID, h.employee)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apperror.GetAppError(err).Code)
}

func TestOrderService_RecallPaidOrder(t *testing.T) {
	h := newHarness(t)
	paid, err := h.orders.Pay(h.ctx, h.newTicket(t, h.soda), []pos.Tender{pos.CashTender{Value: dec("1000")}})
	require.NoError(t, err)

	_, err = h.orders.Recall(h.ctx, paid.Order.ID, h.session.ID, h.employee)
	assert.ErrorIs(t, err, pos.ErrTicketClosed)
}
