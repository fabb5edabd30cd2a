package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hospitality-pos/internal/application/service"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/response"
)

// TicketHandler exposes the cart and the ticket lifecycle
type TicketHandler struct {
	ticketService *service.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Open starts an empty ticket in a session
func (h *TicketHandler) Open(c *gin.Context) {
	employeeID, ok := requireEmployee(c)
	if !ok {
		return
	}

	var req request.OpenTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.ticketService.Open(c.Request.Context(), req.SessionID, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Ticket opened successfully", response.NewTicketView(ticket))
}

// Recall loads a held or printed order back into a ticket
func (h *TicketHandler) Recall(c *gin.Context) {
	employeeID, ok := requireEmployee(c)
	if !ok {
		return
	}

	var req request.RecallTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.ticketService.Recall(c.Request.Context(), req.OrderID, req.SessionID, employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ticket recalled successfully", response.NewTicketView(ticket))
}

// Get returns a ticket with its totals
func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ticket retrieved successfully", response.NewTicketView(ticket))
}

// Discard drops a ticket that has nothing left to save
func (h *TicketHandler) Discard(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	if err := h.ticketService.Discard(id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AddItem adds a product to the cart
func (h *TicketHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.ticketService.AddItem(c.Request.Context(), id, req.ProductID, req.QuantityOrOne())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added", response.NewTicketView(ticket))
}

// UpdateQuantity changes the quantity of a line that is not saved yet
func (h *TicketHandler) UpdateQuantity(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id", "line")
	if !ok {
		return
	}

	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.ticketService.UpdateQuantity(c.Request.Context(), id, lineID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quantity updated", response.NewTicketView(ticket))
}

// RemoveLine drops a line that is not saved yet
func (h *TicketHandler) RemoveLine(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id", "line")
	if !ok {
		return
	}

	ticket, err := h.ticketService.RemoveLine(c.Request.Context(), id, lineID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed", response.NewTicketView(ticket))
}

// MarkForCancellation flags a saved line to be voided on the next save
func (h *TicketHandler) MarkForCancellation(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id", "line")
	if !ok {
		return
	}

	var req request.CancelLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	ticket, err := h.ticketService.MarkForCancellation(c.Request.Context(), id, lineID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item marked for cancellation", response.NewTicketView(ticket))
}

// UndoCancellation clears a pending cancellation
func (h *TicketHandler) UndoCancellation(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "line_id", "line")
	if !ok {
		return
	}

	ticket, err := h.ticketService.UndoCancellation(c.Request.Context(), id, lineID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cancellation undone", response.NewTicketView(ticket))
}

// Assign records the table/client choice
func (h *TicketHandler) Assign(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.AssignRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request: "+err.Error())
			return
		}
	}

	ticket, err := h.ticketService.Assign(c.Request.Context(), id, req.TableID, req.ClientID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Assignment recorded", response.NewTicketView(ticket))
}

// Hold saves the ticket and parks it
func (h *TicketHandler) Hold(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	result, err := h.ticketService.Hold(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transitionMessage("Ticket held", result.Warnings), response.NewTransitionView(result))
}

// Print saves the ticket and sends it to the printers
func (h *TicketHandler) Print(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	result, err := h.ticketService.Print(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transitionMessage("Ticket printed", result.Warnings), response.NewTransitionView(result))
}

// Pay settles the ticket with one or more tenders
func (h *TicketHandler) Pay(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	tenders, err := req.Tenders()
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ticketService.Pay(c.Request.Context(), id, tenders)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, transitionMessage("Payment recorded", result.Warnings), response.NewTransitionView(result))
}

// Cancel voids the whole ticket
func (h *TicketHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.CancelTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.ticketService.Cancel(c.Request.Context(), id, req.Reason, req.Confirm)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, transitionMessage("Ticket cancelled", result.Warnings), response.NewTransitionView(result))
}

// SplitByAmount previews a split of the ticket by amounts
func (h *TicketHandler) SplitByAmount(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.SplitByAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	h.respondSplit(c, func() (*pos.SplitResult, error) {
		return h.ticketService.SplitByAmount(c.Request.Context(), id, req.Amounts)
	})
}

// SplitByProduct previews a split that hands out whole units per line
func (h *TicketHandler) SplitByProduct(c *gin.Context) {
	id, ok := pathID(c, "id", "ticket")
	if !ok {
		return
	}

	var req request.SplitByProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	h.respondSplit(c, func() (*pos.SplitResult, error) {
		return h.ticketService.SplitByProduct(c.Request.Context(), id, req.Assignments)
	})
}

func (h *TicketHandler) respondSplit(c *gin.Context, split func() (*pos.SplitResult, error)) {
	result, err := split()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Split computed", result)
}
