package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hospitality-pos/internal/application/service"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/request"
	"github.com/sangkips/hospitality-pos/internal/presentation/http/dto/response"
	"github.com/shopspring/decimal"
)

// SessionHandler handles cashier session HTTP requests
type SessionHandler struct {
	sessionService        *service.SessionService
	defaultOpeningBalance decimal.Decimal
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *service.SessionService, defaultOpeningBalance decimal.Decimal) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, defaultOpeningBalance: defaultOpeningBalance}
}

// Open returns today's active session, opening one when needed
func (h *SessionHandler) Open(c *gin.Context) {
	employeeID, ok := requireEmployee(c)
	if !ok {
		return
	}

	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	opening := h.defaultOpeningBalance
	if req.OpeningBalance != nil {
		opening = *req.OpeningBalance
	}

	session, created, err := h.sessionService.Open(c.Request.Context(), employeeID, req.SalesPointID, opening)
	if err != nil {
		response.Error(c, err)
		return
	}

	if created {
		response.Created(c, "Session opened successfully", session)
		return
	}
	response.OK(c, "Session already open", session)
}

// Report returns the session totals without touching the session
func (h *SessionHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "id", "session")
	if !ok {
		return
	}

	report, err := h.sessionService.Report(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session report retrieved successfully", report)
}

// Reconcile previews the variances of a count without saving anything
func (h *SessionHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id", "session")
	if !ok {
		return
	}

	var req request.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	counts, err := req.MethodCounts()
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.sessionService.Report(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Reconciliation computed", gin.H{
		"report":         report,
		"reconciliation": h.sessionService.Reconcile(report, counts),
	})
}

// XReport records a checkpoint count; the session stays open
func (h *SessionHandler) XReport(c *gin.Context) {
	h.finalize(c, false)
}

// ZReport records the closing count and closes the session
func (h *SessionHandler) ZReport(c *gin.Context) {
	h.finalize(c, true)
}

func (h *SessionHandler) finalize(c *gin.Context, closing bool) {
	employeeID, ok := requireEmployee(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id", "session")
	if !ok {
		return
	}

	var req request.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	counts, err := req.MethodCounts()
	if err != nil {
		response.Error(c, err)
		return
	}

	input := service.FinalizeInput{
		EmployeeID:    employeeID,
		Counts:        counts,
		Justification: req.Justification,
		Confirmed:     req.Confirm,
	}

	if !closing {
		result, err := h.sessionService.FinalizeX(c.Request.Context(), id, input)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusCreated, "X report recorded", result)
		return
	}

	result, err := h.sessionService.FinalizeZ(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Session closed successfully", result)
}
