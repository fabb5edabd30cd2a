package service

import "github.com/sangkips/hospitality-pos/pkg/apperror"

var (
	ErrSessionClosed          = apperror.NewConflictError("Cashier session is closed")
	ErrSessionNotFound        = apperror.NewNotFoundError("Session")
	ErrOrderNotFound          = apperror.NewNotFoundError("Order")
	ErrTicketNotFound         = apperror.NewNotFoundError("Ticket")
	ErrProductNotFound        = apperror.NewNotFoundError("Product")
	ErrTableNotFound          = apperror.NewNotFoundError("Table")
	ErrClientNotFound         = apperror.NewNotFoundError("Client account")
	ErrSalesPointNotFound     = apperror.NewNotFoundError("Sales point")
	ErrProductInactive        = apperror.NewUnprocessableError("Product is not available for sale")
	ErrCreditLimitExceeded    = apperror.NewFieldError("payments", "Client account credit limit exceeded")
	ErrInvalidOpeningBalance  = apperror.NewFieldError("opening_balance", "Opening balance must not be negative")
	ErrInvalidCount           = apperror.NewFieldError("counts", "Counted amounts must not be negative")
	ErrJustificationRequired  = apperror.NewFieldError("justification", "A justification is required when the cash variance exceeds the threshold")
	ErrStorageLocationMissing = apperror.NewUnprocessableError("Sales point has no default storage location")
)
