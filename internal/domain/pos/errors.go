package pos

import "github.com/sangkips/hospitality-pos/pkg/apperror"

// Engine errors. They are returned as-is so callers can match them with errors.Is.
var (
	ErrEmptyCart             = apperror.NewUnprocessableError("Ticket has no items")
	ErrAssignmentRequired    = apperror.NewPreconditionError("Choose a table, a client or no assignment before saving the ticket")
	ErrTicketClosed          = apperror.NewConflictError("Ticket is already paid or voided")
	ErrTicketNotPersisted    = apperror.NewUnprocessableError("Ticket was never saved; remove the item instead of cancelling it")
	ErrLineNotFound          = apperror.NewNotFoundError("Ticket line")
	ErrLineAlreadyPersisted  = apperror.NewUnprocessableError("Line is already on the order; cancel it with a reason instead")
	ErrLineAlreadyVoided     = apperror.NewConflictError("Line is already voided")
	ErrReasonRequired        = apperror.NewFieldError("reason", "A cancellation reason is required")
	ErrInvalidQuantity       = apperror.NewFieldError("quantity", "Quantity must be greater than zero")
	ErrConfirmationRequired  = apperror.NewPreconditionError("This operation is destructive and must be confirmed")
	ErrPaymentMismatch       = apperror.NewFieldError("payments", "Payments do not add up to the ticket total")
	ErrInvalidTender         = apperror.NewFieldError("payments", "Tender amounts must not be negative")
	ErrSplitAmountMismatch   = apperror.NewFieldError("amounts", "Split amounts do not add up to the ticket total")
	ErrInvalidSplitAmount    = apperror.NewFieldError("amounts", "Every split amount must be greater than zero")
	ErrSplitAssignment       = apperror.NewFieldError("assignments", "Assigned quantities must add up to each line quantity")
	ErrFractionalSplitSource = apperror.NewFieldError("assignments", "Lines with fractional quantities cannot be split by product")
)
