package response

import (
	"github.com/sangkips/hospitality-pos/internal/application/service"
	"github.com/sangkips/hospitality-pos/internal/domain/entity"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
)

// TicketView is a ticket with its derived totals
type TicketView struct {
	*pos.Ticket
	Totals pos.Totals `json:"totals"`
}

// NewTicketView computes the totals of t
func NewTicketView(t *pos.Ticket) *TicketView {
	return &TicketView{Ticket: t, Totals: t.Totals()}
}

// TransitionView is the outcome of hold, print, pay or cancel
type TransitionView struct {
	Ticket   *TicketView      `json:"ticket"`
	Order    *entity.Order    `json:"order,omitempty"`
	Payments []entity.Payment `json:"payments,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

func NewTransitionView(r *service.TransitionResult) *TransitionView {
	return &TransitionView{
		Ticket:   NewTicketView(r.Ticket),
		Order:    r.Order,
		Payments: r.Payments,
		Warnings: r.Warnings,
	}
}
