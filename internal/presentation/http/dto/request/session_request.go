package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest is the request body for opening (or resuming) a session.
// A missing opening balance falls back to the configured default.
type OpenSessionRequest struct {
	SalesPointID   uuid.UUID        `json:"sales_point_id" binding:"required"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
}

// ReportRequest is the request body for an X or Z report
type ReportRequest struct {
	Counts        map[string]decimal.Decimal `json:"counts"`
	Justification string                     `json:"justification"`
	Confirm       bool                       `json:"confirm"`
}

// MethodCounts resolves the wire names of the counted payment methods
func (r *ReportRequest) MethodCounts() (map[enum.PaymentMethod]decimal.Decimal, error) {
	counts := make(map[enum.PaymentMethod]decimal.Decimal, len(r.Counts))
	for name, amount := range r.Counts {
		method, err := enum.ParsePaymentMethod(name)
		if err != nil {
			return nil, apperror.NewFieldError("counts", err.Error())
		}
		counts[method] = amount
	}
	return counts, nil
}
