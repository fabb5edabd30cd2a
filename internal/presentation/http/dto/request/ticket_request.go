package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/sangkips/hospitality-pos/internal/domain/pos"
	"github.com/sangkips/hospitality-pos/pkg/apperror"
	"github.com/shopspring/decimal"
)

type OpenTicketRequest struct {
	SessionID uuid.UUID `json:"session_id" binding:"required"`
}

type RecallTicketRequest struct {
	OrderID   uuid.UUID `json:"order_id" binding:"required"`
	SessionID uuid.UUID `json:"session_id" binding:"required"`
}

// AddItemRequest adds a product to the cart; quantity defaults to one
type AddItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  *decimal.Decimal `json:"quantity"`
}

// QuantityOrOne returns the requested quantity, or one when none was sent
func (r *AddItemRequest) QuantityOrOne() decimal.Decimal {
	if r.Quantity == nil {
		return decimal.NewFromInt(1)
	}
	return *r.Quantity
}

type UpdateQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

type CancelLineRequest struct {
	Reason string `json:"reason"`
}

// AssignRequest picks a table, a client, both or neither. Sending an empty
// body is the explicit "no assignment" choice.
type AssignRequest struct {
	TableID  *uuid.UUID `json:"table_id"`
	ClientID *uuid.UUID `json:"client_id"`
}

// TenderRequest is one payment line. ClientID is required for client_account
// and StayID for hotel_transfer.
type TenderRequest struct {
	Method   string          `json:"method" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	ClientID *uuid.UUID      `json:"client_id"`
	StayID   *uuid.UUID      `json:"stay_id"`
}

// ToTender converts the wire tender into its typed variant
func (r TenderRequest) ToTender() (pos.Tender, error) {
	method, err := enum.ParsePaymentMethod(r.Method)
	if err != nil {
		return nil, apperror.NewFieldError("payments", err.Error())
	}

	switch method {
	case enum.PaymentMethodCash:
		return pos.CashTender{Value: r.Amount}, nil
	case enum.PaymentMethodOrangeMoney:
		return pos.OrangeMoneyTender{Value: r.Amount}, nil
	case enum.PaymentMethodWave:
		return pos.WaveTender{Value: r.Amount}, nil
	case enum.PaymentMethodCard:
		return pos.CardTender{Value: r.Amount}, nil
	case enum.PaymentMethodClientAccount:
		if r.ClientID == nil {
			return nil, apperror.NewFieldError("payments", "client_id is required for a client account payment")
		}
		return pos.ClientAccountTender{Value: r.Amount, ClientID: *r.ClientID}, nil
	case enum.PaymentMethodHotelTransfer:
		if r.StayID == nil {
			return nil, apperror.NewFieldError("payments", "stay_id is required for a hotel transfer")
		}
		return pos.HotelTransferTender{Value: r.Amount, StayID: *r.StayID}, nil
	}
	return nil, apperror.NewFieldError("payments", "unsupported payment method "+r.Method)
}

type PayRequest struct {
	Payments []TenderRequest `json:"payments" binding:"required,min=1,dive"`
}

// Tenders converts every payment line, stopping at the first invalid one
func (r *PayRequest) Tenders() ([]pos.Tender, error) {
	tenders := make([]pos.Tender, 0, len(r.Payments))
	for _, p := range r.Payments {
		t, err := p.ToTender()
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, nil
}

type CancelTicketRequest struct {
	Reason  string `json:"reason"`
	Confirm bool   `json:"confirm"`
}

type SplitByAmountRequest struct {
	Amounts []decimal.Decimal `json:"amounts" binding:"required,min=1"`
}

type SplitByProductRequest struct {
	Assignments []pos.ProductAssignment `json:"assignments" binding:"required,min=1"`
}
