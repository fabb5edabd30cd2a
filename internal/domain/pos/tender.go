package pos

import (
	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// Tender is one way of settling part of a ticket. Each variant carries only
// the fields its method needs.
type Tender interface {
	Method() enum.PaymentMethod
	Amount() decimal.Decimal
}

// CashTender is paid into the drawer; only cash counts towards expected cash
type CashTender struct{ Value decimal.Decimal }

func (t CashTender) Method() enum.PaymentMethod { return enum.PaymentMethodCash }
func (t CashTender) Amount() decimal.Decimal    { return t.Value }

// OrangeMoneyTender is an Orange Money mobile payment
type OrangeMoneyTender struct{ Value decimal.Decimal }

func (t OrangeMoneyTender) Method() enum.PaymentMethod { return enum.PaymentMethodOrangeMoney }
func (t OrangeMoneyTender) Amount() decimal.Decimal    { return t.Value }

// WaveTender is a Wave mobile payment
type WaveTender struct{ Value decimal.Decimal }

func (t WaveTender) Method() enum.PaymentMethod { return enum.PaymentMethodWave }
func (t WaveTender) Amount() decimal.Decimal    { return t.Value }

// CardTender is a bank card payment
type CardTender struct{ Value decimal.Decimal }

func (t CardTender) Method() enum.PaymentMethod { return enum.PaymentMethodCard }
func (t CardTender) Amount() decimal.Decimal    { return t.Value }

// ClientAccountTender charges a house account
type ClientAccountTender struct {
	Value    decimal.Decimal
	ClientID uuid.UUID
}

func (t ClientAccountTender) Method() enum.PaymentMethod { return enum.PaymentMethodClientAccount }
func (t ClientAccountTender) Amount() decimal.Decimal    { return t.Value }

// HotelTransferTender posts the amount onto an active hotel stay
type HotelTransferTender struct {
	Value  decimal.Decimal
	StayID uuid.UUID
}

func (t HotelTransferTender) Method() enum.PaymentMethod { return enum.PaymentMethodHotelTransfer }
func (t HotelTransferTender) Amount() decimal.Decimal    { return t.Value }

// ValidateTenders checks that the tenders settle total within one cent
func ValidateTenders(tenders []Tender, total decimal.Decimal) error {
	sum := decimal.Zero
	for _, t := range tenders {
		if t.Amount().IsNegative() {
			return ErrInvalidTender
		}
		sum = sum.Add(t.Amount())
	}
	if !WithinTolerance(sum, total) {
		return ErrPaymentMismatch
	}
	return nil
}
