package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is one customer transaction persisted from a ticket.
// TotalAmount always equals Subtotal + TaxAmount and the sum of the non-voided lines.
type Order struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber   string             `gorm:"size:50;uniqueIndex;not null" json:"order_number"`
	SalesPointID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"sales_point_id"`
	SessionID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"session_id"`
	EmployeeID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"employee_id"`
	TableID       *uuid.UUID         `gorm:"type:uuid;index" json:"table_id,omitempty"`
	ClientID      *uuid.UUID         `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Subtotal      decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	TaxAmount     decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"tax_amount"`
	TotalAmount   decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	Status        enum.OrderStatus   `gorm:"default:0;index" json:"status"`
	PaymentStatus enum.PaymentStatus `gorm:"default:0;index" json:"payment_status"`
	IsOnHold      bool               `gorm:"default:false" json:"is_on_hold"`
	HeldAt        *time.Time         `json:"held_at,omitempty"`
	PrintCount    int                `gorm:"default:0" json:"print_count"`
	LastPrintedAt *time.Time         `json:"last_printed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// ActiveLines returns the lines that still count towards the order totals
func (o *Order) ActiveLines() []OrderLine {
	var lines []OrderLine
	for _, l := range o.Lines {
		if !l.IsVoided {
			lines = append(lines, l)
		}
	}
	return lines
}

// OrderLine is one product line of an order. Lines are never deleted once persisted;
// a void only flips IsVoided.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"subtotal"`
	TaxAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"tax_amount"`
	Total       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total"`
	IsVoided    bool            `gorm:"default:false;index" json:"is_voided"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new order line
func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}

// Payment records one tender applied to an order
type Payment struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"order_id"`
	SessionID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"session_id"`
	Method      enum.PaymentMethod `gorm:"not null" json:"payment_method"`
	Amount      decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"amount"`
	ClientID    *uuid.UUID         `gorm:"type:uuid" json:"client_id,omitempty"`
	HotelStayID *uuid.UUID         `gorm:"type:uuid" json:"hotel_stay_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// VoidLogEntry is the immutable audit record of a voided line or ticket
type VoidLogEntry struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	OrderLineID  *uuid.UUID      `gorm:"type:uuid;index" json:"order_line_id,omitempty"`
	ProductName  string          `gorm:"size:255" json:"product_name"`
	Quantity     decimal.Decimal `gorm:"type:numeric(14,3)" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_price"`
	Total        decimal.Decimal `gorm:"type:numeric(14,2)" json:"total"`
	EmployeeID   uuid.UUID       `gorm:"type:uuid;not null" json:"employee_id"`
	Reason       string          `gorm:"type:text;not null" json:"reason"`
	SalesPointID uuid.UUID       `gorm:"type:uuid;not null;index" json:"sales_point_id"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new void log entry
func (v *VoidLogEntry) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the VoidLogEntry model
func (VoidLogEntry) TableName() string {
	return "void_log_entries"
}
