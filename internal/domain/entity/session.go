package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/hospitality-pos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// POSSession is one cashier's cash drawer for one sales point on one business day.
// The partial unique index allows a single active session per employee, sales point and day.
type POSSession struct {
	ID             uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	SalesPointID   uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_pos_session_active,where:status = 0" json:"sales_point_id"`
	EmployeeID     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_pos_session_active,where:status = 0" json:"employee_id"`
	BusinessDay    time.Time          `gorm:"type:date;not null;uniqueIndex:idx_pos_session_active,where:status = 0" json:"business_day"`
	OpenedAt       time.Time          `gorm:"not null" json:"opened_at"`
	OpeningBalance decimal.Decimal    `gorm:"type:numeric(14,2);not null;default:0" json:"opening_balance"`
	ClosedAt       *time.Time         `json:"closed_at,omitempty"`
	ClosingBalance *decimal.Decimal   `gorm:"type:numeric(14,2)" json:"closing_balance,omitempty"`
	Status         enum.SessionStatus `gorm:"default:0;index" json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new session
func (s *POSSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the POSSession model
func (POSSession) TableName() string {
	return "pos_sessions"
}

// IsActive reports whether the session still accepts sales
func (s *POSSession) IsActive() bool {
	return s.Status == enum.SessionStatusActive
}

// SessionReport is the persisted snapshot of a finalized X or Z reconciliation
type SessionReport struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SessionID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"session_id"`
	ReportType     enum.ReportType `gorm:"size:1;not null" json:"report_type"`
	TotalSales     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_sales"`
	OrderCount     int             `gorm:"not null" json:"order_count"`
	ExpectedCash   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"expected_cash"`
	TotalVariance  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_variance"`
	PaymentSummary datatypes.JSON  `gorm:"type:jsonb" json:"payment_summary"`
	Counts         datatypes.JSON  `gorm:"type:jsonb" json:"counts"`
	Justification  *string         `gorm:"type:text" json:"justification,omitempty"`
	EmployeeID     uuid.UUID       `gorm:"type:uuid;not null" json:"employee_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new report
func (r *SessionReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SessionReport model
func (SessionReport) TableName() string {
	return "session_reports"
}
