package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// SessionStatus is the state of a cashier session
type SessionStatus int

const (
	SessionStatusActive SessionStatus = 0
	SessionStatusClosed SessionStatus = 1
)

func (s SessionStatus) String() string {
	if s == SessionStatusClosed {
		return "closed"
	}
	return "active"
}

func (s SessionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SessionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "closed" {
		*s = SessionStatusClosed
	} else {
		*s = SessionStatusActive
	}
	return nil
}

func (s SessionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SessionStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*s = SessionStatus(v)
	case int:
		*s = SessionStatus(v)
	}
	return nil
}

// ReportType distinguishes checkpoint (X) from closing (Z) reconciliation
type ReportType string

const (
	ReportTypeX ReportType = "X"
	ReportTypeZ ReportType = "Z"
)

// TableStatus is the occupancy of a restaurant table
type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
)
