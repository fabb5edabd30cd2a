package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus int

const (
	OrderStatusDraft     OrderStatus = 0
	OrderStatusPending   OrderStatus = 1
	OrderStatusCompleted OrderStatus = 2
	OrderStatusVoided    OrderStatus = 3
)

var orderStatusNames = [...]string{"draft", "pending", "completed", "voided"}

func (s OrderStatus) String() string {
	if s < 0 || int(s) >= len(orderStatusNames) {
		return "unknown"
	}
	return orderStatusNames[s]
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusVoided
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderStatus(i)
		return nil
	}
	switch str {
	case "draft":
		*s = OrderStatusDraft
	case "pending":
		*s = OrderStatusPending
	case "completed":
		*s = OrderStatusCompleted
	case "voided":
		*s = OrderStatusVoided
	}
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	}
	return nil
}
