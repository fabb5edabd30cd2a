package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus int

const (
	PaymentStatusPending   PaymentStatus = 0
	PaymentStatusPaid      PaymentStatus = 1
	PaymentStatusCancelled PaymentStatus = 2
	PaymentStatusVoided    PaymentStatus = 3
)

var paymentStatusNames = [...]string{"pending", "paid", "cancelled", "voided"}

func (s PaymentStatus) String() string {
	if s < 0 || int(s) >= len(paymentStatusNames) {
		return "unknown"
	}
	return paymentStatusNames[s]
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	for i, name := range paymentStatusNames {
		if name == str {
			*s = PaymentStatus(i)
			return nil
		}
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
