package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMethod identifies the tender used for a payment row
type PaymentMethod int

const (
	PaymentMethodCash          PaymentMethod = 0
	PaymentMethodOrangeMoney   PaymentMethod = 1
	PaymentMethodWave          PaymentMethod = 2
	PaymentMethodCard          PaymentMethod = 3
	PaymentMethodClientAccount PaymentMethod = 4
	PaymentMethodHotelTransfer PaymentMethod = 5
)

var paymentMethodNames = [...]string{"cash", "orange_money", "wave", "card", "client_account", "hotel_transfer"}

func (m PaymentMethod) String() string {
	if m < 0 || int(m) >= len(paymentMethodNames) {
		return "unknown"
	}
	return paymentMethodNames[m]
}

// ParsePaymentMethod resolves the wire name of a payment method
func ParsePaymentMethod(name string) (PaymentMethod, error) {
	for i, n := range paymentMethodNames {
		if n == name {
			return PaymentMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment method %q", name)
}

// PaymentMethods lists every supported method in declaration order
func PaymentMethods() []PaymentMethod {
	methods := make([]PaymentMethod, len(paymentMethodNames))
	for i := range paymentMethodNames {
		methods[i] = PaymentMethod(i)
	}
	return methods
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodCash
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
