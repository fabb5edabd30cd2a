package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// MovementType classifies a stock ledger entry
type MovementType int

const (
	MovementTypeSale          MovementType = 0
	MovementTypeAdjustmentIn  MovementType = 1
	MovementTypeAdjustmentOut MovementType = 2
	MovementTypeReception     MovementType = 3
)

var movementTypeNames = [...]string{"sale", "adjustment_in", "adjustment_out", "reception"}

func (t MovementType) String() string {
	if t < 0 || int(t) >= len(movementTypeNames) {
		return "unknown"
	}
	return movementTypeNames[t]
}

func (t MovementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MovementType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	for i, name := range movementTypeNames {
		if name == str {
			*t = MovementType(i)
			return nil
		}
	}
	return nil
}

func (t MovementType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *MovementType) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*t = MovementType(v)
	case int:
		*t = MovementType(v)
	}
	return nil
}
