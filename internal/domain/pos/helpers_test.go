package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(price, qty, rate string) CartLine {
	return CartLine{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "item",
		UnitPrice:   dec(price),
		Quantity:    dec(qty),
		TaxRate:     dec(rate),
	}
}

func persistedLine(price, qty, rate string) CartLine {
	l := line(price, qty, rate)
	id := uuid.New()
	l.OrderLineID = &id
	return l
}

func item(name, price, rate string) Item {
	return Item{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: dec(price),
		TaxRate:   dec(rate),
	}
}
