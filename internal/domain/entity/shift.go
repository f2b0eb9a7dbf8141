package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un turno de caja. none -> OPEN -> CLOSED (terminal).
const (
	ShiftStatusOpen   = "OPEN"
	ShiftStatusClosed = "CLOSED"
)

// Shift representa el turno abierto/cerrado de un cajero en una tienda.
// A lo sumo un turno OPEN por tienda a la vez (invariante del repositorio).
// Una vez cerrado, el turno es inmutable.
type Shift struct {
	ID           string
	TenantID     string
	StoreID      string
	CashierID    string
	Status       string
	OpeningFloat decimal.Decimal
	OpenedAt     time.Time
	ClosedAt     *time.Time
	ClosedBy     string
	Notes        string
	// Totales por método de pago registrados al cierre (esperado vs contado).
	Totals []ShiftTotal
}

// ShiftTotal contado vs esperado por método de pago al cierre del turno.
type ShiftTotal struct {
	PaymentMethod string
	Expected      decimal.Decimal
	Counted       decimal.Decimal
	Variance      decimal.Decimal // Counted - Expected
}
