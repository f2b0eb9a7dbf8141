package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. La transición es de una sola vía:
// COMPLETED -> VOIDED (a lo sumo una vez). Una venta nunca se borra.
const (
	SaleStatusCompleted = "COMPLETED"
	SaleStatusVoided    = "VOIDED"
)

// Métodos de pago aceptados en el POS.
const (
	PaymentCash     = "CASH"
	PaymentCard     = "CARD"
	PaymentTransfer = "TRANSFER"
	PaymentOther    = "OTHER"
)

// Sale representa una transacción de venta completada (o anulada).
type Sale struct {
	ID            string
	TenantID      string
	StoreID       string
	ShiftID       string
	CashierID     string
	Status        string
	PaymentMethod string
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	PointsEarned  int64
	// CommitToken referencia el consumo de inventario de esta venta;
	// se usa para revertir exactamente ese consumo al anular.
	CommitToken   string
	CorrelationID string
	OccurredAt    time.Time
	// BusinessDate es la fecha de negocio (YYYY-MM-DD) según la zona horaria
	// y la hora de corte de la tienda, no la fecha calendario UTC.
	BusinessDate string
	VoidReason   string
	VoidedBy     string
	VoidedAt     *time.Time
	CreatedAt    time.Time
	Lines        []*SaleLine
}

// SaleLine representa una línea de producto dentro de una venta, con su
// personalización. El precio queda congelado al momento de la venta.
type SaleLine struct {
	ID          string
	SaleID      string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal // precio base + recargos de opciones, congelado
	Quantity    decimal.Decimal
	Options     []SaleLineOption
	Extras      []SaleLineExtra
	Subtotal    decimal.Decimal
}

// SaleLineOption una opción de personalización elegida (ítem de un grupo de selección).
type SaleLineOption struct {
	GroupID    string
	OptionID   string
	OptionName string
	Surcharge  decimal.Decimal
}

// SaleLineExtra un extra agregado a la línea, con precio congelado.
type SaleLineExtra struct {
	ExtraID   string
	ExtraName string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
}
