package dto

import "github.com/shopspring/decimal"

// SelectedOption opción elegida dentro de un grupo de selección del producto.
type SelectedOption struct {
	GroupID  string `json:"group_id"`
	OptionID string `json:"option_id"`
}

// SelectedExtra extra agregado a una línea.
type SelectedExtra struct {
	ExtraID  string          `json:"extra_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateSaleLineRequest una línea de producto con su personalización.
type CreateSaleLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Options   []SelectedOption `json:"options,omitempty"`
	Extras    []SelectedExtra  `json:"extras,omitempty"`
}

// CreateSaleRequest petición de creación de venta.
type CreateSaleRequest struct {
	PaymentMethod string                  `json:"payment_method"`
	Lines         []CreateSaleLineRequest `json:"lines"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
}

// VoidSaleRequest petición de anulación. El PIN de gerente autoriza la operación.
type VoidSaleRequest struct {
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

// SaleLineOptionResponse opción congelada en una línea persistida.
type SaleLineOptionResponse struct {
	GroupID    string          `json:"group_id"`
	OptionID   string          `json:"option_id"`
	OptionName string          `json:"option_name"`
	Surcharge  decimal.Decimal `json:"surcharge"`
}

// SaleLineExtraResponse extra congelado en una línea persistida.
type SaleLineExtraResponse struct {
	ExtraID   string          `json:"extra_id"`
	ExtraName string          `json:"extra_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SaleLineResponse línea de venta con precios congelados.
type SaleLineResponse struct {
	ID          string                   `json:"id"`
	ProductID   string                   `json:"product_id"`
	ProductName string                   `json:"product_name"`
	UnitPrice   decimal.Decimal          `json:"unit_price"`
	Quantity    decimal.Decimal          `json:"quantity"`
	Options     []SaleLineOptionResponse `json:"options,omitempty"`
	Extras      []SaleLineExtraResponse  `json:"extras,omitempty"`
	Subtotal    decimal.Decimal          `json:"subtotal"`
}

// SaleResponse venta persistida.
type SaleResponse struct {
	ID            string             `json:"id"`
	StoreID       string             `json:"store_id"`
	ShiftID       string             `json:"shift_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Total         decimal.Decimal    `json:"total"`
	PointsEarned  int64              `json:"points_earned"`
	CorrelationID string             `json:"correlation_id"`
	OccurredAt    string             `json:"occurred_at"`
	BusinessDate  string             `json:"business_date"`
	VoidReason    string             `json:"void_reason,omitempty"`
	VoidedAt      string             `json:"voided_at,omitempty"`
	Lines         []SaleLineResponse `json:"lines"`
}

// VoidSaleResult resultado de la anulación. Warnings lista los efectos
// laterales que no pudieron revertirse (la venta queda anulada igualmente:
// es la fuente de verdad de "transacción revertida").
type VoidSaleResult struct {
	Sale     SaleResponse `json:"sale"`
	Warnings []string     `json:"warnings,omitempty"`
}
