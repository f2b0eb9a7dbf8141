package dto

import "github.com/shopspring/decimal"

// OpenShiftRequest apertura de turno con fondo inicial de caja.
type OpenShiftRequest struct {
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

// CloseShiftRequest cierre de turno con los montos contados por método de pago.
type CloseShiftRequest struct {
	Counted map[string]decimal.Decimal `json:"counted"`
	Notes   string                     `json:"notes,omitempty"`
}

// ShiftTotalResponse esperado vs contado por método de pago.
type ShiftTotalResponse struct {
	PaymentMethod string          `json:"payment_method"`
	Expected      decimal.Decimal `json:"expected"`
	Counted       decimal.Decimal `json:"counted"`
	Variance      decimal.Decimal `json:"variance"`
}

// ShiftResponse turno persistido.
type ShiftResponse struct {
	ID           string               `json:"id"`
	StoreID      string               `json:"store_id"`
	CashierID    string               `json:"cashier_id"`
	Status       string               `json:"status"`
	OpeningFloat decimal.Decimal      `json:"opening_float"`
	OpenedAt     string               `json:"opened_at"`
	ClosedAt     string               `json:"closed_at,omitempty"`
	ClosedBy     string               `json:"closed_by,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	Totals       []ShiftTotalResponse `json:"totals,omitempty"`
}

// ClosePreviewResponse proyección pura del cierre: efectivo esperado
// (fondo inicial + ventas en efectivo, anuladas excluidas) y totales esperados
// por método de pago. Llamable repetidamente sin mutar estado.
type ClosePreviewResponse struct {
	ShiftID      string                     `json:"shift_id"`
	OpeningFloat decimal.Decimal            `json:"opening_float"`
	ExpectedCash decimal.Decimal            `json:"expected_cash"`
	Expected     map[string]decimal.Decimal `json:"expected"`
	SaleCount    int64                      `json:"sale_count"`
	VoidCount    int64                      `json:"void_count"`
}
