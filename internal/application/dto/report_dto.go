package dto

import "github.com/shopspring/decimal"

// DailySummaryResponse totales de un día de negocio.
type DailySummaryResponse struct {
	BusinessDate string          `json:"business_date"`
	SaleCount    int64           `json:"sale_count"`
	VoidCount    int64           `json:"void_count"`
	GrossTotal   decimal.Decimal `json:"gross_total"`
	VoidedTotal  decimal.Decimal `json:"voided_total"`
	NetTotal     decimal.Decimal `json:"net_total"`
	PointsEarned int64           `json:"points_earned"`
}

// TopProductResponse producto con unidades vendidas e ingresos del período.
type TopProductResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   decimal.Decimal `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// PaymentMethodReportResponse totales por método de pago.
type PaymentMethodReportResponse struct {
	PaymentMethod string          `json:"payment_method"`
	SaleCount     int64           `json:"sale_count"`
	Total         decimal.Decimal `json:"total"`
}

// HourlyReportResponse ventas por hora local de la tienda.
type HourlyReportResponse struct {
	Hour      int             `json:"hour"`
	SaleCount int64           `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

// CashierReportResponse totales por cajero.
type CashierReportResponse struct {
	CashierID string          `json:"cashier_id"`
	SaleCount int64           `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

// VoidReasonReportResponse anulaciones agrupadas por motivo.
type VoidReasonReportResponse struct {
	Reason      string          `json:"reason"`
	VoidCount   int64           `json:"void_count"`
	VoidedTotal decimal.Decimal `json:"voided_total"`
}

// ShiftReportResponse resumen por turno del período.
type ShiftReportResponse struct {
	ShiftID      string          `json:"shift_id"`
	CashierID    string          `json:"cashier_id"`
	SaleCount    int64           `json:"sale_count"`
	VoidCount    int64           `json:"void_count"`
	Total        decimal.Decimal `json:"total"`
	CashVariance decimal.Decimal `json:"cash_variance"`
}
