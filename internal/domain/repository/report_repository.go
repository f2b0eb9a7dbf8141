package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/invorya/pos-api/internal/domain"
)

// DailySummaryResult totales de un día de negocio.
type DailySummaryResult struct {
	BusinessDate string
	SaleCount    int64
	VoidCount    int64
	GrossTotal   decimal.Decimal // ventas completadas
	VoidedTotal  decimal.Decimal // monto anulado
	NetTotal     decimal.Decimal // GrossTotal (las anuladas se excluyen)
	PointsEarned int64
}

// TopProductResult unidades e ingresos por producto en el período.
type TopProductResult struct {
	ProductID   string
	ProductName string
	UnitsSold   decimal.Decimal
	Revenue     decimal.Decimal
}

// PaymentMethodResult totales por método de pago.
type PaymentMethodResult struct {
	PaymentMethod string
	SaleCount     int64
	Total         decimal.Decimal
}

// HourlyResult distribución de ventas por hora local de la tienda.
type HourlyResult struct {
	Hour      int
	SaleCount int64
	Total     decimal.Decimal
}

// CashierResult totales por cajero.
type CashierResult struct {
	CashierID string
	SaleCount int64
	Total     decimal.Decimal
}

// VoidReasonResult anulaciones agrupadas por motivo.
type VoidReasonResult struct {
	Reason      string
	VoidCount   int64
	VoidedTotal decimal.Decimal
}

// ShiftReportResult resumen de un turno: ventas, anulaciones y variancia de cierre.
type ShiftReportResult struct {
	ShiftID      string
	CashierID    string
	SaleCount    int64
	VoidCount    int64
	Total        decimal.Decimal
	CashVariance decimal.Decimal
}

// ReportRepository consultas de solo lectura sobre ventas y turnos persistidos,
// filtradas por rango de fecha de negocio (YYYY-MM-DD, inclusive) y tienda.
// Proyecciones puras: sin efectos sobre el estado.
type ReportRepository interface {
	GetDailySummary(ctx context.Context, scope domain.Scope, businessDate string) (*DailySummaryResult, error)
	GetTopProducts(ctx context.Context, scope domain.Scope, fromDate, toDate string, limit int) ([]TopProductResult, error)
	GetSalesByPaymentMethod(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]PaymentMethodResult, error)
	GetHourlyDistribution(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]HourlyResult, error)
	GetSalesByCashier(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]CashierResult, error)
	GetVoidReasons(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]VoidReasonResult, error)
	GetShiftReports(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]ShiftReportResult, error)
}
