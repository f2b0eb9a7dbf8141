package reporting

import (
	"context"
	"time"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/repository"
)

// UseCase proyecciones de solo lectura sobre ventas y turnos persistidos.
// Los períodos se expresan en fechas de negocio (YYYY-MM-DD), no en fechas
// calendario UTC.
type UseCase struct {
	reportRepo repository.ReportRepository
}

// NewUseCase construye el caso de uso de reportes.
func NewUseCase(reportRepo repository.ReportRepository) *UseCase {
	return &UseCase{reportRepo: reportRepo}
}

const dateLayout = "2006-01-02"

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func validRange(from, to string) error {
	if !validDate(from) || !validDate(to) || from > to {
		return domain.ErrInvalidInput
	}
	return nil
}

// GetDailySummary totales del día de negocio indicado.
func (uc *UseCase) GetDailySummary(ctx context.Context, scope domain.Scope, businessDate string) (*dto.DailySummaryResponse, error) {
	if !validDate(businessDate) {
		return nil, domain.ErrInvalidInput
	}
	row, err := uc.reportRepo.GetDailySummary(ctx, scope, businessDate)
	if err != nil {
		return nil, err
	}
	return &dto.DailySummaryResponse{
		BusinessDate: row.BusinessDate,
		SaleCount:    row.SaleCount,
		VoidCount:    row.VoidCount,
		GrossTotal:   row.GrossTotal,
		VoidedTotal:  row.VoidedTotal,
		NetTotal:     row.NetTotal,
		PointsEarned: row.PointsEarned,
	}, nil
}

// GetTopProducts productos más vendidos del período, por unidades.
func (uc *UseCase) GetTopProducts(ctx context.Context, scope domain.Scope, from, to string, limit int) ([]dto.TopProductResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := uc.reportRepo.GetTopProducts(ctx, scope, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductResponse{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			UnitsSold:   r.UnitsSold,
			Revenue:     r.Revenue,
		})
	}
	return out, nil
}

// GetSalesByPaymentMethod totales del período por método de pago.
func (uc *UseCase) GetSalesByPaymentMethod(ctx context.Context, scope domain.Scope, from, to string) ([]dto.PaymentMethodReportResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.GetSalesByPaymentMethod(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaymentMethodReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PaymentMethodReportResponse{
			PaymentMethod: r.PaymentMethod,
			SaleCount:     r.SaleCount,
			Total:         r.Total,
		})
	}
	return out, nil
}

// GetHourlyDistribution ventas por hora local de la tienda.
func (uc *UseCase) GetHourlyDistribution(ctx context.Context, scope domain.Scope, from, to string) ([]dto.HourlyReportResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.GetHourlyDistribution(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HourlyReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.HourlyReportResponse{Hour: r.Hour, SaleCount: r.SaleCount, Total: r.Total})
	}
	return out, nil
}

// GetSalesByCashier totales del período por cajero.
func (uc *UseCase) GetSalesByCashier(ctx context.Context, scope domain.Scope, from, to string) ([]dto.CashierReportResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.GetSalesByCashier(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashierReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CashierReportResponse{CashierID: r.CashierID, SaleCount: r.SaleCount, Total: r.Total})
	}
	return out, nil
}

// GetVoidReasons anulaciones del período agrupadas por motivo.
func (uc *UseCase) GetVoidReasons(ctx context.Context, scope domain.Scope, from, to string) ([]dto.VoidReasonReportResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.GetVoidReasons(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VoidReasonReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.VoidReasonReportResponse{Reason: r.Reason, VoidCount: r.VoidCount, VoidedTotal: r.VoidedTotal})
	}
	return out, nil
}

// GetShiftReports resumen por turno del período (ventas, anulaciones, variancia).
func (uc *UseCase) GetShiftReports(ctx context.Context, scope domain.Scope, from, to string) ([]dto.ShiftReportResponse, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	rows, err := uc.reportRepo.GetShiftReports(ctx, scope, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShiftReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ShiftReportResponse{
			ShiftID:      r.ShiftID,
			CashierID:    r.CashierID,
			SaleCount:    r.SaleCount,
			VoidCount:    r.VoidCount,
			Total:        r.Total,
			CashVariance: r.CashVariance,
		})
	}
	return out, nil
}
