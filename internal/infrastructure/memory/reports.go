package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*reportRepo)(nil)

// reportRepo calcula las proyecciones recorriendo ventas y turnos en memoria.
// Mismos resultados que las consultas agregadas del almacén PostgreSQL.
type reportRepo struct {
	s *Store
}

func (r *reportRepo) GetDailySummary(ctx context.Context, scope domain.Scope, businessDate string) (*repository.DailySummaryResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := &repository.DailySummaryResult{
		BusinessDate: businessDate,
		GrossTotal:   decimal.Zero,
		VoidedTotal:  decimal.Zero,
		NetTotal:     decimal.Zero,
	}
	for _, sl := range r.salesInRangeLocked(scope, businessDate, businessDate) {
		if sl.Status == entity.SaleStatusVoided {
			result.VoidCount++
			result.VoidedTotal = result.VoidedTotal.Add(sl.Total)
			continue
		}
		result.SaleCount++
		result.GrossTotal = result.GrossTotal.Add(sl.Total)
		result.PointsEarned += sl.PointsEarned
	}
	result.NetTotal = result.GrossTotal
	return result, nil
}

func (r *reportRepo) GetTopProducts(ctx context.Context, scope domain.Scope, fromDate, toDate string, limit int) ([]repository.TopProductResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byProduct := make(map[string]*repository.TopProductResult)
	for _, sl := range r.salesInRangeLocked(scope, fromDate, toDate) {
		if sl.Status != entity.SaleStatusCompleted {
			continue
		}
		for _, line := range sl.Lines {
			agg, ok := byProduct[line.ProductID]
			if !ok {
				agg = &repository.TopProductResult{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					UnitsSold:   decimal.Zero,
					Revenue:     decimal.Zero,
				}
				byProduct[line.ProductID] = agg
			}
			agg.UnitsSold = agg.UnitsSold.Add(line.Quantity)
			agg.Revenue = agg.Revenue.Add(line.Subtotal)
		}
	}
	out := make([]repository.TopProductResult, 0, len(byProduct))
	for _, agg := range byProduct {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnitsSold.Equal(out[j].UnitsSold) {
			return out[i].UnitsSold.GreaterThan(out[j].UnitsSold)
		}
		return out[i].ProductID < out[j].ProductID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *reportRepo) GetSalesByPaymentMethod(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.PaymentMethodResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byMethod := make(map[string]*repository.PaymentMethodResult)
	for _, sl := range r.salesInRangeLocked(scope, fromDate, toDate) {
		if sl.Status != entity.SaleStatusCompleted {
			continue
		}
		agg, ok := byMethod[sl.PaymentMethod]
		if !ok {
			agg = &repository.PaymentMethodResult{PaymentMethod: sl.PaymentMethod, Total: decimal.Zero}
			byMethod[sl.PaymentMethod] = agg
		}
		agg.SaleCount++
		agg.Total = agg.Total.Add(sl.Total)
	}
	out := make([]repository.PaymentMethodResult, 0, len(byMethod))
	for _, agg := range byMethod {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (r *reportRepo) GetHourlyDistribution(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.HourlyResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byHour := make(map[int]*repository.HourlyResult)
	for _, sl := range r.salesInRangeLocked(scope, fromDate, toDate) {
		if sl.Status != entity.SaleStatusCompleted {
			continue
		}
		// hora local de la tienda, no UTC
		hour := sl.OccurredAt.In(r.s.loc).Hour()
		agg, ok := byHour[hour]
		if !ok {
			agg = &repository.HourlyResult{Hour: hour, Total: decimal.Zero}
			byHour[hour] = agg
		}
		agg.SaleCount++
		agg.Total = agg.Total.Add(sl.Total)
	}
	out := make([]repository.HourlyResult, 0, len(byHour))
	for _, agg := range byHour {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out, nil
}

func (r *reportRepo) GetSalesByCashier(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.CashierResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byCashier := make(map[string]*repository.CashierResult)
	for _, sl := range r.salesInRangeLocked(scope, fromDate, toDate) {
		if sl.Status != entity.SaleStatusCompleted {
			continue
		}
		agg, ok := byCashier[sl.CashierID]
		if !ok {
			agg = &repository.CashierResult{CashierID: sl.CashierID, Total: decimal.Zero}
			byCashier[sl.CashierID] = agg
		}
		agg.SaleCount++
		agg.Total = agg.Total.Add(sl.Total)
	}
	out := make([]repository.CashierResult, 0, len(byCashier))
	for _, agg := range byCashier {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

func (r *reportRepo) GetVoidReasons(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.VoidReasonResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byReason := make(map[string]*repository.VoidReasonResult)
	for _, sl := range r.salesInRangeLocked(scope, fromDate, toDate) {
		if sl.Status != entity.SaleStatusVoided {
			continue
		}
		agg, ok := byReason[sl.VoidReason]
		if !ok {
			agg = &repository.VoidReasonResult{Reason: sl.VoidReason, VoidedTotal: decimal.Zero}
			byReason[sl.VoidReason] = agg
		}
		agg.VoidCount++
		agg.VoidedTotal = agg.VoidedTotal.Add(sl.Total)
	}
	out := make([]repository.VoidReasonResult, 0, len(byReason))
	for _, agg := range byReason {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoidCount > out[j].VoidCount })
	return out, nil
}

func (r *reportRepo) GetShiftReports(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.ShiftReportResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repository.ShiftReportResult
	for _, sh := range r.s.shifts {
		if sh.TenantID != scope.TenantID || sh.StoreID != scope.StoreID {
			continue
		}
		opened := sh.OpenedAt.In(r.s.loc).Format("2006-01-02")
		if opened < fromDate || opened > toDate {
			continue
		}
		row := repository.ShiftReportResult{
			ShiftID:      sh.ID,
			CashierID:    sh.CashierID,
			Total:        decimal.Zero,
			CashVariance: decimal.Zero,
		}
		for _, t := range sh.Totals {
			if t.PaymentMethod == entity.PaymentCash {
				row.CashVariance = t.Variance
			}
		}
		for _, sl := range r.s.sales {
			if sl.TenantID != scope.TenantID || sl.ShiftID != sh.ID {
				continue
			}
			if sl.Status == entity.SaleStatusVoided {
				row.VoidCount++
				continue
			}
			row.SaleCount++
			row.Total = row.Total.Add(sl.Total)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftID < out[j].ShiftID })
	return out, nil
}

func (r *reportRepo) salesInRangeLocked(scope domain.Scope, fromDate, toDate string) []*entity.Sale {
	var out []*entity.Sale
	for _, sl := range r.s.sales {
		if sl.TenantID != scope.TenantID || sl.StoreID != scope.StoreID {
			continue
		}
		if sl.BusinessDate < fromDate || sl.BusinessDate > toDate {
			continue
		}
		out = append(out, sl)
	}
	return out
}
