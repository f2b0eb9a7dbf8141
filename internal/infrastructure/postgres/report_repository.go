package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo proyecciones de solo lectura con SQL agregado.
// Siempre va directo al pool: los reportes no participan en transacciones.
type ReportRepo struct {
	pool *pgxpool.Pool
	tz   string
}

// NewReportRepository construye el adaptador. tz es la zona horaria IANA de
// la tienda, usada para la distribución horaria.
func NewReportRepository(pool *pgxpool.Pool, tz string) *ReportRepo {
	if tz == "" {
		tz = "UTC"
	}
	return &ReportRepo{pool: pool, tz: tz}
}

// GetDailySummary totales del día de negocio: ventas completadas y anuladas
// se reportan por separado; el neto excluye las anuladas.
func (r *ReportRepo) GetDailySummary(ctx context.Context, scope domain.Scope, businessDate string) (*repository.DailySummaryResult, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = $4),
			COUNT(*) FILTER (WHERE status = $5),
			COALESCE(SUM(total) FILTER (WHERE status = $4), 0),
			COALESCE(SUM(total) FILTER (WHERE status = $5), 0),
			COALESCE(SUM(points_earned) FILTER (WHERE status = $4), 0)
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2 AND business_date = $3`
	result := &repository.DailySummaryResult{BusinessDate: businessDate}
	err := r.pool.QueryRow(ctx, query,
		scope.TenantID, scope.StoreID, businessDate,
		entity.SaleStatusCompleted, entity.SaleStatusVoided,
	).Scan(&result.SaleCount, &result.VoidCount, &result.GrossTotal, &result.VoidedTotal, &result.PointsEarned)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	result.NetTotal = result.GrossTotal
	return result, nil
}

// GetTopProducts productos más vendidos por unidades en el rango.
func (r *ReportRepo) GetTopProducts(ctx context.Context, scope domain.Scope, fromDate, toDate string, limit int) ([]repository.TopProductResult, error) {
	query := `
		SELECT l.product_id, MAX(l.product_name), SUM(l.quantity), SUM(l.subtotal)
		FROM sale_lines l
		JOIN sales s ON s.id = l.sale_id
		WHERE s.tenant_id = $1 AND s.store_id = $2
		  AND s.business_date BETWEEN $3 AND $4
		  AND s.status = $5
		GROUP BY l.product_id
		ORDER BY SUM(l.quantity) DESC, l.product_id
		LIMIT $6`
	rows, err := r.pool.Query(ctx, query, scope.TenantID, scope.StoreID, fromDate, toDate, entity.SaleStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.UnitsSold, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSalesByPaymentMethod totales por método de pago (solo completadas).
func (r *ReportRepo) GetSalesByPaymentMethod(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.PaymentMethodResult, error) {
	query := `
		SELECT payment_method, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2
		  AND business_date BETWEEN $3 AND $4
		  AND status = $5
		GROUP BY payment_method
		ORDER BY SUM(total) DESC`
	rows, err := r.pool.Query(ctx, query, scope.TenantID, scope.StoreID, fromDate, toDate, entity.SaleStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("sales by payment method: %w", err)
	}
	defer rows.Close()

	var out []repository.PaymentMethodResult
	for rows.Next() {
		var row repository.PaymentMethodResult
		if err := rows.Scan(&row.PaymentMethod, &row.SaleCount, &row.Total); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetHourlyDistribution ventas por hora local de la tienda.
func (r *ReportRepo) GetHourlyDistribution(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.HourlyResult, error) {
	query := `
		SELECT EXTRACT(HOUR FROM occurred_at AT TIME ZONE $6)::int AS hour, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2
		  AND business_date BETWEEN $3 AND $4
		  AND status = $5
		GROUP BY hour
		ORDER BY hour`
	rows, err := r.pool.Query(ctx, query, scope.TenantID, scope.StoreID, fromDate, toDate, entity.SaleStatusCompleted, r.tz)
	if err != nil {
		return nil, fmt.Errorf("hourly distribution: %w", err)
	}
	defer rows.Close()

	var out []repository.HourlyResult
	for rows.Next() {
		var row repository.HourlyResult
		if err := rows.Scan(&row.Hour, &row.SaleCount, &row.Total); err != nil {
			return nil, fmt.Errorf("scan hourly row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSalesByCashier totales por cajero (solo completadas).
func (r *ReportRepo) GetSalesByCashier(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.CashierResult, error) {
	query := `
		SELECT cashier_id, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2
		  AND business_date BETWEEN $3 AND $4
		  AND status = $5
		GROUP BY cashier_id
		ORDER BY SUM(total) DESC`
	rows, err := r.pool.Query(ctx, query, scope.TenantID, scope.StoreID, fromDate, toDate, entity.SaleStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("sales by cashier: %w", err)
	}
	defer rows.Close()

	var out []repository.CashierResult
	for rows.Next() {
		var row repository.CashierResult
		if err := rows.Scan(&row.CashierID, &row.SaleCount, &row.Total); err != nil {
			return nil, fmt.Errorf("scan cashier row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetVoidReasons anulaciones agrupadas por motivo.
func (r *ReportRepo) GetVoidReasons(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.VoidReasonResult, error) {
	query := `
		SELECT COALESCE(void_reason, ''), COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2
		  AND business_date BETWEEN $3 AND $4
		  AND status = $5
		GROUP BY void_reason
		ORDER BY COUNT(*) DESC`
	rows, err := r.pool.Query(ctx, query, scope.TenantID, scope.StoreID, fromDate, toDate, entity.SaleStatusVoided)
	if err != nil {
		return nil, fmt.Errorf("void reasons: %w", err)
	}
	defer rows.Close()

	var out []repository.VoidReasonResult
	for rows.Next() {
		var row repository.VoidReasonResult
		if err := rows.Scan(&row.Reason, &row.VoidCount, &row.VoidedTotal); err != nil {
			return nil, fmt.Errorf("scan void reason: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetShiftReports resumen por turno: ventas, anulaciones y variancia de caja.
func (r *ReportRepo) GetShiftReports(ctx context.Context, scope domain.Scope, fromDate, toDate string) ([]repository.ShiftReportResult, error) {
	query := `
		SELECT
			sh.id,
			sh.cashier_id,
			COUNT(s.id) FILTER (WHERE s.status = $5),
			COUNT(s.id) FILTER (WHERE s.status = $6),
			COALESCE(SUM(s.total) FILTER (WHERE s.status = $5), 0),
			COALESCE(MAX(st.variance), 0)
		FROM shifts sh
		LEFT JOIN sales s ON s.shift_id = sh.id
		LEFT JOIN shift_totals st ON st.shift_id = sh.id AND st.payment_method = $7
		WHERE sh.tenant_id = $1 AND sh.store_id = $2
		  AND (sh.opened_at AT TIME ZONE $8)::date BETWEEN $3::date AND $4::date
		GROUP BY sh.id, sh.cashier_id
		ORDER BY sh.id`
	rows, err := r.pool.Query(ctx, query,
		scope.TenantID, scope.StoreID, fromDate, toDate,
		entity.SaleStatusCompleted, entity.SaleStatusVoided, entity.PaymentCash, r.tz,
	)
	if err != nil {
		return nil, fmt.Errorf("shift reports: %w", err)
	}
	defer rows.Close()

	var out []repository.ShiftReportResult
	for rows.Next() {
		var row repository.ShiftReportResult
		if err := rows.Scan(&row.ShiftID, &row.CashierID, &row.SaleCount, &row.VoidCount, &row.Total, &row.CashVariance); err != nil {
			return nil, fmt.Errorf("scan shift report: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
