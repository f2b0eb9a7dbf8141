package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
// Las opciones y extras de cada línea se guardan como JSONB: son snapshots
// congelados al momento de la venta, nunca se consultan por separado.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleColumns = `id, tenant_id, store_id, shift_id, cashier_id, status, payment_method,
	subtotal, total, points_earned, commit_token, correlation_id, occurred_at, business_date,
	void_reason, voided_by, voided_at, created_at`

// Create persiste la venta con sus líneas (misma transacción).
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		sale.ID, sale.TenantID, sale.StoreID, nullIfEmpty(sale.ShiftID), sale.CashierID,
		sale.Status, sale.PaymentMethod, sale.Subtotal, sale.Total, sale.PointsEarned,
		sale.CommitToken, nullIfEmpty(sale.CorrelationID), sale.OccurredAt, sale.BusinessDate,
		nullIfEmpty(sale.VoidReason), nullIfEmpty(sale.VoidedBy), sale.VoidedAt, sale.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	for i, line := range sale.Lines {
		if err := r.createLine(ctx, sale.ID, i, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *SaleRepo) createLine(ctx context.Context, saleID string, position int, line *entity.SaleLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	optionsJSON, err := json.Marshal(line.Options)
	if err != nil {
		return fmt.Errorf("marshal line options: %w", err)
	}
	extrasJSON, err := json.Marshal(line.Extras)
	if err != nil {
		return fmt.Errorf("marshal line extras: %w", err)
	}
	query := `
		INSERT INTO sale_lines (id, sale_id, position, product_id, product_name, unit_price, quantity, options, extras, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.q.Exec(ctx, query,
		line.ID, saleID, position, line.ProductID, line.ProductName,
		line.UnitPrice, line.Quantity, optionsJSON, extrasJSON, line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

// GetByID devuelve la venta con líneas. Fuera del tenant se responde como
// inexistente (domain.ErrNotFound).
func (r *SaleRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE id = $1 AND tenant_id = $2`
	sale, err := r.scanSale(r.q.QueryRow(ctx, query, id, scope.TenantID))
	if err != nil {
		return nil, err
	}
	lines, err := r.listLines(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

// MarkVoided pasa la venta de COMPLETED a VOIDED; la guardia en el WHERE evita
// la doble anulación bajo concurrencia.
func (r *SaleRepo) MarkVoided(ctx context.Context, scope domain.Scope, id, reason, actorID string, at time.Time) error {
	query := `
		UPDATE sales
		SET status = $4, void_reason = $5, voided_by = $6, voided_at = $7
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	tag, err := r.q.Exec(ctx, query,
		id, scope.TenantID, entity.SaleStatusCompleted,
		entity.SaleStatusVoided, reason, actorID, at,
	)
	if err != nil {
		return fmt.Errorf("mark sale voided: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// distinguir inexistente de ya-anulada
		var status string
		err := r.q.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1 AND tenant_id = $2`, id, scope.TenantID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check sale status: %w", err)
		}
		return domain.ErrConflict
	}
	return nil
}

// ListByShift devuelve las ventas de un turno en orden cronológico, con líneas.
func (r *SaleRepo) ListByShift(ctx context.Context, scope domain.Scope, shiftID string) ([]*entity.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE tenant_id = $1 AND store_id = $2 AND shift_id = $3
		ORDER BY occurred_at`
	rows, err := r.q.Query(ctx, query, scope.TenantID, scope.StoreID, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list sales by shift: %w", err)
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		sale, err := r.scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sale := range out {
		lines, err := r.listLines(ctx, sale.ID)
		if err != nil {
			return nil, err
		}
		sale.Lines = lines
	}
	return out, nil
}

func (r *SaleRepo) listLines(ctx context.Context, saleID string) ([]*entity.SaleLine, error) {
	query := `
		SELECT id, product_id, product_name, unit_price, quantity, options, extras, subtotal
		FROM sale_lines
		WHERE sale_id = $1
		ORDER BY position`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.SaleLine
	for rows.Next() {
		var line entity.SaleLine
		var optionsJSON, extrasJSON []byte
		if err := rows.Scan(
			&line.ID, &line.ProductID, &line.ProductName, &line.UnitPrice,
			&line.Quantity, &optionsJSON, &extrasJSON, &line.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		line.SaleID = saleID
		if err := json.Unmarshal(optionsJSON, &line.Options); err != nil {
			return nil, fmt.Errorf("unmarshal line options: %w", err)
		}
		if err := json.Unmarshal(extrasJSON, &line.Extras); err != nil {
			return nil, fmt.Errorf("unmarshal line extras: %w", err)
		}
		out = append(out, &line)
	}
	return out, rows.Err()
}

func (r *SaleRepo) scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var shiftID, correlationID, voidReason, voidedBy *string
	err := row.Scan(
		&s.ID, &s.TenantID, &s.StoreID, &shiftID, &s.CashierID, &s.Status, &s.PaymentMethod,
		&s.Subtotal, &s.Total, &s.PointsEarned, &s.CommitToken, &correlationID,
		&s.OccurredAt, &s.BusinessDate, &voidReason, &voidedBy, &s.VoidedAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	s.ShiftID = deref(shiftID)
	s.CorrelationID = deref(correlationID)
	s.VoidReason = deref(voidReason)
	s.VoidedBy = deref(voidedBy)
	return &s, nil
}
