package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo implementación de ShiftRepository sobre PostgreSQL.
// El invariante "a lo sumo un turno OPEN por tienda" lo hace cumplir un índice
// único parcial (tenant_id, store_id) WHERE status = 'OPEN': dos aperturas
// concurrentes compiten en el INSERT y exactamente una gana.
type ShiftRepo struct {
	q Querier
}

// NewShiftRepository construye el adaptador. Pasar pool o tx (Querier).
func NewShiftRepository(q Querier) *ShiftRepo {
	return &ShiftRepo{q: q}
}

const shiftColumns = `id, tenant_id, store_id, cashier_id, status, opening_float, opened_at, closed_at, closed_by, notes`

// Create persiste el turno en estado OPEN. Si la tienda ya tiene un turno
// abierto el índice único parcial dispara 23505 -> domain.ErrConflict.
func (r *ShiftRepo) Create(ctx context.Context, shift *entity.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.New().String()
	}
	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		shift.ID, shift.TenantID, shift.StoreID, shift.CashierID, shift.Status,
		shift.OpeningFloat, shift.OpenedAt, shift.ClosedAt, nullIfEmpty(shift.ClosedBy),
		nullIfEmpty(shift.Notes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert shift: %w", err)
	}
	return nil
}

// GetByID devuelve el turno (con totales si está cerrado).
func (r *ShiftRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE id = $1 AND tenant_id = $2`
	shift, err := r.scanShift(r.q.QueryRow(ctx, query, id, scope.TenantID))
	if err != nil {
		return nil, err
	}
	totals, err := r.listTotals(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	shift.Totals = totals
	return shift, nil
}

// GetOpenByStore devuelve el turno abierto de la tienda o domain.ErrNotFound.
func (r *ShiftRepo) GetOpenByStore(ctx context.Context, scope domain.Scope) (*entity.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE tenant_id = $1 AND store_id = $2 AND status = $3`
	return r.scanShift(r.q.QueryRow(ctx, query, scope.TenantID, scope.StoreID, entity.ShiftStatusOpen))
}

// Close transiciona OPEN -> CLOSED y persiste los totales de cierre.
// La guardia de status en el WHERE evita el doble cierre bajo concurrencia.
func (r *ShiftRepo) Close(ctx context.Context, shift *entity.Shift) error {
	query := `
		UPDATE shifts
		SET status = $3, closed_at = $4, closed_by = $5, notes = $6
		WHERE id = $1 AND tenant_id = $2 AND status = $7`
	tag, err := r.q.Exec(ctx, query,
		shift.ID, shift.TenantID, entity.ShiftStatusClosed,
		shift.ClosedAt, nullIfEmpty(shift.ClosedBy), nullIfEmpty(shift.Notes),
		entity.ShiftStatusOpen,
	)
	if err != nil {
		return fmt.Errorf("close shift: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.q.QueryRow(ctx, `SELECT status FROM shifts WHERE id = $1 AND tenant_id = $2`, shift.ID, shift.TenantID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check shift status: %w", err)
		}
		return domain.ErrConflict
	}
	for _, t := range shift.Totals {
		insertTotal := `
			INSERT INTO shift_totals (shift_id, payment_method, expected, counted, variance)
			VALUES ($1, $2, $3, $4, $5)`
		if _, err := r.q.Exec(ctx, insertTotal, shift.ID, t.PaymentMethod, t.Expected, t.Counted, t.Variance); err != nil {
			return fmt.Errorf("insert shift total: %w", err)
		}
	}
	return nil
}

func (r *ShiftRepo) listTotals(ctx context.Context, shiftID string) ([]entity.ShiftTotal, error) {
	query := `
		SELECT payment_method, expected, counted, variance
		FROM shift_totals
		WHERE shift_id = $1
		ORDER BY payment_method`
	rows, err := r.q.Query(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("list shift totals: %w", err)
	}
	defer rows.Close()

	var out []entity.ShiftTotal
	for rows.Next() {
		var t entity.ShiftTotal
		if err := rows.Scan(&t.PaymentMethod, &t.Expected, &t.Counted, &t.Variance); err != nil {
			return nil, fmt.Errorf("scan shift total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ShiftRepo) scanShift(row pgx.Row) (*entity.Shift, error) {
	var s entity.Shift
	var closedBy, notes *string
	err := row.Scan(
		&s.ID, &s.TenantID, &s.StoreID, &s.CashierID, &s.Status,
		&s.OpeningFloat, &s.OpenedAt, &s.ClosedAt, &closedBy, &notes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan shift: %w", err)
	}
	s.ClosedBy = deref(closedBy)
	s.Notes = deref(notes)
	return &s, nil
}
