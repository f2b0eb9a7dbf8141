package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo diario de movimientos sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, tenant_id, store_id, item_type, item_id, type, quantity, reason, reference_id, commit_token, occurred_at, created_by`

// Create persiste un movimiento del diario (append-only).
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.TenantID, movement.StoreID, movement.ItemType, movement.ItemID,
		movement.Type, movement.Quantity, nullIfEmpty(movement.Reason),
		nullIfEmpty(movement.ReferenceID), nullIfEmpty(movement.CommitToken),
		movement.OccurredAt, nullIfEmpty(movement.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByToken devuelve los movimientos de un commit token en orden de creación.
func (r *InventoryMovementRepo) ListByToken(ctx context.Context, scope domain.Scope, token string) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND store_id = $2 AND commit_token = $3
		ORDER BY occurred_at, id`
	rows, err := r.q.Query(ctx, query, scope.TenantID, scope.StoreID, token)
	if err != nil {
		return nil, fmt.Errorf("list movements by token: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByItem historial de un ítem, más reciente primero, con rango opcional.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, scope domain.Scope, itemType, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM inventory_movements
		WHERE tenant_id = $1 AND store_id = $2 AND item_type = $3 AND item_id = $4
		  AND ($5::timestamptz IS NULL OR occurred_at >= $5)
		  AND ($6::timestamptz IS NULL OR occurred_at <= $6)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $7 OFFSET $8`
	rows, err := r.q.Query(ctx, query, scope.TenantID, scope.StoreID, itemType, itemID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var reason, referenceID, commitToken, createdBy *string
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.StoreID, &m.ItemType, &m.ItemID,
			&m.Type, &m.Quantity, &reason, &referenceID, &commitToken,
			&m.OccurredAt, &createdBy,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Reason = deref(reason)
		m.ReferenceID = deref(referenceID)
		m.CommitToken = deref(commitToken)
		m.CreatedBy = deref(createdBy)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
