package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.InventoryBalanceRepository = (*InventoryBalanceRepo)(nil)

// InventoryBalanceRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryBalanceRepo struct {
	q Querier
}

// NewInventoryBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryBalanceRepository(q Querier) *InventoryBalanceRepo {
	return &InventoryBalanceRepo{q: q}
}

const balanceColumns = `tenant_id, store_id, item_type, item_id, on_hand, reserved, version, updated_at`

// Get devuelve el saldo o nil si el ítem no está controlado en la tienda.
func (r *InventoryBalanceRepo) Get(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND store_id = $2 AND item_type = $3 AND item_id = $4`
	return r.scanOne(ctx, query, scope.TenantID, scope.StoreID, itemType, itemID)
}

// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryBalanceRepo) GetForUpdate(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND store_id = $2 AND item_type = $3 AND item_id = $4
		FOR UPDATE`
	return r.scanOne(ctx, query, scope.TenantID, scope.StoreID, itemType, itemID)
}

// Save inserta (Version==0) o actualiza con chequeo optimista de versión.
// Si la fila ya no está en la versión leída retorna domain.ErrConflict.
func (r *InventoryBalanceRepo) Save(ctx context.Context, balance *entity.InventoryBalance) error {
	if balance.Version == 0 {
		query := `
			INSERT INTO inventory_balances (tenant_id, store_id, item_type, item_id, on_hand, reserved, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, 1, now())`
		_, err := r.q.Exec(ctx, query,
			balance.TenantID, balance.StoreID, balance.ItemType, balance.ItemID,
			balance.OnHand, balance.Reserved,
		)
		if err != nil {
			if isUniqueViolation(err) {
				// otro escritor insertó primero
				return domain.ErrConflict
			}
			return fmt.Errorf("insert balance: %w", err)
		}
		balance.Version = 1
		return nil
	}

	query := `
		UPDATE inventory_balances
		SET on_hand = $5, reserved = $6, version = version + 1, updated_at = now()
		WHERE tenant_id = $1 AND store_id = $2 AND item_type = $3 AND item_id = $4
		  AND version = $7`
	tag, err := r.q.Exec(ctx, query,
		balance.TenantID, balance.StoreID, balance.ItemType, balance.ItemID,
		balance.OnHand, balance.Reserved, balance.Version,
	)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	balance.Version++
	return nil
}

// ListByStore lista los saldos de la tienda ordenados por tipo e ítem.
func (r *InventoryBalanceRepo) ListByStore(ctx context.Context, scope domain.Scope, limit, offset int) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances
		WHERE tenant_id = $1 AND store_id = $2
		ORDER BY item_type, item_id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, scope.TenantID, scope.StoreID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var out []*entity.InventoryBalance
	for rows.Next() {
		var b entity.InventoryBalance
		if err := rows.Scan(
			&b.TenantID, &b.StoreID, &b.ItemType, &b.ItemID,
			&b.OnHand, &b.Reserved, &b.Version, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *InventoryBalanceRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&b.TenantID, &b.StoreID, &b.ItemType, &b.ItemID,
		&b.OnHand, &b.Reserved, &b.Version, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// sin fila = ítem no controlado en esta tienda
			return nil, nil
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}
