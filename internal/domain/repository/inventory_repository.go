package repository

import (
	"context"
	"time"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
)

// InventoryBalanceRepository define el puerto para consultar/actualizar saldos
// por tienda+ítem. Usado dentro de transacciones para garantizar consistencia.
type InventoryBalanceRepository interface {
	// Get devuelve el saldo o nil si el ítem no está controlado en la tienda.
	Get(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Devuelve nil si no existe.
	GetForUpdate(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error)
	// Save inserta (Version==0) o actualiza con chequeo optimista: la fila debe
	// seguir en la Version leída; si otro escritor ganó, retorna domain.ErrConflict.
	// En ambos casos la Version persistida queda incrementada en uno.
	Save(ctx context.Context, balance *entity.InventoryBalance) error
	ListByStore(ctx context.Context, scope domain.Scope, limit, offset int) ([]*entity.InventoryBalance, error)
}

// InventoryMovementRepository define el puerto de persistencia del diario de
// movimientos de inventario (append-only).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListByToken devuelve los movimientos registrados bajo un commit token,
	// en orden de creación. Incluye consumos y reversiones.
	ListByToken(ctx context.Context, scope domain.Scope, token string) ([]*entity.InventoryMovement, error)
	ListByItem(ctx context.Context, scope domain.Scope, itemType, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
}
