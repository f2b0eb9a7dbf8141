package repository

import (
	"context"
	"time"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas.
// Las ventas nunca se borran; la única mutación permitida es la anulación.
type SaleRepository interface {
	// Create persiste la venta con sus líneas (misma transacción).
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID devuelve la venta con líneas, o domain.ErrNotFound si no existe
	// o pertenece a otro tenant (no se revela existencia ajena).
	GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Sale, error)
	// MarkVoided pasa la venta de COMPLETED a VOIDED. Si ya está anulada o no
	// está completada retorna domain.ErrConflict (guardia contra doble anulación).
	MarkVoided(ctx context.Context, scope domain.Scope, id, reason, actorID string, at time.Time) error
	ListByShift(ctx context.Context, scope domain.Scope, shiftID string) ([]*entity.Sale, error)
}
