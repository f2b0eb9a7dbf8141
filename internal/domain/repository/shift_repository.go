package repository

import (
	"context"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
)

// ShiftRepository define el puerto de persistencia de turnos de caja.
// El invariante "a lo sumo un turno OPEN por tienda" se hace cumplir aquí,
// en el límite de la transacción (índice único parcial en PostgreSQL),
// no solo en memoria.
type ShiftRepository interface {
	// Create persiste el turno en estado OPEN. Si ya hay un turno abierto para
	// la tienda retorna domain.ErrConflict.
	Create(ctx context.Context, shift *entity.Shift) error
	GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Shift, error)
	// GetOpenByStore devuelve el turno abierto de la tienda o domain.ErrNotFound.
	GetOpenByStore(ctx context.Context, scope domain.Scope) (*entity.Shift, error)
	// Close transiciona OPEN -> CLOSED y persiste los totales de cierre.
	// Si el turno no está OPEN retorna domain.ErrConflict (guardia doble cierre).
	Close(ctx context.Context, shift *entity.Shift) error
}
