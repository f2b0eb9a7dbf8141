package inventory

import (
	"context"

	"github.com/invorya/pos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el libro de inventario:
// o se aplican todos las mutaciones de saldo de la operación, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error) error
}
