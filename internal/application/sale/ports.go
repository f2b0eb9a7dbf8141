package sale

import (
	"context"

	"github.com/invorya/pos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de inventario y de ventas. El consumo de stock y la persistencia
// de la venta comparten la misma transacción: ningún lector observa inventario
// descontado sin venta registrada, ni venta sin su consumo.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
		saleRepo repository.SaleRepository,
	) error) error
}
