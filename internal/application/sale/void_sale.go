package sale

import (
	"context"
	"errors"
	"fmt"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

// VoidResult resultado de una anulación. La venta queda VOIDED aunque alguna
// reversión de efectos laterales falle: en ese caso la falla se registra y se
// reporta en Warnings (éxito parcial), nunca se descarta en silencio.
type VoidResult struct {
	Sale     *entity.Sale
	Warnings []string
}

// VoidSale revierte la cadena de la venta en orden inverso: inventario,
// puntos de fidelidad y por último el estado de la venta. La reversión de
// inventario y la de puntos se intentan ambas aunque una falle.
func (uc *UseCase) VoidSale(ctx context.Context, scope domain.Scope, actor domain.Actor, saleID string, in dto.VoidSaleRequest) (*VoidResult, error) {
	if in.Reason == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.verifyManagerPIN(in.ManagerPIN); err != nil {
		return nil, err
	}

	// 1) Cargar la venta en el alcance del tenant (ajena => ErrNotFound)
	before, err := uc.saleRepo.GetByID(ctx, scope, saleID)
	if err != nil {
		return nil, err
	}
	if before.Status != entity.SaleStatusCompleted {
		// ya anulada (u otro estado): la transición es de una sola vía
		return nil, domain.ErrConflict
	}

	now := uc.clock.UtcNow()
	var warnings []string

	// 2) Reversión de inventario + marca VOIDED en una transacción. Si la
	// reversión falla, la marca se confirma sola: la venta es la fuente de
	// verdad de "transacción revertida" y la falla queda como warning.
	err = uc.txRunner.RunSale(ctx, func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		if _, err := uc.ledger.ReverseForSaleInTx(ctx, balanceRepo, movementRepo, scope, saleID, before.CommitToken, actor.UserID, now); err != nil {
			return err
		}
		return saleRepo.MarkVoided(ctx, scope, saleID, in.Reason, actor.UserID, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// otro caller anuló primero; su reversión ya quedó confirmada
			return nil, domain.ErrConflict
		}
		warnings = append(warnings, fmt.Sprintf("inventario no revertido: %v", err))
		uc.log.Error().Err(err).Str("sale_id", saleID).Msg("reversión de inventario falló durante la anulación")
		if err := uc.markVoidedOnly(ctx, scope, saleID, in.Reason, actor.UserID); err != nil {
			return nil, err
		}
	}

	// 3) Reversión de puntos de fidelidad, exactamente los otorgados.
	// Independiente de la reversión de inventario: se intenta igual.
	if before.PointsEarned > 0 {
		if err := uc.points.ReversePoints(context.WithoutCancel(ctx), saleID, before.PointsEarned, before.CashierID, before.OccurredAt); err != nil {
			warnings = append(warnings, fmt.Sprintf("puntos no revertidos: %v", err))
			uc.log.Error().Err(err).Str("sale_id", saleID).Int64("points", before.PointsEarned).Msg("reversión de puntos falló durante la anulación")
		}
	}

	after, err := uc.saleRepo.GetByID(ctx, scope, saleID)
	if err != nil {
		return nil, err
	}

	// 4) Auditoría best-effort con snapshot antes/después
	uc.logAudit(ctx, scope, "VoidSale", actor.UserID, before.CorrelationID, saleID, before, after, in.Reason)

	return &VoidResult{Sale: after, Warnings: warnings}, nil
}

// markVoidedOnly confirma la marca VOIDED en su propia transacción cuando la
// reversión de inventario no pudo aplicarse.
func (uc *UseCase) markVoidedOnly(ctx context.Context, scope domain.Scope, saleID, reason, actorID string) error {
	now := uc.clock.UtcNow()
	return uc.txRunner.RunSale(ctx, func(
		_ repository.InventoryBalanceRepository,
		_ repository.InventoryMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		return saleRepo.MarkVoided(ctx, scope, saleID, reason, actorID, now)
	})
}
