package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
	"github.com/invorya/pos-api/pkg/logger"
)

// LedgerUseCase es el único camino por el que cambian los saldos de inventario.
// Cada saldo tienda+ítem se muta bajo bloqueo de fila (SELECT FOR UPDATE) o
// chequeo optimista de versión; el perdedor reintenta una vez contra el saldo
// fresco antes de reportar conflicto.
type LedgerUseCase struct {
	txRunner     TxRunner
	balanceRepo  repository.InventoryBalanceRepository
	movementRepo repository.InventoryMovementRepository
	clock        ports.Clock
	audit        ports.AuditLogger
	log          *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	balanceRepo repository.InventoryBalanceRepository,
	movementRepo repository.InventoryMovementRepository,
	clock ports.Clock,
	audit ports.AuditLogger,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:     txRunner,
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		clock:        clock,
		audit:        audit,
		log:          log,
	}
}

// ConsumeLine una línea a consumir del inventario de la tienda.
type ConsumeLine struct {
	ItemType string
	ItemID   string
	Quantity decimal.Decimal
}

// AdjustInventory aplica una corrección manual (delta, puede ser negativo).
// Crea la fila de saldo si no existe (el ítem pasa a estar controlado).
// Si el resultado quedaría negativo retorna InventoryAdjustmentConflictError.
func (uc *LedgerUseCase) AdjustInventory(ctx context.Context, scope domain.Scope, in dto.AdjustInventoryRequest, actor domain.Actor) (*entity.InventoryBalance, error) {
	if in.ItemID == "" || in.Delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	itemType := normalizeItemType(in.ItemType)
	if itemType == "" {
		return nil, domain.ErrInvalidInput
	}

	now := uc.clock.UtcNow()
	var result *entity.InventoryBalance
	err := uc.txRunner.Run(ctx, func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		// Bloquea la fila de saldo para evitar condiciones de carrera
		balance, err := balanceRepo.GetForUpdate(ctx, scope, itemType, in.ItemID)
		if err != nil {
			return err
		}
		before := balance
		if balance == nil {
			balance = newBalance(scope, itemType, in.ItemID)
		}
		newOnHand := balance.OnHand.Add(in.Delta)
		if newOnHand.IsNegative() {
			return &domain.InventoryAdjustmentConflictError{
				ItemType:  itemType,
				ItemID:    in.ItemID,
				OnHand:    balance.OnHand,
				Requested: in.Delta,
			}
		}
		balance.OnHand = newOnHand
		balance.UpdatedAt = now
		if err := balanceRepo.Save(ctx, balance); err != nil {
			return err
		}
		mov := &entity.InventoryMovement{
			ID:         uuid.New().String(),
			TenantID:   scope.TenantID,
			StoreID:    scope.StoreID,
			ItemType:   itemType,
			ItemID:     in.ItemID,
			Type:       entity.MovementTypeAdjustment,
			Quantity:   in.Delta,
			Reason:     in.Reason,
			OccurredAt: now,
			CreatedBy:  actor.UserID,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		result = balance
		uc.logAudit(ctx, scope, "AdjustInventory", actor.UserID, "", itemType+":"+in.ItemID, before, balance, in.Reason)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetInventoryBalance fija el saldo en un valor absoluto (toma física).
// Usa chequeo optimista: si otro escritor modificó la fila entre la lectura y
// la escritura, reintenta una vez contra el saldo fresco y luego reporta
// domain.ErrConflict.
func (uc *LedgerUseCase) SetInventoryBalance(ctx context.Context, scope domain.Scope, in dto.SetInventoryBalanceRequest, actor domain.Actor) (*entity.InventoryBalance, error) {
	if in.ItemID == "" || in.OnHand.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	itemType := normalizeItemType(in.ItemType)
	if itemType == "" {
		return nil, domain.ErrInvalidInput
	}

	var result *entity.InventoryBalance
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		result, err = uc.setBalanceOnce(ctx, scope, itemType, in.ItemID, in.OnHand, actor)
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	return result, err
}

func (uc *LedgerUseCase) setBalanceOnce(ctx context.Context, scope domain.Scope, itemType, itemID string, newOnHand decimal.Decimal, actor domain.Actor) (*entity.InventoryBalance, error) {
	now := uc.clock.UtcNow()
	var result *entity.InventoryBalance
	err := uc.txRunner.Run(ctx, func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		balance, err := balanceRepo.Get(ctx, scope, itemType, itemID)
		if err != nil {
			return err
		}
		before := balance
		if balance == nil {
			balance = newBalance(scope, itemType, itemID)
		}
		delta := newOnHand.Sub(balance.OnHand)
		balance.OnHand = newOnHand
		balance.UpdatedAt = now
		// Save falla con ErrConflict si la versión leída ya no es la actual
		if err := balanceRepo.Save(ctx, balance); err != nil {
			return err
		}
		mov := &entity.InventoryMovement{
			ID:         uuid.New().String(),
			TenantID:   scope.TenantID,
			StoreID:    scope.StoreID,
			ItemType:   itemType,
			ItemID:     itemID,
			Type:       entity.MovementTypeSet,
			Quantity:   delta,
			Reason:     "stock-take",
			OccurredAt: now,
			CreatedBy:  actor.UserID,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
		result = balance
		uc.logAudit(ctx, scope, "SetInventoryBalance", actor.UserID, "", itemType+":"+itemID, before, balance, "")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConsumeForSaleInTx decrementa el saldo de cada línea dentro de la transacción
// del caller (mismo patrón que una salida de facturación: si retorna error, el
// caller hace rollback y ningún saldo queda tocado). Todo-o-nada por venta.
// Los ítems sin fila de saldo no están controlados y se saltan en silencio.
// Las filas se bloquean en orden estable de ítem para evitar deadlocks.
func (uc *LedgerUseCase) ConsumeForSaleInTx(
	ctx context.Context,
	balanceRepo repository.InventoryBalanceRepository,
	movementRepo repository.InventoryMovementRepository,
	scope domain.Scope,
	saleID, commitToken string,
	lines []ConsumeLine,
	actorID string,
	now time.Time,
) error {
	merged := mergeLines(lines)
	for _, line := range merged {
		balance, err := balanceRepo.GetForUpdate(ctx, scope, line.ItemType, line.ItemID)
		if err != nil {
			return err
		}
		if balance == nil {
			// ítem no controlado: nunca bloquea la venta
			continue
		}
		if balance.OnHand.LessThan(line.Quantity) {
			return &domain.ItemUnavailableError{
				ItemType:     line.ItemType,
				ItemID:       line.ItemID,
				Reason:       domain.ReasonUnavailableInStore,
				AvailableQty: balance.OnHand,
			}
		}
		balance.OnHand = balance.OnHand.Sub(line.Quantity)
		balance.UpdatedAt = now
		if err := balanceRepo.Save(ctx, balance); err != nil {
			return err
		}
		mov := &entity.InventoryMovement{
			ID:          uuid.New().String(),
			TenantID:    scope.TenantID,
			StoreID:     scope.StoreID,
			ItemType:    line.ItemType,
			ItemID:      line.ItemID,
			Type:        entity.MovementTypeSaleOut,
			Quantity:    line.Quantity.Neg(),
			ReferenceID: saleID,
			CommitToken: commitToken,
			OccurredAt:  now,
			CreatedBy:   actorID,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return err
		}
	}
	return nil
}

// ReverseForSaleInTx re-incrementa el saldo de cada línea consumida bajo el
// token, dentro de la transacción del caller. Idempotente: si el token ya fue
// revertido, no hace nada (reversed=false) sin error.
func (uc *LedgerUseCase) ReverseForSaleInTx(
	ctx context.Context,
	balanceRepo repository.InventoryBalanceRepository,
	movementRepo repository.InventoryMovementRepository,
	scope domain.Scope,
	saleID, commitToken string,
	actorID string,
	now time.Time,
) (bool, error) {
	if commitToken == "" {
		return false, nil
	}
	movements, err := movementRepo.ListByToken(ctx, scope, commitToken)
	if err != nil {
		return false, err
	}
	var outs []*entity.InventoryMovement
	for _, mov := range movements {
		switch mov.Type {
		case entity.MovementTypeSaleReversal:
			// ya revertido: no-op
			return false, nil
		case entity.MovementTypeSaleOut:
			outs = append(outs, mov)
		}
	}
	for _, out := range outs {
		balance, err := balanceRepo.GetForUpdate(ctx, scope, out.ItemType, out.ItemID)
		if err != nil {
			return false, err
		}
		if balance == nil {
			// la fila nunca se borra; si falta, el consumo no pasó por el libro
			balance = newBalance(scope, out.ItemType, out.ItemID)
		}
		qty := out.Quantity.Neg() // el consumo se guardó negativo
		balance.OnHand = balance.OnHand.Add(qty)
		balance.UpdatedAt = now
		if err := balanceRepo.Save(ctx, balance); err != nil {
			return false, err
		}
		mov := &entity.InventoryMovement{
			ID:          uuid.New().String(),
			TenantID:    scope.TenantID,
			StoreID:     scope.StoreID,
			ItemType:    out.ItemType,
			ItemID:      out.ItemID,
			Type:        entity.MovementTypeSaleReversal,
			Quantity:    qty,
			ReferenceID: saleID,
			CommitToken: commitToken,
			OccurredAt:  now,
			CreatedBy:   actorID,
		}
		if err := movementRepo.Create(ctx, mov); err != nil {
			return false, err
		}
	}
	return len(outs) > 0, nil
}

// ReverseForSale versión standalone de la reversión (transacción propia).
// Usada por caminos de recuperación cuando la venta no se pudo persistir
// después de un consumo ya confirmado.
func (uc *LedgerUseCase) ReverseForSale(ctx context.Context, scope domain.Scope, saleID, commitToken, actorID string) error {
	now := uc.clock.UtcNow()
	return uc.txRunner.Run(ctx, func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
	) error {
		_, err := uc.ReverseForSaleInTx(ctx, balanceRepo, movementRepo, scope, saleID, commitToken, actorID, now)
		return err
	})
}

// GetBalance lectura simple del saldo. ErrNotFound si el ítem no está controlado.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error) {
	balance, err := uc.balanceRepo.Get(ctx, scope, normalizeItemType(itemType), itemID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, domain.ErrNotFound
	}
	return balance, nil
}

// ListBalances lista los saldos de la tienda (paginado).
func (uc *LedgerUseCase) ListBalances(ctx context.Context, scope domain.Scope, page dto.PageRequest) ([]*entity.InventoryBalance, error) {
	page.DefaultPage()
	return uc.balanceRepo.ListByStore(ctx, scope, page.Limit, page.Offset)
}

// ListMovements lista el diario de un ítem (paginado, rango opcional).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, scope domain.Scope, itemType, itemID string, from, to *time.Time, page dto.PageRequest) ([]*entity.InventoryMovement, error) {
	page.DefaultPage()
	return uc.movementRepo.ListByItem(ctx, scope, normalizeItemType(itemType), itemID, from, to, page.Limit, page.Offset)
}

// logAudit emite el registro de auditoría sin afectar la operación principal.
// El contexto se desacopla de la cancelación del request.
func (uc *LedgerUseCase) logAudit(ctx context.Context, scope domain.Scope, action, actorID, correlationID, entityID string, before, after *entity.InventoryBalance, notes string) {
	entry := &entity.AuditEntry{
		ID:            uuid.New().String(),
		TenantID:      scope.TenantID,
		StoreID:       scope.StoreID,
		Action:        action,
		ActorID:       actorID,
		CorrelationID: correlationID,
		EntityType:    "inventory_balance",
		EntityID:      entityID,
		Before:        marshalSnapshot(before),
		After:         marshalSnapshot(after),
		Source:        "pos-core",
		Notes:         notes,
		CreatedAt:     uc.clock.UtcNow(),
	}
	if err := uc.audit.Log(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("entity_id", entityID).Msg("auditoría no registrada")
	}
}

func marshalSnapshot(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func newBalance(scope domain.Scope, itemType, itemID string) *entity.InventoryBalance {
	return &entity.InventoryBalance{
		TenantID: scope.TenantID,
		StoreID:  scope.StoreID,
		ItemType: itemType,
		ItemID:   itemID,
		OnHand:   decimal.Zero,
		Reserved: decimal.Zero,
	}
}

func normalizeItemType(s string) string {
	switch s {
	case "", entity.ItemTypeProduct:
		return entity.ItemTypeProduct
	case entity.ItemTypeExtra:
		return entity.ItemTypeExtra
	}
	return ""
}

// mergeLines consolida cantidades por ítem y ordena de forma estable
// para que consumos concurrentes bloqueen filas en el mismo orden.
func mergeLines(lines []ConsumeLine) []ConsumeLine {
	byKey := make(map[string]ConsumeLine)
	for _, line := range lines {
		key := line.ItemType + ":" + line.ItemID
		if acc, ok := byKey[key]; ok {
			acc.Quantity = acc.Quantity.Add(line.Quantity)
			byKey[key] = acc
		} else {
			byKey[key] = line
		}
	}
	merged := make([]ConsumeLine, 0, len(byKey))
	for _, line := range byKey {
		merged = append(merged, line)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].ItemType != merged[j].ItemType {
			return merged[i].ItemType < merged[j].ItemType
		}
		return merged[i].ItemID < merged[j].ItemID
	})
	return merged
}
