package sale

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
	"github.com/invorya/pos-api/pkg/logger"
)

// Policy política de la tienda para el motor de ventas.
type Policy struct {
	// ShiftRequired exige un turno abierto para crear ventas.
	ShiftRequired bool
	// PointsRate puntos de fidelidad otorgados por unidad monetaria vendida.
	PointsRate decimal.Decimal
	// ManagerPINHash hash bcrypt del PIN de gerente que autoriza anulaciones.
	// Vacío = anulación sin PIN.
	ManagerPINHash string
}

// UseCase orquesta la creación y anulación de ventas, coordinando el libro de
// inventario, el snapshot de catálogo, la reversión de puntos y la auditoría.
type UseCase struct {
	txRunner  TxRunner
	ledger    *inventory.LedgerUseCase
	saleRepo  repository.SaleRepository
	shiftRepo repository.ShiftRepository
	catalog   ports.CatalogProvider
	points    ports.PointsReverser
	clock     ports.Clock
	audit     ports.AuditLogger
	log       *logger.Logger
	policy    Policy
}

// NewUseCase construye el motor de ventas.
func NewUseCase(
	txRunner TxRunner,
	ledger *inventory.LedgerUseCase,
	saleRepo repository.SaleRepository,
	shiftRepo repository.ShiftRepository,
	catalog ports.CatalogProvider,
	points ports.PointsReverser,
	clock ports.Clock,
	audit ports.AuditLogger,
	log *logger.Logger,
	policy Policy,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		saleRepo:  saleRepo,
		shiftRepo: shiftRepo,
		catalog:   catalog,
		points:    points,
		clock:     clock,
		audit:     audit,
		log:       log,
		policy:    policy,
	}
}

// CreateSale valida contra el snapshot de catálogo, congela precios, consume
// inventario y persiste la venta como COMPLETED — todo en una transacción.
// Cualquier falla después de trabajo parcial deja cero estado persistido.
func (uc *UseCase) CreateSale(ctx context.Context, scope domain.Scope, actor domain.Actor, in dto.CreateSaleRequest) (*entity.Sale, error) {
	if err := validateCreateRequest(in); err != nil {
		return nil, err
	}

	// 1) Turno abierto de la tienda (puerta de entrada según política)
	shiftID := ""
	shift, err := uc.shiftRepo.GetOpenByStore(ctx, scope)
	switch {
	case err == nil:
		shiftID = shift.ID
	case errors.Is(err, domain.ErrNotFound):
		if uc.policy.ShiftRequired {
			return nil, domain.ErrShiftRequired
		}
	default:
		return nil, err
	}

	now := uc.clock.UtcNow()
	saleID := uuid.New().String()
	commitToken := uuid.New().String()
	correlationID := in.CorrelationID
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	// 2) Resolución de catálogo y cómputo de precios congelados (solo lectura,
	// fuera de la transacción: ningún lock se sostiene a través de esta llamada)
	saleEntity, consumeLines, err := uc.buildSale(ctx, scope, actor, in, saleID, shiftID, commitToken, correlationID, now)
	if err != nil {
		return nil, err
	}

	// 3) Consumo de inventario + persistencia de la venta, misma transacción.
	// Si inventario falla (ej: sin stock) se retorna el error y se hace rollback:
	// ni venta huérfana ni decremento parcial.
	err = uc.txRunner.RunSale(ctx, func(
		balanceRepo repository.InventoryBalanceRepository,
		movementRepo repository.InventoryMovementRepository,
		saleRepo repository.SaleRepository,
	) error {
		if err := uc.ledger.ConsumeForSaleInTx(ctx, balanceRepo, movementRepo, scope, saleID, commitToken, consumeLines, actor.UserID, now); err != nil {
			return err
		}
		return saleRepo.Create(ctx, saleEntity)
	})
	if err != nil {
		return nil, err
	}

	// 4) Auditoría best-effort (before=null): su falla no revierte la venta
	uc.logAudit(ctx, scope, "CreateSale", actor.UserID, correlationID, saleEntity.ID, nil, saleEntity, "")
	return saleEntity, nil
}

// GetSale devuelve la venta con sus líneas (alcance del tenant del caller).
func (uc *UseCase) GetSale(ctx context.Context, scope domain.Scope, id string) (*entity.Sale, error) {
	return uc.saleRepo.GetByID(ctx, scope, id)
}

// buildSale resuelve cada producto/extra/selección contra el catálogo y arma
// la venta con precios congelados, más las líneas de consumo de inventario.
func (uc *UseCase) buildSale(
	ctx context.Context,
	scope domain.Scope,
	actor domain.Actor,
	in dto.CreateSaleRequest,
	saleID, shiftID, commitToken, correlationID string,
	now time.Time,
) (*entity.Sale, []inventory.ConsumeLine, error) {
	var lines []*entity.SaleLine
	var consume []inventory.ConsumeLine
	subtotal := decimal.Zero
	extrasTotal := decimal.Zero

	for _, reqLine := range in.Lines {
		product, err := uc.catalog.ResolveProduct(ctx, scope, reqLine.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !product.Active {
			return nil, nil, &domain.ItemUnavailableError{ItemType: entity.ItemTypeProduct, ItemID: product.ID, Reason: domain.ReasonInactive}
		}
		if !product.Available {
			return nil, nil, &domain.ItemUnavailableError{ItemType: entity.ItemTypeProduct, ItemID: product.ID, Reason: domain.ReasonUnavailableInStore}
		}

		options, surcharges, err := resolveOptions(product, reqLine.Options)
		if err != nil {
			return nil, nil, err
		}

		unitPrice := product.Price.Add(surcharges)
		lineSubtotal := unitPrice.Mul(reqLine.Quantity)

		var extras []entity.SaleLineExtra
		for _, reqExtra := range reqLine.Extras {
			if !reqExtra.Quantity.IsPositive() {
				return nil, nil, domain.ErrInvalidInput
			}
			extra, err := uc.catalog.ResolveExtra(ctx, scope, reqExtra.ExtraID)
			if err != nil {
				return nil, nil, err
			}
			if !extra.Active {
				return nil, nil, &domain.ItemUnavailableError{ItemType: entity.ItemTypeExtra, ItemID: extra.ID, Reason: domain.ReasonInactive}
			}
			if !extra.Available {
				return nil, nil, &domain.ItemUnavailableError{ItemType: entity.ItemTypeExtra, ItemID: extra.ID, Reason: domain.ReasonUnavailableInStore}
			}
			extras = append(extras, entity.SaleLineExtra{
				ExtraID:   extra.ID,
				ExtraName: extra.Name,
				UnitPrice: extra.Price,
				Quantity:  reqExtra.Quantity,
			})
			extrasTotal = extrasTotal.Add(extra.Price.Mul(reqExtra.Quantity))
			consume = append(consume, inventory.ConsumeLine{
				ItemType: entity.ItemTypeExtra,
				ItemID:   extra.ID,
				Quantity: reqExtra.Quantity,
			})
		}

		lines = append(lines, &entity.SaleLine{
			ID:          uuid.New().String(),
			SaleID:      saleID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   unitPrice,
			Quantity:    reqLine.Quantity,
			Options:     options,
			Extras:      extras,
			Subtotal:    lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
		consume = append(consume, inventory.ConsumeLine{
			ItemType: entity.ItemTypeProduct,
			ItemID:   product.ID,
			Quantity: reqLine.Quantity,
		})
	}

	// total = suma de subtotales de línea + extras
	total := subtotal.Add(extrasTotal)
	points := int64(0)
	if uc.policy.PointsRate.IsPositive() {
		points = total.Mul(uc.policy.PointsRate).Floor().IntPart()
	}

	return &entity.Sale{
		ID:            saleID,
		TenantID:      scope.TenantID,
		StoreID:       scope.StoreID,
		ShiftID:       shiftID,
		CashierID:     actor.UserID,
		Status:        entity.SaleStatusCompleted,
		PaymentMethod: in.PaymentMethod,
		Subtotal:      subtotal,
		Total:         total,
		PointsEarned:  points,
		CommitToken:   commitToken,
		CorrelationID: correlationID,
		OccurredAt:    now,
		BusinessDate:  uc.clock.BusinessDate(now),
		CreatedAt:     now,
		Lines:         lines,
	}, consume, nil
}

// resolveOptions valida las selecciones contra los grupos del producto
// (min/max y opciones permitidas por los overrides) y suma los recargos.
func resolveOptions(product *ports.ProductSnapshot, selected []dto.SelectedOption) ([]entity.SaleLineOption, decimal.Decimal, error) {
	groups := make(map[string]*ports.SelectionGroupSnapshot, len(product.SelectionGroups))
	for i := range product.SelectionGroups {
		groups[product.SelectionGroups[i].ID] = &product.SelectionGroups[i]
	}

	countByGroup := make(map[string]int)
	var options []entity.SaleLineOption
	surcharges := decimal.Zero

	for _, sel := range selected {
		group, ok := groups[sel.GroupID]
		if !ok {
			return nil, decimal.Zero, domain.ErrInvalidInput
		}
		var found *ports.OptionItemSnapshot
		for i := range group.Options {
			if group.Options[i].ID == sel.OptionID {
				found = &group.Options[i]
				break
			}
		}
		if found == nil {
			// opción fuera de las permitidas para este producto (override)
			return nil, decimal.Zero, &domain.ItemUnavailableError{
				ItemType: "option",
				ItemID:   sel.OptionID,
				Reason:   domain.ReasonNotAllowed,
			}
		}
		countByGroup[sel.GroupID]++
		options = append(options, entity.SaleLineOption{
			GroupID:    group.ID,
			OptionID:   found.ID,
			OptionName: found.Name,
			Surcharge:  found.Surcharge,
		})
		surcharges = surcharges.Add(found.Surcharge)
	}

	// min/max por grupo (los grupos con MinSelect > 0 son obligatorios)
	for _, group := range product.SelectionGroups {
		n := countByGroup[group.ID]
		if n < group.MinSelect {
			return nil, decimal.Zero, domain.ErrInvalidInput
		}
		if group.MaxSelect > 0 && n > group.MaxSelect {
			return nil, decimal.Zero, domain.ErrInvalidInput
		}
	}
	return options, surcharges, nil
}

func validateCreateRequest(in dto.CreateSaleRequest) error {
	switch in.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer, entity.PaymentOther:
	default:
		return domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	for _, line := range in.Lines {
		if line.ProductID == "" || !line.Quantity.IsPositive() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// verifyManagerPIN compara el PIN contra el hash bcrypt de configuración.
func (uc *UseCase) verifyManagerPIN(pin string) error {
	if uc.policy.ManagerPINHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(uc.policy.ManagerPINHash), []byte(pin)); err != nil {
		return domain.ErrUnauthorized
	}
	return nil
}

// logAudit emite el registro de auditoría; su falla se loguea y nunca se
// propaga al caller de la operación mutante.
func (uc *UseCase) logAudit(ctx context.Context, scope domain.Scope, action, actorID, correlationID, entityID string, before, after *entity.Sale, notes string) {
	entry := &entity.AuditEntry{
		ID:            uuid.New().String(),
		TenantID:      scope.TenantID,
		StoreID:       scope.StoreID,
		Action:        action,
		ActorID:       actorID,
		CorrelationID: correlationID,
		EntityType:    "sale",
		EntityID:      entityID,
		Before:        marshalSale(before),
		After:         marshalSale(after),
		Source:        "pos-core",
		Notes:         notes,
		CreatedAt:     uc.clock.UtcNow(),
	}
	if err := uc.audit.Log(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("sale_id", entityID).Msg("auditoría no registrada")
	}
}

func marshalSale(s *entity.Sale) string {
	if s == nil {
		return ""
	}
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}
