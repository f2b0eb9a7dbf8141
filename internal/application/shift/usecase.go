package shift

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/invorya/pos-api/internal/application/dto"
	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
	"github.com/invorya/pos-api/pkg/logger"
)

// UseCase máquina de estados del turno de caja: none -> OPEN -> CLOSED.
// Gobierna si pueden crearse ventas y concilia el efectivo al cierre
// (esperado vs contado por método de pago).
type UseCase struct {
	shiftRepo repository.ShiftRepository
	saleRepo  repository.SaleRepository
	clock     ports.Clock
	audit     ports.AuditLogger
	log       *logger.Logger
}

// NewUseCase construye el gestor de turnos.
func NewUseCase(
	shiftRepo repository.ShiftRepository,
	saleRepo repository.SaleRepository,
	clock ports.Clock,
	audit ports.AuditLogger,
	log *logger.Logger,
) *UseCase {
	return &UseCase{shiftRepo: shiftRepo, saleRepo: saleRepo, clock: clock, audit: audit, log: log}
}

// OpenShift abre un turno con el fondo inicial de caja. El invariante
// "a lo sumo un turno abierto por tienda" lo hace cumplir el repositorio en el
// límite de la transacción; un segundo OpenShift concurrente recibe ErrConflict.
func (uc *UseCase) OpenShift(ctx context.Context, scope domain.Scope, actor domain.Actor, in dto.OpenShiftRequest) (*entity.Shift, error) {
	if in.OpeningFloat.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.UtcNow()
	shift := &entity.Shift{
		ID:           uuid.New().String(),
		TenantID:     scope.TenantID,
		StoreID:      scope.StoreID,
		CashierID:    actor.UserID,
		Status:       entity.ShiftStatusOpen,
		OpeningFloat: in.OpeningFloat,
		OpenedAt:     now,
	}
	if err := uc.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}
	uc.logAudit(ctx, scope, "OpenShift", actor.UserID, shift.ID, nil, shift, "")
	return shift, nil
}

// GetCurrentShift devuelve el turno abierto de la tienda o ErrNotFound.
func (uc *UseCase) GetCurrentShift(ctx context.Context, scope domain.Scope) (*entity.Shift, error) {
	return uc.shiftRepo.GetOpenByStore(ctx, scope)
}

// GetClosePreview calcula el efectivo esperado (fondo inicial + ventas en
// efectivo; las anuladas se excluyen del esperado) y los totales por método de
// pago, sin mutar estado. Llamable repetidamente.
func (uc *UseCase) GetClosePreview(ctx context.Context, scope domain.Scope, shiftID string) (*dto.ClosePreviewResponse, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, scope, shiftID)
	if err != nil {
		return nil, err
	}
	expected, saleCount, voidCount, err := uc.expectedTotals(ctx, scope, shiftID)
	if err != nil {
		return nil, err
	}
	expectedCash := shift.OpeningFloat.Add(expected[entity.PaymentCash])
	return &dto.ClosePreviewResponse{
		ShiftID:      shift.ID,
		OpeningFloat: shift.OpeningFloat,
		ExpectedCash: expectedCash,
		Expected:     expected,
		SaleCount:    saleCount,
		VoidCount:    voidCount,
	}, nil
}

// CloseShift transiciona OPEN -> CLOSED, registra la variancia contado-esperado
// por método de pago y sella closed-at. Doble cierre => ErrConflict.
// Una vez cerrado, el turno es inmutable y no admite más ventas.
func (uc *UseCase) CloseShift(ctx context.Context, scope domain.Scope, actor domain.Actor, shiftID string, in dto.CloseShiftRequest) (*entity.Shift, error) {
	shift, err := uc.shiftRepo.GetByID(ctx, scope, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != entity.ShiftStatusOpen {
		return nil, domain.ErrConflict
	}

	expected, _, _, err := uc.expectedTotals(ctx, scope, shiftID)
	if err != nil {
		return nil, err
	}
	// el fondo inicial forma parte del efectivo esperado en caja
	expected[entity.PaymentCash] = expected[entity.PaymentCash].Add(shift.OpeningFloat)

	before := *shift
	now := uc.clock.UtcNow()
	shift.Status = entity.ShiftStatusClosed
	shift.ClosedAt = &now
	shift.ClosedBy = actor.UserID
	shift.Notes = in.Notes
	shift.Totals = buildTotals(expected, in.Counted)

	if err := uc.shiftRepo.Close(ctx, shift); err != nil {
		return nil, err
	}
	uc.logAudit(ctx, scope, "CloseShift", actor.UserID, shift.ID, &before, shift, in.Notes)
	return shift, nil
}

// expectedTotals agrega las ventas del turno por método de pago.
// Las ventas anuladas no suman al esperado.
func (uc *UseCase) expectedTotals(ctx context.Context, scope domain.Scope, shiftID string) (map[string]decimal.Decimal, int64, int64, error) {
	sales, err := uc.saleRepo.ListByShift(ctx, scope, shiftID)
	if err != nil {
		return nil, 0, 0, err
	}
	expected := make(map[string]decimal.Decimal)
	var saleCount, voidCount int64
	for _, s := range sales {
		if s.Status == entity.SaleStatusVoided {
			voidCount++
			continue
		}
		saleCount++
		expected[s.PaymentMethod] = expected[s.PaymentMethod].Add(s.Total)
	}
	return expected, saleCount, voidCount, nil
}

// buildTotals cruza esperado y contado por método; métodos contados que no
// tuvieron ventas también se registran (esperado cero).
func buildTotals(expected, counted map[string]decimal.Decimal) []entity.ShiftTotal {
	methods := make(map[string]struct{})
	for m := range expected {
		methods[m] = struct{}{}
	}
	for m := range counted {
		methods[m] = struct{}{}
	}
	ordered := make([]string, 0, len(methods))
	for m := range methods {
		ordered = append(ordered, m)
	}
	sort.Strings(ordered)

	totals := make([]entity.ShiftTotal, 0, len(ordered))
	for _, m := range ordered {
		exp := expected[m]
		cnt := counted[m]
		totals = append(totals, entity.ShiftTotal{
			PaymentMethod: m,
			Expected:      exp,
			Counted:       cnt,
			Variance:      cnt.Sub(exp),
		})
	}
	return totals
}

func (uc *UseCase) logAudit(ctx context.Context, scope domain.Scope, action, actorID, shiftID string, before, after *entity.Shift, notes string) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		TenantID:   scope.TenantID,
		StoreID:    scope.StoreID,
		Action:     action,
		ActorID:    actorID,
		EntityType: "shift",
		EntityID:   shiftID,
		Before:     marshalShift(before),
		After:      marshalShift(after),
		Source:     "pos-core",
		Notes:      notes,
		CreatedAt:  uc.clock.UtcNow(),
	}
	if err := uc.audit.Log(context.WithoutCancel(ctx), entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("shift_id", shiftID).Msg("auditoría no registrada")
	}
}

func marshalShift(s *entity.Shift) string {
	if s == nil {
		return ""
	}
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}
