package memory

import (
	"context"
	"sort"
	"time"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var (
	_ repository.InventoryBalanceRepository  = (*balanceRepo)(nil)
	_ repository.InventoryMovementRepository = (*movementRepo)(nil)
	_ repository.SaleRepository              = (*saleRepo)(nil)
	_ repository.ShiftRepository             = (*shiftRepo)(nil)
	_ repository.AuditRepository             = (*auditRepo)(nil)
)

// ─── saldos ───────────────────────────────────────────────────────────────────

type balanceRepo struct {
	s    *Store
	inTx bool
}

func (r *balanceRepo) lock() {
	if !r.inTx {
		r.s.mu.Lock()
	}
}

func (r *balanceRepo) unlock() {
	if !r.inTx {
		r.s.mu.Unlock()
	}
}

func (r *balanceRepo) Get(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error) {
	r.lock()
	defer r.unlock()
	b, ok := r.s.balances[balanceKey(scope.TenantID, scope.StoreID, itemType, itemID)]
	if !ok {
		return nil, nil
	}
	return cloneBalance(b), nil
}

func (r *balanceRepo) GetForUpdate(ctx context.Context, scope domain.Scope, itemType, itemID string) (*entity.InventoryBalance, error) {
	// el mutex global ya lineariza; equivale al bloqueo de fila
	return r.Get(ctx, scope, itemType, itemID)
}

func (r *balanceRepo) Save(ctx context.Context, balance *entity.InventoryBalance) error {
	r.lock()
	defer r.unlock()
	key := balanceKey(balance.TenantID, balance.StoreID, balance.ItemType, balance.ItemID)
	existing, ok := r.s.balances[key]
	if ok {
		// chequeo optimista: la versión leída debe seguir vigente
		if existing.Version != balance.Version {
			return domain.ErrConflict
		}
	} else if balance.Version != 0 {
		return domain.ErrConflict
	}
	balance.Version++
	r.s.balances[key] = cloneBalance(balance)
	return nil
}

func (r *balanceRepo) ListByStore(ctx context.Context, scope domain.Scope, limit, offset int) ([]*entity.InventoryBalance, error) {
	r.lock()
	defer r.unlock()
	var out []*entity.InventoryBalance
	for _, b := range r.s.balances {
		if b.TenantID == scope.TenantID && b.StoreID == scope.StoreID {
			out = append(out, cloneBalance(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemType != out[j].ItemType {
			return out[i].ItemType < out[j].ItemType
		}
		return out[i].ItemID < out[j].ItemID
	})
	return paginate(out, limit, offset), nil
}

// ─── movimientos ──────────────────────────────────────────────────────────────

type movementRepo struct {
	s    *Store
	inTx bool
}

func (r *movementRepo) lock() {
	if !r.inTx {
		r.s.mu.Lock()
	}
}

func (r *movementRepo) unlock() {
	if !r.inTx {
		r.s.mu.Unlock()
	}
}

func (r *movementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	r.lock()
	defer r.unlock()
	c := *movement
	r.s.movements = append(r.s.movements, &c)
	return nil
}

func (r *movementRepo) ListByToken(ctx context.Context, scope domain.Scope, token string) ([]*entity.InventoryMovement, error) {
	r.lock()
	defer r.unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.TenantID == scope.TenantID && m.StoreID == scope.StoreID && m.CommitToken == token {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *movementRepo) ListByItem(ctx context.Context, scope domain.Scope, itemType, itemID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.lock()
	defer r.unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.TenantID != scope.TenantID || m.StoreID != scope.StoreID || m.ItemType != itemType || m.ItemID != itemID {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return paginate(out, limit, offset), nil
}

// ─── ventas ───────────────────────────────────────────────────────────────────

type saleRepo struct {
	s    *Store
	inTx bool
}

func (r *saleRepo) lock() {
	if !r.inTx {
		r.s.mu.Lock()
	}
}

func (r *saleRepo) unlock() {
	if !r.inTx {
		r.s.mu.Unlock()
	}
}

func (r *saleRepo) Create(ctx context.Context, sl *entity.Sale) error {
	r.lock()
	defer r.unlock()
	if _, ok := r.s.sales[sl.ID]; ok {
		return domain.ErrConflict
	}
	r.s.sales[sl.ID] = cloneSale(sl)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Sale, error) {
	r.lock()
	defer r.unlock()
	sl, ok := r.s.sales[id]
	// fuera del tenant se responde como inexistente
	if !ok || sl.TenantID != scope.TenantID {
		return nil, domain.ErrNotFound
	}
	return cloneSale(sl), nil
}

func (r *saleRepo) MarkVoided(ctx context.Context, scope domain.Scope, id, reason, actorID string, at time.Time) error {
	r.lock()
	defer r.unlock()
	sl, ok := r.s.sales[id]
	if !ok || sl.TenantID != scope.TenantID {
		return domain.ErrNotFound
	}
	if sl.Status != entity.SaleStatusCompleted {
		return domain.ErrConflict
	}
	sl.Status = entity.SaleStatusVoided
	sl.VoidReason = reason
	sl.VoidedBy = actorID
	voidedAt := at
	sl.VoidedAt = &voidedAt
	return nil
}

func (r *saleRepo) ListByShift(ctx context.Context, scope domain.Scope, shiftID string) ([]*entity.Sale, error) {
	r.lock()
	defer r.unlock()
	var out []*entity.Sale
	for _, sl := range r.s.sales {
		if sl.TenantID == scope.TenantID && sl.StoreID == scope.StoreID && sl.ShiftID == shiftID {
			out = append(out, cloneSale(sl))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// ─── turnos ───────────────────────────────────────────────────────────────────

type shiftRepo struct {
	s *Store
}

func (r *shiftRepo) Create(ctx context.Context, shift *entity.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	// a lo sumo un turno OPEN por tienda: el mutex hace la verificación atómica
	for _, sh := range r.s.shifts {
		if sh.TenantID == shift.TenantID && sh.StoreID == shift.StoreID && sh.Status == entity.ShiftStatusOpen {
			return domain.ErrConflict
		}
	}
	r.s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

func (r *shiftRepo) GetByID(ctx context.Context, scope domain.Scope, id string) (*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shifts[id]
	if !ok || sh.TenantID != scope.TenantID {
		return nil, domain.ErrNotFound
	}
	return cloneShift(sh), nil
}

func (r *shiftRepo) GetOpenByStore(ctx context.Context, scope domain.Scope) (*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shifts {
		if sh.TenantID == scope.TenantID && sh.StoreID == scope.StoreID && sh.Status == entity.ShiftStatusOpen {
			return cloneShift(sh), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *shiftRepo) Close(ctx context.Context, shift *entity.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.shifts[shift.ID]
	if !ok || existing.TenantID != shift.TenantID {
		return domain.ErrNotFound
	}
	if existing.Status != entity.ShiftStatusOpen {
		return domain.ErrConflict
	}
	r.s.shifts[shift.ID] = cloneShift(shift)
	return nil
}

// ─── auditoría ────────────────────────────────────────────────────────────────

type auditRepo struct {
	s *Store
}

func (r *auditRepo) Create(ctx context.Context, entry *entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *entry
	r.s.audits = append(r.s.audits, &c)
	return nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, scope domain.Scope, entityType, entityID string, limit int) ([]*entity.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.AuditEntry
	for _, e := range r.s.audits {
		if e.TenantID == scope.TenantID && e.EntityType == entityType && e.EntityID == entityID {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
