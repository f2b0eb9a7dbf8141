package memory

import (
	"context"
	"sync"
	"time"

	"github.com/invorya/pos-api/internal/application/inventory"
	"github.com/invorya/pos-api/internal/application/sale"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

// Verificación de contratos en compilación.
var (
	_ inventory.TxRunner = (*Store)(nil)
	_ sale.TxRunner      = (*Store)(nil)
)

// Store almacén en memoria que respalda todos los puertos de persistencia y
// los tx runners. Un mutex global lineariza las transacciones; el snapshot al
// inicio de cada tx permite rollback si la función retorna error, con la misma
// semántica todo-o-nada que el almacén PostgreSQL.
// Usado por los tests y por el modo demo (APP_ENV=demo).
type Store struct {
	mu        sync.Mutex
	loc       *time.Location
	balances  map[string]*entity.InventoryBalance
	movements []*entity.InventoryMovement
	sales     map[string]*entity.Sale
	shifts    map[string]*entity.Shift
	audits    []*entity.AuditEntry
}

// New construye el almacén vacío. La zona horaria se usa en los reportes
// horarios; nil = UTC.
func New(loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		loc:      loc,
		balances: make(map[string]*entity.InventoryBalance),
		sales:    make(map[string]*entity.Sale),
		shifts:   make(map[string]*entity.Shift),
	}
}

// Vistas por puerto. Las versiones normales toman el mutex en cada llamada;
// dentro de una transacción se usan vistas inTx que asumen el mutex tomado.

func (s *Store) Balances() repository.InventoryBalanceRepository {
	return &balanceRepo{s: s}
}

func (s *Store) Movements() repository.InventoryMovementRepository {
	return &movementRepo{s: s}
}

func (s *Store) Sales() repository.SaleRepository {
	return &saleRepo{s: s}
}

func (s *Store) Shifts() repository.ShiftRepository {
	return &shiftRepo{s: s}
}

func (s *Store) Audits() repository.AuditRepository {
	return &auditRepo{s: s}
}

func (s *Store) Reports() repository.ReportRepository {
	return &reportRepo{s: s}
}

// Run ejecuta fn bajo el mutex global con rollback por snapshot.
func (s *Store) Run(ctx context.Context, fn func(
	balanceRepo repository.InventoryBalanceRepository,
	movementRepo repository.InventoryMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	if err := fn(&balanceRepo{s: s, inTx: true}, &movementRepo{s: s, inTx: true}); err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

// RunSale igual que Run, con el repositorio de ventas en la misma transacción.
func (s *Store) RunSale(ctx context.Context, fn func(
	balanceRepo repository.InventoryBalanceRepository,
	movementRepo repository.InventoryMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()
	err := fn(
		&balanceRepo{s: s, inTx: true},
		&movementRepo{s: s, inTx: true},
		&saleRepo{s: s, inTx: true},
	)
	if err != nil {
		s.restoreLocked(snap)
		return err
	}
	return nil
}

type snapshot struct {
	balances  map[string]*entity.InventoryBalance
	movements []*entity.InventoryMovement
	sales     map[string]*entity.Sale
	shifts    map[string]*entity.Shift
}

func (s *Store) snapshotLocked() snapshot {
	balances := make(map[string]*entity.InventoryBalance, len(s.balances))
	for k, b := range s.balances {
		balances[k] = cloneBalance(b)
	}
	sales := make(map[string]*entity.Sale, len(s.sales))
	for k, sl := range s.sales {
		sales[k] = cloneSale(sl)
	}
	shifts := make(map[string]*entity.Shift, len(s.shifts))
	for k, sh := range s.shifts {
		shifts[k] = cloneShift(sh)
	}
	movements := make([]*entity.InventoryMovement, len(s.movements))
	copy(movements, s.movements)
	return snapshot{balances: balances, movements: movements, sales: sales, shifts: shifts}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.balances = snap.balances
	s.movements = snap.movements
	s.sales = snap.sales
	s.shifts = snap.shifts
}

func balanceKey(tenantID, storeID, itemType, itemID string) string {
	return tenantID + "|" + storeID + "|" + itemType + "|" + itemID
}

// ─── clones ───────────────────────────────────────────────────────────────────

func cloneBalance(b *entity.InventoryBalance) *entity.InventoryBalance {
	c := *b
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	if s.VoidedAt != nil {
		v := *s.VoidedAt
		c.VoidedAt = &v
	}
	c.Lines = make([]*entity.SaleLine, len(s.Lines))
	for i, line := range s.Lines {
		lc := *line
		lc.Options = append([]entity.SaleLineOption(nil), line.Options...)
		lc.Extras = append([]entity.SaleLineExtra(nil), line.Extras...)
		c.Lines[i] = &lc
	}
	return &c
}

func cloneShift(s *entity.Shift) *entity.Shift {
	c := *s
	if s.ClosedAt != nil {
		v := *s.ClosedAt
		c.ClosedAt = &v
	}
	c.Totals = append([]entity.ShiftTotal(nil), s.Totals...)
	return &c
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
