package catalog

import (
	"context"
	"sync"

	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
)

var _ ports.CatalogProvider = (*StaticProvider)(nil)

// StaticProvider catálogo fijo en memoria para tests y modo demo.
// La clave de disponibilidad por tienda es tenant|store|id; sin entrada en
// unavailable el ítem se considera disponible.
type StaticProvider struct {
	mu          sync.RWMutex
	products    map[string]ports.ProductSnapshot
	extras      map[string]ports.ExtraSnapshot
	tenants     map[string]string // id -> tenant dueño
	unavailable map[string]bool
}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		products:    make(map[string]ports.ProductSnapshot),
		extras:      make(map[string]ports.ExtraSnapshot),
		tenants:     make(map[string]string),
		unavailable: make(map[string]bool),
	}
}

// PutProduct registra o reemplaza un producto del tenant.
func (p *StaticProvider) PutProduct(tenantID string, snap ports.ProductSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.products[snap.ID] = snap
	p.tenants[snap.ID] = tenantID
}

// PutExtra registra o reemplaza un extra del tenant.
func (p *StaticProvider) PutExtra(tenantID string, snap ports.ExtraSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.extras[snap.ID] = snap
	p.tenants[snap.ID] = tenantID
}

// SetUnavailable marca un ítem como no disponible en una tienda puntual.
func (p *StaticProvider) SetUnavailable(scope domain.Scope, itemID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unavailable[scope.TenantID+"|"+scope.StoreID+"|"+itemID] = true
}

func (p *StaticProvider) ResolveProduct(ctx context.Context, scope domain.Scope, productID string) (*ports.ProductSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, ok := p.products[productID]
	if !ok || p.tenants[productID] != scope.TenantID {
		return nil, domain.ErrNotFound
	}
	snap.Available = snap.Available && !p.unavailable[scope.TenantID+"|"+scope.StoreID+"|"+productID]
	// copia defensiva de los grupos
	groups := make([]ports.SelectionGroupSnapshot, len(snap.SelectionGroups))
	for i, g := range snap.SelectionGroups {
		g.Options = append([]ports.OptionItemSnapshot(nil), g.Options...)
		groups[i] = g
	}
	snap.SelectionGroups = groups
	return &snap, nil
}

func (p *StaticProvider) ResolveExtra(ctx context.Context, scope domain.Scope, extraID string) (*ports.ExtraSnapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, ok := p.extras[extraID]
	if !ok || p.tenants[extraID] != scope.TenantID {
		return nil, domain.ErrNotFound
	}
	snap.Available = snap.Available && !p.unavailable[scope.TenantID+"|"+scope.StoreID+"|"+extraID]
	return &snap, nil
}
