package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain"
)

var _ ports.CatalogProvider = (*PostgresProvider)(nil)

// PostgresProvider resuelve snapshots de catálogo leyendo las tablas de
// productos, grupos de selección y extras. La disponibilidad por tienda sale
// de los overrides de store_products / store_extras: sin fila = disponible.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// ResolveProduct arma el snapshot del producto con sus grupos de selección.
// Producto inexistente o de otro tenant -> domain.ErrNotFound.
func (p *PostgresProvider) ResolveProduct(ctx context.Context, scope domain.Scope, productID string) (*ports.ProductSnapshot, error) {
	query := `
		SELECT pr.id, pr.name, pr.active, pr.price,
		       COALESCE(sp.available, true)
		FROM products pr
		LEFT JOIN store_products sp ON sp.product_id = pr.id AND sp.store_id = $3
		WHERE pr.id = $1 AND pr.tenant_id = $2`
	var snap ports.ProductSnapshot
	err := p.pool.QueryRow(ctx, query, productID, scope.TenantID, scope.StoreID).Scan(
		&snap.ID, &snap.Name, &snap.Active, &snap.Price, &snap.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	groups, err := p.listGroups(ctx, productID)
	if err != nil {
		return nil, err
	}
	snap.SelectionGroups = groups
	return &snap, nil
}

// ResolveExtra arma el snapshot de un extra (adición).
func (p *PostgresProvider) ResolveExtra(ctx context.Context, scope domain.Scope, extraID string) (*ports.ExtraSnapshot, error) {
	query := `
		SELECT ex.id, ex.name, ex.active, ex.price,
		       COALESCE(se.available, true)
		FROM extras ex
		LEFT JOIN store_extras se ON se.extra_id = ex.id AND se.store_id = $3
		WHERE ex.id = $1 AND ex.tenant_id = $2`
	var snap ports.ExtraSnapshot
	err := p.pool.QueryRow(ctx, query, extraID, scope.TenantID, scope.StoreID).Scan(
		&snap.ID, &snap.Name, &snap.Active, &snap.Price, &snap.Available,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resolve extra: %w", err)
	}
	return &snap, nil
}

func (p *PostgresProvider) listGroups(ctx context.Context, productID string) ([]ports.SelectionGroupSnapshot, error) {
	query := `
		SELECT g.id, g.name, g.min_select, g.max_select,
		       o.id, o.name, o.surcharge
		FROM selection_groups g
		JOIN selection_options o ON o.group_id = g.id
		WHERE g.product_id = $1
		ORDER BY g.position, o.position`
	rows, err := p.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list selection groups: %w", err)
	}
	defer rows.Close()

	var groups []ports.SelectionGroupSnapshot
	index := make(map[string]int)
	for rows.Next() {
		var g ports.SelectionGroupSnapshot
		var opt ports.OptionItemSnapshot
		if err := rows.Scan(&g.ID, &g.Name, &g.MinSelect, &g.MaxSelect, &opt.ID, &opt.Name, &opt.Surcharge); err != nil {
			return nil, fmt.Errorf("scan selection group: %w", err)
		}
		i, ok := index[g.ID]
		if !ok {
			i = len(groups)
			index[g.ID] = i
			groups = append(groups, g)
		}
		groups[i].Options = append(groups[i].Options, opt)
	}
	return groups, rows.Err()
}
