package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/invorya/pos-api/internal/domain"
)

// ProductSnapshot estado de un producto en el catálogo al momento de la venta.
// Incluye los grupos de selección permitidos para la tienda (overrides aplicados).
type ProductSnapshot struct {
	ID              string
	Name            string
	Active          bool
	Available       bool // disponible en la tienda del scope
	Price           decimal.Decimal
	SelectionGroups []SelectionGroupSnapshot
}

// SelectionGroupSnapshot grupo de personalización de un producto (ej. "tamaño",
// "salsas"): cuántas opciones se deben/pueden elegir y cuáles están permitidas.
type SelectionGroupSnapshot struct {
	ID        string
	Name      string
	MinSelect int
	MaxSelect int
	Options   []OptionItemSnapshot
}

// OptionItemSnapshot opción elegible dentro de un grupo, con su recargo.
type OptionItemSnapshot struct {
	ID        string
	Name      string
	Surcharge decimal.Decimal
}

// ExtraSnapshot estado de un extra (adición) al momento de la venta.
type ExtraSnapshot struct {
	ID        string
	Name      string
	Active    bool
	Available bool
	Price     decimal.Decimal
}

// CatalogProvider resuelve precios y disponibilidad del catálogo al momento de
// la venta. Es un colaborador externo: el núcleo solo consume este snapshot y
// congela los precios resueltos en la venta.
type CatalogProvider interface {
	ResolveProduct(ctx context.Context, scope domain.Scope, productID string) (*ProductSnapshot, error)
	ResolveExtra(ctx context.Context, scope domain.Scope, extraID string) (*ExtraSnapshot, error)
}
