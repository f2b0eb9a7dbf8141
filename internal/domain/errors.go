package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrShiftRequired = errors.New("se requiere un turno abierto")
	ErrUnauthorized  = errors.New("no autorizado")
)

// Razones de ItemUnavailableError.
const (
	ReasonInactive           = "Inactive"
	ReasonUnavailableInStore = "UnavailableInStore"
	ReasonNotAllowed         = "CustomizationNotAllowed"
)

// ItemUnavailableError indica que un ítem solicitado en la venta no está disponible:
// inactivo, fuera de catálogo para la tienda o sin stock suficiente (ítem controlado).
// Lleva los datos que el cliente necesita para mostrar el motivo.
type ItemUnavailableError struct {
	ItemType     string // "product" | "extra" | "option"
	ItemID       string
	Reason       string
	AvailableQty decimal.Decimal
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("ítem no disponible: %s %s (%s, disponible=%s)",
		e.ItemType, e.ItemID, e.Reason, e.AvailableQty.String())
}

// InventoryAdjustmentConflictError indica que un ajuste manual dejaría el
// inventario en negativo (invariante on-hand >= 0).
type InventoryAdjustmentConflictError struct {
	ItemType  string
	ItemID    string
	OnHand    decimal.Decimal
	Requested decimal.Decimal
}

func (e *InventoryAdjustmentConflictError) Error() string {
	return fmt.Sprintf("ajuste de inventario en conflicto: %s %s (actual=%s, delta=%s)",
		e.ItemType, e.ItemID, e.OnHand.String(), e.Requested.String())
}
