package dto

import "github.com/shopspring/decimal"

// AdjustInventoryRequest ajuste manual de saldo (delta puede ser negativo).
type AdjustInventoryRequest struct {
	ItemType string          `json:"item_type"`
	ItemID   string          `json:"item_id"`
	Delta    decimal.Decimal `json:"delta"`
	Reason   string          `json:"reason"`
}

// SetInventoryBalanceRequest override absoluto, usado en tomas físicas.
type SetInventoryBalanceRequest struct {
	ItemType string          `json:"item_type"`
	ItemID   string          `json:"item_id"`
	OnHand   decimal.Decimal `json:"on_hand"`
}

// InventoryBalanceResponse saldo actual de un ítem en la tienda.
type InventoryBalanceResponse struct {
	ItemType  string          `json:"item_type"`
	ItemID    string          `json:"item_id"`
	OnHand    decimal.Decimal `json:"on_hand"`
	Reserved  decimal.Decimal `json:"reserved"`
	Version   int64           `json:"version"`
	UpdatedAt string          `json:"updated_at"`
}

// InventoryMovementResponse un registro del diario de movimientos.
type InventoryMovementResponse struct {
	ID          string          `json:"id"`
	ItemType    string          `json:"item_type"`
	ItemID      string          `json:"item_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason,omitempty"`
	ReferenceID string          `json:"reference_id,omitempty"`
	OccurredAt  string          `json:"occurred_at"`
	CreatedBy   string          `json:"created_by"`
}
