package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ítem controlable por inventario.
const (
	ItemTypeProduct = "product"
	ItemTypeExtra   = "extra"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeAdjustment   = "ADJUSTMENT"    // ajuste manual (delta)
	MovementTypeSet          = "SET"           // toma física (valor absoluto)
	MovementTypeSaleOut      = "SALE_OUT"      // consumo por venta
	MovementTypeSaleReversal = "SALE_REVERSAL" // reversión por anulación
)

// InventoryBalance representa el saldo de un ítem en una tienda.
// Un ítem está "controlado" si existe su fila de saldo; los ítems sin fila
// nunca bloquean una venta. La fila se crea con el primer ajuste/toma física
// y nunca se borra (solo se lleva a cero).
// Invariante: OnHand >= 0 en todo momento. Version incrementa en cada mutación.
type InventoryBalance struct {
	TenantID  string
	StoreID   string
	ItemType  string
	ItemID    string
	OnHand    decimal.Decimal
	Reserved  decimal.Decimal
	Version   int64
	UpdatedAt time.Time
}

// InventoryMovement registro inmutable de cada mutación de saldo.
// Los movimientos de venta llevan CommitToken; la reversión reutiliza el
// mismo token para garantizar idempotencia (revertir dos veces no duplica).
type InventoryMovement struct {
	ID          string
	TenantID    string
	StoreID     string
	ItemType    string
	ItemID      string
	Type        string
	Quantity    decimal.Decimal // con signo: negativo consume, positivo repone
	Reason      string
	ReferenceID string // ID de la venta para SALE_OUT / SALE_REVERSAL
	CommitToken string
	OccurredAt  time.Time
	CreatedBy   string
}
