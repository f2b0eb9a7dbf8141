package entity

import "time"

// AuditEntry registro inmutable (append-only) del antes/después de una mutación.
// Lo produce el núcleo y lo persiste el Audit Logger; sus fallas nunca afectan
// el resultado de la operación principal.
type AuditEntry struct {
	ID            string
	TenantID      string
	StoreID       string
	Action        string // "CreateSale", "VoidSale", "OpenShift", ...
	ActorID       string
	CorrelationID string
	EntityType    string
	EntityID      string
	Before        string // snapshot JSON; vacío cuando no hay estado previo
	After         string
	Source        string
	Notes         string
	CreatedAt     time.Time
}
