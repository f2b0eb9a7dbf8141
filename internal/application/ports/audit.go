package ports

import (
	"context"

	"github.com/invorya/pos-api/internal/domain/entity"
)

// AuditLogger puerto de salida para el registro de auditoría.
// Semántica fire-and-forget desde el núcleo: los casos de uso capturan y
// loguean cualquier error de este puerto; nunca se propaga al caller de la
// operación mutante.
type AuditLogger interface {
	Log(ctx context.Context, entry *entity.AuditEntry) error
}
