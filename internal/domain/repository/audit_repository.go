package repository

import (
	"context"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
)

// AuditRepository puerto append-only para registros de auditoría.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	ListByEntity(ctx context.Context, scope domain.Scope, entityType, entityID string, limit int) ([]*entity.AuditEntry, error)
}
