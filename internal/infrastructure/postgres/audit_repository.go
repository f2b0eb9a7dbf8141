package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/invorya/pos-api/internal/domain"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo registro de auditoría append-only sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste un registro de auditoría.
func (r *AuditRepo) Create(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO audit_log (id, tenant_id, store_id, action, actor_id, correlation_id, entity_type, entity_id, before, after, source, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.TenantID, nullIfEmpty(entry.StoreID), entry.Action, entry.ActorID,
		nullIfEmpty(entry.CorrelationID), entry.EntityType, entry.EntityID,
		nullIfEmpty(entry.Before), nullIfEmpty(entry.After),
		nullIfEmpty(entry.Source), nullIfEmpty(entry.Notes), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity historial de auditoría de una entidad, más reciente primero.
func (r *AuditRepo) ListByEntity(ctx context.Context, scope domain.Scope, entityType, entityID string, limit int) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, store_id, action, actor_id, correlation_id, entity_type, entity_id, before, after, source, notes, created_at
		FROM audit_log
		WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
		ORDER BY created_at DESC
		LIMIT $4`
	rows, err := r.q.Query(ctx, query, scope.TenantID, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		var storeID, correlationID, before, after, source, notes *string
		if err := rows.Scan(
			&e.ID, &e.TenantID, &storeID, &e.Action, &e.ActorID, &correlationID,
			&e.EntityType, &e.EntityID, &before, &after, &source, &notes, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.StoreID = deref(storeID)
		e.CorrelationID = deref(correlationID)
		e.Before = deref(before)
		e.After = deref(after)
		e.Source = deref(source)
		e.Notes = deref(notes)
		out = append(out, &e)
	}
	return out, rows.Err()
}
