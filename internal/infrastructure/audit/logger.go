package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/invorya/pos-api/internal/application/ports"
	"github.com/invorya/pos-api/internal/domain/entity"
	"github.com/invorya/pos-api/internal/domain/repository"
)

var _ ports.AuditLogger = (*RepositoryLogger)(nil)

// RepositoryLogger implementa el puerto AuditLogger delegando en el
// repositorio de auditoría (PostgreSQL o memoria). Completa ID y fecha de
// creación si el caso de uso no los asignó.
type RepositoryLogger struct {
	repo repository.AuditRepository
}

func NewRepositoryLogger(repo repository.AuditRepository) *RepositoryLogger {
	return &RepositoryLogger{repo: repo}
}

func (l *RepositoryLogger) Log(ctx context.Context, entry *entity.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return l.repo.Create(ctx, entry)
}
