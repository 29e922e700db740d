package repository

import (
	"context"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
)

// AuditRepository sumidero append-only de auditoría. El núcleo nunca lo lee.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
}
