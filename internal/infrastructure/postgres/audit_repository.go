package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora append-only en la tabla auditoria.
type AuditRepo struct {
	db Querier
}

// NewAuditRepository construye el adaptador de auditoría.
func NewAuditRepository(db Querier) *AuditRepo {
	return &AuditRepo{db: db}
}

// Create inserta una entrada; antes/después se guardan como JSONB (NULL si vienen vacíos).
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO auditoria (id, usuario_id, accion, tabla, registro_id, datos_anteriores, datos_nuevos, ip, dispositivo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(ctx, query,
		e.ID, nullable(e.UserID), e.Action, e.Table, e.RecordID,
		jsonOrNil(e.Before), jsonOrNil(e.After),
		e.ClientIP, e.ClientAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert auditoria: %w", err)
	}
	return nil
}

func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
