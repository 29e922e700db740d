// Package audit registra cambios de estado del núcleo en la bitácora de auditoría.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inmobiliaria-api/internal/domain/entity"
	"github.com/jhoicas/Inmobiliaria-api/internal/domain/repository"
)

// Actor identifica quién ejecuta una operación y desde dónde.
// UserID vacío indica un proceso del sistema.
type Actor struct {
	UserID string
	IP     string
	Device string
}

// System es el actor de los procesos programados.
var System = Actor{Device: "sistema"}

// Recorder escribe entradas de auditoría. Las fallas se registran en el log y no se propagan.
type Recorder struct {
	repo repository.AuditRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewRecorder construye el recorder. repo nil produce un recorder que solo loguea.
func NewRecorder(repo repository.AuditRepository, log zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log, now: time.Now}
}

// Record registra la acción sobre (table, recordID) con las fotos antes/después.
// before y after se serializan a JSON; nil se guarda como null.
func (r *Recorder) Record(ctx context.Context, actor Actor, action, table, recordID string, before, after any) {
	if r == nil {
		return
	}
	entry := &entity.AuditEntry{
		ID:          uuid.New().String(),
		UserID:      actor.UserID,
		Action:      action,
		Table:       table,
		RecordID:    recordID,
		Before:      marshal(before),
		After:       marshal(after),
		ClientIP:    actor.IP,
		ClientAgent: actor.Device,
		CreatedAt:   r.now(),
	}
	if r.repo == nil {
		r.log.Debug().Str("action", action).Str("table", table).Str("record_id", recordID).Msg("auditoría sin repositorio")
		return
	}
	if err := r.repo.Create(ctx, entry); err != nil {
		r.log.Warn().Err(err).
			Str("action", action).
			Str("table", table).
			Str("record_id", recordID).
			Str("user_id", actor.UserID).
			Msg("no se pudo registrar auditoría")
	}
}

func marshal(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
