package entity

import (
	"encoding/json"
	"time"
)

// Acciones registradas en auditoría.
const (
	AuditCreate = "CREAR"
	AuditUpdate = "ACTUALIZAR"
	AuditDelete = "ELIMINAR"
	AuditOpen   = "ABRIR"
	AuditClose  = "CERRAR"
	AuditApply  = "APLICAR"
	AuditExpire = "EXPIRAR"
)

// AuditEntry registro append-only de un cambio de estado (antes/después).
type AuditEntry struct {
	ID          string
	UserID      string // vacío para procesos del sistema (barrido de promociones)
	Action      string
	Table       string
	RecordID    string
	Before      json.RawMessage
	After       json.RawMessage
	ClientIP    string
	ClientAgent string
	CreatedAt   time.Time
}
