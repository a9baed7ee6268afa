package entity

import (
	"encoding/json"
	"time"
)

// AuditEntry registro append-only de una transición de estado.
// Se intenta escribir en la misma transacción que la mutación que describe,
// pero un fallo de auditoría no bloquea la transición.
type AuditEntry struct {
	ID         string
	TenantID   string
	UserID     string
	Action     string // ej. "quote.process", "order.create"
	EntityType string
	EntityID   string
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}
