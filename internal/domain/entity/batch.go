package entity

import "time"

// Estados de un lote.
const (
	BatchStatusReleased   = "RELEASED"
	BatchStatusQuarantine = "QUARANTINE"
	BatchStatusRejected   = "REJECTED"
)

// Batch lote de fabricación de un producto. Solo lotes RELEASED y no vencidos
// son elegibles para asignación de stock.
type Batch struct {
	ID                string
	TenantID          string
	ProductID         string
	BatchNumber       string // único por producto+tenant
	Status            string
	ExpiresAt         *time.Time // nil = no vence
	ManufacturingDate time.Time
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EligibleAt indica si el lote puede asignarse en la fecha dada
// (RELEASED y sin vencer al inicio del día UTC).
func (b *Batch) EligibleAt(today time.Time) bool {
	if b.Status != BatchStatusReleased {
		return false
	}
	if b.ExpiresAt == nil {
		return true
	}
	return !b.ExpiresAt.Before(today)
}
