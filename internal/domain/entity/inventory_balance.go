package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBalance fila del libro de stock: cantidad y reserva por
// (producto, lote?, ubicación). Invariante: 0 <= ReservedQuantity <= Quantity.
// Version es el contador de bloqueo optimista; cada update lo incrementa.
type InventoryBalance struct {
	ID               string
	TenantID         string
	ProductID        string
	BatchID          *string // nil = stock sin lote
	LocationID       string
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
	Version          int
	UpdatedAt        time.Time
}

// Available cantidad disponible para reservar, recortada a cero ante
// anomalías de datos (reservado > total).
func (b *InventoryBalance) Available() decimal.Decimal {
	avail := b.Quantity.Sub(b.ReservedQuantity)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}
