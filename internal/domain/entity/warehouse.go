package entity

import "time"

// Warehouse bodega/sucursal. La ciudad es la frontera dura de asignación:
// el stock nunca se asigna automáticamente a pedidos de otra ciudad.
type Warehouse struct {
	ID        string
	TenantID  string
	Code      string
	Name      string
	City      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location ubicación física dentro de una bodega (estante, cámara fría, etc.).
type Location struct {
	ID          string
	TenantID    string
	WarehouseID string
	Code        string
	IsActive    bool
	CreatedAt   time.Time
}
