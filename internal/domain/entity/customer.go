package entity

import "time"

// Customer cliente de ventas. City gobierna desde qué bodegas se puede
// reservar stock para sus pedidos.
type Customer struct {
	ID        string
	TenantID  string
	Name      string
	TaxID     string
	City      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
