package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de stock entre sucursales.
const (
	StockRequestStatusOpen      = "OPEN"
	StockRequestStatusFulfilled = "FULFILLED"
	StockRequestStatusCancelled = "CANCELLED"
)

// StockMovementRequest ticket "envíenme stock" creado cuando la ciudad de una
// cotización no tiene suficiente disponible. El despacho entre ciudades nunca
// es automático; siempre pasa por uno de estos tickets.
type StockMovementRequest struct {
	ID        string
	TenantID  string
	Number    string // secuencia SOL
	City      string // ciudad solicitante
	Status    string
	Notes     string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []*StockMovementRequestItem
}

// StockMovementRequestItem renglón pendiente de una solicitud.
// RemainingQuantity baja con cada despacho parcial; en cero ya no hay deuda.
type StockMovementRequestItem struct {
	ID                string
	RequestID         string
	ProductID         string
	Quantity          decimal.Decimal
	RemainingQuantity decimal.Decimal
}
