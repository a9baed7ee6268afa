package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de venta. Solo una orden RESERVED puede cancelarse;
// la cancelación devuelve sus reservas al stock disponible.
const (
	OrderStatusReserved  = "RESERVED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCancelled = "CANCELLED"
)

// SalesOrder orden de venta producida al procesar una cotización.
// El número se deriva del número de cotización reescribiendo el prefijo
// (COT-2026-0007 -> OV-2026-0007), nunca con una secuencia aparte.
type SalesOrder struct {
	ID           string
	TenantID     string
	Number       string
	CustomerID   string
	QuoteID      *string
	Status       string
	DeliveryDate time.Time
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []*SalesOrderLine
}

// SalesOrderLine línea de orden; espejo de la línea de cotización con el
// precio ya afectado por descuentos de línea y global.
type SalesOrderLine struct {
	ID                   string
	SalesOrderID         string
	ProductID            string
	Quantity             decimal.Decimal
	PresentationID       *string
	PresentationQuantity *decimal.Decimal
	BatchID              *string // lote fijado en la cotización; el asignador lo respeta
	UnitPrice            decimal.Decimal
}

// SalesOrderReservation registro inmutable de auditoría: tantas unidades de
// este balance quedaron comprometidas con esta línea. Una línea puede estar
// respaldada por varios balances (partida entre lotes/ubicaciones).
type SalesOrderReservation struct {
	ID                 string
	TenantID           string
	SalesOrderID       string
	SalesOrderLineID   string
	InventoryBalanceID string
	Quantity           decimal.Decimal
	CreatedAt          time.Time
}
