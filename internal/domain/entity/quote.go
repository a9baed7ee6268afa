package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una cotización. PROCESSED es terminal.
const (
	QuoteStatusCreated   = "CREATED"
	QuoteStatusProcessed = "PROCESSED"
)

// Quote cotización de venta. Se procesa exactamente una vez: el estado pasa
// a PROCESSED y produce una orden de venta con sus reservas.
type Quote struct {
	ID                string
	TenantID          string
	Number            string // generado por secuencia, ej. COT-2026-0007
	CustomerID        string
	Status            string
	GlobalDiscountPct decimal.Decimal
	DeliveryDays      int
	DeliveryAddress   string
	ProcessedAt       *time.Time
	Version           int
	CreatedBy         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Lines             []*QuoteLine
}

// QuoteLine línea de cotización. Quantity siempre está en unidades base;
// PresentationID/PresentationQuantity son la vista redundante en presentación.
type QuoteLine struct {
	ID                   string
	QuoteID              string
	ProductID            string
	Quantity             decimal.Decimal
	PresentationID       *string
	PresentationQuantity *decimal.Decimal
	BatchID              *string // lote fijado por el cliente; nil = FEFO
	UnitPrice            decimal.Decimal
	DiscountPct          decimal.Decimal
}
