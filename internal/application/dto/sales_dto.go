package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineRequest línea solicitada. Exactamente uno de quantity (unidades base)
// o presentation_id+presentation_quantity debe venir informado.
type LineRequest struct {
	ProductID            string           `json:"product_id" validate:"required"`
	Quantity             *decimal.Decimal `json:"quantity"`
	PresentationID       *string          `json:"presentation_id"`
	PresentationQuantity *decimal.Decimal `json:"presentation_quantity"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	DiscountPct          *decimal.Decimal `json:"discount_pct"`
	BatchID              *string          `json:"batch_id"`
}

// CreateQuoteRequest alta de cotización.
type CreateQuoteRequest struct {
	CustomerID        string           `json:"customer_id" validate:"required"`
	GlobalDiscountPct *decimal.Decimal `json:"global_discount_pct"`
	DeliveryDays      int              `json:"delivery_days" validate:"gte=0"`
	DeliveryAddress   string           `json:"delivery_address"`
	Lines             []LineRequest    `json:"lines" validate:"required,min=1,dive"`
}

// UpdateQuoteRequest edición de una cotización aún CREATED.
type UpdateQuoteRequest struct {
	GlobalDiscountPct *decimal.Decimal `json:"global_discount_pct"`
	DeliveryDays      *int             `json:"delivery_days"`
	DeliveryAddress   *string          `json:"delivery_address"`
	Lines             []LineRequest    `json:"lines" validate:"omitempty,min=1,dive"`
	Version           int              `json:"version" validate:"gte=0"`
}

// QuoteLineResponse línea de cotización serializada.
type QuoteLineResponse struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"product_id"`
	Quantity             decimal.Decimal  `json:"quantity"`
	PresentationID       *string          `json:"presentation_id,omitempty"`
	PresentationQuantity *decimal.Decimal `json:"presentation_quantity,omitempty"`
	BatchID              *string          `json:"batch_id,omitempty"`
	UnitPrice            decimal.Decimal  `json:"unit_price"`
	DiscountPct          decimal.Decimal  `json:"discount_pct"`
}

// QuoteResponse cotización serializada.
type QuoteResponse struct {
	ID                string              `json:"id"`
	Number            string              `json:"number"`
	CustomerID        string              `json:"customer_id"`
	Status            string              `json:"status"`
	GlobalDiscountPct decimal.Decimal     `json:"global_discount_pct"`
	DeliveryDays      int                 `json:"delivery_days"`
	DeliveryAddress   string              `json:"delivery_address,omitempty"`
	ProcessedAt       *time.Time          `json:"processed_at,omitempty"`
	Version           int                 `json:"version"`
	CreatedAt         time.Time           `json:"created_at"`
	Lines             []QuoteLineResponse `json:"lines"`
}

// ChangedBalanceDTO balance mutado por una asignación.
type ChangedBalanceDTO struct {
	BalanceID        string          `json:"balance_id"`
	ProductID        string          `json:"product_id"`
	BatchID          *string         `json:"batch_id,omitempty"`
	LocationID       string          `json:"location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReservedQuantity decimal.Decimal `json:"reserved_quantity"`
	Version          int             `json:"version"`
}

// ReservationDTO reserva creada para una línea de orden.
type ReservationDTO struct {
	ID                 string          `json:"id"`
	SalesOrderLineID   string          `json:"sales_order_line_id"`
	InventoryBalanceID string          `json:"inventory_balance_id"`
	Quantity           decimal.Decimal `json:"quantity"`
}

// OrderResponse orden de venta serializada.
type OrderResponse struct {
	ID           string              `json:"id"`
	Number       string              `json:"number"`
	CustomerID   string              `json:"customer_id"`
	QuoteID      *string             `json:"quote_id,omitempty"`
	Status       string              `json:"status"`
	DeliveryDate time.Time           `json:"delivery_date"`
	Lines        []QuoteLineResponse `json:"lines"`
}

// ProcessQuoteResponse resultado de procesar una cotización.
type ProcessQuoteResponse struct {
	Order           OrderResponse       `json:"order"`
	Reservations    []ReservationDTO    `json:"reservations"`
	ChangedBalances []ChangedBalanceDTO `json:"changed_balances"`
}
