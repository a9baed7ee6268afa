package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShortagesRequest pre-chequeo de faltantes por ciudad.
type ShortagesRequest struct {
	City  string        `json:"city" validate:"required"`
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// StockEntryRequest ingreso de stock a un balance (producto, lote?, ubicación).
type StockEntryRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	BatchID    *string         `json:"batch_id"`
	LocationID string          `json:"location_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"required"`
}

// CreateStockRequestRequest alta de solicitud de stock a otra sucursal.
type CreateStockRequestRequest struct {
	City  string        `json:"city" validate:"required"`
	Notes string        `json:"notes"`
	Lines []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// BulkLineRequest renglón de despacho manual: el operador elige el balance.
type BulkLineRequest struct {
	BalanceID string          `json:"balance_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// BulkFulfillRequest despacho manual contra solicitudes abiertas.
type BulkFulfillRequest struct {
	RequestIDs     []string          `json:"request_ids" validate:"required,min=1"`
	FromLocationID string            `json:"from_location_id" validate:"required"`
	ToLocationID   string            `json:"to_location_id" validate:"required"`
	Lines          []BulkLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// BulkTransferRequest traslado manual entre ubicaciones, sin ticket.
type BulkTransferRequest struct {
	FromLocationID string            `json:"from_location_id" validate:"required"`
	ToLocationID   string            `json:"to_location_id" validate:"required"`
	Lines          []BulkLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateBatchRequest alta de lote de fabricación.
type CreateBatchRequest struct {
	ProductID         string `json:"product_id" validate:"required"`
	BatchNumber       string `json:"batch_number"`
	Status            string `json:"status" validate:"omitempty,oneof=RELEASED QUARANTINE REJECTED"`
	ExpiresAt         string `json:"expires_at"`         // YYYY-MM-DD, vacío = no vence
	ManufacturingDate string `json:"manufacturing_date"` // YYYY-MM-DD
}

// UpdateBatchStatusRequest transición de estado de lote.
type UpdateBatchStatusRequest struct {
	Status  string `json:"status" validate:"required,oneof=RELEASED QUARANTINE REJECTED"`
	Version int    `json:"version" validate:"gte=0"`
}

// StockRequestItemResponse renglón de solicitud serializado.
type StockRequestItemResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
}

// StockRequestResponse solicitud de stock serializada.
type StockRequestResponse struct {
	ID        string                     `json:"id"`
	Number    string                     `json:"number"`
	City      string                     `json:"city"`
	Status    string                     `json:"status"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	Items     []StockRequestItemResponse `json:"items"`
}

// BatchResponse lote serializado.
type BatchResponse struct {
	ID                string     `json:"id"`
	ProductID         string     `json:"product_id"`
	BatchNumber       string     `json:"batch_number"`
	Status            string     `json:"status"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	ManufacturingDate time.Time  `json:"manufacturing_date"`
	Version           int        `json:"version"`
}
