package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

// QuoteRepository puerto para cotizaciones y sus líneas.
type QuoteRepository interface {
	// GetByID carga la cotización con sus líneas; (nil, nil) si no existe.
	GetByID(id string) (*entity.Quote, error)
	Create(q *entity.Quote) error
	CreateLine(l *entity.QuoteLine) error
	// UpdateHeader actualiza descuento global, días de entrega y dirección
	// con chequeo de versión; cero filas -> ErrConflict.
	UpdateHeader(q *entity.Quote, expectedVersion int) error
	DeleteLines(quoteID string) error
	// MarkProcessed pasa CREATED -> PROCESSED con chequeo de versión.
	MarkProcessed(id string, expectedVersion int, processedAt time.Time) error
	List(tenantID string) ([]*entity.Quote, error)
}

// SalesOrderRepository puerto para órdenes de venta.
type SalesOrderRepository interface {
	GetByID(id string) (*entity.SalesOrder, error)
	Create(o *entity.SalesOrder) error
	CreateLine(l *entity.SalesOrderLine) error
	// MarkCancelled pasa RESERVED -> CANCELLED; cero filas -> ErrConflict.
	MarkCancelled(id string) error
	List(tenantID string) ([]*entity.SalesOrder, error)
}

// ReservationRepository puerto para reservas de stock por línea de orden.
type ReservationRepository interface {
	Create(r *entity.SalesOrderReservation) error
	ListByOrder(salesOrderID string) ([]*entity.SalesOrderReservation, error)
	// DeleteByOrder borra las reservas de la orden (cancelación).
	DeleteByOrder(salesOrderID string) error
}

// StockRequestRepository puerto para solicitudes de stock entre sucursales.
type StockRequestRepository interface {
	GetByID(id string) (*entity.StockMovementRequest, error)
	Create(r *entity.StockMovementRequest) error
	CreateItem(it *entity.StockMovementRequestItem) error
	List(tenantID, status string) ([]*entity.StockMovementRequest, error)
	UpdateStatus(id, status string) error
	// DecrementRemaining descuenta qty del remanente del renglón; no permite
	// dejarlo negativo (cero filas afectadas -> ErrConflict).
	DecrementRemaining(itemID string, qty decimal.Decimal) error
}
