package sales

import (
	"context"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// SalesRepos repositorios atados a la transacción activa que recibe el
// callback de RunSales. Ningún componente abre su propia transacción:
// todos trabajan sobre el mismo tx del orquestador.
type SalesRepos struct {
	Quotes        repository.QuoteRepository
	Orders        repository.SalesOrderRepository
	Reservations  repository.ReservationRepository
	Balances      repository.InventoryBalanceRepository
	Products      repository.ProductRepository
	Presentations repository.PresentationRepository
	Customers     repository.CustomerRepository
	Sequences     repository.SequenceRepository
	Audit         repository.AuditRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repos atados a esa
// tx. Si fn devuelve error se hace Rollback de todo: orden, líneas, reservas,
// balances y estado de la cotización caen juntos. No existe commit parcial.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(r SalesRepos) error) error
}

// EventPublisher canal de notificaciones realtime por tenant. Es señal de
// UX/observabilidad: se invoca después del commit y sus fallos se registran,
// nunca afectan la transacción ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, tenantID, event string, payload any)
}

// Eventos emitidos por el flujo de ventas.
const (
	EventQuoteProcessed = "sales.quote.processed"
	EventOrderCreated   = "sales.order.created"
	EventOrderCancelled = "sales.order.cancelled"
	EventBalanceChanged = "stock.balance.changed"
)
