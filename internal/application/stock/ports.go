package stock

import (
	"context"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// StockRepos repositorios atados a la transacción activa de RunStock.
type StockRepos struct {
	Balances      repository.InventoryBalanceRepository
	Requests      repository.StockRequestRepository
	Batches       repository.BatchRepository
	Products      repository.ProductRepository
	Presentations repository.PresentationRepository
	Warehouses    repository.WarehouseRepository
	Sequences     repository.SequenceRepository
	Audit         repository.AuditRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repos atados a esa
// tx; error -> Rollback de todos los movimientos del despacho.
type TxRunner interface {
	RunStock(ctx context.Context, fn func(r StockRepos) error) error
}

// EventPublisher canal realtime por tenant (post-commit, best-effort).
type EventPublisher interface {
	Publish(ctx context.Context, tenantID, event string, payload any)
}

// Eventos emitidos por el flujo de stock.
const (
	EventRequestCreated   = "stock.request.created"
	EventRequestFulfilled = "stock.request.fulfilled"
	EventBalanceChanged   = "stock.balance.changed"
)

// Claves de secuencia documental del flujo de stock.
const (
	SequenceKeyBatch   = "LOT"
	SequenceKeyRequest = "SOL"

	BatchPrefix   = "LOT"
	RequestPrefix = "SOL"
)
