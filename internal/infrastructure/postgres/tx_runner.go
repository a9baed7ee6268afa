package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gonmore/farmasnt-sub004/internal/application/catalog"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
)

// Ensure TxRunner implementa los runners de ventas, stock y catálogo.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ stock.TxRunner = (*TxRunner)(nil)
var _ catalog.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSales inicia una transacción con los repos del flujo de ventas y hace
// Commit o Rollback. Procesar una cotización, crear la orden, reservar y
// actualizar balances viven todos en esta transacción.
func (r *TxRunner) RunSales(ctx context.Context, fn func(r sales.SalesRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := sales.SalesRepos{
		Quotes:        NewQuoteRepository(tx),
		Orders:        NewSalesOrderRepository(tx),
		Reservations:  NewReservationRepository(tx),
		Balances:      NewBalanceRepository(tx),
		Products:      NewProductRepository(tx),
		Presentations: NewPresentationRepository(tx),
		Customers:     NewCustomerRepository(tx),
		Sequences:     NewSequenceRepository(tx),
		Audit:         NewAuditRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunStock inicia una transacción con los repos del flujo de stock
// (despachos, traslados, solicitudes, lotes) y hace Commit o Rollback.
func (r *TxRunner) RunStock(ctx context.Context, fn func(r stock.StockRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := stock.StockRepos{
		Balances:      NewBalanceRepository(tx),
		Requests:      NewStockRequestRepository(tx),
		Batches:       NewBatchRepository(tx),
		Products:      NewProductRepository(tx),
		Presentations: NewPresentationRepository(tx),
		Warehouses:    NewWarehouseRepository(tx),
		Sequences:     NewSequenceRepository(tx),
		Audit:         NewAuditRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCatalog inicia una transacción con los repos de catálogo y hace Commit o
// Rollback. La pareja degradar/promover default de presentaciones vive aquí.
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(r catalog.CatalogRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := catalog.CatalogRepos{
		Products:      NewProductRepository(tx),
		Presentations: NewPresentationRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
