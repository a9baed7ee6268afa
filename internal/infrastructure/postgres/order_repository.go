package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de SalesOrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, tenant_id, number, customer_id, quote_id, status, delivery_date, created_by, created_at, updated_at`

// GetByID carga la orden con sus líneas; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE id = $1`
	var o entity.SalesOrder
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.TenantID, &o.Number, &o.CustomerID, &o.QuoteID,
		&o.Status, &o.DeliveryDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	lines, err := r.linesByOrder(o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepo) linesByOrder(orderID string) ([]*entity.SalesOrderLine, error) {
	query := `
		SELECT id, sales_order_id, product_id, quantity, presentation_id, presentation_quantity, batch_id, unit_price
		FROM sales_order_lines WHERE sales_order_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalesOrderLine
	for rows.Next() {
		var l entity.SalesOrderLine
		if err := rows.Scan(&l.ID, &l.SalesOrderID, &l.ProductID, &l.Quantity,
			&l.PresentationID, &l.PresentationQuantity, &l.BatchID, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Create persiste el encabezado de la orden.
func (r *OrderRepo) Create(o *entity.SalesOrder) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		o.ID, o.TenantID, o.Number, o.CustomerID, o.QuoteID,
		o.Status, o.DeliveryDate, o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.Number)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de orden.
func (r *OrderRepo) CreateLine(l *entity.SalesOrderLine) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_order_lines (id, sales_order_id, product_id, quantity, presentation_id, presentation_quantity, batch_id, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.SalesOrderID, l.ProductID, l.Quantity,
		l.PresentationID, l.PresentationQuantity, l.BatchID, l.UnitPrice)
	if err != nil {
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// MarkCancelled pasa RESERVED -> CANCELLED una sola vez.
func (r *OrderRepo) MarkCancelled(id string) error {
	query := `
		UPDATE sales_orders
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.OrderStatusCancelled, entity.OrderStatusReserved)
	if err != nil {
		return fmt.Errorf("mark order cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la orden %s no está reservada", domain.ErrConflict, id)
	}
	return nil
}

// List lista las órdenes del tenant (sin líneas), más recientes primero.
func (r *OrderRepo) List(tenantID string) ([]*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalesOrder
	for rows.Next() {
		var o entity.SalesOrder
		if err := rows.Scan(&o.ID, &o.TenantID, &o.Number, &o.CustomerID, &o.QuoteID,
			&o.Status, &o.DeliveryDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
