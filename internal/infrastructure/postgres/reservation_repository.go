package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo implementación de ReservationRepository (usable con pool o tx).
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// Create persiste el registro de reserva (inmutable).
func (r *ReservationRepo) Create(res *entity.SalesOrderReservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sales_order_reservations (id, tenant_id, sales_order_id, sales_order_line_id, inventory_balance_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.TenantID, res.SalesOrderID, res.SalesOrderLineID,
		res.InventoryBalanceID, res.Quantity, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// ListByOrder lista las reservas de una orden en orden de creación.
func (r *ReservationRepo) ListByOrder(salesOrderID string) ([]*entity.SalesOrderReservation, error) {
	query := `
		SELECT id, tenant_id, sales_order_id, sales_order_line_id, inventory_balance_id, quantity, created_at
		FROM sales_order_reservations WHERE sales_order_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []*entity.SalesOrderReservation
	for rows.Next() {
		var res entity.SalesOrderReservation
		if err := rows.Scan(&res.ID, &res.TenantID, &res.SalesOrderID, &res.SalesOrderLineID,
			&res.InventoryBalanceID, &res.Quantity, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// DeleteByOrder borra las reservas de la orden al cancelarla.
func (r *ReservationRepo) DeleteByOrder(salesOrderID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM sales_order_reservations WHERE sales_order_id = $1`, salesOrderID)
	if err != nil {
		return fmt.Errorf("delete reservations: %w", err)
	}
	return nil
}
