package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.StockRequestRepository = (*StockRequestRepo)(nil)

// StockRequestRepo implementación de StockRequestRepository (usable con pool o tx).
type StockRequestRepo struct {
	q Querier
}

// NewStockRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRequestRepository(q Querier) *StockRequestRepo {
	return &StockRequestRepo{q: q}
}

const requestColumns = `id, tenant_id, number, city, status, notes, created_by, created_at, updated_at`

// GetByID carga la solicitud con sus renglones; (nil, nil) si no existe.
func (r *StockRequestRepo) GetByID(id string) (*entity.StockMovementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM stock_movement_requests WHERE id = $1`
	var req entity.StockMovementRequest
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&req.ID, &req.TenantID, &req.Number, &req.City, &req.Status,
		&req.Notes, &req.CreatedBy, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock request: %w", err)
	}

	items, err := r.itemsByRequest(req.ID)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return &req, nil
}

func (r *StockRequestRepo) itemsByRequest(requestID string) ([]*entity.StockMovementRequestItem, error) {
	query := `
		SELECT id, request_id, product_id, quantity, remaining_quantity
		FROM stock_movement_request_items WHERE request_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list request items: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovementRequestItem
	for rows.Next() {
		var it entity.StockMovementRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ProductID, &it.Quantity, &it.RemainingQuantity); err != nil {
			return nil, fmt.Errorf("scan request item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// Create persiste el encabezado de la solicitud.
func (r *StockRequestRepo) Create(req *entity.StockMovementRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movement_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.TenantID, req.Number, req.City, req.Status,
		req.Notes, req.CreatedBy, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: solicitud %s", domain.ErrDuplicate, req.Number)
		}
		return fmt.Errorf("insert stock request: %w", err)
	}
	return nil
}

// CreateItem persiste un renglón de la solicitud.
func (r *StockRequestRepo) CreateItem(it *entity.StockMovementRequestItem) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movement_request_items (id, request_id, product_id, quantity, remaining_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`
	_, err := r.q.Exec(context.Background(), query,
		it.ID, it.RequestID, it.ProductID, it.Quantity, it.RemainingQuantity)
	if err != nil {
		return fmt.Errorf("insert request item: %w", err)
	}
	return nil
}

// List lista solicitudes del tenant, opcionalmente filtradas por estado.
func (r *StockRequestRepo) List(tenantID, status string) ([]*entity.StockMovementRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM stock_movement_requests WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock requests: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovementRequest
	for rows.Next() {
		var req entity.StockMovementRequest
		if err := rows.Scan(&req.ID, &req.TenantID, &req.Number, &req.City, &req.Status,
			&req.Notes, &req.CreatedBy, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock request: %w", err)
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}

// UpdateStatus cambia el estado de la solicitud.
func (r *StockRequestRepo) UpdateStatus(id, status string) error {
	query := `UPDATE stock_movement_requests SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, status)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	return nil
}

// DecrementRemaining descuenta qty del remanente sin dejarlo negativo.
func (r *StockRequestRepo) DecrementRemaining(itemID string, qty decimal.Decimal) error {
	query := `
		UPDATE stock_movement_request_items
		SET remaining_quantity = remaining_quantity - $2
		WHERE id = $1 AND remaining_quantity - $2 >= 0`
	tag, err := r.q.Exec(context.Background(), query, itemID, qty)
	if err != nil {
		return fmt.Errorf("decrement remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: renglón %s sin remanente suficiente", domain.ErrConflict, itemID)
	}
	return nil
}
