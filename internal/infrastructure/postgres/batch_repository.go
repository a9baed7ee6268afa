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

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, tenant_id, product_id, batch_number, status, expires_at, manufacturing_date, version, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.BatchNumber, &b.Status,
		&b.ExpiresAt, &b.ManufacturingDate, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	return &b, nil
}

// GetByID devuelve el lote o (nil, nil) si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return scanBatch(r.q.QueryRow(context.Background(), query, id))
}

// GetByNumber busca por número de lote dentro de producto y tenant.
func (r *BatchRepo) GetByNumber(tenantID, productID, batchNumber string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE tenant_id = $1 AND product_id = $2 AND batch_number = $3`
	return scanBatch(r.q.QueryRow(context.Background(), query, tenantID, productID, batchNumber))
}

// Create persiste el lote. Número duplicado por producto -> ErrDuplicate.
func (r *BatchRepo) Create(b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (id, tenant_id, product_id, batch_number, status, expires_at, manufacturing_date, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.TenantID, b.ProductID, b.BatchNumber, b.Status,
		b.ExpiresAt, b.ManufacturingDate, b.Version, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s ya existe para el producto", domain.ErrDuplicate, b.BatchNumber)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// UpdateStatus compara-e-incrementa la versión; cero filas -> ErrConflict.
func (r *BatchRepo) UpdateStatus(id, status string, expectedVersion int) error {
	query := `
		UPDATE batches
		SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3`
	tag, err := r.q.Exec(context.Background(), query, id, status, expectedVersion)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: versión de lote desactualizada", domain.ErrConflict)
	}
	return nil
}

// ListByProduct lista los lotes del producto, próximos a vencer primero.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE product_id = $1 ORDER BY expires_at NULLS LAST, batch_number`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.BatchNumber, &b.Status,
			&b.ExpiresAt, &b.ManufacturingDate, &b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
