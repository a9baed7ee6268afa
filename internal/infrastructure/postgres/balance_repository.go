package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.InventoryBalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implementación de InventoryBalanceRepository sobre pgx.
// Las lecturas de candidatos toman FOR UPDATE sobre las filas del libro;
// el bloqueo optimista por versión cubre el resto.
type BalanceRepo struct {
	q Querier
}

// NewBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBalanceRepository(q Querier) *BalanceRepo {
	return &BalanceRepo{q: q}
}

const balanceColumns = `ib.id, ib.tenant_id, ib.product_id, ib.batch_id, ib.location_id, ib.quantity, ib.reserved_quantity, ib.version, ib.updated_at`

func scanBalance(row pgx.Row) (*entity.InventoryBalance, error) {
	var b entity.InventoryBalance
	err := row.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.BatchID, &b.LocationID,
		&b.Quantity, &b.ReservedQuantity, &b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan balance: %w", err)
	}
	return &b, nil
}

// GetByID devuelve el balance o (nil, nil) si no existe.
func (r *BalanceRepo) GetByID(id string) (*entity.InventoryBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM inventory_balances ib WHERE ib.id = $1`
	return scanBalance(r.q.QueryRow(context.Background(), query, id))
}

// Get busca por clave natural (producto, lote?, ubicación).
func (r *BalanceRepo) Get(tenantID, productID string, batchID *string, locationID string) (*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances ib
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND ib.batch_id IS NOT DISTINCT FROM $3
		  AND ib.location_id = $4`
	return scanBalance(r.q.QueryRow(context.Background(), query, tenantID, productID, batchID, locationID))
}

// Upsert inserta la fila o acumula quantity sobre la clave natural existente.
func (r *BalanceRepo) Upsert(b *entity.InventoryBalance) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_balances (id, tenant_id, product_id, batch_id, location_id, quantity, reserved_quantity, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, product_id, location_id, COALESCE(batch_id, ''))
		DO UPDATE SET quantity = inventory_balances.quantity + EXCLUDED.quantity,
		              version = inventory_balances.version + 1,
		              updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		b.ID, b.TenantID, b.ProductID, b.BatchID, b.LocationID,
		b.Quantity, b.ReservedQuantity, b.Version, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return nil
}

// Cláusula de elegibilidad compartida: ubicación y bodega activas, y el lote
// (si hay) RELEASED y no vencido a la fecha de corte.
const eligibleJoin = `
	JOIN locations l ON l.id = ib.location_id AND l.is_active
	JOIN warehouses w ON w.id = l.warehouse_id AND w.is_active
	LEFT JOIN batches b ON b.id = ib.batch_id`

// AvailableInCity suma la disponibilidad elegible del producto en la ciudad.
func (r *BalanceRepo) AvailableInCity(tenantID, city, productID string, today time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(GREATEST(ib.quantity - ib.reserved_quantity, 0)), 0)
		FROM inventory_balances ib` + eligibleJoin + `
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND lower(w.city) = lower($3)
		  AND (ib.batch_id IS NULL OR (b.status = $4 AND (b.expires_at IS NULL OR b.expires_at >= $5)))`
	var total decimal.Decimal
	err := r.q.QueryRow(context.Background(), query,
		tenantID, productID, city, entity.BatchStatusReleased, today).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("available in city: %w", err)
	}
	return total, nil
}

func (r *BalanceRepo) queryCandidates(query string, args ...any) ([]*entity.InventoryBalance, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []*entity.InventoryBalance
	for rows.Next() {
		var b entity.InventoryBalance
		if err := rows.Scan(&b.ID, &b.TenantID, &b.ProductID, &b.BatchID, &b.LocationID,
			&b.Quantity, &b.ReservedQuantity, &b.Version, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// BatchCandidatesInCity balances del lote indicado en la ciudad.
func (r *BalanceRepo) BatchCandidatesInCity(tenantID, city, productID, batchID string) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances ib` + eligibleJoin + `
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND lower(w.city) = lower($3)
		  AND ib.batch_id = $4
		ORDER BY ib.updated_at DESC, ib.id ASC
		FOR UPDATE OF ib`
	return r.queryCandidates(query, tenantID, productID, city, batchID)
}

// ExpiringCandidatesInCity lotes RELEASED con vencimiento, FEFO.
func (r *BalanceRepo) ExpiringCandidatesInCity(tenantID, city, productID string, today time.Time) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances ib` + eligibleJoin + `
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND lower(w.city) = lower($3)
		  AND b.status = $4 AND b.expires_at IS NOT NULL AND b.expires_at >= $5
		ORDER BY b.expires_at ASC, ib.updated_at DESC, ib.id ASC
		FOR UPDATE OF ib`
	return r.queryCandidates(query, tenantID, productID, city, entity.BatchStatusReleased, today)
}

// NonExpiringCandidatesInCity lotes RELEASED sin vencimiento.
func (r *BalanceRepo) NonExpiringCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances ib` + eligibleJoin + `
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND lower(w.city) = lower($3)
		  AND b.status = $4 AND b.expires_at IS NULL
		ORDER BY ib.updated_at DESC, ib.id ASC
		FOR UPDATE OF ib`
	return r.queryCandidates(query, tenantID, productID, city, entity.BatchStatusReleased)
}

// UnbatchedCandidatesInCity balances sin lote.
func (r *BalanceRepo) UnbatchedCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM inventory_balances ib` + eligibleJoin + `
		WHERE ib.tenant_id = $1 AND ib.product_id = $2
		  AND lower(w.city) = lower($3)
		  AND ib.batch_id IS NULL
		ORDER BY ib.updated_at DESC, ib.id ASC
		FOR UPDATE OF ib`
	return r.queryCandidates(query, tenantID, productID, city)
}

// Reserve incrementa la reserva condicionado a la versión esperada y a la
// invariante reserved <= quantity. Cero filas afectadas -> ErrConflict.
func (r *BalanceRepo) Reserve(id string, expectedVersion int, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_balances
		SET reserved_quantity = reserved_quantity + $3,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND version = $2
		  AND reserved_quantity + $3 <= quantity`
	tag, err := r.q.Exec(context.Background(), query, id, expectedVersion, qty)
	if err != nil {
		return fmt.Errorf("reserve balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance %s cambió durante la reserva", domain.ErrConflict, id)
	}
	return nil
}

// Release libera reserva previamente tomada.
func (r *BalanceRepo) Release(id string, expectedVersion int, qty decimal.Decimal) error {
	query := `
		UPDATE inventory_balances
		SET reserved_quantity = reserved_quantity - $3,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND version = $2
		  AND reserved_quantity - $3 >= 0`
	tag, err := r.q.Exec(context.Background(), query, id, expectedVersion, qty)
	if err != nil {
		return fmt.Errorf("release balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance %s cambió durante la liberación", domain.ErrConflict, id)
	}
	return nil
}

// AdjustQuantity suma delta a quantity sin dejar quantity < reserved.
func (r *BalanceRepo) AdjustQuantity(id string, expectedVersion int, delta decimal.Decimal) error {
	query := `
		UPDATE inventory_balances
		SET quantity = quantity + $3,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND version = $2
		  AND quantity + $3 >= reserved_quantity`
	tag, err := r.q.Exec(context.Background(), query, id, expectedVersion, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: balance %s cambió durante el ajuste", domain.ErrConflict, id)
	}
	return nil
}
