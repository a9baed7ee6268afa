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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación de WarehouseRepository (usable con pool o tx).
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID devuelve la bodega o (nil, nil) si no existe.
func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	query := `SELECT id, tenant_id, code, name, city, is_active, created_at, updated_at FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&w.ID, &w.TenantID, &w.Code, &w.Name, &w.City, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Create persiste la bodega. Código duplicado -> ErrDuplicate.
func (r *WarehouseRepo) Create(w *entity.Warehouse) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	query := `
		INSERT INTO warehouses (id, tenant_id, code, name, city, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		w.ID, w.TenantID, w.Code, w.Name, w.City, w.IsActive, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Code)
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// List lista las bodegas del tenant.
func (r *WarehouseRepo) List(tenantID string) ([]*entity.Warehouse, error) {
	query := `SELECT id, tenant_id, code, name, city, is_active, created_at, updated_at FROM warehouses WHERE tenant_id = $1 ORDER BY code`
	rows, err := r.q.Query(context.Background(), query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var out []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.TenantID, &w.Code, &w.Name, &w.City, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		out = append(out, &w)
	}
	return out, rows.Err()
}

// GetLocation devuelve la ubicación o (nil, nil) si no existe.
func (r *WarehouseRepo) GetLocation(id string) (*entity.Location, error) {
	query := `SELECT id, tenant_id, warehouse_id, code, is_active, created_at FROM locations WHERE id = $1`
	var l entity.Location
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.TenantID, &l.WarehouseID, &l.Code, &l.IsActive, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// CreateLocation persiste una ubicación de bodega.
func (r *WarehouseRepo) CreateLocation(l *entity.Location) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO locations (id, tenant_id, warehouse_id, code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query, l.ID, l.TenantID, l.WarehouseID, l.Code, l.IsActive, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ubicación %s", domain.ErrDuplicate, l.Code)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// ListLocations lista las ubicaciones de una bodega.
func (r *WarehouseRepo) ListLocations(warehouseID string) ([]*entity.Location, error) {
	query := `SELECT id, tenant_id, warehouse_id, code, is_active, created_at FROM locations WHERE warehouse_id = $1 ORDER BY code`
	rows, err := r.q.Query(context.Background(), query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.TenantID, &l.WarehouseID, &l.Code, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// LocationCity resuelve la ciudad de la bodega dueña de la ubicación.
func (r *WarehouseRepo) LocationCity(locationID string) (string, error) {
	query := `
		SELECT w.city
		FROM locations l
		JOIN warehouses w ON w.id = l.warehouse_id
		WHERE l.id = $1`
	var city string
	err := r.q.QueryRow(context.Background(), query, locationID).Scan(&city)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
		}
		return "", fmt.Errorf("location city: %w", err)
	}
	return city, nil
}
