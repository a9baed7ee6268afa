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

var _ repository.PresentationRepository = (*PresentationRepo)(nil)

// PresentationRepo implementación de PresentationRepository (usable con pool o tx).
type PresentationRepo struct {
	q Querier
}

// NewPresentationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPresentationRepository(q Querier) *PresentationRepo {
	return &PresentationRepo{q: q}
}

const presentationColumns = `id, tenant_id, product_id, name, units_per_presentation, is_default, price_override, sort_order, is_active, created_at, updated_at`

func scanPresentation(row pgx.Row) (*entity.Presentation, error) {
	var p entity.Presentation
	err := row.Scan(&p.ID, &p.TenantID, &p.ProductID, &p.Name, &p.UnitsPerPresentation,
		&p.IsDefault, &p.PriceOverride, &p.SortOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan presentation: %w", err)
	}
	return &p, nil
}

// GetByID devuelve la presentación o (nil, nil) si no existe.
func (r *PresentationRepo) GetByID(id string) (*entity.Presentation, error) {
	query := `SELECT ` + presentationColumns + ` FROM presentations WHERE id = $1`
	return scanPresentation(r.q.QueryRow(context.Background(), query, id))
}

// GetDefault devuelve la presentación default activa del producto, si la hay.
func (r *PresentationRepo) GetDefault(productID string) (*entity.Presentation, error) {
	query := `SELECT ` + presentationColumns + ` FROM presentations WHERE product_id = $1 AND is_default AND is_active`
	return scanPresentation(r.q.QueryRow(context.Background(), query, productID))
}

// ListByProduct lista las presentaciones del producto por sort_order.
func (r *PresentationRepo) ListByProduct(productID string) ([]*entity.Presentation, error) {
	query := `SELECT ` + presentationColumns + ` FROM presentations WHERE product_id = $1 ORDER BY sort_order, name`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list presentations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Presentation
	for rows.Next() {
		var p entity.Presentation
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ProductID, &p.Name, &p.UnitsPerPresentation,
			&p.IsDefault, &p.PriceOverride, &p.SortOrder, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan presentation: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Create persiste la presentación. El índice único parcial sobre
// (product_id) WHERE is_default asiste la invariante "una default por producto".
func (r *PresentationRepo) Create(p *entity.Presentation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	query := `
		INSERT INTO presentations (id, tenant_id, product_id, name, units_per_presentation, is_default, price_override, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.TenantID, p.ProductID, p.Name, p.UnitsPerPresentation,
		p.IsDefault, p.PriceOverride, p.SortOrder, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: presentación default duplicada", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert presentation: %w", err)
	}
	return nil
}

// Update actualiza la presentación completa.
func (r *PresentationRepo) Update(p *entity.Presentation) error {
	query := `
		UPDATE presentations
		SET name = $2, units_per_presentation = $3, is_default = $4, price_override = $5,
		    sort_order = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.UnitsPerPresentation, p.IsDefault, p.PriceOverride,
		p.SortOrder, p.IsActive, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: presentación default duplicada", domain.ErrDuplicate)
		}
		return fmt.Errorf("update presentation: %w", err)
	}
	return nil
}
