package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.QuoteRepository = (*QuoteRepo)(nil)

// QuoteRepo implementación de QuoteRepository (usable con pool o tx).
type QuoteRepo struct {
	q Querier
}

// NewQuoteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewQuoteRepository(q Querier) *QuoteRepo {
	return &QuoteRepo{q: q}
}

const quoteColumns = `id, tenant_id, number, customer_id, status, global_discount_pct, delivery_days, delivery_address, processed_at, version, created_by, created_at, updated_at`

// GetByID carga la cotización con sus líneas; (nil, nil) si no existe.
func (r *QuoteRepo) GetByID(id string) (*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	var q entity.Quote
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&q.ID, &q.TenantID, &q.Number, &q.CustomerID, &q.Status,
		&q.GlobalDiscountPct, &q.DeliveryDays, &q.DeliveryAddress,
		&q.ProcessedAt, &q.Version, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quote: %w", err)
	}

	lines, err := r.linesByQuote(q.ID)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return &q, nil
}

func (r *QuoteRepo) linesByQuote(quoteID string) ([]*entity.QuoteLine, error) {
	query := `
		SELECT id, quote_id, product_id, quantity, presentation_id, presentation_quantity, batch_id, unit_price, discount_pct
		FROM quote_lines WHERE quote_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("list quote lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.QuoteLine
	for rows.Next() {
		var l entity.QuoteLine
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.ProductID, &l.Quantity,
			&l.PresentationID, &l.PresentationQuantity, &l.BatchID, &l.UnitPrice, &l.DiscountPct); err != nil {
			return nil, fmt.Errorf("scan quote line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Create persiste el encabezado de la cotización.
func (r *QuoteRepo) Create(q *entity.Quote) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		q.ID, q.TenantID, q.Number, q.CustomerID, q.Status,
		q.GlobalDiscountPct, q.DeliveryDays, q.DeliveryAddress,
		q.ProcessedAt, q.Version, q.CreatedBy, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: cotización %s", domain.ErrDuplicate, q.Number)
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de cotización.
func (r *QuoteRepo) CreateLine(l *entity.QuoteLine) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO quote_lines (id, quote_id, product_id, quantity, presentation_id, presentation_quantity, batch_id, unit_price, discount_pct, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.QuoteID, l.ProductID, l.Quantity,
		l.PresentationID, l.PresentationQuantity, l.BatchID, l.UnitPrice, l.DiscountPct)
	if err != nil {
		return fmt.Errorf("insert quote line: %w", err)
	}
	return nil
}

// UpdateHeader actualiza los campos editables con chequeo de versión.
func (r *QuoteRepo) UpdateHeader(q *entity.Quote, expectedVersion int) error {
	query := `
		UPDATE quotes
		SET global_discount_pct = $2, delivery_days = $3, delivery_address = $4,
		    version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $5 AND status = $6`
	tag, err := r.q.Exec(context.Background(), query,
		q.ID, q.GlobalDiscountPct, q.DeliveryDays, q.DeliveryAddress,
		expectedVersion, entity.QuoteStatusCreated)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cotización %s cambió durante la edición", domain.ErrConflict, q.ID)
	}
	return nil
}

// DeleteLines borra todas las líneas de la cotización (reemplazo total).
func (r *QuoteRepo) DeleteLines(quoteID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM quote_lines WHERE quote_id = $1`, quoteID)
	if err != nil {
		return fmt.Errorf("delete quote lines: %w", err)
	}
	return nil
}

// MarkProcessed pasa CREATED -> PROCESSED una sola vez.
func (r *QuoteRepo) MarkProcessed(id string, expectedVersion int, processedAt time.Time) error {
	query := `
		UPDATE quotes
		SET status = $2, processed_at = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query,
		id, entity.QuoteStatusProcessed, processedAt, expectedVersion, entity.QuoteStatusCreated)
	if err != nil {
		return fmt.Errorf("mark quote processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: cotización %s ya procesada o modificada", domain.ErrConflict, id)
	}
	return nil
}

// List lista las cotizaciones del tenant (sin líneas), más recientes primero.
func (r *QuoteRepo) List(tenantID string) ([]*entity.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Quote
	for rows.Next() {
		var q entity.Quote
		if err := rows.Scan(&q.ID, &q.TenantID, &q.Number, &q.CustomerID, &q.Status,
			&q.GlobalDiscountPct, &q.DeliveryDays, &q.DeliveryAddress,
			&q.ProcessedAt, &q.Version, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}
