package postgres

import (
	"context"
	"fmt"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador de documentos por (tenant, año, clave).
// El upsert-incremento es atómico a nivel de fila, así dos transacciones
// concurrentes nunca reciben el mismo valor.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next devuelve el siguiente valor del contador, creándolo en 1 si no existe.
func (r *SequenceRepo) Next(tenantID string, year int, key string) (int64, error) {
	query := `
		INSERT INTO sequences (tenant_id, year, key, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, year, key)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(context.Background(), query, tenantID, year, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence %s/%d/%s: %w", tenantID, year, key, err)
	}
	return value, nil
}
