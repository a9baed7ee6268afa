package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

// InventoryBalanceRepository puerto del libro de stock. Es el único recurso
// mutable compartido del núcleo: solo se modifica dentro de una transacción
// que también inserta la reserva correspondiente.
//
// Los métodos *CandidatesInCity devuelven balances de ubicaciones activas
// cuya bodega está en la ciudad (comparación case-insensitive), ya ordenados
// según la política de asignación:
//
//   - BatchCandidatesInCity: solo el lote indicado; updated_at desc, id asc.
//   - ExpiringCandidatesInCity: lotes RELEASED con vencimiento >= today;
//     expires_at asc, updated_at desc, id asc (FEFO).
//   - NonExpiringCandidatesInCity: lotes RELEASED sin vencimiento;
//     updated_at desc, id asc.
//   - UnbatchedCandidatesInCity: balances sin lote; updated_at desc, id asc.
type InventoryBalanceRepository interface {
	GetByID(id string) (*entity.InventoryBalance, error)
	Get(tenantID, productID string, batchID *string, locationID string) (*entity.InventoryBalance, error)
	Upsert(b *entity.InventoryBalance) error

	// AvailableInCity suma max(0, quantity - reserved) del stock elegible del
	// producto en la ciudad (lotes RELEASED no vencidos o sin lote).
	AvailableInCity(tenantID, city, productID string, today time.Time) (decimal.Decimal, error)

	BatchCandidatesInCity(tenantID, city, productID, batchID string) ([]*entity.InventoryBalance, error)
	ExpiringCandidatesInCity(tenantID, city, productID string, today time.Time) ([]*entity.InventoryBalance, error)
	NonExpiringCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error)
	UnbatchedCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error)

	// Reserve incrementa reserved_quantity y version en un solo update
	// condicionado a version = expectedVersion; cero filas -> ErrConflict.
	Reserve(id string, expectedVersion int, qty decimal.Decimal) error
	// Release decrementa reserved_quantity (cancelaciones); mismas reglas.
	Release(id string, expectedVersion int, qty decimal.Decimal) error
	// AdjustQuantity suma delta a quantity sin dejar quantity < reserved;
	// violar la invariante o perder la versión -> ErrConflict.
	AdjustQuantity(id string, expectedVersion int, delta decimal.Decimal) error
}

// SequenceRepository contador por (tenant, año, clave). Next hace
// upsert-incremento atómico y devuelve el valor asignado; nunca escanea
// números de documento existentes.
type SequenceRepository interface {
	Next(tenantID string, year int, key string) (int64, error)
}

// AuditRepository bitácora append-only de transiciones.
type AuditRepository interface {
	Record(e *entity.AuditEntry) error
}
