package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// AllocationLine línea de orden a reservar, ya en unidades base.
// BatchID no nulo fija un lote específico (despachos dirigidos).
type AllocationLine struct {
	ID        string // ID de la línea de orden
	ProductID string
	BatchID   *string
	Quantity  decimal.Decimal
}

// ReserveInput parámetros de una asignación de reservas.
type ReserveInput struct {
	TenantID string
	UserID   string
	OrderID  string
	City     string
	Today    time.Time // inicio del día UTC; gobierna la elegibilidad por vencimiento
	Lines    []AllocationLine
}

// ReserveForOrderInCity asigna balances de la ciudad a cada línea de la orden
// y escribe las reservas. Debe invocarse con repos atados a la misma
// transacción que creó la orden y sus líneas: cualquier error revierte todo.
//
// Política de asignación por línea:
//  1. Re-chequeo de disponibilidad (no se confía en lecturas previas): si
//     algún producto queda corto, aborta toda la operación con
//     InsufficientStockError y la lista completa de faltantes.
//  2. Pools de candidatos consumidos estrictamente en orden: lote fijado; o
//     bien lotes con vencimiento (FEFO), lotes sin vencimiento, stock sin
//     lote. Cada pool se agota antes de tocar el siguiente.
//  3. Consumo voraz: take = min(disponible, restante) por balance; se
//     incrementa reserved_quantity con chequeo de versión y se inserta la
//     reserva correspondiente en el mismo paso.
//  4. Guardia de carrera: si tras agotar los pools queda restante > ε (otro
//     tx consumió stock entre el chequeo y el consumo), aborta con el
//     faltante realmente encontrado. Jamás queda una reserva parcial.
func ReserveForOrderInCity(
	balances repository.InventoryBalanceRepository,
	reservations repository.ReservationRepository,
	products repository.ProductRepository,
	in ReserveInput,
) (changed []*entity.InventoryBalance, created []*entity.SalesOrderReservation, err error) {
	if err := precheckAvailability(balances, products, in); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	changedByID := make(map[string]*entity.InventoryBalance)
	order := make([]string, 0)

	for _, line := range in.Lines {
		remaining := line.Quantity
		pools := candidatePools(balances, in, line)
		for _, fetch := range pools {
			if remaining.LessThanOrEqual(domain.QtyEpsilon) {
				break
			}
			candidates, err := fetch()
			if err != nil {
				return nil, nil, err
			}
			for _, cand := range candidates {
				if remaining.LessThanOrEqual(domain.QtyEpsilon) {
					break
				}
				// El mismo balance puede haber sido tocado por una línea previa
				// de esta misma orden: usar la copia local actualizada.
				if seen, ok := changedByID[cand.ID]; ok {
					cand = seen
				}
				take := decimal.Min(cand.Available(), remaining)
				if !take.IsPositive() {
					continue
				}
				if err := balances.Reserve(cand.ID, cand.Version, take); err != nil {
					return nil, nil, err
				}
				cand.ReservedQuantity = cand.ReservedQuantity.Add(take)
				cand.Version++
				cand.UpdatedAt = now
				if _, ok := changedByID[cand.ID]; !ok {
					order = append(order, cand.ID)
				}
				changedByID[cand.ID] = cand

				res := &entity.SalesOrderReservation{
					ID:                 uuid.New().String(),
					TenantID:           in.TenantID,
					SalesOrderID:       in.OrderID,
					SalesOrderLineID:   line.ID,
					InventoryBalanceID: cand.ID,
					Quantity:           take,
					CreatedAt:          now,
				}
				if err := reservations.Create(res); err != nil {
					return nil, nil, err
				}
				created = append(created, res)
				remaining = remaining.Sub(take)
			}
		}
		if remaining.GreaterThan(domain.QtyEpsilon) {
			// Otro tx ganó la carrera entre el chequeo y el consumo.
			return nil, nil, &domain.InsufficientStockError{
				City: in.City,
				Items: []domain.ShortageItem{{
					ProductID:   line.ProductID,
					ProductName: productName(products, line.ProductID),
					Required:    line.Quantity,
					Available:   line.Quantity.Sub(remaining),
				}},
			}
		}
	}

	changed = make([]*entity.InventoryBalance, 0, len(order))
	for _, id := range order {
		changed = append(changed, changedByID[id])
	}
	return changed, created, nil
}

// precheckAvailability repite el cálculo de faltantes dentro de la
// transacción, acumulando el requerido por producto entre líneas.
func precheckAvailability(
	balances repository.InventoryBalanceRepository,
	products repository.ProductRepository,
	in ReserveInput,
) error {
	requiredByProduct := make(map[string]decimal.Decimal)
	productOrder := make([]string, 0)
	for _, line := range in.Lines {
		if _, ok := requiredByProduct[line.ProductID]; !ok {
			productOrder = append(productOrder, line.ProductID)
		}
		requiredByProduct[line.ProductID] = requiredByProduct[line.ProductID].Add(line.Quantity)
	}

	var shortages []domain.ShortageItem
	for _, productID := range productOrder {
		required := requiredByProduct[productID]
		available, err := balances.AvailableInCity(in.TenantID, in.City, productID, in.Today)
		if err != nil {
			return err
		}
		if available.Add(domain.QtyEpsilon).LessThan(required) {
			shortages = append(shortages, domain.ShortageItem{
				ProductID:   productID,
				ProductName: productName(products, productID),
				Required:    required,
				Available:   available,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{City: in.City, Items: shortages}
	}
	return nil
}

// candidatePools devuelve los pools en el orden de precedencia contractual.
// Se materializan de forma perezosa: un pool no se consulta si los anteriores
// ya cubrieron la línea.
func candidatePools(
	balances repository.InventoryBalanceRepository,
	in ReserveInput,
	line AllocationLine,
) []func() ([]*entity.InventoryBalance, error) {
	if line.BatchID != nil {
		batchID := *line.BatchID
		return []func() ([]*entity.InventoryBalance, error){
			func() ([]*entity.InventoryBalance, error) {
				return balances.BatchCandidatesInCity(in.TenantID, in.City, line.ProductID, batchID)
			},
		}
	}
	return []func() ([]*entity.InventoryBalance, error){
		func() ([]*entity.InventoryBalance, error) {
			return balances.ExpiringCandidatesInCity(in.TenantID, in.City, line.ProductID, in.Today)
		},
		func() ([]*entity.InventoryBalance, error) {
			return balances.NonExpiringCandidatesInCity(in.TenantID, in.City, line.ProductID)
		},
		func() ([]*entity.InventoryBalance, error) {
			return balances.UnbatchedCandidatesInCity(in.TenantID, in.City, line.ProductID)
		},
	}
}

func productName(products repository.ProductRepository, productID string) string {
	p, err := products.GetByID(productID)
	if err != nil || p == nil {
		return ""
	}
	return p.Name
}
