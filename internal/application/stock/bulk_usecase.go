package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// BulkUseCase despachos y traslados manuales de stock: la misma primitiva de
// movimiento que el asignador automático, pero sobre balances elegidos
// explícitamente por el operador en lugar de la ordenación FEFO. Mismo
// contrato transaccional: todo o nada.
type BulkUseCase struct {
	tx     TxRunner
	events EventPublisher
	log    *logger.Logger
}

// NewBulkUseCase construye el caso de uso.
func NewBulkUseCase(tx TxRunner, events EventPublisher, log *logger.Logger) *BulkUseCase {
	return &BulkUseCase{tx: tx, events: events, log: log}
}

// BulkFulfill mueve stock de balances elegidos hacia la ubicación destino y
// descuenta los remanentes de las solicitudes abiertas indicadas. Las
// solicitudes cuyos renglones quedan en cero pasan a FULFILLED.
func (uc *BulkUseCase) BulkFulfill(ctx context.Context, tenantID, userID string, in dto.BulkFulfillRequest) ([]dto.ChangedBalanceDTO, error) {
	var (
		changed   []*entity.InventoryBalance
		fulfilled []string
	)
	err := uc.tx.RunStock(ctx, func(r StockRepos) error {
		requests := make([]*entity.StockMovementRequest, 0, len(in.RequestIDs))
		for _, id := range in.RequestIDs {
			req, err := r.Requests.GetByID(id)
			if err != nil {
				return err
			}
			if req == nil || req.TenantID != tenantID {
				return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
			}
			if req.Status != entity.StockRequestStatusOpen {
				return fmt.Errorf("%w: la solicitud %s no está abierta", domain.ErrConflict, req.Number)
			}
			requests = append(requests, req)
		}

		moved, err := uc.moveLines(r, tenantID, in.FromLocationID, in.ToLocationID, in.Lines)
		if err != nil {
			return err
		}
		changed = moved.balances

		// Descontar remanentes por producto, en el orden dado de solicitudes.
		for productID, qty := range moved.byProduct {
			remaining := qty
			for _, req := range requests {
				for _, item := range req.Items {
					if item.ProductID != productID || !item.RemainingQuantity.IsPositive() {
						continue
					}
					dec := decimal.Min(item.RemainingQuantity, remaining)
					if !dec.IsPositive() {
						continue
					}
					if err := r.Requests.DecrementRemaining(item.ID, dec); err != nil {
						return err
					}
					item.RemainingQuantity = item.RemainingQuantity.Sub(dec)
					remaining = remaining.Sub(dec)
					if !remaining.IsPositive() {
						break
					}
				}
				if !remaining.IsPositive() {
					break
				}
			}
		}

		for _, req := range requests {
			done := true
			for _, item := range req.Items {
				if item.RemainingQuantity.GreaterThan(domain.QtyEpsilon) {
					done = false
					break
				}
			}
			if done {
				if err := r.Requests.UpdateStatus(req.ID, entity.StockRequestStatusFulfilled); err != nil {
					return err
				}
				fulfilled = append(fulfilled, req.ID)
			}
		}

		uc.audit(r, tenantID, userID, "stock.bulk_fulfill", in.FromLocationID, map[string]any{
			"to_location": in.ToLocationID,
			"requests":    in.RequestIDs,
			"lines":       len(in.Lines),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emitChanges(ctx, tenantID, changed)
	for _, id := range fulfilled {
		uc.events.Publish(ctx, tenantID, EventRequestFulfilled, map[string]any{"request_id": id})
	}
	return changedToDTO(changed), nil
}

// BulkTransfer traslada stock entre ubicaciones sin ticket de por medio.
func (uc *BulkUseCase) BulkTransfer(ctx context.Context, tenantID, userID string, in dto.BulkTransferRequest) ([]dto.ChangedBalanceDTO, error) {
	var changed []*entity.InventoryBalance
	err := uc.tx.RunStock(ctx, func(r StockRepos) error {
		moved, err := uc.moveLines(r, tenantID, in.FromLocationID, in.ToLocationID, in.Lines)
		if err != nil {
			return err
		}
		changed = moved.balances
		uc.audit(r, tenantID, userID, "stock.bulk_transfer", in.FromLocationID, map[string]any{
			"to_location": in.ToLocationID,
			"lines":       len(in.Lines),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.emitChanges(ctx, tenantID, changed)
	return changedToDTO(changed), nil
}

type movedStock struct {
	balances  []*entity.InventoryBalance
	byProduct map[string]decimal.Decimal
}

// moveLines valida y aplica los movimientos de todas las líneas. La
// validación corre completa antes de mutar: un faltante en cualquier línea
// aborta el despacho entero con la lista de faltantes.
func (uc *BulkUseCase) moveLines(r StockRepos, tenantID, fromLocationID, toLocationID string, lines []dto.BulkLineRequest) (*movedStock, error) {
	if fromLocationID == toLocationID {
		return nil, fmt.Errorf("%w: origen y destino no pueden coincidir", domain.ErrInvalidInput)
	}
	fromLoc, err := r.Warehouses.GetLocation(fromLocationID)
	if err != nil {
		return nil, err
	}
	toLoc, err := r.Warehouses.GetLocation(toLocationID)
	if err != nil {
		return nil, err
	}
	if fromLoc == nil || fromLoc.TenantID != tenantID || toLoc == nil || toLoc.TenantID != tenantID {
		return nil, fmt.Errorf("%w: ubicación origen o destino", domain.ErrNotFound)
	}
	if !fromLoc.IsActive || !toLoc.IsActive {
		return nil, fmt.Errorf("%w: ubicación inactiva", domain.ErrInvalidInput)
	}
	fromCity, err := r.Warehouses.LocationCity(fromLocationID)
	if err != nil {
		return nil, err
	}

	origins := make([]*entity.InventoryBalance, 0, len(lines))
	var shortages []domain.ShortageItem
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: quantity debe ser positivo", domain.ErrInvalidInput)
		}
		bal, err := r.Balances.GetByID(line.BalanceID)
		if err != nil {
			return nil, err
		}
		if bal == nil || bal.TenantID != tenantID {
			return nil, fmt.Errorf("%w: balance %s", domain.ErrNotFound, line.BalanceID)
		}
		if bal.LocationID != fromLocationID {
			return nil, fmt.Errorf("%w: el balance %s no está en la ubicación origen", domain.ErrInvalidInput, line.BalanceID)
		}
		if bal.Available().Add(domain.QtyEpsilon).LessThan(line.Quantity) {
			shortages = append(shortages, domain.ShortageItem{
				ProductID: bal.ProductID,
				Required:  line.Quantity,
				Available: bal.Available(),
			})
		}
		origins = append(origins, bal)
	}
	if len(shortages) > 0 {
		return nil, &domain.InsufficientStockError{City: fromCity, Items: shortages}
	}

	now := time.Now().UTC()
	out := &movedStock{byProduct: make(map[string]decimal.Decimal)}
	for i, line := range lines {
		origin := origins[i]
		if err := r.Balances.AdjustQuantity(origin.ID, origin.Version, line.Quantity.Neg()); err != nil {
			return nil, err
		}
		origin.Quantity = origin.Quantity.Sub(line.Quantity)
		origin.Version++
		origin.UpdatedAt = now

		dest, err := r.Balances.Get(tenantID, origin.ProductID, origin.BatchID, toLocationID)
		if err != nil {
			return nil, err
		}
		if dest == nil {
			dest = &entity.InventoryBalance{
				ID:         uuid.New().String(),
				TenantID:   tenantID,
				ProductID:  origin.ProductID,
				BatchID:    origin.BatchID,
				LocationID: toLocationID,
				Quantity:   line.Quantity,
				UpdatedAt:  now,
			}
			if err := r.Balances.Upsert(dest); err != nil {
				return nil, err
			}
		} else {
			if err := r.Balances.AdjustQuantity(dest.ID, dest.Version, line.Quantity); err != nil {
				return nil, err
			}
			dest.Quantity = dest.Quantity.Add(line.Quantity)
			dest.Version++
			dest.UpdatedAt = now
		}

		out.balances = append(out.balances, origin, dest)
		out.byProduct[origin.ProductID] = out.byProduct[origin.ProductID].Add(line.Quantity)
	}
	return out, nil
}

func (uc *BulkUseCase) emitChanges(ctx context.Context, tenantID string, changed []*entity.InventoryBalance) {
	for _, b := range changed {
		uc.events.Publish(ctx, tenantID, EventBalanceChanged, map[string]any{
			"balance_id":        b.ID,
			"product_id":        b.ProductID,
			"location_id":       b.LocationID,
			"quantity":          b.Quantity,
			"reserved_quantity": b.ReservedQuantity,
			"version":           b.Version,
		})
	}
}

func (uc *BulkUseCase) audit(r StockRepos, tenantID, userID, action, entityID string, after any) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: "stock",
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	entry.After, _ = json.Marshal(after)
	if err := r.Audit.Record(entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("auditoría no registrada")
	}
}

func changedToDTO(changed []*entity.InventoryBalance) []dto.ChangedBalanceDTO {
	out := make([]dto.ChangedBalanceDTO, 0, len(changed))
	for _, b := range changed {
		out = append(out, dto.ChangedBalanceDTO{
			BalanceID:        b.ID,
			ProductID:        b.ProductID,
			BatchID:          b.BatchID,
			LocationID:       b.LocationID,
			Quantity:         b.Quantity,
			ReservedQuantity: b.ReservedQuantity,
			Version:          b.Version,
		})
	}
	return out
}
