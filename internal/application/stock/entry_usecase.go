package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// EntryUseCase ingreso de stock al libro: suma cantidad al balance del
// (producto, lote?, ubicación), creándolo si no existe.
type EntryUseCase struct {
	tx     TxRunner
	events EventPublisher
	log    *logger.Logger
}

// NewEntryUseCase construye el caso de uso.
func NewEntryUseCase(tx TxRunner, events EventPublisher, log *logger.Logger) *EntryUseCase {
	return &EntryUseCase{tx: tx, events: events, log: log}
}

// Create registra el ingreso y devuelve el balance resultante.
func (uc *EntryUseCase) Create(ctx context.Context, tenantID, userID string, in dto.StockEntryRequest) (*entity.InventoryBalance, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity debe ser positivo", domain.ErrInvalidInput)
	}

	var balance *entity.InventoryBalance
	err := uc.tx.RunStock(ctx, func(r StockRepos) error {
		product, err := r.Products.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil || product.TenantID != tenantID {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		loc, err := r.Warehouses.GetLocation(in.LocationID)
		if err != nil {
			return err
		}
		if loc == nil || loc.TenantID != tenantID {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, in.LocationID)
		}
		if !loc.IsActive {
			return fmt.Errorf("%w: ubicación inactiva", domain.ErrInvalidInput)
		}
		if in.BatchID != nil {
			batch, err := r.Batches.GetByID(*in.BatchID)
			if err != nil {
				return err
			}
			if batch == nil || batch.TenantID != tenantID || batch.ProductID != product.ID {
				return fmt.Errorf("%w: lote %s", domain.ErrNotFound, *in.BatchID)
			}
		}

		now := time.Now().UTC()
		balance, err = r.Balances.Get(tenantID, product.ID, in.BatchID, in.LocationID)
		if err != nil {
			return err
		}
		if balance == nil {
			balance = &entity.InventoryBalance{
				ID:         uuid.New().String(),
				TenantID:   tenantID,
				ProductID:  product.ID,
				BatchID:    in.BatchID,
				LocationID: in.LocationID,
				Quantity:   in.Quantity,
				UpdatedAt:  now,
			}
			return r.Balances.Upsert(balance)
		}
		if err := r.Balances.AdjustQuantity(balance.ID, balance.Version, in.Quantity); err != nil {
			return err
		}
		balance.Quantity = balance.Quantity.Add(in.Quantity)
		balance.Version++
		balance.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, tenantID, EventBalanceChanged, map[string]any{
		"balance_id":        balance.ID,
		"product_id":        balance.ProductID,
		"location_id":       balance.LocationID,
		"quantity":          balance.Quantity,
		"reserved_quantity": balance.ReservedQuantity,
		"version":           balance.Version,
	})
	return balance, nil
}
