package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// OrderUseCase órdenes de venta. Las órdenes solo nacen al procesar una
// cotización, así que no hay alta directa; cancelar una orden RESERVED
// devuelve sus reservas al stock disponible.
type OrderUseCase struct {
	tx           TxRunner
	orders       repository.SalesOrderRepository
	reservations repository.ReservationRepository
	events       EventPublisher
	log          *logger.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(tx TxRunner, orders repository.SalesOrderRepository, reservations repository.ReservationRepository, events EventPublisher, log *logger.Logger) *OrderUseCase {
	return &OrderUseCase{tx: tx, orders: orders, reservations: reservations, events: events, log: log}
}

// Get devuelve la orden con sus líneas y reservas.
func (uc *OrderUseCase) Get(ctx context.Context, tenantID, id string) (*dto.OrderResponse, []dto.ReservationDTO, error) {
	o, err := uc.orders.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if o == nil || o.TenantID != tenantID {
		return nil, nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	reservations, err := uc.reservations.ListByOrder(o.ID)
	if err != nil {
		return nil, nil, err
	}
	resDTOs := make([]dto.ReservationDTO, 0, len(reservations))
	for _, r := range reservations {
		resDTOs = append(resDTOs, dto.ReservationDTO{
			ID:                 r.ID,
			SalesOrderLineID:   r.SalesOrderLineID,
			InventoryBalanceID: r.InventoryBalanceID,
			Quantity:           r.Quantity,
		})
	}
	return orderToResponse(o), resDTOs, nil
}

// List lista las órdenes del tenant.
func (uc *OrderUseCase) List(ctx context.Context, tenantID string) ([]*dto.OrderResponse, error) {
	orders, err := uc.orders.List(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToResponse(o))
	}
	return out, nil
}

// Cancel pasa la orden RESERVED a CANCELLED liberando cada reserva sobre su
// balance, todo en una transacción. Una orden despachada o ya cancelada
// devuelve ErrConflict.
func (uc *OrderUseCase) Cancel(ctx context.Context, tenantID, userID, id string) (*dto.OrderResponse, error) {
	var (
		order   *entity.SalesOrder
		changed []*entity.InventoryBalance
	)
	err := uc.tx.RunSales(ctx, func(r SalesRepos) error {
		o, err := r.Orders.GetByID(id)
		if err != nil {
			return err
		}
		if o == nil || o.TenantID != tenantID {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
		}
		if o.Status != entity.OrderStatusReserved {
			return fmt.Errorf("%w: la orden %s no está reservada", domain.ErrConflict, o.Number)
		}

		reservations, err := r.Reservations.ListByOrder(o.ID)
		if err != nil {
			return err
		}
		released := make(map[string]*entity.InventoryBalance)
		for _, res := range reservations {
			bal := released[res.InventoryBalanceID]
			if bal == nil {
				bal, err = r.Balances.GetByID(res.InventoryBalanceID)
				if err != nil {
					return err
				}
				if bal == nil {
					return fmt.Errorf("%w: balance %s", domain.ErrNotFound, res.InventoryBalanceID)
				}
				released[bal.ID] = bal
				changed = append(changed, bal)
			}
			if err := r.Balances.Release(bal.ID, bal.Version, res.Quantity); err != nil {
				return err
			}
			bal.ReservedQuantity = bal.ReservedQuantity.Sub(res.Quantity)
			bal.Version++
			bal.UpdatedAt = time.Now().UTC()
		}
		if err := r.Reservations.DeleteByOrder(o.ID); err != nil {
			return err
		}
		if err := r.Orders.MarkCancelled(o.ID); err != nil {
			return err
		}
		o.Status = entity.OrderStatusCancelled
		o.UpdatedAt = time.Now().UTC()
		order = o

		entry := &entity.AuditEntry{
			ID:         uuid.New().String(),
			TenantID:   tenantID,
			UserID:     userID,
			Action:     "order.cancel",
			EntityType: "sales_order",
			EntityID:   o.ID,
			CreatedAt:  time.Now().UTC(),
		}
		entry.After, _ = json.Marshal(map[string]any{"number": o.Number, "released": len(reservations)})
		if err := r.Audit.Record(entry); err != nil {
			uc.log.Warn().Err(err).Str("order_id", o.ID).Msg("auditoría no registrada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, tenantID, EventOrderCancelled, map[string]any{
		"order_id": order.ID,
		"number":   order.Number,
	})
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
	return orderToResponse(order), nil
}

func orderToResponse(o *entity.SalesOrder) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		CustomerID:   o.CustomerID,
		QuoteID:      o.QuoteID,
		Status:       o.Status,
		DeliveryDate: o.DeliveryDate,
	}
	for _, l := range o.Lines {
		resp.Lines = append(resp.Lines, dto.QuoteLineResponse{
			ID:                   l.ID,
			ProductID:            l.ProductID,
			Quantity:             l.Quantity,
			PresentationID:       l.PresentationID,
			PresentationQuantity: l.PresentationQuantity,
			BatchID:              l.BatchID,
			UnitPrice:            l.UnitPrice,
		})
	}
	return resp
}
