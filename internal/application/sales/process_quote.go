package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// ProcessQuoteUseCase orquesta la transición CREATED -> PROCESSED de una
// cotización: crea la orden de venta con sus líneas, invoca al asignador de
// reservas y marca la cotización como procesada, todo en una transacción.
// Un faltante de stock en cualquier línea revierte la transición completa.
type ProcessQuoteUseCase struct {
	tx     TxRunner
	events EventPublisher
	log    *logger.Logger
}

// NewProcessQuoteUseCase construye el caso de uso.
func NewProcessQuoteUseCase(tx TxRunner, events EventPublisher, log *logger.Logger) *ProcessQuoteUseCase {
	return &ProcessQuoteUseCase{tx: tx, events: events, log: log}
}

// Process procesa la cotización exactamente una vez. actorCity no vacío
// indica un actor acotado a sucursal: su ciudad debe coincidir con la del
// cliente (ErrForbidden si no). Reintentarlo sobre una cotización ya
// procesada devuelve ErrConflict.
func (uc *ProcessQuoteUseCase) Process(ctx context.Context, tenantID, userID, actorCity, quoteID string) (*dto.ProcessQuoteResponse, error) {
	var (
		quote        *entity.Quote
		order        *entity.SalesOrder
		changed      []*entity.InventoryBalance
		reservations []*entity.SalesOrderReservation
	)

	err := uc.tx.RunSales(ctx, func(r SalesRepos) error {
		q, err := r.Quotes.GetByID(quoteID)
		if err != nil {
			return err
		}
		if q == nil || q.TenantID != tenantID {
			return fmt.Errorf("%w: cotización %s", domain.ErrNotFound, quoteID)
		}
		if q.Status == entity.QuoteStatusProcessed {
			return fmt.Errorf("%w: la cotización ya fue procesada", domain.ErrConflict)
		}
		customer, err := r.Customers.GetByID(q.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.TenantID != tenantID {
			return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, q.CustomerID)
		}
		if actorCity != "" && !strings.EqualFold(actorCity, customer.City) {
			return fmt.Errorf("%w: el actor opera fuera de la ciudad del cliente", domain.ErrForbidden)
		}

		now := time.Now().UTC()
		today := StartOfTodayUTC(now)
		deliveryDate := today.AddDate(0, 0, q.DeliveryDays)

		order = &entity.SalesOrder{
			ID:           uuid.New().String(),
			TenantID:     tenantID,
			Number:       OrderNumberFromQuote(q.Number),
			CustomerID:   q.CustomerID,
			QuoteID:      &q.ID,
			Status:       entity.OrderStatusReserved,
			DeliveryDate: deliveryDate,
			CreatedBy:    userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Orders.Create(order); err != nil {
			return err
		}

		allocLines := make([]AllocationLine, 0, len(q.Lines))
		for _, ql := range q.Lines {
			line := &entity.SalesOrderLine{
				ID:                   uuid.New().String(),
				SalesOrderID:         order.ID,
				ProductID:            ql.ProductID,
				Quantity:             ql.Quantity,
				PresentationID:       ql.PresentationID,
				PresentationQuantity: ql.PresentationQuantity,
				BatchID:              ql.BatchID,
				UnitPrice:            effectivePrice(ql.UnitPrice, ql.DiscountPct, q.GlobalDiscountPct),
			}
			if err := r.Orders.CreateLine(line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)
			allocLines = append(allocLines, AllocationLine{
				ID:        line.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				BatchID:   line.BatchID,
			})
		}

		changed, reservations, err = ReserveForOrderInCity(r.Balances, r.Reservations, r.Products, ReserveInput{
			TenantID: tenantID,
			UserID:   userID,
			OrderID:  order.ID,
			City:     customer.City,
			Today:    today,
			Lines:    allocLines,
		})
		if err != nil {
			return err
		}

		if err := r.Quotes.MarkProcessed(q.ID, q.Version, now); err != nil {
			return err
		}
		processedAt := now
		q.Status = entity.QuoteStatusProcessed
		q.ProcessedAt = &processedAt
		q.Version++
		quote = q

		uc.audit(r, tenantID, userID, "quote.process", "quote", q.ID,
			map[string]string{"status": entity.QuoteStatusCreated},
			map[string]string{"status": entity.QuoteStatusProcessed, "order_id": order.ID})
		uc.audit(r, tenantID, userID, "order.create", "sales_order", order.ID,
			nil, map[string]string{"number": order.Number, "quote_id": q.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.emitProcessed(ctx, tenantID, quote, order, changed)
	return buildProcessResponse(order, reservations, changed), nil
}

// effectivePrice aplica descuento de línea y descuento global (porcentajes
// 0..100) sobre el precio unitario base.
func effectivePrice(unitPrice, lineDiscountPct, globalDiscountPct decimal.Decimal) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	one := decimal.NewFromInt(1)
	price := unitPrice.
		Mul(one.Sub(lineDiscountPct.Div(hundred))).
		Mul(one.Sub(globalDiscountPct.Div(hundred)))
	return price
}

// audit escribe la bitácora dentro de la misma transacción. Un fallo de
// auditoría no bloquea la transición: se registra y se continúa.
func (uc *ProcessQuoteUseCase) audit(r SalesRepos, tenantID, userID, action, entityType, entityID string, before, after any) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if before != nil {
		entry.Before, _ = json.Marshal(before)
	}
	if after != nil {
		entry.After, _ = json.Marshal(after)
	}
	if err := r.Audit.Record(entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Str("entity_id", entityID).Msg("auditoría no registrada")
	}
}

// emitProcessed publica los eventos realtime post-commit. La corrección del
// núcleo nunca depende de que lleguen: entrega best-effort.
func (uc *ProcessQuoteUseCase) emitProcessed(ctx context.Context, tenantID string, quote *entity.Quote, order *entity.SalesOrder, changed []*entity.InventoryBalance) {
	uc.events.Publish(ctx, tenantID, EventQuoteProcessed, map[string]any{
		"quote_id": quote.ID,
		"number":   quote.Number,
		"order_id": order.ID,
	})
	uc.events.Publish(ctx, tenantID, EventOrderCreated, map[string]any{
		"order_id":    order.ID,
		"number":      order.Number,
		"customer_id": order.CustomerID,
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
}

func buildProcessResponse(order *entity.SalesOrder, reservations []*entity.SalesOrderReservation, changed []*entity.InventoryBalance) *dto.ProcessQuoteResponse {
	resp := &dto.ProcessQuoteResponse{
		Order: dto.OrderResponse{
			ID:           order.ID,
			Number:       order.Number,
			CustomerID:   order.CustomerID,
			QuoteID:      order.QuoteID,
			Status:       order.Status,
			DeliveryDate: order.DeliveryDate,
		},
	}
	for _, l := range order.Lines {
		resp.Order.Lines = append(resp.Order.Lines, dto.QuoteLineResponse{
			ID:                   l.ID,
			ProductID:            l.ProductID,
			Quantity:             l.Quantity,
			PresentationID:       l.PresentationID,
			PresentationQuantity: l.PresentationQuantity,
			BatchID:              l.BatchID,
			UnitPrice:            l.UnitPrice,
		})
	}
	for _, res := range reservations {
		resp.Reservations = append(resp.Reservations, dto.ReservationDTO{
			ID:                 res.ID,
			SalesOrderLineID:   res.SalesOrderLineID,
			InventoryBalanceID: res.InventoryBalanceID,
			Quantity:           res.Quantity,
		})
	}
	for _, b := range changed {
		resp.ChangedBalances = append(resp.ChangedBalances, dto.ChangedBalanceDTO{
			BalanceID:        b.ID,
			ProductID:        b.ProductID,
			BatchID:          b.BatchID,
			LocationID:       b.LocationID,
			Quantity:         b.Quantity,
			ReservedQuantity: b.ReservedQuantity,
			Version:          b.Version,
		})
	}
	return resp
}
