package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// RequestUseCase tickets de solicitud de stock entre sucursales. El traslado
// de stock entre ciudades nunca es automático: cuando una ciudad queda corta,
// se abre uno de estos tickets y otra sucursal lo despacha con BulkFulfill.
type RequestUseCase struct {
	tx       TxRunner
	requests repository.StockRequestRepository
	events   EventPublisher
	log      *logger.Logger
}

// NewRequestUseCase construye el caso de uso.
func NewRequestUseCase(tx TxRunner, requests repository.StockRequestRepository, events EventPublisher, log *logger.Logger) *RequestUseCase {
	return &RequestUseCase{tx: tx, requests: requests, events: events, log: log}
}

// Create numera la solicitud (secuencia SOL) y crea un renglón por línea con
// el remanente igual a la cantidad pedida en unidades base.
func (uc *RequestUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateStockRequestRequest) (*entity.StockMovementRequest, error) {
	var request *entity.StockMovementRequest
	err := uc.tx.RunStock(ctx, func(r StockRepos) error {
		now := time.Now().UTC()
		year := now.Year()
		n, err := r.Sequences.Next(tenantID, year, SequenceKeyRequest)
		if err != nil {
			return err
		}
		request = &entity.StockMovementRequest{
			ID:        uuid.New().String(),
			TenantID:  tenantID,
			Number:    sales.FormatNumber(RequestPrefix, year, n),
			City:      in.City,
			Status:    entity.StockRequestStatusOpen,
			Notes:     in.Notes,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := r.Requests.Create(request); err != nil {
			return err
		}
		for _, line := range in.Lines {
			resolved, err := sales.ResolveLine(r.Products, r.Presentations, tenantID, line)
			if err != nil {
				return err
			}
			item := &entity.StockMovementRequestItem{
				ID:                uuid.New().String(),
				RequestID:         request.ID,
				ProductID:         resolved.Product.ID,
				Quantity:          resolved.BaseQuantity,
				RemainingQuantity: resolved.BaseQuantity,
			}
			if err := r.Requests.CreateItem(item); err != nil {
				return err
			}
			request.Items = append(request.Items, item)
		}

		entry := &entity.AuditEntry{
			ID:         uuid.New().String(),
			TenantID:   tenantID,
			UserID:     userID,
			Action:     "stock.request.create",
			EntityType: "stock_request",
			EntityID:   request.ID,
			CreatedAt:  now,
		}
		entry.After, _ = json.Marshal(map[string]any{"number": request.Number, "city": request.City})
		if err := r.Audit.Record(entry); err != nil {
			uc.log.Warn().Err(err).Msg("auditoría no registrada")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, tenantID, EventRequestCreated, map[string]any{
		"request_id": request.ID,
		"number":     request.Number,
		"city":       request.City,
	})
	return request, nil
}

// Get devuelve la solicitud con sus renglones.
func (uc *RequestUseCase) Get(ctx context.Context, tenantID, id string) (*entity.StockMovementRequest, error) {
	req, err := uc.requests.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.TenantID != tenantID {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	return req, nil
}

// List lista solicitudes, opcionalmente filtradas por estado.
func (uc *RequestUseCase) List(ctx context.Context, tenantID, status string) ([]*entity.StockMovementRequest, error) {
	return uc.requests.List(tenantID, status)
}

// Cancel pasa una solicitud OPEN a CANCELLED.
func (uc *RequestUseCase) Cancel(ctx context.Context, tenantID, userID, id string) error {
	return uc.tx.RunStock(ctx, func(r StockRepos) error {
		req, err := r.Requests.GetByID(id)
		if err != nil {
			return err
		}
		if req == nil || req.TenantID != tenantID {
			return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
		}
		if req.Status != entity.StockRequestStatusOpen {
			return fmt.Errorf("%w: solo se cancelan solicitudes abiertas", domain.ErrConflict)
		}
		if err := r.Requests.UpdateStatus(req.ID, entity.StockRequestStatusCancelled); err != nil {
			return err
		}
		entry := &entity.AuditEntry{
			ID:         uuid.New().String(),
			TenantID:   tenantID,
			UserID:     userID,
			Action:     "stock.request.cancel",
			EntityType: "stock_request",
			EntityID:   req.ID,
			CreatedAt:  time.Now().UTC(),
		}
		entry.Before, _ = json.Marshal(map[string]string{"status": entity.StockRequestStatusOpen})
		entry.After, _ = json.Marshal(map[string]string{"status": entity.StockRequestStatusCancelled})
		if err := r.Audit.Record(entry); err != nil {
			uc.log.Warn().Err(err).Msg("auditoría no registrada")
		}
		return nil
	})
}
