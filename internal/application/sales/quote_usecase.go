package sales

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
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// QuoteUseCase CRUD de cotizaciones. Solo las cotizaciones CREATED se pueden
// editar; una vez procesadas son inmutables.
type QuoteUseCase struct {
	tx        TxRunner
	quotes    repository.QuoteRepository
	customers repository.CustomerRepository
	log       *logger.Logger
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(tx TxRunner, quotes repository.QuoteRepository, customers repository.CustomerRepository, log *logger.Logger) *QuoteUseCase {
	return &QuoteUseCase{tx: tx, quotes: quotes, customers: customers, log: log}
}

// Create numera la cotización con la secuencia COT del año en curso y
// resuelve cada línea a unidades base dentro de una sola transacción.
func (uc *QuoteUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	customer, err := uc.customers.GetByID(in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
	}

	var quote *entity.Quote
	err = uc.tx.RunSales(ctx, func(r SalesRepos) error {
		now := time.Now().UTC()
		year := now.Year()
		n, err := r.Sequences.Next(tenantID, year, SequenceKeyQuote)
		if err != nil {
			return err
		}

		globalDiscount := decimal.Zero
		if in.GlobalDiscountPct != nil {
			globalDiscount = *in.GlobalDiscountPct
		}
		quote = &entity.Quote{
			ID:                uuid.New().String(),
			TenantID:          tenantID,
			Number:            FormatNumber(QuotePrefix, year, n),
			CustomerID:        customer.ID,
			Status:            entity.QuoteStatusCreated,
			GlobalDiscountPct: globalDiscount,
			DeliveryDays:      in.DeliveryDays,
			DeliveryAddress:   in.DeliveryAddress,
			CreatedBy:         userID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := r.Quotes.Create(quote); err != nil {
			return err
		}
		if err := createQuoteLines(r, tenantID, quote, in.Lines); err != nil {
			return err
		}

		after, _ := json.Marshal(map[string]string{"number": quote.Number, "customer_id": quote.CustomerID})
		uc.recordAudit(r, tenantID, userID, "quote.create", quote.ID, nil, after)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quoteToResponse(quote), nil
}

// Get devuelve la cotización con sus líneas.
func (uc *QuoteUseCase) Get(ctx context.Context, tenantID, id string) (*dto.QuoteResponse, error) {
	q, err := uc.quotes.GetByID(id)
	if err != nil {
		return nil, err
	}
	if q == nil || q.TenantID != tenantID {
		return nil, fmt.Errorf("%w: cotización %s", domain.ErrNotFound, id)
	}
	return quoteToResponse(q), nil
}

// GetEntity devuelve la entidad completa (para el render de PDF).
func (uc *QuoteUseCase) GetEntity(ctx context.Context, tenantID, id string) (*entity.Quote, *entity.Customer, error) {
	q, err := uc.quotes.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if q == nil || q.TenantID != tenantID {
		return nil, nil, fmt.Errorf("%w: cotización %s", domain.ErrNotFound, id)
	}
	customer, err := uc.customers.GetByID(q.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	return q, customer, nil
}

// List lista las cotizaciones del tenant.
func (uc *QuoteUseCase) List(ctx context.Context, tenantID string) ([]*dto.QuoteResponse, error) {
	qs, err := uc.quotes.List(tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.QuoteResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, quoteToResponse(q))
	}
	return out, nil
}

// Update edita cabecera y opcionalmente reemplaza las líneas de una
// cotización CREATED. La versión del request guarda contra ediciones
// concurrentes (ErrConflict si no coincide).
func (uc *QuoteUseCase) Update(ctx context.Context, tenantID, userID, id string, in dto.UpdateQuoteRequest) (*dto.QuoteResponse, error) {
	var quote *entity.Quote
	err := uc.tx.RunSales(ctx, func(r SalesRepos) error {
		q, err := r.Quotes.GetByID(id)
		if err != nil {
			return err
		}
		if q == nil || q.TenantID != tenantID {
			return fmt.Errorf("%w: cotización %s", domain.ErrNotFound, id)
		}
		if q.Status != entity.QuoteStatusCreated {
			return fmt.Errorf("%w: la cotización ya fue procesada", domain.ErrConflict)
		}

		before, _ := json.Marshal(map[string]any{
			"global_discount_pct": q.GlobalDiscountPct,
			"delivery_days":       q.DeliveryDays,
			"delivery_address":    q.DeliveryAddress,
		})

		if in.GlobalDiscountPct != nil {
			q.GlobalDiscountPct = *in.GlobalDiscountPct
		}
		if in.DeliveryDays != nil {
			q.DeliveryDays = *in.DeliveryDays
		}
		if in.DeliveryAddress != nil {
			q.DeliveryAddress = *in.DeliveryAddress
		}
		if err := r.Quotes.UpdateHeader(q, in.Version); err != nil {
			return err
		}
		q.Version = in.Version + 1

		if in.Lines != nil {
			if err := r.Quotes.DeleteLines(q.ID); err != nil {
				return err
			}
			q.Lines = nil
			if err := createQuoteLines(r, tenantID, q, in.Lines); err != nil {
				return err
			}
		}

		after, _ := json.Marshal(map[string]any{
			"global_discount_pct": q.GlobalDiscountPct,
			"delivery_days":       q.DeliveryDays,
			"delivery_address":    q.DeliveryAddress,
		})
		uc.recordAudit(r, tenantID, userID, "quote.update", q.ID, before, after)
		quote = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quoteToResponse(quote), nil
}

// createQuoteLines resuelve y persiste las líneas de una cotización.
func createQuoteLines(r SalesRepos, tenantID string, quote *entity.Quote, lines []dto.LineRequest) error {
	for _, lr := range lines {
		resolved, err := ResolveLine(r.Products, r.Presentations, tenantID, lr)
		if err != nil {
			return err
		}
		line := &entity.QuoteLine{
			ID:                   uuid.New().String(),
			QuoteID:              quote.ID,
			ProductID:            resolved.Product.ID,
			Quantity:             resolved.BaseQuantity,
			PresentationID:       resolved.PresentationID,
			PresentationQuantity: resolved.PresentationQuantity,
			BatchID:              resolved.BatchID,
			UnitPrice:            resolved.UnitPrice,
			DiscountPct:          resolved.DiscountPct,
		}
		if err := r.Quotes.CreateLine(line); err != nil {
			return err
		}
		quote.Lines = append(quote.Lines, line)
	}
	return nil
}

func (uc *QuoteUseCase) recordAudit(r SalesRepos, tenantID, userID, action, entityID string, before, after json.RawMessage) {
	entry := &entity.AuditEntry{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: "quote",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		CreatedAt:  time.Now().UTC(),
	}
	if err := r.Audit.Record(entry); err != nil {
		uc.log.Warn().Err(err).Str("action", action).Msg("auditoría no registrada")
	}
}

func quoteToResponse(q *entity.Quote) *dto.QuoteResponse {
	resp := &dto.QuoteResponse{
		ID:                q.ID,
		Number:            q.Number,
		CustomerID:        q.CustomerID,
		Status:            q.Status,
		GlobalDiscountPct: q.GlobalDiscountPct,
		DeliveryDays:      q.DeliveryDays,
		DeliveryAddress:   q.DeliveryAddress,
		ProcessedAt:       q.ProcessedAt,
		Version:           q.Version,
		CreatedAt:         q.CreatedAt,
	}
	for _, l := range q.Lines {
		resp.Lines = append(resp.Lines, dto.QuoteLineResponse{
			ID:                   l.ID,
			ProductID:            l.ProductID,
			Quantity:             l.Quantity,
			PresentationID:       l.PresentationID,
			PresentationQuantity: l.PresentationQuantity,
			BatchID:              l.BatchID,
			UnitPrice:            l.UnitPrice,
			DiscountPct:          l.DiscountPct,
		})
	}
	return resp
}
