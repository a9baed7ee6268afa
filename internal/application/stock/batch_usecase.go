package stock

import (
	"context"
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

const dateLayout = "2006-01-02"

// BatchUseCase alta y transición de estado de lotes de fabricación.
type BatchUseCase struct {
	tx      TxRunner
	batches repository.BatchRepository
	log     *logger.Logger
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(tx TxRunner, batches repository.BatchRepository, log *logger.Logger) *BatchUseCase {
	return &BatchUseCase{tx: tx, batches: batches, log: log}
}

// Create da de alta un lote. Sin batch_number explícito se numera con la
// secuencia LOT del año. El estado inicial por defecto es QUARANTINE: un lote
// recién fabricado no es elegible hasta liberarse.
func (uc *BatchUseCase) Create(ctx context.Context, tenantID, userID string, in dto.CreateBatchRequest) (*entity.Batch, error) {
	var expiresAt *time.Time
	if in.ExpiresAt != "" {
		t, err := time.ParseInLocation(dateLayout, in.ExpiresAt, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: expires_at debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		expiresAt = &t
	}
	manufacturing := time.Now().UTC().Truncate(24 * time.Hour)
	if in.ManufacturingDate != "" {
		t, err := time.ParseInLocation(dateLayout, in.ManufacturingDate, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: manufacturing_date debe ser YYYY-MM-DD", domain.ErrInvalidInput)
		}
		manufacturing = t
	}
	status := in.Status
	if status == "" {
		status = entity.BatchStatusQuarantine
	}

	var batch *entity.Batch
	err := uc.tx.RunStock(ctx, func(r StockRepos) error {
		product, err := r.Products.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil || product.TenantID != tenantID {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}

		now := time.Now().UTC()
		number := in.BatchNumber
		if number == "" {
			n, err := r.Sequences.Next(tenantID, now.Year(), SequenceKeyBatch)
			if err != nil {
				return err
			}
			number = sales.FormatNumber(BatchPrefix, now.Year(), n)
		}

		batch = &entity.Batch{
			ID:                uuid.New().String(),
			TenantID:          tenantID,
			ProductID:         product.ID,
			BatchNumber:       number,
			Status:            status,
			ExpiresAt:         expiresAt,
			ManufacturingDate: manufacturing,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return r.Batches.Create(batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// UpdateStatus transiciona el estado del lote con chequeo de versión.
// Transiciones válidas: QUARANTINE -> RELEASED | REJECTED, RELEASED -> REJECTED.
func (uc *BatchUseCase) UpdateStatus(ctx context.Context, tenantID, id string, in dto.UpdateBatchStatusRequest) (*entity.Batch, error) {
	batch, err := uc.batches.GetByID(id)
	if err != nil {
		return nil, err
	}
	if batch == nil || batch.TenantID != tenantID {
		return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	if !validBatchTransition(batch.Status, in.Status) {
		return nil, fmt.Errorf("%w: transición %s -> %s no permitida", domain.ErrConflict, batch.Status, in.Status)
	}
	if err := uc.batches.UpdateStatus(batch.ID, in.Status, in.Version); err != nil {
		return nil, err
	}
	batch.Status = in.Status
	batch.Version = in.Version + 1
	return batch, nil
}

func validBatchTransition(from, to string) bool {
	switch from {
	case entity.BatchStatusQuarantine:
		return to == entity.BatchStatusReleased || to == entity.BatchStatusRejected
	case entity.BatchStatusReleased:
		return to == entity.BatchStatusRejected
	default:
		return false
	}
}
