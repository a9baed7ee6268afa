package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// PresentationUseCase presentaciones (empaques) de producto. Invariante:
// exactamente una default por producto; desactivar la default exige promover
// otra en la misma operación.
type PresentationUseCase struct {
	tx            TxRunner
	products      repository.ProductRepository
	presentations repository.PresentationRepository
}

// NewPresentationUseCase construye el caso de uso. Las lecturas usan los repos
// del pool; las mutaciones sobre la default corren dentro de tx.
func NewPresentationUseCase(tx TxRunner, products repository.ProductRepository, presentations repository.PresentationRepository) *PresentationUseCase {
	return &PresentationUseCase{tx: tx, products: products, presentations: presentations}
}

// Create da de alta una presentación. La primera presentación de un producto
// queda default aunque no se pida; si se pide default habiendo otra, la
// anterior deja de ser default primero (la unicidad a nivel BD exige ese orden).
func (uc *PresentationUseCase) Create(ctx context.Context, tenantID, productID string, in dto.CreatePresentationRequest) (*entity.Presentation, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if in.UnitsPerPresentation < 1 {
		return nil, fmt.Errorf("%w: units_per_presentation debe ser >= 1", domain.ErrInvalidInput)
	}

	var p *entity.Presentation
	err = uc.tx.RunCatalog(ctx, func(r CatalogRepos) error {
		current, err := r.Presentations.GetDefault(productID)
		if err != nil {
			return err
		}
		isDefault := in.IsDefault || current == nil
		if isDefault && current != nil {
			current.IsDefault = false
			current.UpdatedAt = time.Now().UTC()
			if err := r.Presentations.Update(current); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		p = &entity.Presentation{
			ID:                   uuid.New().String(),
			TenantID:             tenantID,
			ProductID:            productID,
			Name:                 in.Name,
			UnitsPerPresentation: decimal.NewFromInt(in.UnitsPerPresentation),
			IsDefault:            isDefault,
			PriceOverride:        in.PriceOverride,
			SortOrder:            in.SortOrder,
			IsActive:             true,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		return r.Presentations.Create(p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List lista las presentaciones del producto.
func (uc *PresentationUseCase) List(ctx context.Context, tenantID, productID string) ([]*entity.Presentation, error) {
	product, err := uc.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return uc.presentations.ListByProduct(productID)
}

// Update edita una presentación. Reglas sobre la default:
//   - is_active=false sobre la default requiere promote_id con la sucesora.
//   - is_default=true degrada la default anterior antes de promover.
//   - is_default=false directo sobre la default no está permitido.
func (uc *PresentationUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdatePresentationRequest) (*entity.Presentation, error) {
	var p *entity.Presentation
	err := uc.tx.RunCatalog(ctx, func(r CatalogRepos) error {
		var err error
		p, err = r.Presentations.GetByID(id)
		if err != nil {
			return err
		}
		if p == nil || p.TenantID != tenantID {
			return fmt.Errorf("%w: presentación %s", domain.ErrNotFound, id)
		}

		deactivatingDefault := p.IsDefault && in.IsActive != nil && !*in.IsActive
		if deactivatingDefault {
			if in.PromoteID == "" || in.PromoteID == p.ID {
				return fmt.Errorf("%w: desactivar la default requiere promover otra presentación", domain.ErrConflict)
			}
			succ, err := r.Presentations.GetByID(in.PromoteID)
			if err != nil {
				return err
			}
			if succ == nil || succ.ProductID != p.ProductID || !succ.IsActive {
				return fmt.Errorf("%w: presentación a promover inválida", domain.ErrInvalidInput)
			}
			p.IsDefault = false
			p.IsActive = false
			p.UpdatedAt = time.Now().UTC()
			if err := r.Presentations.Update(p); err != nil {
				return err
			}
			succ.IsDefault = true
			succ.UpdatedAt = time.Now().UTC()
			return r.Presentations.Update(succ)
		}

		if in.IsDefault != nil {
			if !*in.IsDefault && p.IsDefault {
				return fmt.Errorf("%w: el producto debe conservar una presentación default", domain.ErrConflict)
			}
			if *in.IsDefault && !p.IsDefault {
				current, err := r.Presentations.GetDefault(p.ProductID)
				if err != nil {
					return err
				}
				if current != nil {
					current.IsDefault = false
					current.UpdatedAt = time.Now().UTC()
					if err := r.Presentations.Update(current); err != nil {
						return err
					}
				}
				p.IsDefault = true
			}
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.PriceOverride != nil {
			p.PriceOverride = in.PriceOverride
		}
		if in.SortOrder != nil {
			p.SortOrder = *in.SortOrder
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		p.UpdatedAt = time.Now().UTC()
		return r.Presentations.Update(p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
