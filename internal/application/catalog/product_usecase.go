package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// ProductUseCase CRUD del catálogo de productos. Los productos no se borran:
// se desactivan para no romper cotizaciones y balances históricos.
type ProductUseCase struct {
	products repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(products repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{products: products}
}

// Create da de alta un producto. SKU único por tenant (ErrDuplicate).
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*entity.Product, error) {
	existing, err := uc.products.GetBySKU(tenantID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: SKU %s ya existe", domain.ErrDuplicate, in.SKU)
	}
	now := time.Now().UTC()
	p := &entity.Product{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		SKU:       in.SKU,
		Name:      in.Name,
		Price:     in.Price,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.products.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID devuelve el producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.TenantID != tenantID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// List lista los productos del tenant.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string) ([]*entity.Product, error) {
	return uc.products.List(tenantID)
}

// Update aplica cambios parciales.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	p, err := uc.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.UpdatedAt = time.Now().UTC()
	if err := uc.products.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}
