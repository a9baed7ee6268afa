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

// CustomerUseCase clientes de ventas. La ciudad del cliente define desde qué
// bodegas pueden reservarse sus pedidos.
type CustomerUseCase struct {
	customers repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(customers repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{customers: customers}
}

// Create da de alta un cliente.
func (uc *CustomerUseCase) Create(ctx context.Context, tenantID string, in dto.CreateCustomerRequest) (*entity.Customer, error) {
	now := time.Now().UTC()
	c := &entity.Customer{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		City:      in.City,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.customers.Create(c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID devuelve el cliente del tenant.
func (uc *CustomerUseCase) GetByID(ctx context.Context, tenantID, id string) (*entity.Customer, error) {
	c, err := uc.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.TenantID != tenantID {
		return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, id)
	}
	return c, nil
}

// List lista los clientes del tenant.
func (uc *CustomerUseCase) List(ctx context.Context, tenantID string) ([]*entity.Customer, error) {
	return uc.customers.List(tenantID)
}
