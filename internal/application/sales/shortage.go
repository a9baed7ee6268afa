package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// ShortageCalculator calcula faltantes de stock por ciudad sin mutar nada.
// Sirve para pre-chequeos fuera de transacción y para armar solicitudes de
// stock a otras sucursales. El Allocator repite el chequeo dentro de su
// transacción: el stock puede cambiar entre la consulta y el commit.
type ShortageCalculator struct {
	products      repository.ProductRepository
	presentations repository.PresentationRepository
	balances      repository.InventoryBalanceRepository
}

// NewShortageCalculator construye el calculador.
func NewShortageCalculator(
	products repository.ProductRepository,
	presentations repository.PresentationRepository,
	balances repository.InventoryBalanceRepository,
) *ShortageCalculator {
	return &ShortageCalculator{products: products, presentations: presentations, balances: balances}
}

// Compute devuelve un ShortageItem por cada línea cuya cantidad requerida
// supera el disponible en la ciudad (available + ε < required). Solo lectura.
func (c *ShortageCalculator) Compute(ctx context.Context, tenantID, city string, lines []dto.LineRequest) ([]domain.ShortageItem, error) {
	today := StartOfTodayUTC(time.Now())
	shortages := make([]domain.ShortageItem, 0)
	for _, line := range lines {
		required, productName, err := c.requiredBaseQuantity(tenantID, line)
		if err != nil {
			return nil, err
		}
		available, err := c.balances.AvailableInCity(tenantID, city, line.ProductID, today)
		if err != nil {
			return nil, err
		}
		if available.Add(domain.QtyEpsilon).LessThan(required) {
			shortages = append(shortages, domain.ShortageItem{
				ProductID:            line.ProductID,
				ProductName:          productName,
				Required:             required,
				Available:            available,
				PresentationID:       line.PresentationID,
				PresentationQuantity: line.PresentationQuantity,
			})
		}
	}
	return shortages, nil
}

// requiredBaseQuantity resuelve la cantidad base requerida de una línea sin
// efectos secundarios (a diferencia de ResolveLine, nunca crea la "Unidad").
func (c *ShortageCalculator) requiredBaseQuantity(tenantID string, in dto.LineRequest) (decimal.Decimal, string, error) {
	product, err := c.products.GetByID(in.ProductID)
	if err != nil {
		return decimal.Zero, "", err
	}
	if product == nil || product.TenantID != tenantID {
		return decimal.Zero, "", fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	if in.PresentationID != nil {
		if in.PresentationQuantity == nil {
			return decimal.Zero, "", fmt.Errorf("%w: presentation_quantity requerido", domain.ErrInvalidInput)
		}
		pres, err := c.presentations.GetByID(*in.PresentationID)
		if err != nil {
			return decimal.Zero, "", err
		}
		if pres == nil || pres.TenantID != tenantID || pres.ProductID != product.ID ||
			!pres.IsActive || !pres.UnitsPerPresentation.IsPositive() {
			return decimal.Zero, "", fmt.Errorf("%w: presentación inválida", domain.ErrInvalidInput)
		}
		return in.PresentationQuantity.Mul(pres.UnitsPerPresentation), product.Name, nil
	}

	if in.Quantity == nil || !in.Quantity.IsPositive() {
		return decimal.Zero, "", fmt.Errorf("%w: quantity debe ser positivo", domain.ErrInvalidInput)
	}
	return *in.Quantity, product.Name, nil
}
