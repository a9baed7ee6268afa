package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// ResolvedLine línea canónica: cantidad en unidades base y precio por unidad
// base ya resueltos contra la tabla de presentaciones del producto.
type ResolvedLine struct {
	Product              *entity.Product
	BaseQuantity         decimal.Decimal
	PresentationID       *string
	PresentationQuantity *decimal.Decimal
	UnitPrice            decimal.Decimal
	DiscountPct          decimal.Decimal
	BatchID              *string
}

// ResolveLine convierte una línea solicitada a unidades base. Exactamente uno
// de quantity o presentation_id+presentation_quantity debe venir informado.
//
// Precio: unit_price explícito > price_override de la presentación dividido
// por el factor > precio del producto. Si la línea no referencia presentación,
// se resuelve la default del producto (creando "Unidad" de forma perezosa si
// no tiene ninguna) solo con fines de consistencia del catálogo; la cantidad
// base se usa tal cual.
//
// Los repos llegan por parámetro para que la resolución corra dentro de la
// transacción del caller cuando la hay.
func ResolveLine(
	products repository.ProductRepository,
	presentations repository.PresentationRepository,
	tenantID string,
	in dto.LineRequest,
) (*ResolvedLine, error) {
	hasQty := in.Quantity != nil
	hasPres := in.PresentationID != nil || in.PresentationQuantity != nil
	if hasQty == hasPres {
		return nil, fmt.Errorf("%w: informar quantity o presentation, no ambos", domain.ErrInvalidInput)
	}
	if hasPres && (in.PresentationID == nil || in.PresentationQuantity == nil) {
		return nil, fmt.Errorf("%w: presentation_id y presentation_quantity van juntos", domain.ErrInvalidInput)
	}

	product, err := products.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.TenantID != tenantID {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}

	out := &ResolvedLine{Product: product, BatchID: in.BatchID}
	if in.DiscountPct != nil {
		out.DiscountPct = *in.DiscountPct
	}

	if hasPres {
		pres, err := presentations.GetByID(*in.PresentationID)
		if err != nil {
			return nil, err
		}
		if pres == nil || pres.TenantID != tenantID || pres.ProductID != product.ID ||
			!pres.IsActive || !pres.UnitsPerPresentation.IsPositive() {
			return nil, fmt.Errorf("%w: presentación inválida", domain.ErrInvalidInput)
		}
		if !in.PresentationQuantity.IsPositive() {
			return nil, fmt.Errorf("%w: presentation_quantity debe ser positivo", domain.ErrInvalidInput)
		}
		out.BaseQuantity = in.PresentationQuantity.Mul(pres.UnitsPerPresentation)
		out.PresentationID = &pres.ID
		out.PresentationQuantity = in.PresentationQuantity

		switch {
		case in.UnitPrice != nil:
			out.UnitPrice = *in.UnitPrice
		case pres.PriceOverride != nil:
			// precio por presentación -> precio por unidad base
			out.UnitPrice = pres.PriceOverride.Div(pres.UnitsPerPresentation)
		default:
			out.UnitPrice = product.Price
		}
		return out, nil
	}

	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity debe ser positivo", domain.ErrInvalidInput)
	}
	out.BaseQuantity = *in.Quantity
	if in.UnitPrice != nil {
		out.UnitPrice = *in.UnitPrice
	} else {
		out.UnitPrice = product.Price
	}

	// Garantiza que el producto tenga presentación default ("Unidad" perezosa).
	if _, err := EnsureDefaultPresentation(presentations, product); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureDefaultPresentation devuelve la presentación default del producto,
// creando la "Unidad" (factor 1) si el producto no tiene ninguna.
func EnsureDefaultPresentation(
	presentations repository.PresentationRepository,
	product *entity.Product,
) (*entity.Presentation, error) {
	def, err := presentations.GetDefault(product.ID)
	if err != nil {
		return nil, err
	}
	if def != nil {
		return def, nil
	}
	now := time.Now().UTC()
	unit := &entity.Presentation{
		ID:                   uuid.New().String(),
		TenantID:             product.TenantID,
		ProductID:            product.ID,
		Name:                 entity.UnitPresentationName,
		UnitsPerPresentation: decimal.NewFromInt(1),
		IsDefault:            true,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := presentations.Create(unit); err != nil {
		return nil, err
	}
	return unit, nil
}
