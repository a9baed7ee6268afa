package dto

import "github.com/shopspring/decimal"

// CreateProductRequest alta de producto.
type CreateProductRequest struct {
	SKU   string          `json:"sku" validate:"required"`
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"required"`
}

// UpdateProductRequest edición de producto.
type UpdateProductRequest struct {
	Name     *string          `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	IsActive *bool            `json:"is_active"`
}

// CreatePresentationRequest alta de presentación de un producto.
type CreatePresentationRequest struct {
	Name                 string           `json:"name" validate:"required"`
	UnitsPerPresentation int64            `json:"units_per_presentation" validate:"required,gte=1"`
	IsDefault            bool             `json:"is_default"`
	PriceOverride        *decimal.Decimal `json:"price_override"`
	SortOrder            int              `json:"sort_order"`
}

// UpdatePresentationRequest edición de presentación. Desactivar la default
// exige indicar PromoteID (la presentación que pasa a ser default).
type UpdatePresentationRequest struct {
	Name          *string          `json:"name"`
	PriceOverride *decimal.Decimal `json:"price_override"`
	SortOrder     *int             `json:"sort_order"`
	IsDefault     *bool            `json:"is_default"`
	IsActive      *bool            `json:"is_active"`
	PromoteID     string           `json:"promote_id"`
}

// CreateCustomerRequest alta de cliente.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"tax_id"`
	City    string `json:"city" validate:"required"`
	Address string `json:"address"`
}

// ProductResponse producto serializado.
type ProductResponse struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
}

// PresentationResponse presentación serializada.
type PresentationResponse struct {
	ID                   string           `json:"id"`
	ProductID            string           `json:"product_id"`
	Name                 string           `json:"name"`
	UnitsPerPresentation decimal.Decimal  `json:"units_per_presentation"`
	IsDefault            bool             `json:"is_default"`
	PriceOverride        *decimal.Decimal `json:"price_override,omitempty"`
	SortOrder            int              `json:"sort_order"`
	IsActive             bool             `json:"is_active"`
}

// CustomerResponse cliente serializado.
type CustomerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TaxID    string `json:"tax_id,omitempty"`
	City     string `json:"city"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `json:"is_active"`
}
