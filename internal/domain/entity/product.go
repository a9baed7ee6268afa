package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo, con precio por unidad base.
// El SKU es único por tenant.
type Product struct {
	ID        string
	TenantID  string
	SKU       string
	Name      string
	Price     decimal.Decimal // precio por unidad base
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Presentation empaque comercial de un producto ("Caja" = 12 unidades).
// Exactamente una presentación default por producto; la presentación
// "Unidad" (factor 1) se crea de forma perezosa si el producto no tiene ninguna.
type Presentation struct {
	ID                   string
	TenantID             string
	ProductID            string
	Name                 string
	UnitsPerPresentation decimal.Decimal // factor entero >= 1
	IsDefault            bool
	PriceOverride        *decimal.Decimal // precio por una presentación (nullable)
	SortOrder            int
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// UnitPresentationName nombre de la presentación base implícita.
const UnitPresentationName = "Unidad"
