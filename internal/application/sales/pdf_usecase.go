package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// QuoteLineForPDF línea de cotización enriquecida para el render.
type QuoteLineForPDF struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	DiscountPct decimal.Decimal
	Subtotal    decimal.Decimal
}

// QuotePDFGenerator puerto para el render de la cotización en PDF.
type QuotePDFGenerator interface {
	GenerateQuotePDF(ctx context.Context, q *entity.Quote, customer *entity.Customer, lines []QuoteLineForPDF) ([]byte, error)
}

// PDFUseCase genera el documento imprimible de una cotización.
type PDFUseCase struct {
	quotes    repository.QuoteRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	generator QuotePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	quotes repository.QuoteRepository,
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	generator QuotePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{quotes: quotes, customers: customers, products: products, generator: generator}
}

// DownloadQuotePDF carga la cotización, enriquece las líneas con el nombre de
// producto y genera el PDF. Devuelve los bytes y el nombre de archivo sugerido.
func (uc *PDFUseCase) DownloadQuotePDF(ctx context.Context, tenantID, quoteID string) (pdfBytes []byte, filename string, err error) {
	q, err := uc.quotes.GetByID(quoteID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener cotización: %w", err)
	}
	if q == nil || q.TenantID != tenantID {
		return nil, "", fmt.Errorf("%w: cotización %s", domain.ErrNotFound, quoteID)
	}

	customer, err := uc.customers.GetByID(q.CustomerID)
	if err != nil || customer == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}

	hundred := decimal.NewFromInt(100)
	enriched := make([]QuoteLineForPDF, 0, len(q.Lines))
	for _, l := range q.Lines {
		name := "Producto " + l.ProductID // fallback
		if product, pErr := uc.products.GetByID(l.ProductID); pErr == nil && product != nil {
			name = product.Name
		}
		effective := l.UnitPrice.Mul(hundred.Sub(l.DiscountPct)).Div(hundred)
		enriched = append(enriched, QuoteLineForPDF{
			ProductName: name,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			DiscountPct: l.DiscountPct,
			Subtotal:    effective.Mul(l.Quantity),
		})
	}

	pdfBytes, err = uc.generator.GenerateQuotePDF(ctx, q, customer, enriched)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("cotizacion_%s.pdf", q.Number), nil
}
