package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Gonmore/farmasnt-sub004/internal/application/catalog"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC      *catalog.ProductUseCase
	PresentationUC *catalog.PresentationUseCase
	CustomerUC     *catalog.CustomerUseCase
	QuoteUC        *sales.QuoteUseCase
	ProcessUC      *sales.ProcessQuoteUseCase
	OrderUC        *sales.OrderUseCase
	PDFUC          *sales.PDFUseCase
	Shortages      *sales.ShortageCalculator
	EntryUC        *stock.EntryUseCase
	RequestUC      *stock.RequestUseCase
	BulkUC         *stock.BulkUseCase
	BatchUC        *stock.BatchUseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.PresentationUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/presentations", productHandler.CreatePresentation)
	products.Get("/:id/presentations", productHandler.ListPresentations)
	api.Put("/presentations/:id", productHandler.UpdatePresentation)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Ventas
	quotes := api.Group("/quotes")
	quoteHandler := NewQuoteHandler(deps.QuoteUC, deps.ProcessUC, deps.PDFUC)
	quotes.Post("/", quoteHandler.Create)
	quotes.Get("/", quoteHandler.List)
	quotes.Get("/:id", quoteHandler.GetByID)
	quotes.Put("/:id", quoteHandler.Update)
	quotes.Post("/:id/process", quoteHandler.Process)
	quotes.Get("/:id/pdf", quoteHandler.DownloadPDF)

	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/cancel", orderHandler.Cancel)

	// Stock
	stockGroup := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Shortages, deps.EntryUC, deps.RequestUC, deps.BulkUC, deps.BatchUC)
	stockGroup.Post("/shortages", stockHandler.Shortages)
	stockGroup.Post("/entries", stockHandler.CreateEntry)
	stockGroup.Post("/requests", stockHandler.CreateRequest)
	stockGroup.Get("/requests", stockHandler.ListRequests)
	stockGroup.Get("/requests/:id", stockHandler.GetRequest)
	stockGroup.Post("/requests/:id/cancel", stockHandler.CancelRequest)
	warehouseOnly := RequireRole("admin", "bodeguero")
	stockGroup.Post("/bulk-fulfill", warehouseOnly, stockHandler.BulkFulfill)
	stockGroup.Post("/bulk-transfer", warehouseOnly, stockHandler.BulkTransfer)

	// Lotes
	batches := api.Group("/batches")
	batches.Post("/", warehouseOnly, stockHandler.CreateBatch)
	batches.Put("/:id/status", warehouseOnly, stockHandler.UpdateBatchStatus)
}
