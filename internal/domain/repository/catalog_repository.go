package repository

import "github.com/Gonmore/farmasnt-sub004/internal/domain/entity"

// ProductRepository puerto de persistencia del catálogo de productos.
// Los Get devuelven (nil, nil) cuando el recurso no existe.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
	GetBySKU(tenantID, sku string) (*entity.Product, error)
	Create(p *entity.Product) error
	Update(p *entity.Product) error
	List(tenantID string) ([]*entity.Product, error)
}

// PresentationRepository puerto para presentaciones (empaques) de producto.
type PresentationRepository interface {
	GetByID(id string) (*entity.Presentation, error)
	GetDefault(productID string) (*entity.Presentation, error)
	ListByProduct(productID string) ([]*entity.Presentation, error)
	Create(p *entity.Presentation) error
	Update(p *entity.Presentation) error
}

// BatchRepository puerto para lotes de fabricación.
type BatchRepository interface {
	GetByID(id string) (*entity.Batch, error)
	GetByNumber(tenantID, productID, batchNumber string) (*entity.Batch, error)
	Create(b *entity.Batch) error
	// UpdateStatus compara-e-incrementa Version; cero filas afectadas -> ErrConflict.
	UpdateStatus(id, status string, expectedVersion int) error
	ListByProduct(productID string) ([]*entity.Batch, error)
}

// CustomerRepository puerto para clientes.
type CustomerRepository interface {
	GetByID(id string) (*entity.Customer, error)
	Create(c *entity.Customer) error
	List(tenantID string) ([]*entity.Customer, error)
}

// WarehouseRepository puerto para bodegas y sus ubicaciones.
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
	Create(w *entity.Warehouse) error
	List(tenantID string) ([]*entity.Warehouse, error)
	GetLocation(id string) (*entity.Location, error)
	CreateLocation(l *entity.Location) error
	ListLocations(warehouseID string) ([]*entity.Location, error)
	// LocationCity resuelve la ciudad de la bodega dueña de una ubicación.
	LocationCity(locationID string) (string, error)
}
