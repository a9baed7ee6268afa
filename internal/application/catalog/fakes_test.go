package catalog_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/catalog"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

const testTenant = "tenant-1"

type memStore struct {
	products      map[string]*entity.Product
	presentations map[string]*entity.Presentation
	customers     map[string]*entity.Customer
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[string]*entity.Product),
		presentations: make(map[string]*entity.Presentation),
		customers:     make(map[string]*entity.Customer),
	}
}

func (s *memStore) addProduct(id, name string) *entity.Product {
	p := &entity.Product{ID: id, TenantID: testTenant, SKU: "SKU-" + id, Name: name,
		Price: decimal.NewFromInt(10), IsActive: true}
	s.products[id] = p
	return p
}

type memProducts struct{ s *memStore }

func (r memProducts) GetByID(id string) (*entity.Product, error) { return r.s.products[id], nil }
func (r memProducts) GetBySKU(tenantID, sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}
func (r memProducts) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r memProducts) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r memProducts) List(tenantID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memPresentations struct{ s *memStore }

func (r memPresentations) GetByID(id string) (*entity.Presentation, error) {
	return r.s.presentations[id], nil
}
func (r memPresentations) GetDefault(productID string) (*entity.Presentation, error) {
	for _, p := range r.s.presentations {
		if p.ProductID == productID && p.IsDefault && p.IsActive {
			return p, nil
		}
	}
	return nil, nil
}
func (r memPresentations) ListByProduct(productID string) ([]*entity.Presentation, error) {
	var out []*entity.Presentation
	for _, p := range r.s.presentations {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r memPresentations) Create(p *entity.Presentation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	r.s.presentations[p.ID] = p
	return nil
}
func (r memPresentations) Update(p *entity.Presentation) error {
	r.s.presentations[p.ID] = p
	return nil
}

// memTx corre el callback sobre el almacén en memoria y, si el callback
// falla, restaura las presentaciones al estado previo como haría el Rollback
// real. pres permite inyectar un repositorio que falle a mitad de camino.
type memTx struct {
	s    *memStore
	pres repository.PresentationRepository
}

func (t memTx) RunCatalog(ctx context.Context, fn func(r catalog.CatalogRepos) error) error {
	snapshot := make(map[string]entity.Presentation, len(t.s.presentations))
	for id, p := range t.s.presentations {
		snapshot[id] = *p
	}

	pres := t.pres
	if pres == nil {
		pres = memPresentations{t.s}
	}
	err := fn(catalog.CatalogRepos{Products: memProducts{t.s}, Presentations: pres})
	if err != nil {
		for id, p := range t.s.presentations {
			if prev, ok := snapshot[id]; ok {
				*p = prev
			} else {
				delete(t.s.presentations, id)
			}
		}
	}
	return err
}

type memCustomers struct{ s *memStore }

func (r memCustomers) GetByID(id string) (*entity.Customer, error) { return r.s.customers[id], nil }
func (r memCustomers) Create(c *entity.Customer) error             { r.s.customers[c.ID] = c; return nil }
func (r memCustomers) List(tenantID string) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.s.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}
