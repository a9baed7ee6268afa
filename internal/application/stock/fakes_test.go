package stock_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
	"github.com/Gonmore/farmasnt-sub004/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para los casos de uso de stock.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTenant = "tenant-1"
	testUser   = "user-1"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func ptr(s string) *string { return &s }

type memStore struct {
	products      map[string]*entity.Product
	presentations map[string]*entity.Presentation
	batches       map[string]*entity.Batch
	warehouses    map[string]*entity.Warehouse
	locations     map[string]*entity.Location
	balances      []*entity.InventoryBalance
	requests      map[string]*entity.StockMovementRequest
	sequences     map[string]int64
	audits        []*entity.AuditEntry
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[string]*entity.Product),
		presentations: make(map[string]*entity.Presentation),
		batches:       make(map[string]*entity.Batch),
		warehouses:    make(map[string]*entity.Warehouse),
		locations:     make(map[string]*entity.Location),
		requests:      make(map[string]*entity.StockMovementRequest),
		sequences:     make(map[string]int64),
	}
}

func (s *memStore) addProduct(id, name string) *entity.Product {
	p := &entity.Product{ID: id, TenantID: testTenant, SKU: "SKU-" + id, Name: name,
		Price: decimal.NewFromInt(10), IsActive: true}
	s.products[id] = p
	return p
}

func (s *memStore) addWarehouse(id, city string) *entity.Warehouse {
	w := &entity.Warehouse{ID: id, TenantID: testTenant, Code: id, Name: "Bodega " + city,
		City: city, IsActive: true}
	s.warehouses[id] = w
	return w
}

func (s *memStore) addLocation(id, warehouseID string) *entity.Location {
	l := &entity.Location{ID: id, TenantID: testTenant, WarehouseID: warehouseID,
		Code: id, IsActive: true}
	s.locations[id] = l
	return l
}

func (s *memStore) addBatch(id, productID, status string) *entity.Batch {
	b := &entity.Batch{ID: id, TenantID: testTenant, ProductID: productID,
		BatchNumber: "LOT-" + id, Status: status}
	s.batches[id] = b
	return b
}

func (s *memStore) addBalance(id, productID string, batchID *string, locationID string, qty, reserved int64) *entity.InventoryBalance {
	b := &entity.InventoryBalance{
		ID: id, TenantID: testTenant, ProductID: productID, BatchID: batchID,
		LocationID: locationID, Quantity: decimal.NewFromInt(qty),
		ReservedQuantity: decimal.NewFromInt(reserved), UpdatedAt: time.Now().UTC(),
	}
	s.balances = append(s.balances, b)
	return b
}

func (s *memStore) addRequest(id, city, status string) *entity.StockMovementRequest {
	r := &entity.StockMovementRequest{ID: id, TenantID: testTenant, Number: "SOL-" + id,
		City: city, Status: status, CreatedAt: time.Now().UTC()}
	s.requests[id] = r
	return r
}

func (s *memStore) addRequestItem(req *entity.StockMovementRequest, id, productID string, qty, remaining int64) *entity.StockMovementRequestItem {
	it := &entity.StockMovementRequestItem{
		ID: id, RequestID: req.ID, ProductID: productID,
		Quantity:          decimal.NewFromInt(qty),
		RemainingQuantity: decimal.NewFromInt(remaining),
	}
	req.Items = append(req.Items, it)
	return it
}

// ── Repositorios ──────────────────────────────────────────────────────────────

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
func (r memProducts) List(tenantID string) ([]*entity.Product, error) { return nil, nil }

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
	return nil, nil
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

type memBatches struct{ s *memStore }

func (r memBatches) GetByID(id string) (*entity.Batch, error) { return r.s.batches[id], nil }
func (r memBatches) GetByNumber(tenantID, productID, batchNumber string) (*entity.Batch, error) {
	for _, b := range r.s.batches {
		if b.TenantID == tenantID && b.ProductID == productID && b.BatchNumber == batchNumber {
			return b, nil
		}
	}
	return nil, nil
}
func (r memBatches) Create(b *entity.Batch) error { r.s.batches[b.ID] = b; return nil }
func (r memBatches) UpdateStatus(id, status string, expectedVersion int) error {
	b := r.s.batches[id]
	if b == nil || b.Version != expectedVersion {
		return fmt.Errorf("%w: lote %s", domain.ErrConflict, id)
	}
	b.Status = status
	b.Version++
	return nil
}
func (r memBatches) ListByProduct(productID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

type memWarehouses struct{ s *memStore }

func (r memWarehouses) GetByID(id string) (*entity.Warehouse, error) { return r.s.warehouses[id], nil }
func (r memWarehouses) Create(w *entity.Warehouse) error             { r.s.warehouses[w.ID] = w; return nil }
func (r memWarehouses) List(tenantID string) ([]*entity.Warehouse, error) { return nil, nil }
func (r memWarehouses) GetLocation(id string) (*entity.Location, error)   { return r.s.locations[id], nil }
func (r memWarehouses) CreateLocation(l *entity.Location) error {
	r.s.locations[l.ID] = l
	return nil
}
func (r memWarehouses) ListLocations(warehouseID string) ([]*entity.Location, error) {
	return nil, nil
}
func (r memWarehouses) LocationCity(locationID string) (string, error) {
	loc := r.s.locations[locationID]
	if loc == nil {
		return "", fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	w := r.s.warehouses[loc.WarehouseID]
	if w == nil {
		return "", fmt.Errorf("%w: bodega %s", domain.ErrNotFound, loc.WarehouseID)
	}
	return w.City, nil
}

type memBalances struct{ s *memStore }

func (r memBalances) GetByID(id string) (*entity.InventoryBalance, error) {
	for _, b := range r.s.balances {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}
func (r memBalances) Get(tenantID, productID string, batchID *string, locationID string) (*entity.InventoryBalance, error) {
	for _, b := range r.s.balances {
		if b.TenantID == tenantID && b.ProductID == productID && b.LocationID == locationID &&
			sameBatch(b.BatchID, batchID) {
			return b, nil
		}
	}
	return nil, nil
}

func sameBatch(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r memBalances) Upsert(b *entity.InventoryBalance) error {
	if existing, _ := r.Get(b.TenantID, b.ProductID, b.BatchID, b.LocationID); existing != nil {
		existing.Quantity = existing.Quantity.Add(b.Quantity)
		existing.Version++
		return nil
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	r.s.balances = append(r.s.balances, b)
	return nil
}
func (r memBalances) AvailableInCity(tenantID, city, productID string, today time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.s.balances {
		if b.TenantID != tenantID || b.ProductID != productID {
			continue
		}
		loc := r.s.locations[b.LocationID]
		if loc == nil {
			continue
		}
		w := r.s.warehouses[loc.WarehouseID]
		if w == nil || !strings.EqualFold(w.City, city) {
			continue
		}
		total = total.Add(b.Available())
	}
	return total, nil
}
func (r memBalances) BatchCandidatesInCity(tenantID, city, productID, batchID string) ([]*entity.InventoryBalance, error) {
	return nil, nil
}
func (r memBalances) ExpiringCandidatesInCity(tenantID, city, productID string, today time.Time) ([]*entity.InventoryBalance, error) {
	return nil, nil
}
func (r memBalances) NonExpiringCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	return nil, nil
}
func (r memBalances) UnbatchedCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	return nil, nil
}
func (r memBalances) Reserve(id string, expectedVersion int, qty decimal.Decimal) error {
	b, _ := r.GetByID(id)
	if b == nil || b.Version != expectedVersion ||
		b.ReservedQuantity.Add(qty).GreaterThan(b.Quantity) {
		return fmt.Errorf("%w: balance %s", domain.ErrConflict, id)
	}
	// La copia en memoria la actualiza el caso de uso.
	return nil
}
func (r memBalances) Release(id string, expectedVersion int, qty decimal.Decimal) error {
	b, _ := r.GetByID(id)
	if b == nil || b.Version != expectedVersion || b.ReservedQuantity.Sub(qty).IsNegative() {
		return fmt.Errorf("%w: balance %s", domain.ErrConflict, id)
	}
	return nil
}
func (r memBalances) AdjustQuantity(id string, expectedVersion int, delta decimal.Decimal) error {
	b, _ := r.GetByID(id)
	if b == nil || b.Version != expectedVersion ||
		b.Quantity.Add(delta).LessThan(b.ReservedQuantity) {
		return fmt.Errorf("%w: balance %s", domain.ErrConflict, id)
	}
	return nil
}

type memRequests struct{ s *memStore }

func (r memRequests) GetByID(id string) (*entity.StockMovementRequest, error) {
	return r.s.requests[id], nil
}
func (r memRequests) Create(req *entity.StockMovementRequest) error {
	r.s.requests[req.ID] = req
	return nil
}
func (r memRequests) CreateItem(it *entity.StockMovementRequestItem) error { return nil }
func (r memRequests) List(tenantID, status string) ([]*entity.StockMovementRequest, error) {
	var out []*entity.StockMovementRequest
	for _, req := range r.s.requests {
		if req.TenantID == tenantID && (status == "" || req.Status == status) {
			out = append(out, req)
		}
	}
	return out, nil
}
func (r memRequests) UpdateStatus(id, status string) error {
	req := r.s.requests[id]
	if req == nil {
		return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	req.Status = status
	return nil
}
func (r memRequests) DecrementRemaining(itemID string, qty decimal.Decimal) error {
	for _, req := range r.s.requests {
		for _, it := range req.Items {
			if it.ID != itemID {
				continue
			}
			if it.RemainingQuantity.Sub(qty).IsNegative() {
				return fmt.Errorf("%w: renglón %s", domain.ErrConflict, itemID)
			}
			// La copia en memoria la descuenta el caso de uso.
			return nil
		}
	}
	return fmt.Errorf("%w: renglón %s", domain.ErrNotFound, itemID)
}

type memSequences struct{ s *memStore }

func (r memSequences) Next(tenantID string, year int, key string) (int64, error) {
	k := fmt.Sprintf("%s/%d/%s", tenantID, year, key)
	r.s.sequences[k]++
	return r.s.sequences[k], nil
}

type memAudit struct{ s *memStore }

func (r *memAudit) Record(e *entity.AuditEntry) error {
	r.s.audits = append(r.s.audits, e)
	return nil
}

// ── TxRunner / EventPublisher ─────────────────────────────────────────────────

type memTx struct{ s *memStore }

func (t memTx) RunStock(ctx context.Context, fn func(r stock.StockRepos) error) error {
	return fn(stock.StockRepos{
		Balances:      memBalances{t.s},
		Requests:      memRequests{t.s},
		Batches:       memBatches{t.s},
		Products:      memProducts{t.s},
		Presentations: memPresentations{t.s},
		Warehouses:    memWarehouses{t.s},
		Sequences:     memSequences{t.s},
		Audit:         &memAudit{t.s},
	})
}

type memEvents struct {
	published []string
}

func (e *memEvents) Publish(_ context.Context, _ string, event string, _ any) {
	e.published = append(e.published, event)
}
