package sales_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Replican el contrato de los puertos, incluidos los
// ordenamientos de los pools de candidatos y el guard de versión.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testTenant = "tenant-1"
	testUser   = "user-1"
)

type memStore struct {
	products      map[string]*entity.Product
	presentations map[string]*entity.Presentation
	customers     map[string]*entity.Customer
	batches       map[string]*entity.Batch
	locationCity  map[string]string // locationID -> ciudad
	balances      []*entity.InventoryBalance
	quotes        map[string]*entity.Quote
	orders        map[string]*entity.SalesOrder
	reservations  []*entity.SalesOrderReservation
	sequences     map[string]int64
	audits        []*entity.AuditEntry
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[string]*entity.Product),
		presentations: make(map[string]*entity.Presentation),
		customers:     make(map[string]*entity.Customer),
		batches:       make(map[string]*entity.Batch),
		locationCity:  make(map[string]string),
		quotes:        make(map[string]*entity.Quote),
		orders:        make(map[string]*entity.SalesOrder),
		sequences:     make(map[string]int64),
	}
}

func (s *memStore) addProduct(id, name string, price int64) *entity.Product {
	p := &entity.Product{ID: id, TenantID: testTenant, SKU: "SKU-" + id, Name: name,
		Price: decimal.NewFromInt(price), IsActive: true}
	s.products[id] = p
	return p
}

func (s *memStore) addPresentation(id, productID, name string, factor int64, isDefault bool) *entity.Presentation {
	p := &entity.Presentation{ID: id, TenantID: testTenant, ProductID: productID, Name: name,
		UnitsPerPresentation: decimal.NewFromInt(factor), IsDefault: isDefault, IsActive: true}
	s.presentations[id] = p
	return p
}

func (s *memStore) addCustomer(id, city string) *entity.Customer {
	c := &entity.Customer{ID: id, TenantID: testTenant, Name: "Cliente " + id, City: city, IsActive: true}
	s.customers[id] = c
	return c
}

func (s *memStore) addBatch(id, productID, status string, expiresAt *time.Time) *entity.Batch {
	b := &entity.Batch{ID: id, TenantID: testTenant, ProductID: productID, BatchNumber: "LOTE-" + id,
		Status: status, ExpiresAt: expiresAt}
	s.batches[id] = b
	return b
}

func (s *memStore) addLocation(id, city string) {
	s.locationCity[id] = city
}

func (s *memStore) addBalance(id, productID string, batchID *string, locationID string, qty, reserved int64, updatedAt time.Time) *entity.InventoryBalance {
	b := &entity.InventoryBalance{
		ID: id, TenantID: testTenant, ProductID: productID, BatchID: batchID,
		LocationID: locationID, Quantity: decimal.NewFromInt(qty),
		ReservedQuantity: decimal.NewFromInt(reserved), UpdatedAt: updatedAt,
	}
	s.balances = append(s.balances, b)
	return b
}

// ── ProductRepository ─────────────────────────────────────────────────────────

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

// ── PresentationRepository ────────────────────────────────────────────────────

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

// ── CustomerRepository ────────────────────────────────────────────────────────

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

// ── InventoryBalanceRepository ────────────────────────────────────────────────

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

func (r memBalances) eligible(b *entity.InventoryBalance, today time.Time) bool {
	if b.BatchID == nil {
		return true
	}
	batch := r.s.batches[*b.BatchID]
	if batch == nil || batch.Status != entity.BatchStatusReleased {
		return false
	}
	return batch.ExpiresAt == nil || !batch.ExpiresAt.Before(today)
}

func (r memBalances) inCity(b *entity.InventoryBalance, tenantID, city, productID string) bool {
	return b.TenantID == tenantID && b.ProductID == productID &&
		strings.EqualFold(r.s.locationCity[b.LocationID], city)
}

func (r memBalances) AvailableInCity(tenantID, city, productID string, today time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.s.balances {
		if r.inCity(b, tenantID, city, productID) && r.eligible(b, today) {
			total = total.Add(b.Available())
		}
	}
	return total, nil
}

func (r memBalances) BatchCandidatesInCity(tenantID, city, productID, batchID string) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	for _, b := range r.s.balances {
		if r.inCity(b, tenantID, city, productID) && b.BatchID != nil && *b.BatchID == batchID {
			out = append(out, b)
		}
	}
	sortRecent(out)
	return out, nil
}

func (r memBalances) ExpiringCandidatesInCity(tenantID, city, productID string, today time.Time) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	for _, b := range r.s.balances {
		if !r.inCity(b, tenantID, city, productID) || b.BatchID == nil {
			continue
		}
		batch := r.s.batches[*b.BatchID]
		if batch == nil || batch.Status != entity.BatchStatusReleased || batch.ExpiresAt == nil || batch.ExpiresAt.Before(today) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ei := r.s.batches[*out[i].BatchID].ExpiresAt
		ej := r.s.batches[*out[j].BatchID].ExpiresAt
		if !ei.Equal(*ej) {
			return ei.Before(*ej)
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memBalances) NonExpiringCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	for _, b := range r.s.balances {
		if !r.inCity(b, tenantID, city, productID) || b.BatchID == nil {
			continue
		}
		batch := r.s.batches[*b.BatchID]
		if batch == nil || batch.Status != entity.BatchStatusReleased || batch.ExpiresAt != nil {
			continue
		}
		out = append(out, b)
	}
	sortRecent(out)
	return out, nil
}

func (r memBalances) UnbatchedCandidatesInCity(tenantID, city, productID string) ([]*entity.InventoryBalance, error) {
	var out []*entity.InventoryBalance
	for _, b := range r.s.balances {
		if r.inCity(b, tenantID, city, productID) && b.BatchID == nil {
			out = append(out, b)
		}
	}
	sortRecent(out)
	return out, nil
}

func sortRecent(out []*entity.InventoryBalance) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
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

// ── QuoteRepository ───────────────────────────────────────────────────────────

type memQuotes struct{ s *memStore }

func (r memQuotes) GetByID(id string) (*entity.Quote, error) { return r.s.quotes[id], nil }
func (r memQuotes) Create(q *entity.Quote) error             { r.s.quotes[q.ID] = q; return nil }
func (r memQuotes) CreateLine(l *entity.QuoteLine) error     { return nil }
func (r memQuotes) UpdateHeader(q *entity.Quote, expectedVersion int) error {
	stored := r.s.quotes[q.ID]
	if stored == nil || stored.Version != expectedVersion || stored.Status != entity.QuoteStatusCreated {
		return fmt.Errorf("%w: cotización %s", domain.ErrConflict, q.ID)
	}
	stored.GlobalDiscountPct = q.GlobalDiscountPct
	stored.DeliveryDays = q.DeliveryDays
	stored.DeliveryAddress = q.DeliveryAddress
	stored.Version++
	return nil
}
func (r memQuotes) DeleteLines(quoteID string) error {
	if q := r.s.quotes[quoteID]; q != nil {
		q.Lines = nil
	}
	return nil
}
func (r memQuotes) MarkProcessed(id string, expectedVersion int, processedAt time.Time) error {
	q := r.s.quotes[id]
	if q == nil || q.Version != expectedVersion || q.Status != entity.QuoteStatusCreated {
		return fmt.Errorf("%w: cotización %s", domain.ErrConflict, id)
	}
	// La copia en memoria la actualiza el caso de uso.
	return nil
}
func (r memQuotes) List(tenantID string) ([]*entity.Quote, error) {
	var out []*entity.Quote
	for _, q := range r.s.quotes {
		if q.TenantID == tenantID {
			out = append(out, q)
		}
	}
	return out, nil
}

// ── SalesOrderRepository / ReservationRepository ──────────────────────────────

type memOrders struct{ s *memStore }

func (r memOrders) GetByID(id string) (*entity.SalesOrder, error) { return r.s.orders[id], nil }
func (r memOrders) Create(o *entity.SalesOrder) error             { r.s.orders[o.ID] = o; return nil }
func (r memOrders) CreateLine(l *entity.SalesOrderLine) error     { return nil }
func (r memOrders) MarkCancelled(id string) error {
	o := r.s.orders[id]
	if o == nil || o.Status != entity.OrderStatusReserved {
		return fmt.Errorf("%w: orden %s", domain.ErrConflict, id)
	}
	o.Status = entity.OrderStatusCancelled
	return nil
}
func (r memOrders) List(tenantID string) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range r.s.orders {
		if o.TenantID == tenantID {
			out = append(out, o)
		}
	}
	return out, nil
}

type memReservations struct{ s *memStore }

func (r *memReservations) Create(res *entity.SalesOrderReservation) error {
	r.s.reservations = append(r.s.reservations, res)
	return nil
}
func (r *memReservations) ListByOrder(salesOrderID string) ([]*entity.SalesOrderReservation, error) {
	var out []*entity.SalesOrderReservation
	for _, res := range r.s.reservations {
		if res.SalesOrderID == salesOrderID {
			out = append(out, res)
		}
	}
	return out, nil
}
func (r *memReservations) DeleteByOrder(salesOrderID string) error {
	kept := r.s.reservations[:0]
	for _, res := range r.s.reservations {
		if res.SalesOrderID != salesOrderID {
			kept = append(kept, res)
		}
	}
	r.s.reservations = kept
	return nil
}

// ── SequenceRepository / AuditRepository ──────────────────────────────────────

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

// memTx ejecuta el callback directamente sobre los fakes. Las aserciones de
// atomicidad se hacen sobre lo que el caso de uso nunca llega a mutar cuando
// una etapa previa falla.
type memTx struct{ s *memStore }

func (t memTx) RunSales(ctx context.Context, fn func(r sales.SalesRepos) error) error {
	return fn(salesRepos(t.s))
}

func salesRepos(s *memStore) sales.SalesRepos {
	return sales.SalesRepos{
		Quotes:        memQuotes{s},
		Orders:        memOrders{s},
		Reservations:  &memReservations{s},
		Balances:      memBalances{s},
		Products:      memProducts{s},
		Presentations: memPresentations{s},
		Customers:     memCustomers{s},
		Sequences:     memSequences{s},
		Audit:         &memAudit{s},
	}
}

// memEvents acumula los eventos publicados.
type memEvents struct {
	published []string
}

func (e *memEvents) Publish(_ context.Context, _ string, event string, _ any) {
	e.published = append(e.published, event)
}
