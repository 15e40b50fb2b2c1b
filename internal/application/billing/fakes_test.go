package billing_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

// ── Repositorios en memoria ──────────────────────────────────────────────────

type memInvoices struct {
	mu        sync.Mutex
	invoices  map[string]entity.Invoice
	items     map[string][]*entity.InvoiceLineItem
	updateErr error
	// beforeUpdate simula otro proceso que escribe entre la lectura y el Update.
	beforeUpdate func(r *memInvoices, inv *entity.Invoice)
}

func newMemInvoices() *memInvoices {
	return &memInvoices{invoices: map[string]entity.Invoice{}, items: map[string][]*entity.InvoiceLineItem{}}
}

func (r *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.TenantID == inv.TenantID && existing.Number == inv.Number {
			return domain.ErrDuplicate
		}
	}
	r.invoices[inv.ID] = *inv
	return nil
}

func (r *memInvoices) Update(_ context.Context, inv *entity.Invoice, fromStatus string) error {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		hook(r, inv)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.invoices[inv.ID]
	if !ok || stored.TenantID != inv.TenantID || stored.Status != fromStatus {
		return domain.ErrConflict
	}
	r.invoices[inv.ID] = *inv
	return nil
}

func (r *memInvoices) GetByID(_ context.Context, tenantID, id string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, nil
	}
	return &inv, nil
}

func (r *memInvoices) ListByTenant(_ context.Context, tenantID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.TenantID == tenantID && (f.Status == "" || inv.Status == f.Status) {
			inv := inv
			out = append(out, &inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *memInvoices) Delete(_ context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	delete(r.items, id)
	return nil
}

func (r *memInvoices) CreateLineItems(_ context.Context, items []*entity.InvoiceLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range items {
		r.items[it.InvoiceID] = append(r.items[it.InvoiceID], it)
	}
	return nil
}

func (r *memInvoices) DeleteLineItems(_ context.Context, invoiceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, invoiceID)
	return nil
}

func (r *memInvoices) GetLineItems(_ context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.InvoiceLineItem(nil), r.items[invoiceID]...), nil
}

func (r *memInvoices) ListDueBefore(_ context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.invoices {
		if inv.Status == entity.InvoiceStatusSent && inv.DueDate.Before(asOf) {
			inv := inv
			out = append(out, &inv)
		}
	}
	return out, nil
}

func (r *memInvoices) get(id string) entity.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id]
}

type memTenants struct {
	mu       sync.Mutex
	tenants  map[string]*entity.Tenant
	settings map[string]*entity.TenantSettings
}

func newMemTenants() *memTenants {
	return &memTenants{tenants: map[string]*entity.Tenant{}, settings: map[string]*entity.TenantSettings{}}
}

func (r *memTenants) Create(_ context.Context, t *entity.Tenant) error {
	r.tenants[t.ID] = t
	return nil
}

func (r *memTenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tenants[id], nil
}

func (r *memTenants) GetBySlug(_ context.Context, slug string) (*entity.Tenant, error) {
	for _, t := range r.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTenants) Update(_ context.Context, t *entity.Tenant) error {
	r.tenants[t.ID] = t
	return nil
}

func (r *memTenants) List(_ context.Context, limit, offset int) ([]*entity.Tenant, error) {
	var out []*entity.Tenant
	for _, t := range r.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (r *memTenants) CreateSettings(_ context.Context, s *entity.TenantSettings) error {
	r.settings[s.TenantID] = s
	return nil
}

func (r *memTenants) GetSettings(_ context.Context, tenantID string) (*entity.TenantSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memTenants) UpdateSettings(_ context.Context, s *entity.TenantSettings) error {
	r.settings[s.TenantID] = s
	return nil
}

func (r *memTenants) NextInvoiceNumber(_ context.Context, tenantID string) (string, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[tenantID]
	if !ok {
		return "", 0, domain.ErrNotFound
	}
	seq := s.NextInvoiceSeq
	s.NextInvoiceSeq++
	return s.InvoicePrefix, seq, nil
}

type memCustomers struct{ customers map[string]*entity.Customer }

func (r *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, tenantID, id string) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	return c, nil
}

func (r *memCustomers) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.customers {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCustomers) Update(_ context.Context, c *entity.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomers) Delete(_ context.Context, tenantID, id string) error {
	delete(r.customers, id)
	return nil
}

type memProducts struct{ products map[string]*entity.Product }

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

func (r *memProducts) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}

func (r *memProducts) Update(_ context.Context, p *entity.Product) error { return nil }

func (r *memProducts) Delete(_ context.Context, tenantID, id string) error { return nil }

// fakeTx ejecuta fn sobre los mismos repositorios en memoria; si fn falla
// restaura el estado de facturas previo.
type fakeTx struct {
	tenants  *memTenants
	invoices *memInvoices
	runs     []string
}

func (tx *fakeTx) Run(_ context.Context, tenantID string, fn func(repository.TxRepos) error) error {
	tx.runs = append(tx.runs, tenantID)
	tx.invoices.mu.Lock()
	snapInv := make(map[string]entity.Invoice, len(tx.invoices.invoices))
	for k, v := range tx.invoices.invoices {
		snapInv[k] = v
	}
	snapItems := make(map[string][]*entity.InvoiceLineItem, len(tx.invoices.items))
	for k, v := range tx.invoices.items {
		snapItems[k] = v
	}
	tx.invoices.mu.Unlock()

	err := fn(repository.TxRepos{Tenants: tx.tenants, Invoices: tx.invoices})
	if err != nil {
		tx.invoices.mu.Lock()
		tx.invoices.invoices, tx.invoices.items = snapInv, snapItems
		tx.invoices.mu.Unlock()
	}
	return err
}

// ── Adaptadores falsos ───────────────────────────────────────────────────────

type fakeGenerator struct {
	calls int
	err   error
	docs  []*invoice.Document
}

func (g *fakeGenerator) Generate(_ context.Context, doc *invoice.Document) ([]byte, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.docs = append(g.docs, doc)
	return []byte("%PDF-1.4 " + doc.Number), nil
}

type memCache struct {
	data   map[string][]byte
	getErr error
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.data[key] = data
	return nil
}

type sentEmail struct {
	to          string
	kind        notification.Kind
	data        notification.Data
	attachments []notification.Attachment
}

type captureNotifier struct {
	sent []sentEmail
	err  error
}

func (n *captureNotifier) Notify(_ context.Context, to string, kind notification.Kind, data notification.Data, attachments ...notification.Attachment) error {
	n.sent = append(n.sent, sentEmail{to: to, kind: kind, data: data, attachments: attachments})
	return n.err
}

type fakeExporter struct{}

func (fakeExporter) Export(inv *entity.Invoice, items []*entity.InvoiceLineItem, issuer invoice.Party) ([]byte, string, error) {
	return []byte(fmt.Sprintf("<Invoice number=%q lines=\"%d\" issuer=%q/>", inv.Number, len(items), issuer.Name)), "abc123", nil
}

type captureUploader struct {
	inputs []storage.UploadInput
}

func (u *captureUploader) Upload(_ context.Context, in storage.UploadInput) (*entity.StorageFile, error) {
	u.inputs = append(u.inputs, in)
	return &entity.StorageFile{
		ID:           "file-1",
		TenantID:     in.TenantID,
		Bucket:       in.Bucket,
		Path:         in.TenantID + "/x-" + in.OriginalName,
		OriginalName: in.OriginalName,
		ContentType:  in.ContentType,
		Size:         int64(len(in.Data)),
	}, nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

const tenantID = "tenant-1"

type fixture struct {
	invoices  *memInvoices
	tenants   *memTenants
	customers *memCustomers
	products  *memProducts
	tx        *fakeTx
	generator *fakeGenerator
	notifier  *captureNotifier
}

func newFixture() *fixture {
	f := &fixture{
		invoices:  newMemInvoices(),
		tenants:   newMemTenants(),
		customers: &memCustomers{customers: map[string]*entity.Customer{}},
		products:  &memProducts{products: map[string]*entity.Product{}},
		generator: &fakeGenerator{},
		notifier:  &captureNotifier{},
	}
	f.tx = &fakeTx{tenants: f.tenants, invoices: f.invoices}
	f.tenants.tenants[tenantID] = &entity.Tenant{ID: tenantID, Name: "Kofi Designs", Email: "hola@kofi.test", Address: "Accra"}
	f.tenants.settings[tenantID] = &entity.TenantSettings{
		TenantID:       tenantID,
		BaseCurrency:   "GHS",
		DefaultTaxRate: decimal.RequireFromString("12.5"),
		InvoicePrefix:  "INV-",
		NextInvoiceSeq: 1,
		DefaultNotes:   "Gracias por su compra",
	}
	return f
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
