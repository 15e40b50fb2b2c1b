package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// InvoiceFilter filtros de listado de facturas.
type InvoiceFilter struct {
	Status string
	Limit  int
	Offset int
}

// InvoiceRepository define el puerto de persistencia para Invoice y sus líneas.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update reescribe la cabecera solo si el estado guardado sigue siendo fromStatus;
	// si otro proceso lo cambió devuelve domain.ErrConflict.
	Update(ctx context.Context, invoice *entity.Invoice, fromStatus string) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error)
	ListByTenant(ctx context.Context, tenantID string, filter InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, tenantID, id string) error

	// CreateLineItems inserta las líneas en el orden recibido (Position).
	CreateLineItems(ctx context.Context, items []*entity.InvoiceLineItem) error
	DeleteLineItems(ctx context.Context, invoiceID string) error
	GetLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error)

	// ListDueBefore devuelve facturas en estado sent con due_date anterior a asOf (todos los tenants).
	ListDueBefore(ctx context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error)
}
