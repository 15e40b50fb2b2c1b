package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, tenant_id, number, client_name, client_email, client_address, client_phone,
	currency, exchange_rate, tax_rate, discount_amount, subtotal, tax_amount, total,
	status, issue_date, due_date, notes, recurring, sent_at, paid_at, created_by,
	created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	recurring, err := marshalRecurring(inv.Recurring)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.TenantID, inv.Number, inv.ClientName, inv.ClientEmail, inv.ClientAddress, inv.ClientPhone,
		inv.Currency, inv.ExchangeRate, inv.TaxRate, inv.DiscountAmount, inv.Subtotal, inv.TaxAmount, inv.Total,
		inv.Status, inv.IssueDate, inv.DueDate, inv.Notes, recurring, inv.SentAt, inv.PaidAt, nullIfEmpty(inv.CreatedBy),
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update reescribe la cabecera completa (datos editables, totales y estado) con
// compare-and-set sobre el estado leído.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice, fromStatus string) error {
	recurring, err := marshalRecurring(inv.Recurring)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices
		SET number          = $3,
		    client_name     = $4,
		    client_email    = $5,
		    client_address  = $6,
		    client_phone    = $7,
		    currency        = $8,
		    exchange_rate   = $9,
		    tax_rate        = $10,
		    discount_amount = $11,
		    subtotal        = $12,
		    tax_amount      = $13,
		    total           = $14,
		    status          = $15,
		    issue_date      = $16,
		    due_date        = $17,
		    notes           = $18,
		    recurring       = $19,
		    sent_at         = $20,
		    paid_at         = $21,
		    updated_at      = $22
		WHERE tenant_id = $1 AND id = $2 AND status = $23`
	tag, err := r.q.Exec(ctx, query,
		inv.TenantID, inv.ID, inv.Number, inv.ClientName, inv.ClientEmail, inv.ClientAddress, inv.ClientPhone,
		inv.Currency, inv.ExchangeRate, inv.TaxRate, inv.DiscountAmount, inv.Subtotal, inv.TaxAmount, inv.Total,
		inv.Status, inv.IssueDate, inv.DueDate, inv.Notes, recurring, inv.SentAt, inv.PaidAt, inv.UpdatedAt,
		fromStatus,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la factura ya no está en estado %s", domain.ErrConflict, fromStatus)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura del tenant.
func (r *InvoiceRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// ListByTenant lista cabeceras del tenant, más recientes primero. Status vacío = todos.
func (r *InvoiceRepo) ListByTenant(ctx context.Context, tenantID string, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	limit, offset := page(f.Limit, f.Offset)
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY issue_date DESC, created_at DESC, id
		LIMIT $3 OFFSET $4`
	return r.list(ctx, "list invoices", query, tenantID, f.Status, limit, offset)
}

// ListDueBefore facturas enviadas con vencimiento anterior a asOf, de todos los tenants.
func (r *InvoiceRepo) ListDueBefore(ctx context.Context, asOf time.Time, limit int) ([]*entity.Invoice, error) {
	if limit <= 0 {
		limit = 500
	}
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = 'sent' AND due_date < $1
		ORDER BY due_date, id
		LIMIT $2`
	return r.list(ctx, "list due invoices", query, asOf, limit)
}

func (r *InvoiceRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Delete elimina la factura; las líneas caen por ON DELETE CASCADE.
func (r *InvoiceRepo) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateLineItems inserta las líneas en el orden recibido.
func (r *InvoiceRepo) CreateLineItems(ctx context.Context, items []*entity.InvoiceLineItem) error {
	query := `
		INSERT INTO invoice_line_items (id, invoice_id, position, description, quantity, unit_price, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range items {
		_, err := r.q.Exec(ctx, query,
			it.ID, it.InvoiceID, it.Position, it.Description, it.Quantity, it.UnitPrice, it.Total,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("insert line item: %w", domain.ErrNotFound)
			}
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

// DeleteLineItems borra todas las líneas de la factura.
func (r *InvoiceRepo) DeleteLineItems(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete line items: %w", err)
	}
	return nil
}

// GetLineItems obtiene las líneas ordenadas por posición.
func (r *InvoiceRepo) GetLineItems(ctx context.Context, invoiceID string) ([]*entity.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, position, description, quantity, unit_price, total
		FROM invoice_line_items WHERE invoice_id = $1 ORDER BY position, id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InvoiceLineItem
	for rows.Next() {
		var it entity.InvoiceLineItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice, &it.Total); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var recurring []byte
	var createdBy *string
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.Number, &inv.ClientName, &inv.ClientEmail, &inv.ClientAddress, &inv.ClientPhone,
		&inv.Currency, &inv.ExchangeRate, &inv.TaxRate, &inv.DiscountAmount, &inv.Subtotal, &inv.TaxAmount, &inv.Total,
		&inv.Status, &inv.IssueDate, &inv.DueDate, &inv.Notes, &recurring, &inv.SentAt, &inv.PaidAt, &createdBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CreatedBy = deref(createdBy)
	if len(recurring) > 0 {
		var rc entity.RecurringConfig
		if err := json.Unmarshal(recurring, &rc); err != nil {
			return nil, fmt.Errorf("decode recurring: %w", err)
		}
		inv.Recurring = &rc
	}
	return &inv, nil
}

func marshalRecurring(rc *entity.RecurringConfig) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}
	b, err := json.Marshal(rc)
	if err != nil {
		return nil, fmt.Errorf("encode recurring: %w", err)
	}
	return b, nil
}
