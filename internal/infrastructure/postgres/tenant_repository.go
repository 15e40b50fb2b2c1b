package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

var _ repository.TenantRepository = (*TenantRepo)(nil)

// TenantRepo persistencia de tenants y tenant_settings.
type TenantRepo struct {
	q Querier
}

// NewTenantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTenantRepository(q Querier) *TenantRepo {
	return &TenantRepo{q: q}
}

const tenantColumns = `id, name, slug, email, phone, address, subscription_tier, subscription_status, status, created_at, updated_at`

// Create persiste un tenant.
func (r *TenantRepo) Create(ctx context.Context, t *entity.Tenant) error {
	query := `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.Slug, t.Email, t.Phone, t.Address,
		t.SubscriptionTier, t.SubscriptionStatus, t.Status, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

// GetByID obtiene un tenant por ID.
func (r *TenantRepo) GetByID(ctx context.Context, id string) (*entity.Tenant, error) {
	return r.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// GetBySlug obtiene un tenant por slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	return r.getOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
}

func (r *TenantRepo) getOne(ctx context.Context, query string, arg string) (*entity.Tenant, error) {
	t, err := scanTenant(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// Update actualiza datos de contacto y suscripción. El slug no cambia.
func (r *TenantRepo) Update(ctx context.Context, t *entity.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, email = $3, phone = $4, address = $5,
		    subscription_tier = $6, subscription_status = $7, status = $8, updated_at = $9
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Name, t.Email, t.Phone, t.Address,
		t.SubscriptionTier, t.SubscriptionStatus, t.Status, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista tenants (uso de super_admin).
func (r *TenantRepo) List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error) {
	limit, offset = page(limit, offset)
	query := `SELECT ` + tenantColumns + ` FROM tenants ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var list []*entity.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// CreateSettings persiste las preferencias iniciales del tenant.
func (r *TenantRepo) CreateSettings(ctx context.Context, s *entity.TenantSettings) error {
	query := `
		INSERT INTO tenant_settings (tenant_id, base_currency, default_tax_rate, invoice_prefix, next_invoice_seq, default_notes, logo_file_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		s.TenantID, s.BaseCurrency, s.DefaultTaxRate, s.InvoicePrefix, s.NextInvoiceSeq,
		s.DefaultNotes, nullIfEmpty(s.LogoFileID), s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert tenant settings: %w", err)
	}
	return nil
}

// GetSettings obtiene las preferencias del tenant.
func (r *TenantRepo) GetSettings(ctx context.Context, tenantID string) (*entity.TenantSettings, error) {
	query := `
		SELECT tenant_id, base_currency, default_tax_rate, invoice_prefix, next_invoice_seq, default_notes, logo_file_id, updated_at
		FROM tenant_settings WHERE tenant_id = $1`
	var s entity.TenantSettings
	var logo *string
	err := r.q.QueryRow(ctx, query, tenantID).Scan(
		&s.TenantID, &s.BaseCurrency, &s.DefaultTaxRate, &s.InvoicePrefix, &s.NextInvoiceSeq,
		&s.DefaultNotes, &logo, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant settings: %w", err)
	}
	s.LogoFileID = deref(logo)
	return &s, nil
}

// UpdateSettings actualiza las preferencias. next_invoice_seq solo lo mueve NextInvoiceNumber.
func (r *TenantRepo) UpdateSettings(ctx context.Context, s *entity.TenantSettings) error {
	query := `
		UPDATE tenant_settings
		SET base_currency = $2, default_tax_rate = $3, invoice_prefix = $4, default_notes = $5, logo_file_id = $6, updated_at = $7
		WHERE tenant_id = $1`
	tag, err := r.q.Exec(ctx, query,
		s.TenantID, s.BaseCurrency, s.DefaultTaxRate, s.InvoicePrefix, s.DefaultNotes, nullIfEmpty(s.LogoFileID), s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update tenant settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextInvoiceNumber reserva el consecutivo con un UPDATE atómico; la fila queda
// bloqueada hasta el fin de la transacción, así dos facturas concurrentes no
// obtienen el mismo número.
func (r *TenantRepo) NextInvoiceNumber(ctx context.Context, tenantID string) (string, int64, error) {
	query := `
		UPDATE tenant_settings
		SET next_invoice_seq = next_invoice_seq + 1
		WHERE tenant_id = $1
		RETURNING invoice_prefix, next_invoice_seq - 1`
	var prefix string
	var seq int64
	if err := r.q.QueryRow(ctx, query, tenantID).Scan(&prefix, &seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", 0, domain.ErrNotFound
		}
		return "", 0, fmt.Errorf("next invoice number: %w", err)
	}
	return prefix, seq, nil
}

func scanTenant(row pgx.Row) (*entity.Tenant, error) {
	var t entity.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Email, &t.Phone, &t.Address,
		&t.SubscriptionTier, &t.SubscriptionStatus, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
