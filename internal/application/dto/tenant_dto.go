package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantResponse datos del tenant.
type TenantResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	Email              string    `json:"email,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	Address            string    `json:"address,omitempty"`
	SubscriptionTier   string    `json:"subscription_tier"`
	SubscriptionStatus string    `json:"subscription_status"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

// UpdateTenantRequest body para PUT /api/tenant.
type UpdateTenantRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// TenantSettingsResponse preferencias de facturación.
type TenantSettingsResponse struct {
	BaseCurrency   string          `json:"base_currency"`
	DefaultTaxRate decimal.Decimal `json:"default_tax_rate"`
	InvoicePrefix  string          `json:"invoice_prefix"`
	NextInvoiceSeq int64           `json:"next_invoice_seq"`
	DefaultNotes   string          `json:"default_notes,omitempty"`
	LogoFileID     string          `json:"logo_file_id,omitempty"`
}

// UpdateTenantSettingsRequest body para PUT /api/tenant/settings.
type UpdateTenantSettingsRequest struct {
	BaseCurrency   string           `json:"base_currency,omitempty"`
	DefaultTaxRate *decimal.Decimal `json:"default_tax_rate,omitempty"`
	InvoicePrefix  *string          `json:"invoice_prefix,omitempty"`
	DefaultNotes   *string          `json:"default_notes,omitempty"`
	LogoFileID     *string          `json:"logo_file_id,omitempty"`
}

// UpdateSubscriptionRequest body para PUT /api/tenant/subscription.
type UpdateSubscriptionRequest struct {
	Tier   string `json:"tier"`
	Status string `json:"status,omitempty"`
}

// TenantListResponse listado paginado de tenants (super_admin).
type TenantListResponse struct {
	Items []TenantResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
