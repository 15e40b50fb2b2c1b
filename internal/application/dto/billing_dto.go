package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest body para crear/actualizar clientes.
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	TaxID     string    `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceRequest body para crear o editar (borrador) una factura.
// Si CustomerID viene informado, los datos del cliente se copian desde el Customer
// salvo que el request los sobrescriba.
type InvoiceRequest struct {
	Number         string               `json:"number,omitempty"`
	CustomerID     string               `json:"customer_id,omitempty"`
	ClientName     string               `json:"client_name,omitempty"`
	ClientEmail    string               `json:"client_email,omitempty"`
	ClientAddress  string               `json:"client_address,omitempty"`
	ClientPhone    string               `json:"client_phone,omitempty"`
	Currency       string               `json:"currency,omitempty"`
	ExchangeRate   *decimal.Decimal     `json:"exchange_rate,omitempty"`
	TaxRate        *decimal.Decimal     `json:"tax_rate,omitempty"`
	DiscountAmount decimal.Decimal      `json:"discount_amount"`
	IssueDate      string               `json:"issue_date,omitempty"`
	DueDate        string               `json:"due_date"`
	Notes          *string              `json:"notes,omitempty"`
	Recurring      *RecurringRequest    `json:"recurring,omitempty"`
	Items          []InvoiceItemRequest `json:"items"`
}

// RecurringRequest configuración de recurrencia.
type RecurringRequest struct {
	Frequency     string `json:"frequency"`
	NextIssueDate string `json:"next_issue_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
}

// InvoiceItemRequest línea de factura. Con ProductID se toman nombre y precio del catálogo
// cuando Description o UnitPrice vienen vacíos.
type InvoiceItemRequest struct {
	ProductID   string           `json:"product_id,omitempty"`
	Description string           `json:"description,omitempty"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// InvoiceResponse factura con sus líneas.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	TenantID       string                `json:"tenant_id"`
	Number         string                `json:"number"`
	ClientName     string                `json:"client_name"`
	ClientEmail    string                `json:"client_email,omitempty"`
	ClientAddress  string                `json:"client_address,omitempty"`
	ClientPhone    string                `json:"client_phone,omitempty"`
	Currency       string                `json:"currency"`
	ExchangeRate   *decimal.Decimal      `json:"exchange_rate,omitempty"`
	TaxRate        decimal.Decimal       `json:"tax_rate"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	Total          decimal.Decimal       `json:"total"`
	TotalFormatted string                `json:"total_formatted"`
	Status         string                `json:"status"`
	IssueDate      string                `json:"issue_date"`
	DueDate        string                `json:"due_date"`
	Notes          string                `json:"notes,omitempty"`
	Recurring      *RecurringResponse    `json:"recurring,omitempty"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	Items          []InvoiceItemResponse `json:"items,omitempty"`
}

// RecurringResponse recurrencia en respuestas.
type RecurringResponse struct {
	Frequency     string `json:"frequency"`
	NextIssueDate string `json:"next_issue_date"`
	EndDate       string `json:"end_date,omitempty"`
}

// InvoiceItemResponse línea en la respuesta.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// InvoiceExportResponse resultado de exportar una factura a XML.
type InvoiceExportResponse struct {
	File   FileResponse `json:"file"`
	Digest string       `json:"digest"` // SHA-256 (hex) de la forma canónica del XML
}

// CustomerListResponse listado paginado de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InvoiceListResponse listado paginado de facturas (sin líneas).
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
