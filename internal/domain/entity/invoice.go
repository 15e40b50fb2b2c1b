package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una factura.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Frecuencias de facturación recurrente.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// RecurringConfig configuración opcional de recurrencia.
type RecurringConfig struct {
	Frequency     string     `json:"frequency"`
	NextIssueDate time.Time  `json:"next_issue_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Invoice representa la cabecera de una factura. Los datos del cliente se copian
// por valor: borrar un Customer no afecta a sus facturas.
type Invoice struct {
	ID             string
	TenantID       string
	Number         string
	ClientName     string
	ClientEmail    string
	ClientAddress  string
	ClientPhone    string
	Currency       string
	ExchangeRate   *decimal.Decimal // nil = sin tasa de cambio
	TaxRate        decimal.Decimal  // porcentaje sobre el subtotal
	DiscountAmount decimal.Decimal  // monto absoluto
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	Status         string
	IssueDate      time.Time
	DueDate        time.Time
	Notes          string
	Recurring      *RecurringConfig
	SentAt         *time.Time
	PaidAt         *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
