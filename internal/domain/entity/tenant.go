package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Planes de suscripción.
const (
	TierFree    = "free"
	TierStarter = "starter"
	TierPro     = "pro"
)

// Estados de suscripción.
const (
	SubscriptionTrialing  = "trialing"
	SubscriptionActive    = "active"
	SubscriptionPastDue   = "past_due"
	SubscriptionCancelled = "cancelled"
)

// Tenant representa una empresa cliente (unidad de aislamiento de datos).
type Tenant struct {
	ID                 string
	Name               string
	Slug               string
	Email              string
	Phone              string
	Address            string
	SubscriptionTier   string
	SubscriptionStatus string
	Status             string // active, suspended
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TenantSettings preferencias de facturación del tenant.
type TenantSettings struct {
	TenantID       string
	BaseCurrency   string
	DefaultTaxRate decimal.Decimal
	InvoicePrefix  string
	NextInvoiceSeq int64
	DefaultNotes   string
	LogoFileID     string
	UpdatedAt      time.Time
}

// ValidTier indica si el plan existe.
func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierStarter, TierPro:
		return true
	}
	return false
}

// ValidSubscriptionStatus indica si el estado de suscripción existe.
func ValidSubscriptionStatus(status string) bool {
	switch status {
	case SubscriptionTrialing, SubscriptionActive, SubscriptionPastDue, SubscriptionCancelled:
		return true
	}
	return false
}
