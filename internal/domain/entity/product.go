package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto o servicio del catálogo del tenant.
type Product struct {
	ID          string
	TenantID    string
	Name        string
	Description string
	SKU         string
	UnitPrice   decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
