package entity

import "time"

// Customer cliente del tenant, usado para precargar datos de factura.
type Customer struct {
	ID        string
	TenantID  string
	Name      string
	Email     string
	Phone     string
	Address   string
	TaxID     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
