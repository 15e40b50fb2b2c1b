package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Tenants  TenantRepository
	Users    UserRepository
	Invoices InvoiceRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si tenantID no está vacío, la
// transacción queda asociada a ese tenant para las políticas de fila.
type TxRunner interface {
	Run(ctx context.Context, tenantID string, fn func(repos TxRepos) error) error
}
