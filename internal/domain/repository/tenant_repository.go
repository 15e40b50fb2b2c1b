package repository

import (
	"context"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// TenantRepository define el puerto de persistencia para Tenant y sus preferencias.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entity.Tenant) error
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error)
	Update(ctx context.Context, tenant *entity.Tenant) error
	List(ctx context.Context, limit, offset int) ([]*entity.Tenant, error)

	CreateSettings(ctx context.Context, settings *entity.TenantSettings) error
	GetSettings(ctx context.Context, tenantID string) (*entity.TenantSettings, error)
	UpdateSettings(ctx context.Context, settings *entity.TenantSettings) error
	// NextInvoiceNumber reserva el siguiente consecutivo y devuelve prefijo y número reservado.
	NextInvoiceNumber(ctx context.Context, tenantID string) (prefix string, seq int64, err error)
}
