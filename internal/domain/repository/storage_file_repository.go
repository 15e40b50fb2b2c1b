package repository

import (
	"context"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// StorageFileRepository define el puerto de persistencia para los metadatos de archivos.
type StorageFileRepository interface {
	Create(ctx context.Context, file *entity.StorageFile) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.StorageFile, error)
	Delete(ctx context.Context, tenantID, id string) error
}
