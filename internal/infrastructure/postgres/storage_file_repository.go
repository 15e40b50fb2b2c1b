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

var _ repository.StorageFileRepository = (*StorageFileRepo)(nil)

// StorageFileRepo metadatos de los objetos subidos (tabla storage_files).
type StorageFileRepo struct {
	q Querier
}

// NewStorageFileRepository construye el adaptador.
func NewStorageFileRepository(q Querier) *StorageFileRepo {
	return &StorageFileRepo{q: q}
}

// Create registra un objeto ya subido al bucket.
func (r *StorageFileRepo) Create(ctx context.Context, f *entity.StorageFile) error {
	query := `
		INSERT INTO storage_files (id, tenant_id, bucket, path, original_name, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.TenantID, f.Bucket, f.Path, f.OriginalName, f.ContentType, f.Size, nullIfEmpty(f.UploadedBy), f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert storage file: %w", err)
	}
	return nil
}

// GetByID obtiene los metadatos de un archivo del tenant.
func (r *StorageFileRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.StorageFile, error) {
	query := `
		SELECT id, tenant_id, bucket, path, original_name, content_type, size, uploaded_by, created_at
		FROM storage_files WHERE tenant_id = $1 AND id = $2`
	var f entity.StorageFile
	var uploadedBy *string
	err := r.q.QueryRow(ctx, query, tenantID, id).Scan(
		&f.ID, &f.TenantID, &f.Bucket, &f.Path, &f.OriginalName, &f.ContentType, &f.Size, &uploadedBy, &f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get storage file: %w", err)
	}
	f.UploadedBy = deref(uploadedBy)
	return &f, nil
}

// Delete borra el registro de metadatos.
func (r *StorageFileRepo) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM storage_files WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete storage file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
