// Package storage gestiona los archivos subidos por los tenants: el objeto vive
// en el almacenamiento de buckets y sus metadatos en la tabla storage_files.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

const signedURLSeconds = 3600

// UploadInput archivo a subir.
type UploadInput struct {
	TenantID     string
	UserID       string
	Bucket       string
	OriginalName string
	ContentType  string
	Data         []byte
}

// FileUseCase sube, consulta y borra archivos manteniendo objeto y metadatos alineados.
type FileUseCase struct {
	store    ObjectStore
	repo     repository.StorageFileRepository
	maxBytes int64
	log      zerolog.Logger
	now      func() time.Time
}

// NewFileUseCase construye el caso de uso. maxBytes <= 0 desactiva el límite.
func NewFileUseCase(store ObjectStore, repo repository.StorageFileRepository, maxBytes int64, log zerolog.Logger) *FileUseCase {
	return &FileUseCase{store: store, repo: repo, maxBytes: maxBytes, log: log, now: time.Now}
}

// Upload sube el objeto y registra sus metadatos. Si el registro falla, borra el
// objeto recién subido para no dejarlo huérfano.
func (uc *FileUseCase) Upload(ctx context.Context, in UploadInput) (*entity.StorageFile, error) {
	if in.TenantID == "" || !entity.ValidBucket(in.Bucket) {
		return nil, fmt.Errorf("%w: bucket %q", domain.ErrInvalidInput, in.Bucket)
	}
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}
	if uc.maxBytes > 0 && int64(len(in.Data)) > uc.maxBytes {
		return nil, fmt.Errorf("%w: el archivo supera %d bytes", domain.ErrInvalidInput, uc.maxBytes)
	}
	contentType := in.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(in.Data)
	}

	now := uc.now()
	file := &entity.StorageFile{
		ID:           uuid.New().String(),
		TenantID:     in.TenantID,
		Bucket:       in.Bucket,
		Path:         ObjectPath(in.TenantID, in.OriginalName, now),
		OriginalName: in.OriginalName,
		ContentType:  contentType,
		Size:         int64(len(in.Data)),
		UploadedBy:   in.UserID,
		CreatedAt:    now,
	}

	if err := uc.store.Upload(ctx, file.Bucket, file.Path, in.Data, contentType); err != nil {
		return nil, fmt.Errorf("%w: subir objeto: %v", domain.ErrStorage, err)
	}
	if err := uc.repo.Create(ctx, file); err != nil {
		if delErr := uc.store.Delete(ctx, file.Bucket, file.Path); delErr != nil {
			uc.log.Error().Err(delErr).
				Str("bucket", file.Bucket).Str("path", file.Path).
				Msg("no se pudo borrar el objeto tras fallar el registro de metadatos")
		}
		return nil, fmt.Errorf("registrar archivo: %w", err)
	}
	uc.log.Info().Str("tenant_id", file.TenantID).Str("bucket", file.Bucket).
		Str("path", file.Path).Int64("size", file.Size).Msg("archivo subido")
	return file, nil
}

// Get devuelve los metadatos y una URL firmada de descarga.
func (uc *FileUseCase) Get(ctx context.Context, tenantID, id string) (*dto.FileResponse, error) {
	file, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := ToFileResponse(file)
	url, err := uc.store.SignedURL(ctx, file.Bucket, file.Path, signedURLSeconds)
	if err != nil {
		uc.log.Warn().Err(err).Str("file_id", id).Msg("no se pudo firmar la URL del archivo")
	} else {
		out.URL = url
	}
	return out, nil
}

// Download devuelve el contenido y los metadatos del archivo.
func (uc *FileUseCase) Download(ctx context.Context, tenantID, id string) ([]byte, *entity.StorageFile, error) {
	file, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, nil, err
	}
	data, err := uc.store.Download(ctx, file.Bucket, file.Path)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: descargar objeto: %v", domain.ErrStorage, err)
	}
	return data, file, nil
}

// Delete borra primero los metadatos y luego el objeto. Un objeto que no se pudo
// borrar queda registrado en el log.
func (uc *FileUseCase) Delete(ctx context.Context, tenantID, id string) error {
	file, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("borrar metadatos: %w", err)
	}
	if err := uc.store.Delete(ctx, file.Bucket, file.Path); err != nil {
		uc.log.Error().Err(err).Str("bucket", file.Bucket).Str("path", file.Path).
			Msg("objeto huérfano: metadatos borrados pero el objeto sigue en el almacenamiento")
	}
	return nil
}

func (uc *FileUseCase) find(ctx context.Context, tenantID, id string) (*entity.StorageFile, error) {
	file, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

// ObjectPath genera una ruta única: <tenant>/<ulid>-<nombre-saneado><ext>.
func ObjectPath(tenantID, originalName string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := strings.ToLower(filepath.Ext(base))
	name := slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	if name == "" {
		name = "archivo"
	}
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy())
	return fmt.Sprintf("%s/%s-%s%s", tenantID, strings.ToLower(id.String()), name, ext)
}

// ToFileResponse convierte la entidad a DTO.
func ToFileResponse(f *entity.StorageFile) *dto.FileResponse {
	return &dto.FileResponse{
		ID:           f.ID,
		Bucket:       f.Bucket,
		Path:         f.Path,
		OriginalName: f.OriginalName,
		ContentType:  f.ContentType,
		Size:         f.Size,
		CreatedAt:    f.CreatedAt,
	}
}
