package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

// ExportUseCase exporta una factura a XML y la guarda en el bucket de exportaciones.
type ExportUseCase struct {
	invoiceRepo repository.InvoiceRepository
	tenantRepo  repository.TenantRepository
	exporter    XMLExporter
	files       FileUploader
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(invoiceRepo repository.InvoiceRepository, tenantRepo repository.TenantRepository, exporter XMLExporter, files FileUploader) *ExportUseCase {
	return &ExportUseCase{invoiceRepo: invoiceRepo, tenantRepo: tenantRepo, exporter: exporter, files: files}
}

// Export genera el XML, lo sube y devuelve el archivo junto con el digest canónico.
func (uc *ExportUseCase) Export(ctx context.Context, tenantID, userID, invoiceID string) (*dto.InvoiceExportResponse, error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status == entity.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: un borrador no se puede exportar", domain.ErrConflict)
	}
	tenant, err := uc.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}

	xml, digest, err := uc.exporter.Export(inv, items, IssuerParty(tenant))
	if err != nil {
		return nil, fmt.Errorf("exportar factura: %w", err)
	}
	file, err := uc.files.Upload(ctx, storage.UploadInput{
		TenantID:     tenantID,
		UserID:       userID,
		Bucket:       entity.BucketExports,
		OriginalName: strings.TrimSuffix(PDFFilename(inv), ".pdf") + ".xml",
		ContentType:  "application/xml",
		Data:         xml,
	})
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceExportResponse{File: *storage.ToFileResponse(file), Digest: digest}, nil
}
