package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

const pdfCacheTTL = 24 * time.Hour

var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-", " ", "_", "\"", "")

// PDFUseCase genera la representación en PDF de una factura.
type PDFUseCase struct {
	invoiceRepo repository.InvoiceRepository
	tenantRepo  repository.TenantRepository
	generator   InvoicePDFGenerator
	cache       PDFCache
	log         zerolog.Logger
}

// NewPDFUseCase construye el caso de uso. cache puede ser nil.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	tenantRepo repository.TenantRepository,
	generator InvoicePDFGenerator,
	cache PDFCache,
	log zerolog.Logger,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		generator:   generator,
		cache:       cache,
		log:         log,
	}
}

// DownloadInvoicePDF carga la factura del tenant y devuelve el PDF y su nombre de archivo.
//
// Retorna:
//   - domain.ErrNotFound si la factura no existe o es de otro tenant.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, tenantID, invoiceID string) (pdfBytes []byte, filename string, err error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	return uc.Render(ctx, inv, items)
}

// Document arma el documento imprimible con los datos del emisor y la moneda base.
func (uc *PDFUseCase) Document(ctx context.Context, inv *entity.Invoice, items []*entity.InvoiceLineItem) (*invoice.Document, error) {
	tenant, err := uc.tenantRepo.GetByID(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener tenant: %w", err)
	}
	if tenant == nil {
		return nil, domain.ErrNotFound
	}
	settings, err := uc.tenantRepo.GetSettings(ctx, inv.TenantID)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener preferencias: %w", err)
	}
	base := ""
	if settings != nil {
		base = settings.BaseCurrency
	}
	return invoice.Assemble(invoice.AssembleInput{
		Invoice:      inv,
		Items:        items,
		Issuer:       IssuerParty(tenant),
		BaseCurrency: base,
	}), nil
}

// Render genera el PDF de una factura ya cargada, usando la caché si está configurada.
// La clave incluye UpdatedAt: cualquier cambio de la factura invalida la entrada.
func (uc *PDFUseCase) Render(ctx context.Context, inv *entity.Invoice, items []*entity.InvoiceLineItem) ([]byte, string, error) {
	filename := PDFFilename(inv)
	key := fmt.Sprintf("invoice-pdf:%s:%d", inv.ID, inv.UpdatedAt.UnixNano())

	if uc.cache != nil {
		data, ok, err := uc.cache.Get(ctx, key)
		if err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("caché de PDF no disponible")
		} else if ok {
			return data, filename, nil
		}
	}

	doc, err := uc.Document(ctx, inv, items)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.generator.Generate(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, data, pdfCacheTTL); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo guardar el PDF en caché")
		}
	}
	return data, filename, nil
}

// PDFFilename nombre de descarga del PDF.
func PDFFilename(inv *entity.Invoice) string {
	return "factura_" + filenameReplacer.Replace(inv.Number) + ".pdf"
}

// IssuerParty datos del emisor tomados del tenant.
func IssuerParty(t *entity.Tenant) invoice.Party {
	return invoice.Party{
		Name:    t.Name,
		Address: t.Address,
		Phone:   t.Phone,
		Email:   t.Email,
	}
}
