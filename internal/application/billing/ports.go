package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
)

// InvoicePDFGenerator genera el PDF a partir del documento ya armado.
type InvoicePDFGenerator interface {
	Generate(ctx context.Context, doc *invoice.Document) ([]byte, error)
}

// PDFCache caché opcional de PDFs generados. Get devuelve ok=false si no hay entrada.
type PDFCache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Notifier envía emails transaccionales a partir de una plantilla.
type Notifier interface {
	Notify(ctx context.Context, to string, kind notification.Kind, data notification.Data, attachments ...notification.Attachment) error
}

// XMLExporter serializa una factura a XML y devuelve el digest de su forma canónica.
type XMLExporter interface {
	Export(inv *entity.Invoice, items []*entity.InvoiceLineItem, issuer invoice.Party) (xml []byte, digest string, err error)
}

// FileUploader sube un archivo y registra sus metadatos.
type FileUploader interface {
	Upload(ctx context.Context, in storage.UploadInput) (*entity.StorageFile, error)
}
