package entity

import "time"

// Buckets de almacenamiento de objetos.
const (
	BucketReceipts  = "receipts"
	BucketInvoices  = "invoices"
	BucketLogos     = "logos"
	BucketAvatars   = "avatars"
	BucketDocuments = "documents"
	BucketExports   = "exports"
)

// StorageFile metadatos de un objeto subido al almacenamiento.
type StorageFile struct {
	ID           string
	TenantID     string
	Bucket       string
	Path         string
	OriginalName string
	ContentType  string
	Size         int64
	UploadedBy   string
	CreatedAt    time.Time
}

// ValidBucket indica si el bucket es conocido.
func ValidBucket(b string) bool {
	switch b {
	case BucketReceipts, BucketInvoices, BucketLogos, BucketAvatars, BucketDocuments, BucketExports:
		return true
	}
	return false
}
