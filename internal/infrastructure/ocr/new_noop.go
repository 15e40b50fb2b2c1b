//go:build !tesseract

package ocr

import "github.com/jhoicas/Facturo-api/internal/application/expense"

// New devuelve el extractor disponible. Sin el tag tesseract es Noop.
func New(_ []string) expense.TextExtractor {
	return Noop{}
}
