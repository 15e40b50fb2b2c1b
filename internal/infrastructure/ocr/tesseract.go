//go:build tesseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/jhoicas/Facturo-api/internal/application/expense"
)

// Tesseract extractor sobre libtesseract. gosseract.Client no es seguro para uso
// concurrente, por eso se crea un cliente por llamada y se limita el paralelismo.
type Tesseract struct {
	languages []string
	sem       chan struct{}
}

// New devuelve el extractor con tesseract.
func New(languages []string) expense.TextExtractor {
	return &Tesseract{languages: languages, sem: make(chan struct{}, 2)}
}

func (t *Tesseract) Extract(ctx context.Context, image []byte) (string, error) {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-t.sem }()

	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return "", fmt.Errorf("ocr: idioma: %w", err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("ocr: imagen: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return text, nil
}
