// Package ocr extrae texto de imágenes de recibos.
package ocr

import (
	"context"
	"errors"

	"github.com/jhoicas/Facturo-api/internal/application/expense"
)

// ErrUnavailable el binario se compiló sin soporte de tesseract.
var ErrUnavailable = errors.New("ocr: no disponible en este binario")

var _ expense.TextExtractor = Noop{}

// Noop extractor usado cuando no hay tesseract; el gasto se guarda sin texto.
type Noop struct{}

func (Noop) Extract(context.Context, []byte) (string, error) {
	return "", ErrUnavailable
}
