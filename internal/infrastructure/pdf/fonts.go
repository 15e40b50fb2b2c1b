package pdf

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/repository"
)

// fontFamily fuente UTF-8 embebida. Las fuentes base de PDF (helvetica) solo
// cubren cp1252 y pierden símbolos como ₵, ₦ o ₹.
const fontFamily = "dejavu"

var (
	//go:embed fonts/DejaVuSans.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSans-Bold.ttf
	fontBold []byte

	fontsOnce   sync.Once
	loadedFonts []*entity.CustomFont
	fontsErr    error
)

// customFonts registra la familia para todos los estilos que usa el layout.
// DejaVu Sans no trae cursiva en el paquete: se reutiliza la regular.
func customFonts() ([]*entity.CustomFont, error) {
	fontsOnce.Do(func() {
		loadedFonts, fontsErr = repository.New().
			AddUTF8FontFromBytes(fontFamily, fontstyle.Normal, fontRegular).
			AddUTF8FontFromBytes(fontFamily, fontstyle.Italic, fontRegular).
			AddUTF8FontFromBytes(fontFamily, fontstyle.Bold, fontBold).
			AddUTF8FontFromBytes(fontFamily, fontstyle.BoldItalic, fontBold).
			Load()
		if fontsErr != nil {
			fontsErr = fmt.Errorf("pdf: cargar fuentes: %w", fontsErr)
		}
	})
	return loadedFonts, fontsErr
}
