// Package currency formatea montos monetarios con el símbolo de su moneda.
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCode moneda usada cuando no se indica ninguna.
const DefaultCode = "USD"

var symbols = map[string]string{
	"GHS": "₵",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"NGN": "₦",
	"KES": "KSh",
	"ZAR": "R",
	"XOF": "CFA",
	"XAF": "FCFA",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"CAD": "CA$",
	"AUD": "A$",
	"CHF": "CHF",
}

// Normalize devuelve el código en mayúsculas; vacío se trata como DefaultCode.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCode
	}
	return code
}

// Symbol devuelve el símbolo de la moneda y si el código es conocido.
func Symbol(code string) (string, bool) {
	s, ok := symbols[Normalize(code)]
	return s, ok
}

// IsISOCode indica si code (ya normalizado) son exactamente tres letras ASCII A-Z.
func IsISOCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Format devuelve el monto con dos decimales y separador de miles.
// Moneda conocida: "₵1,234.50". Desconocida: "XYZ 1,234.50".
func Format(amount decimal.Decimal, code string) string {
	code = Normalize(code)
	sign := ""
	rounded := amount.Round(2)
	if rounded.IsNegative() {
		sign = "-"
	}
	number := groupDigits(rounded.Abs())
	if s, ok := symbols[code]; ok {
		return sign + s + number
	}
	return sign + code + " " + number
}

// FormatFloat atajo para montos float64.
func FormatFloat(amount float64, code string) string {
	return Format(decimal.NewFromFloat(amount), code)
}

func groupDigits(v decimal.Decimal) string {
	intPart := v.Truncate(0)
	cents := v.Sub(intPart).Shift(2).IntPart()
	p := message.NewPrinter(language.English)
	return p.Sprintf("%d", intPart.IntPart()) + "." + fmt.Sprintf("%02d", cents)
}
