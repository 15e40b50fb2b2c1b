package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

// DisplayDateLayout formato de fechas en documentos y emails.
const DisplayDateLayout = "02/01/2006"

// Party datos de contacto del emisor o del cliente.
type Party struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// DocumentLine fila de la tabla de líneas, ya formateada.
type DocumentLine struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// TotalsBlock bloque de totales formateado.
type TotalsBlock struct {
	Subtotal    string
	TaxLabel    string
	Tax         string
	HasDiscount bool
	Discount    string
	Total       string
}

// ConversionNote equivalente del total en la moneda base del tenant.
type ConversionNote struct {
	BaseCurrency string
	Rate         decimal.Decimal
	Equivalent   decimal.Decimal
	Text         string
}

// Document representación imprimible de una factura, independiente del motor de layout.
type Document struct {
	Number    string
	IssueDate string
	DueDate   string
	Status    string
	Currency  string

	Issuer Party
	BillTo Party

	Lines  []DocumentLine
	Totals TotalsBlock

	// Bloques condicionales: nil cuando no aplican.
	ConversionNote *ConversionNote
	Notes          *string
}

// AssembleInput datos necesarios para armar el documento.
type AssembleInput struct {
	Invoice      *entity.Invoice
	Items        []*entity.InvoiceLineItem
	Issuer       Party
	BaseCurrency string
}

// Assemble arma el documento de la factura. Nunca falla: datos incompletos
// (por ejemplo sin tasa de cambio) omiten el bloque condicional correspondiente.
func Assemble(in AssembleInput) *Document {
	inv := in.Invoice
	cur := currency.Normalize(inv.Currency)
	totals := ComputeTotals(in.Items, inv.TaxRate, inv.DiscountAmount)

	doc := &Document{
		Number:    inv.Number,
		IssueDate: formatDate(inv.IssueDate),
		DueDate:   formatDate(inv.DueDate),
		Status:    inv.Status,
		Currency:  cur,
		Issuer:    in.Issuer,
		BillTo: Party{
			Name:    inv.ClientName,
			Address: inv.ClientAddress,
			Phone:   inv.ClientPhone,
			Email:   inv.ClientEmail,
		},
		Lines: make([]DocumentLine, 0, len(in.Items)),
	}

	for _, it := range in.Items {
		doc.Lines = append(doc.Lines, DocumentLine{
			Description: it.Description,
			Quantity:    it.Quantity.String(),
			UnitPrice:   currency.Format(it.UnitPrice, cur),
			Total:       currency.Format(LineTotal(it.Quantity, it.UnitPrice), cur),
		})
	}

	doc.Totals = TotalsBlock{
		Subtotal:    currency.Format(totals.Subtotal, cur),
		TaxLabel:    fmt.Sprintf("Impuesto (%s%%)", inv.TaxRate.String()),
		Tax:         currency.Format(totals.TaxAmount, cur),
		HasDiscount: totals.Discount.IsPositive(),
		Discount:    "-" + currency.Format(totals.Discount, cur),
		Total:       currency.Format(totals.Total, cur),
	}

	doc.ConversionNote = conversionNote(cur, in.BaseCurrency, inv.ExchangeRate, totals.Total)

	if notes := strings.TrimSpace(inv.Notes); notes != "" {
		doc.Notes = &notes
	}
	return doc
}

// NeedsConversion indica si corresponde mostrar la nota de conversión.
func NeedsConversion(invoiceCurrency, baseCurrency string, rate *decimal.Decimal) bool {
	if strings.TrimSpace(baseCurrency) == "" || rate == nil || !rate.IsPositive() {
		return false
	}
	return currency.Normalize(invoiceCurrency) != currency.Normalize(baseCurrency)
}

func conversionNote(cur, base string, rate *decimal.Decimal, total decimal.Decimal) *ConversionNote {
	if !NeedsConversion(cur, base, rate) {
		return nil
	}
	base = currency.Normalize(base)
	equivalent := total.Div(*rate)
	return &ConversionNote{
		BaseCurrency: base,
		Rate:         *rate,
		Equivalent:   equivalent,
		Text: fmt.Sprintf("Equivalente aproximado en %s: %s (tipo de cambio: 1 %s = %s %s)",
			base, currency.Format(equivalent, base), base, rate.String(), cur),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
