package invoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
)

func sampleInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:          "inv-1",
		Number:      "INV-0001",
		ClientName:  "Kofi Mensah",
		ClientEmail: "kofi@example.com",
		Currency:    "USD",
		TaxRate:     d("12.5"),
		Status:      entity.InvoiceStatusDraft,
		IssueDate:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func assemble(inv *entity.Invoice, base string) *invoice.Document {
	return invoice.Assemble(invoice.AssembleInput{
		Invoice:      inv,
		Items:        []*entity.InvoiceLineItem{item("2", "10"), item("1", "5")},
		Issuer:       invoice.Party{Name: "Acme Ltd", Email: "billing@acme.test"},
		BaseCurrency: base,
	})
}

func TestAssemble_BloquesBasicos(t *testing.T) {
	doc := assemble(sampleInvoice(), "USD")

	assert.Equal(t, "INV-0001", doc.Number)
	assert.Equal(t, "01/02/2026", doc.IssueDate)
	assert.Equal(t, "Kofi Mensah", doc.BillTo.Name)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "$20.00", doc.Lines[0].Total)
	assert.Equal(t, "$25.00", doc.Totals.Subtotal)
	assert.Equal(t, "$3.13", doc.Totals.Tax)
	assert.Equal(t, "Impuesto (12.5%)", doc.Totals.TaxLabel)
	assert.Equal(t, "$28.13", doc.Totals.Total)
	assert.False(t, doc.Totals.HasDiscount)
}

func TestAssemble_NotaDeConversion(t *testing.T) {
	rate := d("15")
	cases := []struct {
		name     string
		currency string
		rate     *decimal.Decimal
		want     bool
	}{
		{"moneda distinta con tasa", "GHS", &rate, true},
		{"misma moneda con tasa", "USD", &rate, false},
		{"moneda distinta sin tasa", "GHS", nil, false},
		{"tasa cero se ignora", "GHS", ptr(decimal.Zero), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := sampleInvoice()
			inv.Currency = tc.currency
			inv.ExchangeRate = tc.rate
			doc := assemble(inv, "USD")
			assert.Equal(t, tc.want, doc.ConversionNote != nil)
		})
	}
}

func TestAssemble_EquivalenteEnMonedaBase(t *testing.T) {
	inv := sampleInvoice()
	inv.Currency = "GHS"
	rate := d("12.5")
	inv.ExchangeRate = &rate

	doc := assemble(inv, "USD")

	require.NotNil(t, doc.ConversionNote)
	assert.True(t, d("2.25").Equal(doc.ConversionNote.Equivalent), "28.125 / 12.5")
	assert.Contains(t, doc.ConversionNote.Text, "$2.25")
	assert.Equal(t, "₵28.13", doc.Totals.Total)
}

func TestAssemble_NotasOpcionales(t *testing.T) {
	inv := sampleInvoice()
	inv.Notes = "   "
	assert.Nil(t, assemble(inv, "USD").Notes)

	inv.Notes = "Pago a 30 días"
	doc := assemble(inv, "USD")
	require.NotNil(t, doc.Notes)
	assert.Equal(t, "Pago a 30 días", *doc.Notes)
}

func TestAssemble_Descuento(t *testing.T) {
	inv := sampleInvoice()
	inv.DiscountAmount = d("8.125")
	doc := assemble(inv, "USD")
	assert.True(t, doc.Totals.HasDiscount)
	assert.Equal(t, "-$8.13", doc.Totals.Discount)
	assert.Equal(t, "$20.00", doc.Totals.Total)
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }
