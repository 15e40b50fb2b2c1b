// Package invoice contiene las reglas de negocio de facturas: totales, estados,
// recurrencia y el armado del documento imprimible.
package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

// AmountScale decimales con que se guardan cantidades, precios e importes
// (columnas NUMERIC(18,4)). Todo se redondea a esta escala antes de sumar, así
// lo que se persiste es exactamente lo que se calculó.
const AmountScale int32 = 4

var hundred = decimal.NewFromInt(100)

// RoundAmount redondea a AmountScale, mitad alejándose de cero.
func RoundAmount(v decimal.Decimal) decimal.Decimal {
	return v.Round(AmountScale)
}

// Totals resultado del cálculo de una factura.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal cantidad × precio unitario, ambos y el resultado a AmountScale.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return RoundAmount(RoundAmount(quantity).Mul(RoundAmount(unitPrice)))
}

// ComputeTotals aplica el impuesto (porcentaje) sobre la suma de las líneas y
// resta el descuento (monto fijo) una sola vez después del impuesto.
//
//	total = subtotal + round(subtotal × taxRate/100) − discount
func ComputeTotals(items []*entity.InvoiceLineItem, taxRate, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(LineTotal(it.Quantity, it.UnitPrice))
	}
	discount = RoundAmount(discount)
	tax := RoundAmount(subtotal.Mul(RoundAmount(taxRate)).Div(hundred))
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Discount:  discount,
		Total:     subtotal.Add(tax).Sub(discount),
	}
}

// Apply normaliza los valores de entrada a AmountScale y recalcula el total de
// cada línea, su posición y los totales de la cabecera.
func Apply(inv *entity.Invoice, items []*entity.InvoiceLineItem) Totals {
	inv.TaxRate = RoundAmount(inv.TaxRate)
	inv.DiscountAmount = RoundAmount(inv.DiscountAmount)
	if inv.ExchangeRate != nil {
		rate := RoundAmount(*inv.ExchangeRate)
		inv.ExchangeRate = &rate
	}
	for i, it := range items {
		it.InvoiceID = inv.ID
		it.Position = i + 1
		it.Quantity = RoundAmount(it.Quantity)
		it.UnitPrice = RoundAmount(it.UnitPrice)
		it.Total = LineTotal(it.Quantity, it.UnitPrice)
	}
	t := ComputeTotals(items, inv.TaxRate, inv.DiscountAmount)
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
	return t
}
