package entity

import "github.com/shopspring/decimal"

// InvoiceLineItem línea de una factura. Total = Quantity × UnitPrice.
type InvoiceLineItem struct {
	ID          string
	InvoiceID   string
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}
