// Package xmlexport serializa facturas a XML para intercambio con sistemas contables.
package xmlexport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Facturo-api/internal/application/billing"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

// Namespace del documento exportado.
const Namespace = "urn:facturo:invoice:1"

const dateLayout = "2006-01-02"

var _ billing.XMLExporter = (*Exporter)(nil)

// Exporter construye el XML con etree y calcula el SHA-256 de su forma canónica (C14N).
type Exporter struct{}

// NewExporter crea el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// Export devuelve el XML indentado y el digest hex de su forma canónica.
func (e *Exporter) Export(inv *entity.Invoice, items []*entity.InvoiceLineItem, issuer invoice.Party) ([]byte, string, error) {
	if inv == nil {
		return nil, "", fmt.Errorf("xmlexport: factura vacía")
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("id", inv.ID)

	cur := currency.Normalize(inv.Currency)
	header := root.CreateElement("Header")
	text(header, "Number", inv.Number)
	text(header, "Status", inv.Status)
	text(header, "IssueDate", inv.IssueDate.Format(dateLayout))
	text(header, "DueDate", inv.DueDate.Format(dateLayout))
	text(header, "Currency", cur)
	if inv.ExchangeRate != nil {
		text(header, "ExchangeRate", inv.ExchangeRate.String())
	}

	party(root.CreateElement("Issuer"), issuer)
	party(root.CreateElement("Customer"), invoice.Party{
		Name:    inv.ClientName,
		Address: inv.ClientAddress,
		Phone:   inv.ClientPhone,
		Email:   inv.ClientEmail,
	})

	lines := root.CreateElement("Lines")
	for _, it := range items {
		l := lines.CreateElement("Line")
		l.CreateAttr("position", fmt.Sprint(it.Position))
		text(l, "Description", it.Description)
		text(l, "Quantity", it.Quantity.String())
		text(l, "UnitPrice", money(it.UnitPrice))
		text(l, "Total", money(invoice.LineTotal(it.Quantity, it.UnitPrice)))
	}

	t := invoice.ComputeTotals(items, inv.TaxRate, inv.DiscountAmount)
	totals := root.CreateElement("Totals")
	totals.CreateAttr("currency", cur)
	text(totals, "Subtotal", money(t.Subtotal))
	text(totals, "TaxRate", inv.TaxRate.String())
	text(totals, "TaxAmount", money(t.TaxAmount))
	text(totals, "Discount", money(t.Discount))
	text(totals, "Total", money(t.Total))

	if inv.Notes != "" {
		text(root, "Notes", inv.Notes)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmlexport: serializar: %w", err)
	}
	digest, err := Digest(out)
	if err != nil {
		return nil, "", err
	}
	return out, digest, nil
}

// Digest SHA-256 (hex) de la forma canónica C14N del XML. La declaración XML
// no forma parte de la forma canónica.
func Digest(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("<?xml")) {
		if end := bytes.Index(data, []byte("?>")); end >= 0 {
			data = bytes.TrimSpace(data[end+2:])
		}
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("xmlexport: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func text(parent *etree.Element, tag, value string) {
	parent.CreateElement(tag).SetText(value)
}

func party(el *etree.Element, p invoice.Party) {
	text(el, "Name", p.Name)
	if p.Email != "" {
		text(el, "Email", p.Email)
	}
	if p.Phone != "" {
		text(el, "Phone", p.Phone)
	}
	if p.Address != "" {
		text(el, "Address", p.Address)
	}
}

// money dos decimales, redondeo half-away-from-zero.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
