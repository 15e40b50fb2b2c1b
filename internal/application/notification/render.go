// Package notification arma y envía los emails transaccionales. Cada tipo de
// mensaje se genera en HTML y en texto plano a partir de los mismos datos.
package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Kind tipo de email transaccional.
type Kind string

const (
	KindInvoiceNotice            Kind = "invoice_notice"
	KindPaymentReceipt           Kind = "payment_receipt"
	KindSubscriptionConfirmation Kind = "subscription_confirmation"
	KindOverdueReminder          Kind = "overdue_reminder"
)

// Kinds devuelve todos los tipos soportados.
func Kinds() []Kind {
	return []Kind{KindInvoiceNotice, KindPaymentReceipt, KindSubscriptionConfirmation, KindOverdueReminder}
}

// Data datos compartidos por la versión HTML y la de texto.
type Data struct {
	RecipientName string
	BusinessName  string
	InvoiceNumber string
	Amount        string // ya formateado con su moneda
	DueDate       string
	PaidDate      string
	DaysOverdue   int
	PlanName      string
	ActionURL     string
	ActionLabel   string
	SupportEmail  string
}

// Message email renderizado.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer genera los mensajes a partir de las plantillas embebidas.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parsea las plantillas embebidas.
func NewRenderer() (*Renderer, error) {
	h, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("notification: parse html: %w", err)
	}
	t, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("notification: parse text: %w", err)
	}
	return &Renderer{html: h, text: t}, nil
}

// Render genera asunto, HTML y texto para el tipo indicado.
func (r *Renderer) Render(kind Kind, data Data) (Message, error) {
	subject, label, err := subjectFor(kind, data)
	if err != nil {
		return Message{}, err
	}
	if data.RecipientName == "" {
		data.RecipientName = "cliente"
	}
	if data.ActionLabel == "" {
		data.ActionLabel = label
	}

	var html, text bytes.Buffer
	if err := r.html.ExecuteTemplate(&html, string(kind)+".html", data); err != nil {
		return Message{}, fmt.Errorf("notification: render html %s: %w", kind, err)
	}
	if err := r.text.ExecuteTemplate(&text, string(kind)+".txt", data); err != nil {
		return Message{}, fmt.Errorf("notification: render text %s: %w", kind, err)
	}
	return Message{
		Subject: subject,
		HTML:    html.String(),
		Text:    strings.TrimSpace(text.String()) + "\n",
	}, nil
}

func subjectFor(kind Kind, d Data) (subject, actionLabel string, err error) {
	switch kind {
	case KindInvoiceNotice:
		return fmt.Sprintf("Factura %s de %s", d.InvoiceNumber, d.BusinessName), "Ver factura", nil
	case KindPaymentReceipt:
		return fmt.Sprintf("Recibo de pago de la factura %s", d.InvoiceNumber), "Ver recibo", nil
	case KindSubscriptionConfirmation:
		return fmt.Sprintf("Suscripción al plan %s confirmada", d.PlanName), "Ir a mi cuenta", nil
	case KindOverdueReminder:
		return fmt.Sprintf("Recordatorio: la factura %s está vencida", d.InvoiceNumber), "Pagar ahora", nil
	}
	return "", "", fmt.Errorf("notification: tipo desconocido %q", kind)
}
