package invoice

import (
	"fmt"
	"time"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

var transitions = map[string][]string{
	entity.InvoiceStatusDraft:   {entity.InvoiceStatusSent, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusSent:    {entity.InvoiceStatusPaid, entity.InvoiceStatusOverdue, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusOverdue: {entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
}

// ValidStatus indica si el estado existe.
func ValidStatus(status string) bool {
	switch status {
	case entity.InvoiceStatusDraft, entity.InvoiceStatusSent, entity.InvoiceStatusPaid,
		entity.InvoiceStatusOverdue, entity.InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransition indica si se permite pasar de from a to.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition cambia el estado de la factura y sella las fechas asociadas.
func Transition(inv *entity.Invoice, to string, now time.Time) error {
	if !CanTransition(inv.Status, to) {
		return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, inv.Status, to)
	}
	switch to {
	case entity.InvoiceStatusSent:
		inv.SentAt = &now
	case entity.InvoiceStatusPaid:
		inv.PaidAt = &now
	}
	inv.Status = to
	inv.UpdatedAt = now
	return nil
}

// IsPastDue indica si una factura enviada venció respecto a now (por fecha, sin hora).
func IsPastDue(inv *entity.Invoice, now time.Time) bool {
	if inv.Status != entity.InvoiceStatusSent {
		return false
	}
	return dateOnly(inv.DueDate).Before(dateOnly(now))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOverdue días completos transcurridos desde el vencimiento (0 si no venció).
func DaysOverdue(inv *entity.Invoice, now time.Time) int {
	days := int(dateOnly(now).Sub(dateOnly(inv.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
