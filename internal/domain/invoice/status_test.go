package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{entity.InvoiceStatusDraft, entity.InvoiceStatusSent, true},
		{entity.InvoiceStatusSent, entity.InvoiceStatusPaid, true},
		{entity.InvoiceStatusSent, entity.InvoiceStatusOverdue, true},
		{entity.InvoiceStatusOverdue, entity.InvoiceStatusPaid, true},
		{entity.InvoiceStatusDraft, entity.InvoiceStatusCancelled, true},
		{entity.InvoiceStatusDraft, entity.InvoiceStatusPaid, false},
		{entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled, false},
		{entity.InvoiceStatusCancelled, entity.InvoiceStatusDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, invoice.CanTransition(tc.from, tc.to), "%s → %s", tc.from, tc.to)
	}
}

func TestTransition_SellaFechas(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{Status: entity.InvoiceStatusDraft}

	require.NoError(t, invoice.Transition(inv, entity.InvoiceStatusSent, now))
	require.NotNil(t, inv.SentAt)
	assert.Equal(t, now, *inv.SentAt)

	require.NoError(t, invoice.Transition(inv, entity.InvoiceStatusPaid, now.Add(time.Hour)))
	require.NotNil(t, inv.PaidAt)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
}

func TestTransition_Invalida(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceStatusPaid}
	err := invoice.Transition(inv, entity.InvoiceStatusSent, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.InvoiceStatusPaid, inv.Status)
}

func TestIsPastDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{Status: entity.InvoiceStatusSent, DueDate: time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)}
	assert.True(t, invoice.IsPastDue(inv, now))

	inv.DueDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.False(t, invoice.IsPastDue(inv, now), "vence hoy: aún no está vencida")

	inv.Status = entity.InvoiceStatusDraft
	inv.DueDate = now.AddDate(0, 0, -5)
	assert.False(t, invoice.IsPastDue(inv, now), "borrador nunca se marca vencido")
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{DueDate: time.Date(2026, 3, 7, 23, 59, 0, 0, time.UTC)}
	assert.Equal(t, 3, invoice.DaysOverdue(inv, now))

	inv.DueDate = now.AddDate(0, 0, 2)
	assert.Equal(t, 0, invoice.DaysOverdue(inv, now))
}

func TestNormalizeRecurring(t *testing.T) {
	issue := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	cfg := &entity.RecurringConfig{Frequency: entity.FrequencyWeekly}
	require.NoError(t, invoice.NormalizeRecurring(cfg, issue))
	assert.Equal(t, issue.AddDate(0, 0, 7), cfg.NextIssueDate)

	bad := &entity.RecurringConfig{Frequency: "daily"}
	assert.ErrorIs(t, invoice.NormalizeRecurring(bad, issue), domain.ErrInvalidInput)

	end := issue.AddDate(0, 0, -1)
	early := &entity.RecurringConfig{Frequency: entity.FrequencyMonthly, EndDate: &end}
	assert.ErrorIs(t, invoice.NormalizeRecurring(early, issue), domain.ErrInvalidInput)
}
