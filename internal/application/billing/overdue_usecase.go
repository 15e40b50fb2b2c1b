package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

const defaultOverdueBatch = 500

// OverdueUseCase marca como vencidas las facturas enviadas cuya fecha de vencimiento
// ya pasó y envía el recordatorio al cliente.
type OverdueUseCase struct {
	invoiceRepo repository.InvoiceRepository
	tenantRepo  repository.TenantRepository
	notifier    Notifier
	publicURL   string
	batchSize   int
	log         zerolog.Logger
}

// NewOverdueUseCase construye el caso de uso.
func NewOverdueUseCase(invoiceRepo repository.InvoiceRepository, tenantRepo repository.TenantRepository, notifier Notifier, publicURL string, log zerolog.Logger) *OverdueUseCase {
	return &OverdueUseCase{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		notifier:    notifier,
		publicURL:   publicURL,
		batchSize:   defaultOverdueBatch,
		log:         log,
	}
}

// Run procesa un lote y devuelve cuántas facturas pasaron a overdue. Los errores
// de una factura se registran y no detienen el resto.
func (uc *OverdueUseCase) Run(ctx context.Context, now time.Time) (int, error) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	due, err := uc.invoiceRepo.ListDueBefore(ctx, today, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("listar facturas vencidas: %w", err)
	}

	names := make(map[string]string)
	marked := 0
	for _, inv := range due {
		if err := ctx.Err(); err != nil {
			return marked, err
		}
		if !invoice.IsPastDue(inv, now) {
			continue
		}
		from := inv.Status
		if err := invoice.Transition(inv, entity.InvoiceStatusOverdue, now); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("factura omitida")
			continue
		}
		if err := uc.invoiceRepo.Update(ctx, inv, from); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Pagada o anulada después del listado: sin recordatorio.
				uc.log.Debug().Str("invoice_id", inv.ID).Msg("factura cambió de estado durante la tarea")
				continue
			}
			uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo marcar la factura como vencida")
			continue
		}
		marked++
		uc.remind(ctx, inv, now, names)
	}
	if marked > 0 {
		uc.log.Info().Int("marked", marked).Msg("facturas marcadas como vencidas")
	}
	return marked, nil
}

func (uc *OverdueUseCase) remind(ctx context.Context, inv *entity.Invoice, now time.Time, names map[string]string) {
	if inv.ClientEmail == "" {
		return
	}
	name, ok := names[inv.TenantID]
	if !ok {
		name = businessName(ctx, uc.tenantRepo, inv.TenantID)
		names[inv.TenantID] = name
	}
	err := uc.notifier.Notify(ctx, inv.ClientEmail, notification.KindOverdueReminder, notification.Data{
		RecipientName: inv.ClientName,
		BusinessName:  name,
		InvoiceNumber: inv.Number,
		Amount:        currency.Format(inv.Total, inv.Currency),
		DueDate:       inv.DueDate.Format(invoice.DisplayDateLayout),
		DaysOverdue:   invoice.DaysOverdue(inv, now),
		ActionURL:     uc.publicURL + "/invoices/" + inv.ID,
	})
	if err != nil {
		uc.log.Error().Err(err).Str("invoice_id", inv.ID).Msg("no se pudo enviar el recordatorio de vencimiento")
	}
}
