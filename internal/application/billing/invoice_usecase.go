package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/invoice"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

var maxTaxRate = decimal.NewFromInt(100)

// InvoiceUseCase ciclo de vida de una factura: borrador, envío, pago y anulación.
type InvoiceUseCase struct {
	txRunner     repository.TxRunner
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	tenantRepo   repository.TenantRepository
	pdf          *PDFUseCase
	notifier     Notifier
	publicURL    string
	log          zerolog.Logger
	now          func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	txRunner repository.TxRunner,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	tenantRepo repository.TenantRepository,
	pdf *PDFUseCase,
	notifier Notifier,
	publicURL string,
	log zerolog.Logger,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		tenantRepo:   tenantRepo,
		pdf:          pdf,
		notifier:     notifier,
		publicURL:    publicURL,
		log:          log,
		now:          time.Now,
	}
}

// FormatNumber arma el número visible a partir del prefijo y el consecutivo.
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// Create crea una factura en borrador con sus líneas en una sola transacción.
// Sin número explícito se reserva el siguiente consecutivo del tenant.
func (uc *InvoiceUseCase) Create(ctx context.Context, tenantID, userID string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	settings, err := uc.tenantRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Status:    entity.InvoiceStatusDraft,
		Notes:     settings.DefaultNotes,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items, err := uc.fill(ctx, inv, settings, in, now)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.Run(ctx, tenantID, func(r repository.TxRepos) error {
		if inv.Number == "" {
			prefix, seq, err := r.Tenants.NextInvoiceNumber(ctx, tenantID)
			if err != nil {
				return fmt.Errorf("reservar consecutivo: %w", err)
			}
			inv.Number = FormatNumber(prefix, seq)
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		return r.Invoices.CreateLineItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenantID).Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("factura creada")
	return toInvoiceResponse(inv, items), nil
}

// Get devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) Get(ctx context.Context, tenantID, id string) (*dto.InvoiceResponse, error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items), nil
}

// List lista las cabeceras del tenant, opcionalmente filtradas por estado.
func (uc *InvoiceUseCase) List(ctx context.Context, tenantID, status string, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	if status != "" && !invoice.ValidStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	list, err := uc.invoiceRepo.ListByTenant(ctx, tenantID, repository.InvoiceFilter{
		Status: status,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, *toInvoiceResponse(inv, nil))
	}
	return &dto.InvoiceListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update reemplaza cabecera y líneas de un borrador.
func (uc *InvoiceUseCase) Update(ctx context.Context, tenantID, id string, in dto.InvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return nil, fmt.Errorf("%w: solo se pueden editar borradores", domain.ErrConflict)
	}
	settings, err := uc.tenantRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, domain.ErrNotFound
	}

	number := inv.Number
	now := uc.now()
	items, err := uc.fill(ctx, inv, settings, in, now)
	if err != nil {
		return nil, err
	}
	if inv.Number == "" {
		inv.Number = number
	}
	inv.UpdatedAt = now

	err = uc.txRunner.Run(ctx, tenantID, func(r repository.TxRepos) error {
		if err := r.Invoices.Update(ctx, inv, entity.InvoiceStatusDraft); err != nil {
			return err
		}
		if err := r.Invoices.DeleteLineItems(ctx, inv.ID); err != nil {
			return err
		}
		return r.Invoices.CreateLineItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items), nil
}

// Delete elimina un borrador (las líneas se borran en cascada).
func (uc *InvoiceUseCase) Delete(ctx context.Context, tenantID, id string) error {
	inv, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if inv.Status != entity.InvoiceStatusDraft {
		return fmt.Errorf("%w: solo se pueden eliminar borradores, anule la factura", domain.ErrConflict)
	}
	return uc.invoiceRepo.Delete(ctx, tenantID, id)
}

// Send emite la factura (draft → sent) y envía el aviso al cliente con el PDF adjunto.
// Un fallo del email queda en el log y no revierte el envío.
func (uc *InvoiceUseCase) Send(ctx context.Context, tenantID, id string) (*dto.InvoiceResponse, error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(inv.ClientEmail) == "" {
		return nil, fmt.Errorf("%w: la factura no tiene email de cliente", domain.ErrInvalidInput)
	}

	// ── 1. Transición ─────────────────────────────────────────────────────────
	from := inv.Status
	if err := invoice.Transition(inv, entity.InvoiceStatusSent, uc.now()); err != nil {
		return nil, err
	}

	// ── 2. PDF (antes de persistir: si falla, la factura sigue en borrador) ──
	pdfBytes, filename, err := uc.pdf.Render(ctx, inv, items)
	if err != nil {
		return nil, err
	}

	// ── 3. Persistir ──────────────────────────────────────────────────────────
	if err := uc.invoiceRepo.Update(ctx, inv, from); err != nil {
		return nil, err
	}

	// ── 4. Aviso al cliente ───────────────────────────────────────────────────
	data := uc.emailData(ctx, inv)
	data.DueDate = inv.DueDate.Format(invoice.DisplayDateLayout)
	uc.notify(ctx, inv, notification.KindInvoiceNotice, data, notification.Attachment{
		Filename:    filename,
		ContentType: "application/pdf",
		Data:        pdfBytes,
	})
	return toInvoiceResponse(inv, items), nil
}

// Pay marca la factura como pagada y envía el recibo si hay email de cliente.
func (uc *InvoiceUseCase) Pay(ctx context.Context, tenantID, id string) (*dto.InvoiceResponse, error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if err := invoice.Transition(inv, entity.InvoiceStatusPaid, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.invoiceRepo.Update(ctx, inv, from); err != nil {
		return nil, err
	}
	if inv.ClientEmail != "" {
		data := uc.emailData(ctx, inv)
		data.PaidDate = inv.PaidAt.Format(invoice.DisplayDateLayout)
		uc.notify(ctx, inv, notification.KindPaymentReceipt, data)
	}
	return toInvoiceResponse(inv, items), nil
}

// Cancel anula la factura. Las pagadas no se pueden anular.
func (uc *InvoiceUseCase) Cancel(ctx context.Context, tenantID, id string) (*dto.InvoiceResponse, error) {
	inv, items, err := loadWithItems(ctx, uc.invoiceRepo, tenantID, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if err := invoice.Transition(inv, entity.InvoiceStatusCancelled, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.invoiceRepo.Update(ctx, inv, from); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, items), nil
}

// fill valida el request y vuelca sus datos sobre inv. Devuelve las líneas con totales.
func (uc *InvoiceUseCase) fill(ctx context.Context, inv *entity.Invoice, settings *entity.TenantSettings, in dto.InvoiceRequest, now time.Time) ([]*entity.InvoiceLineItem, error) {
	inv.Number = strings.TrimSpace(in.Number)

	// ── Cliente ───────────────────────────────────────────────────────────────
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(ctx, inv.TenantID, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
		}
		inv.ClientName = customer.Name
		inv.ClientEmail = customer.Email
		inv.ClientAddress = customer.Address
		inv.ClientPhone = customer.Phone
	}
	inv.ClientName = firstNonEmpty(in.ClientName, inv.ClientName)
	inv.ClientEmail = firstNonEmpty(in.ClientEmail, inv.ClientEmail)
	inv.ClientAddress = firstNonEmpty(in.ClientAddress, inv.ClientAddress)
	inv.ClientPhone = firstNonEmpty(in.ClientPhone, inv.ClientPhone)
	if inv.ClientName == "" {
		return nil, fmt.Errorf("%w: client_name es obligatorio", domain.ErrInvalidInput)
	}

	// ── Moneda, impuesto y descuento ──────────────────────────────────────────
	code := settings.BaseCurrency
	if in.Currency != "" {
		code = in.Currency
	}
	inv.Currency = currency.Normalize(code)
	if !currency.IsISOCode(inv.Currency) {
		return nil, fmt.Errorf("%w: currency debe ser un código ISO de 3 letras", domain.ErrInvalidInput)
	}
	if in.ExchangeRate != nil && !invoice.RoundAmount(*in.ExchangeRate).IsPositive() {
		return nil, fmt.Errorf("%w: exchange_rate debe ser mayor que cero", domain.ErrInvalidInput)
	}
	inv.ExchangeRate = in.ExchangeRate

	inv.TaxRate = settings.DefaultTaxRate
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	if inv.TaxRate.IsNegative() || inv.TaxRate.GreaterThan(maxTaxRate) {
		return nil, fmt.Errorf("%w: tax_rate fuera de rango", domain.ErrInvalidInput)
	}
	if in.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: discount_amount no puede ser negativo", domain.ErrInvalidInput)
	}
	inv.DiscountAmount = in.DiscountAmount

	// ── Fechas ────────────────────────────────────────────────────────────────
	issue, err := dto.ParseDate(in.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if issue.IsZero() {
		y, m, d := now.UTC().Date()
		issue = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	due, err := dto.ParseDate(in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if due.IsZero() {
		return nil, fmt.Errorf("%w: due_date es obligatorio", domain.ErrInvalidInput)
	}
	if due.Before(issue) {
		return nil, fmt.Errorf("%w: due_date anterior a issue_date", domain.ErrInvalidInput)
	}
	inv.IssueDate, inv.DueDate = issue, due

	if in.Notes != nil {
		inv.Notes = *in.Notes
	}

	recurring, err := toRecurring(in.Recurring, issue)
	if err != nil {
		return nil, err
	}
	inv.Recurring = recurring

	// ── Líneas ────────────────────────────────────────────────────────────────
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la factura necesita al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]*entity.InvoiceLineItem, 0, len(in.Items))
	for i, req := range in.Items {
		item, err := uc.lineItem(ctx, inv.TenantID, req)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	totals := invoice.Apply(inv, items)
	if totals.Total.IsNegative() {
		return nil, fmt.Errorf("%w: el descuento supera el total", domain.ErrInvalidInput)
	}
	return items, nil
}

func (uc *InvoiceUseCase) lineItem(ctx context.Context, tenantID string, req dto.InvoiceItemRequest) (*entity.InvoiceLineItem, error) {
	item := &entity.InvoiceLineItem{
		ID:          uuid.New().String(),
		Description: strings.TrimSpace(req.Description),
		Quantity:    req.Quantity,
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.ProductID != "" {
		product, err := uc.productRepo.GetByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, req.ProductID)
		}
		if item.Description == "" {
			item.Description = product.Name
		}
		if req.UnitPrice == nil {
			item.UnitPrice = product.UnitPrice
		}
	} else if req.UnitPrice == nil {
		return nil, fmt.Errorf("%w: unit_price es obligatorio", domain.ErrInvalidInput)
	}
	if item.Description == "" {
		return nil, fmt.Errorf("%w: description es obligatoria", domain.ErrInvalidInput)
	}
	if !invoice.RoundAmount(item.Quantity).IsPositive() {
		return nil, fmt.Errorf("%w: quantity debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if item.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit_price no puede ser negativo", domain.ErrInvalidInput)
	}
	return item, nil
}

func (uc *InvoiceUseCase) find(ctx context.Context, tenantID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (uc *InvoiceUseCase) emailData(ctx context.Context, inv *entity.Invoice) notification.Data {
	return notification.Data{
		RecipientName: inv.ClientName,
		BusinessName:  businessName(ctx, uc.tenantRepo, inv.TenantID),
		InvoiceNumber: inv.Number,
		Amount:        currency.Format(inv.Total, inv.Currency),
		ActionURL:     uc.publicURL + "/invoices/" + inv.ID,
	}
}

func (uc *InvoiceUseCase) notify(ctx context.Context, inv *entity.Invoice, kind notification.Kind, data notification.Data, attachments ...notification.Attachment) {
	if err := uc.notifier.Notify(ctx, inv.ClientEmail, kind, data, attachments...); err != nil {
		uc.log.Error().Err(err).
			Str("tenant_id", inv.TenantID).Str("invoice_id", inv.ID).Str("kind", string(kind)).
			Msg("no se pudo enviar el email de la factura")
	}
}

// loadWithItems carga cabecera y líneas en paralelo. Las líneas solo se devuelven
// si la cabecera pertenece al tenant.
func loadWithItems(ctx context.Context, repo repository.InvoiceRepository, tenantID, id string) (*entity.Invoice, []*entity.InvoiceLineItem, error) {
	type itemsResult struct {
		items []*entity.InvoiceLineItem
		err   error
	}
	ch := make(chan itemsResult, 1)
	go func() {
		items, err := repo.GetLineItems(ctx, id)
		ch <- itemsResult{items: items, err: err}
	}()

	inv, err := repo.GetByID(ctx, tenantID, id)
	res := <-ch
	if err != nil {
		return nil, nil, err
	}
	if inv == nil {
		return nil, nil, domain.ErrNotFound
	}
	if res.err != nil {
		return nil, nil, fmt.Errorf("obtener líneas: %w", res.err)
	}
	return inv, res.items, nil
}

func businessName(ctx context.Context, repo repository.TenantRepository, tenantID string) string {
	t, err := repo.GetByID(ctx, tenantID)
	if err != nil || t == nil {
		return ""
	}
	return t.Name
}

func toRecurring(in *dto.RecurringRequest, issue time.Time) (*entity.RecurringConfig, error) {
	if in == nil || in.Frequency == "" {
		return nil, nil
	}
	cfg := &entity.RecurringConfig{Frequency: in.Frequency}
	next, err := dto.ParseDate(in.NextIssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	cfg.NextIssueDate = next
	end, err := dto.ParseDate(in.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !end.IsZero() {
		cfg.EndDate = &end
	}
	if err := invoice.NormalizeRecurring(cfg, issue); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func toInvoiceResponse(inv *entity.Invoice, items []*entity.InvoiceLineItem) *dto.InvoiceResponse {
	out := &dto.InvoiceResponse{
		ID:             inv.ID,
		TenantID:       inv.TenantID,
		Number:         inv.Number,
		ClientName:     inv.ClientName,
		ClientEmail:    inv.ClientEmail,
		ClientAddress:  inv.ClientAddress,
		ClientPhone:    inv.ClientPhone,
		Currency:       inv.Currency,
		ExchangeRate:   inv.ExchangeRate,
		TaxRate:        inv.TaxRate,
		DiscountAmount: inv.DiscountAmount,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		Total:          inv.Total,
		TotalFormatted: currency.Format(inv.Total, inv.Currency),
		Status:         inv.Status,
		IssueDate:      dto.FormatDate(inv.IssueDate),
		DueDate:        dto.FormatDate(inv.DueDate),
		Notes:          inv.Notes,
		SentAt:         inv.SentAt,
		PaidAt:         inv.PaidAt,
		CreatedAt:      inv.CreatedAt,
	}
	if inv.Recurring != nil {
		r := &dto.RecurringResponse{
			Frequency:     inv.Recurring.Frequency,
			NextIssueDate: dto.FormatDate(inv.Recurring.NextIssueDate),
		}
		if inv.Recurring.EndDate != nil {
			r.EndDate = dto.FormatDate(*inv.Recurring.EndDate)
		}
		out.Recurring = r
	}
	for _, it := range items {
		out.Items = append(out.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Position:    it.Position,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return out
}
