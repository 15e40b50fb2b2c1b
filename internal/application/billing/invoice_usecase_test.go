package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/application/billing"
	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

func (f *fixture) invoiceUC() *billing.InvoiceUseCase {
	pdf := billing.NewPDFUseCase(f.invoices, f.tenants, f.generator, nil, zerolog.Nop())
	return billing.NewInvoiceUseCase(f.tx, f.invoices, f.customers, f.products, f.tenants, pdf, f.notifier, "https://app.test", zerolog.Nop())
}

func baseRequest() dto.InvoiceRequest {
	return dto.InvoiceRequest{
		ClientName:  "Ama Mensah",
		ClientEmail: "ama@cliente.test",
		IssueDate:   "2026-03-01",
		DueDate:     "2026-03-31",
		Items: []dto.InvoiceItemRequest{
			{Description: "Diseño de logo", Quantity: d("2"), UnitPrice: dp("10")},
			{Description: "Tarjetas", Quantity: d("1"), UnitPrice: dp("5")},
		},
	}
}

func TestCreateInvoice_CalculaTotalesYUsaPreferencias(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()

	out, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", out.Number)
	assert.Equal(t, entity.InvoiceStatusDraft, out.Status)
	assert.Equal(t, "GHS", out.Currency)
	assert.True(t, d("25").Equal(out.Subtotal))
	assert.True(t, d("3.125").Equal(out.TaxAmount))
	assert.True(t, d("28.125").Equal(out.Total))
	assert.Equal(t, "₵28.13", out.TotalFormatted)
	assert.Equal(t, "Gracias por su compra", out.Notes)
	require.Len(t, out.Items, 2)
	assert.Equal(t, 1, out.Items[0].Position)
	assert.True(t, d("20").Equal(out.Items[0].Total))

	assert.Equal(t, []string{tenantID}, f.tx.runs)
	stored, _ := f.invoices.GetLineItems(context.Background(), out.ID)
	assert.Len(t, stored, 2)

	second, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", second.Number)
}

func TestCreateInvoice_PrecargaClienteYProducto(t *testing.T) {
	f := newFixture()
	f.customers.customers["cus-1"] = &entity.Customer{ID: "cus-1", TenantID: tenantID, Name: "Acme Ltd", Email: "pagos@acme.test", Address: "Kumasi"}
	f.products.products["prod-1"] = &entity.Product{ID: "prod-1", TenantID: tenantID, Name: "Hosting anual", UnitPrice: d("120")}
	uc := f.invoiceUC()

	in := dto.InvoiceRequest{
		CustomerID: "cus-1",
		Currency:   "usd",
		TaxRate:    dp("0"),
		DueDate:    "2026-04-30",
		IssueDate:  "2026-04-01",
		Items:      []dto.InvoiceItemRequest{{ProductID: "prod-1", Quantity: d("1")}},
	}
	out, err := uc.Create(context.Background(), tenantID, "user-1", in)
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", out.ClientName)
	assert.Equal(t, "pagos@acme.test", out.ClientEmail)
	assert.Equal(t, "USD", out.Currency)
	assert.Equal(t, "Hosting anual", out.Items[0].Description)
	assert.True(t, d("120").Equal(out.Total))
}

func TestCreateInvoice_ClienteDeOtroTenant(t *testing.T) {
	f := newFixture()
	f.customers.customers["cus-9"] = &entity.Customer{ID: "cus-9", TenantID: "otro", Name: "Ajeno"}
	in := baseRequest()
	in.CustomerID = "cus-9"

	_, err := f.invoiceUC().Create(context.Background(), tenantID, "user-1", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	cases := map[string]func(*dto.InvoiceRequest){
		"sin líneas":          func(r *dto.InvoiceRequest) { r.Items = nil },
		"sin cliente":         func(r *dto.InvoiceRequest) { r.ClientName = "" },
		"sin vencimiento":     func(r *dto.InvoiceRequest) { r.DueDate = "" },
		"vence antes":         func(r *dto.InvoiceRequest) { r.DueDate = "2026-02-01" },
		"fecha mal formada":   func(r *dto.InvoiceRequest) { r.DueDate = "31/03/2026" },
		"cantidad cero":       func(r *dto.InvoiceRequest) { r.Items[0].Quantity = d("0") },
		"precio negativo":     func(r *dto.InvoiceRequest) { r.Items[0].UnitPrice = dp("-1") },
		"sin precio":          func(r *dto.InvoiceRequest) { r.Items[0].UnitPrice = nil },
		"descuento negativo":  func(r *dto.InvoiceRequest) { r.DiscountAmount = d("-1") },
		"descuento excesivo":  func(r *dto.InvoiceRequest) { r.DiscountAmount = d("1000") },
		"tasa de cambio cero": func(r *dto.InvoiceRequest) { r.ExchangeRate = dp("0") },
		"impuesto fuera":      func(r *dto.InvoiceRequest) { r.TaxRate = dp("150") },
		"moneda inválida":     func(r *dto.InvoiceRequest) { r.Currency = "DOLLARS" },
		"moneda no ASCII":     func(r *dto.InvoiceRequest) { r.Currency = "€" },
		"cantidad sub-escala": func(r *dto.InvoiceRequest) { r.Items[0].Quantity = d("0.00004") },
		"tasa sub-escala":     func(r *dto.InvoiceRequest) { r.ExchangeRate = dp("0.00001") },
		"recurrencia rara":    func(r *dto.InvoiceRequest) { r.Recurring = &dto.RecurringRequest{Frequency: "daily"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			in := baseRequest()
			mutate(&in)
			_, err := f.invoiceUC().Create(context.Background(), tenantID, "user-1", in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.tx.runs, "no debe abrir transacción")
		})
	}
}

func TestCreateInvoice_NumeroDuplicadoRevierte(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	in := baseRequest()
	in.Number = "F-100"

	_, err := uc.Create(context.Background(), tenantID, "user-1", in)
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), tenantID, "user-1", in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := uc.List(context.Background(), tenantID, "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestCreateInvoice_Recurrente(t *testing.T) {
	f := newFixture()
	in := baseRequest()
	in.Recurring = &dto.RecurringRequest{Frequency: entity.FrequencyMonthly}

	out, err := f.invoiceUC().Create(context.Background(), tenantID, "user-1", in)
	require.NoError(t, err)
	require.NotNil(t, out.Recurring)
	assert.Equal(t, "2026-04-01", out.Recurring.NextIssueDate)
}

func TestGetInvoice_OtroTenantNoExiste(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	out, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), tenantID, out.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	_, err = uc.Get(context.Background(), "otro-tenant", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateInvoice_SoloBorradores(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	ctx := context.Background()
	out, err := uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	in := baseRequest()
	in.Items = in.Items[:1]
	updated, err := uc.Update(ctx, tenantID, out.ID, in)
	require.NoError(t, err)
	assert.Equal(t, out.Number, updated.Number)
	assert.True(t, d("22.5").Equal(updated.Total))
	stored, _ := f.invoices.GetLineItems(ctx, out.ID)
	assert.Len(t, stored, 1)

	_, err = uc.Send(ctx, tenantID, out.ID)
	require.NoError(t, err)
	_, err = uc.Update(ctx, tenantID, out.ID, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, tenantID, out.ID), domain.ErrConflict)
}

func TestDeleteInvoice_Borrador(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	out, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), tenantID, out.ID))
	_, err = uc.Get(context.Background(), tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendInvoice_AdjuntaPDFYNotifica(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	ctx := context.Background()
	out, err := uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	sent, err := uc.Send(ctx, tenantID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)

	require.Len(t, f.notifier.sent, 1)
	email := f.notifier.sent[0]
	assert.Equal(t, "ama@cliente.test", email.to)
	assert.Equal(t, notification.KindInvoiceNotice, email.kind)
	assert.Equal(t, "Kofi Designs", email.data.BusinessName)
	assert.Equal(t, "₵28.13", email.data.Amount)
	assert.Equal(t, "31/03/2026", email.data.DueDate)
	assert.Equal(t, "https://app.test/invoices/"+out.ID, email.data.ActionURL)
	require.Len(t, email.attachments, 1)
	assert.Equal(t, "factura_INV-0001.pdf", email.attachments[0].Filename)
	assert.Equal(t, "application/pdf", email.attachments[0].ContentType)

	_, err = uc.Send(ctx, tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSendInvoice_AnuladaEnParaleloDaConflicto(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	ctx := context.Background()
	out, err := uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	// Otra petición anula la factura mientras Send genera el PDF.
	f.invoices.beforeUpdate = func(r *memInvoices, inv *entity.Invoice) {
		stored := r.invoices[inv.ID]
		stored.Status = entity.InvoiceStatusCancelled
		r.invoices[inv.ID] = stored
	}

	_, err = uc.Send(ctx, tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.InvoiceStatusCancelled, f.invoices.get(out.ID).Status)
	assert.Nil(t, f.invoices.get(out.ID).SentAt)
	assert.Empty(t, f.notifier.sent)
}

func TestSendInvoice_FalloDelPDFNoCambiaEstado(t *testing.T) {
	f := newFixture()
	f.generator.err = errors.New("fuente no encontrada")
	uc := f.invoiceUC()
	out, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	_, err = uc.Send(context.Background(), tenantID, out.ID)
	require.Error(t, err)
	assert.Equal(t, entity.InvoiceStatusDraft, f.invoices.get(out.ID).Status)
	assert.Empty(t, f.notifier.sent)
}

func TestSendInvoice_FalloDelEmailNoRevierte(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("smtp caído")
	uc := f.invoiceUC()
	out, err := uc.Create(context.Background(), tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	sent, err := uc.Send(context.Background(), tenantID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusSent, sent.Status)
	assert.Equal(t, entity.InvoiceStatusSent, f.invoices.get(out.ID).Status)
}

func TestSendInvoice_SinEmailDeCliente(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	in := baseRequest()
	in.ClientEmail = ""
	out, err := uc.Create(context.Background(), tenantID, "user-1", in)
	require.NoError(t, err)

	_, err = uc.Send(context.Background(), tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPayAndCancel(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	ctx := context.Background()
	out, err := uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)

	_, err = uc.Pay(ctx, tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un borrador no se puede pagar")

	_, err = uc.Send(ctx, tenantID, out.ID)
	require.NoError(t, err)
	paid, err := uc.Pay(ctx, tenantID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	assert.Equal(t, notification.KindPaymentReceipt, last.kind)
	assert.Equal(t, paid.PaidAt.Format("02/01/2006"), last.data.PaidDate)

	_, err = uc.Cancel(ctx, tenantID, out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "una factura pagada no se anula")
}

func TestListInvoices_FiltraPorEstado(t *testing.T) {
	f := newFixture()
	uc := f.invoiceUC()
	ctx := context.Background()
	a, err := uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)
	_, err = uc.Create(ctx, tenantID, "user-1", baseRequest())
	require.NoError(t, err)
	_, err = uc.Cancel(ctx, tenantID, a.ID)
	require.NoError(t, err)

	list, err := uc.List(ctx, tenantID, entity.InvoiceStatusDraft, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 100, list.Page.Limit)
	assert.Empty(t, list.Items[0].Items)

	_, err = uc.List(ctx, tenantID, "pending", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0007", billing.FormatNumber("INV-", 7))
	assert.Equal(t, "F12345", billing.FormatNumber("F", 12345))
}

func TestIssueDatePorDefecto(t *testing.T) {
	f := newFixture()
	in := baseRequest()
	in.IssueDate = ""
	in.DueDate = time.Now().AddDate(0, 1, 0).Format(dto.DateLayout)

	out, err := f.invoiceUC().Create(context.Background(), tenantID, "user-1", in)
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format(dto.DateLayout), out.IssueDate)
}
