package expense_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/expense"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
)

type memExpenses struct {
	expenses  map[string]*entity.Expense
	lastQuery repository.ExpenseFilter
	updateErr error
}

func (r *memExpenses) Create(_ context.Context, e *entity.Expense) error {
	r.expenses[e.ID] = e
	return nil
}

func (r *memExpenses) GetByID(_ context.Context, tenantID, id string) (*entity.Expense, error) {
	e, ok := r.expenses[id]
	if !ok || e.TenantID != tenantID {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memExpenses) ListByTenant(_ context.Context, tenantID string, f repository.ExpenseFilter) ([]*entity.Expense, error) {
	r.lastQuery = f
	var out []*entity.Expense
	for _, e := range r.expenses {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memExpenses) Update(_ context.Context, e *entity.Expense) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.expenses[e.ID] = e
	return nil
}

func (r *memExpenses) Delete(_ context.Context, tenantID, id string) error {
	delete(r.expenses, id)
	return nil
}

type mockFiles struct{ mock.Mock }

func (m *mockFiles) Upload(ctx context.Context, in storage.UploadInput) (*entity.StorageFile, error) {
	args := m.Called(ctx, in)
	f, _ := args.Get(0).(*entity.StorageFile)
	return f, args.Error(1)
}

func (m *mockFiles) Delete(ctx context.Context, tenantID, id string) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

type stubOCR struct {
	text  string
	err   error
	calls int
}

func (s *stubOCR) Extract(_ context.Context, _ []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newUC(files *mockFiles, ocr *stubOCR) (*expense.UseCase, *memExpenses) {
	repo := &memExpenses{expenses: map[string]*entity.Expense{}}
	return expense.NewUseCase(repo, files, ocr, zerolog.Nop()), repo
}

func TestCreate_Validaciones(t *testing.T) {
	uc, _ := newUC(&mockFiles{}, &stubOCR{})
	ctx := context.Background()
	lat := 5.6

	cases := map[string]dto.ExpenseRequest{
		"sin categoría":      {Amount: amount("10")},
		"monto cero":         {Amount: amount("0"), Category: "meals"},
		"kilometraje sin km": {Amount: amount("10"), Category: "mileage"},
		"latitud sola":       {Amount: amount("10"), Category: "travel", Latitude: &lat},
		"fecha inválida":     {Amount: amount("10"), Category: "travel", ExpenseDate: "ayer"},
		"moneda no ISO":      {Amount: amount("10"), Category: "travel", Currency: "cedis"},
		"moneda no ASCII":    {Amount: amount("10"), Category: "travel", Currency: "€"},
	}
	for name, in := range cases {
		_, err := uc.Create(ctx, "t1", "u1", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, name)
	}
}

func TestCreateYListar(t *testing.T) {
	uc, repo := newUC(&mockFiles{}, &stubOCR{})
	ctx := context.Background()
	km := amount("42.5")
	lat, lng := 5.6037, -0.187

	out, err := uc.Create(ctx, "t1", "u1", dto.ExpenseRequest{
		Amount:      amount("63.75"),
		Currency:    "ghs",
		Category:    " Mileage ",
		ExpenseDate: "2026-03-02",
		MileageKm:   &km,
		Latitude:    &lat,
		Longitude:   &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "GHS", out.Currency)
	assert.Equal(t, entity.ExpenseCategoryMileage, out.Category)
	assert.Equal(t, "2026-03-02", out.ExpenseDate)
	assert.Equal(t, "u1", out.UserID)

	list, err := uc.List(ctx, "t1", dto.ExpenseListQuery{Category: "Mileage", From: "2026-03-01", To: "2026-03-31"})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, "mileage", repo.lastQuery.Category)
	require.NotNil(t, repo.lastQuery.From)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), *repo.lastQuery.To)

	_, err = uc.List(ctx, "t1", dto.ExpenseListQuery{From: "2026-03-31", To: "2026-03-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Get(ctx, "t2", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttachReceipt_ImagenConOCR(t *testing.T) {
	files := &mockFiles{}
	ocr := &stubOCR{text: "  SHELL ACCRA\nTOTAL 63.75  "}
	uc, repo := newUC(files, ocr)
	ctx := context.Background()
	e, err := uc.Create(ctx, "t1", "u1", dto.ExpenseRequest{Amount: amount("63.75"), Category: "travel"})
	require.NoError(t, err)

	files.On("Upload", ctx, mock.MatchedBy(func(in storage.UploadInput) bool {
		return in.Bucket == entity.BucketReceipts && in.TenantID == "t1" && in.OriginalName == "recibo.jpg"
	})).Return(&entity.StorageFile{ID: "file-1", ContentType: "image/jpeg"}, nil).Once()

	out, err := uc.AttachReceipt(ctx, "t1", "u1", e.ID, expense.ReceiptInput{Filename: "recibo.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}})
	require.NoError(t, err)
	assert.Equal(t, "file-1", out.ReceiptFileID)
	assert.Equal(t, "SHELL ACCRA\nTOTAL 63.75", out.OCRText)
	assert.Equal(t, "file-1", repo.expenses[e.ID].ReceiptFileID)

	// Reemplazo: el recibo anterior se borra.
	files.On("Upload", ctx, mock.Anything).Return(&entity.StorageFile{ID: "file-2", ContentType: "application/pdf"}, nil).Once()
	files.On("Delete", ctx, "t1", "file-1").Return(nil).Once()

	out, err = uc.AttachReceipt(ctx, "t1", "u1", e.ID, expense.ReceiptInput{Filename: "recibo.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)
	assert.Equal(t, "file-2", out.ReceiptFileID)
	assert.Empty(t, out.OCRText, "los PDF no pasan por OCR")
	assert.Equal(t, 1, ocr.calls)
	files.AssertExpectations(t)
}

func TestAttachReceipt_FalloDeOCRNoImpideGuardar(t *testing.T) {
	files := &mockFiles{}
	uc, _ := newUC(files, &stubOCR{err: errors.New("tesseract no disponible")})
	ctx := context.Background()
	e, err := uc.Create(ctx, "t1", "u1", dto.ExpenseRequest{Amount: amount("5"), Category: "meals"})
	require.NoError(t, err)

	files.On("Upload", ctx, mock.Anything).Return(&entity.StorageFile{ID: "file-1", ContentType: "image/png"}, nil)

	out, err := uc.AttachReceipt(ctx, "t1", "u1", e.ID, expense.ReceiptInput{Filename: "r.png", Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "file-1", out.ReceiptFileID)
	assert.Empty(t, out.OCRText)
}

func TestAttachReceipt_FalloAlGuardarBorraElArchivo(t *testing.T) {
	files := &mockFiles{}
	uc, repo := newUC(files, &stubOCR{})
	ctx := context.Background()
	e, err := uc.Create(ctx, "t1", "u1", dto.ExpenseRequest{Amount: amount("5"), Category: "meals"})
	require.NoError(t, err)
	repo.updateErr = errors.New("conexión perdida")

	files.On("Upload", ctx, mock.Anything).Return(&entity.StorageFile{ID: "file-1", ContentType: "application/pdf"}, nil)
	files.On("Delete", ctx, "t1", "file-1").Return(nil)

	_, err = uc.AttachReceipt(ctx, "t1", "u1", e.ID, expense.ReceiptInput{Filename: "r.pdf", Data: []byte("%PDF")})
	require.Error(t, err)
	files.AssertCalled(t, "Delete", ctx, "t1", "file-1")
}

func TestDelete_BorraRecibo(t *testing.T) {
	files := &mockFiles{}
	uc, repo := newUC(files, &stubOCR{})
	ctx := context.Background()
	e, err := uc.Create(ctx, "t1", "u1", dto.ExpenseRequest{Amount: amount("5"), Category: "meals"})
	require.NoError(t, err)
	repo.expenses[e.ID].ReceiptFileID = "file-9"

	files.On("Delete", ctx, "t1", "file-9").Return(errors.New("objeto no encontrado"))

	require.NoError(t, uc.Delete(ctx, "t1", e.ID), "el fallo al borrar el recibo solo se registra")
	assert.Empty(t, repo.expenses)
	assert.ErrorIs(t, uc.Delete(ctx, "t1", e.ID), domain.ErrNotFound)
}
