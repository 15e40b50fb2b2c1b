// Package expense registra los gastos del tenant y sus recibos escaneados.
package expense

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/storage"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

// TextExtractor obtiene el texto de la imagen de un recibo.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (string, error)
}

// Files sube y borra archivos de almacenamiento.
type Files interface {
	Upload(ctx context.Context, in storage.UploadInput) (*entity.StorageFile, error)
	Delete(ctx context.Context, tenantID, id string) error
}

// ReceiptInput archivo de recibo recibido por multipart.
type ReceiptInput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UseCase casos de uso de gastos.
type UseCase struct {
	repo  repository.ExpenseRepository
	files Files
	ocr   TextExtractor
	log   zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.ExpenseRepository, files Files, ocr TextExtractor, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, files: files, ocr: ocr, log: log}
}

// Create registra un gasto del usuario.
func (uc *UseCase) Create(ctx context.Context, tenantID, userID string, in dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	now := time.Now()
	e := &entity.Expense{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := apply(e, in, now); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

// Get obtiene un gasto del tenant.
func (uc *UseCase) Get(ctx context.Context, tenantID, id string) (*dto.ExpenseResponse, error) {
	e, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

// List lista gastos con filtros de categoría y rango de fechas.
func (uc *UseCase) List(ctx context.Context, tenantID string, q dto.ExpenseListQuery) (*dto.ExpenseListResponse, error) {
	q.DefaultPage()
	filter := repository.ExpenseFilter{
		Category: strings.ToLower(strings.TrimSpace(q.Category)),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	from, err := dto.ParseDate(q.From)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	to, err := dto.ParseDate(q.To)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}

	list, err := uc.repo.ListByTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExpenseResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toResponse(e))
	}
	return &dto.ExpenseListResponse{Items: items, Page: dto.PageResponse{Limit: q.Limit, Offset: q.Offset}}, nil
}

// Update reemplaza los datos del gasto; el recibo y su texto se conservan.
func (uc *UseCase) Update(ctx context.Context, tenantID, id string, in dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	e, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := apply(e, in, now); err != nil {
		return nil, err
	}
	e.UpdatedAt = now
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

// Delete elimina el gasto y, si lo tiene, su recibo.
func (uc *UseCase) Delete(ctx context.Context, tenantID, id string) error {
	e, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	uc.dropReceipt(ctx, tenantID, e.ReceiptFileID)
	return nil
}

// AttachReceipt sube el recibo al bucket receipts, extrae su texto si es una imagen
// y lo asocia al gasto. Un recibo anterior se borra.
func (uc *UseCase) AttachReceipt(ctx context.Context, tenantID, userID, id string, in ReceiptInput) (*dto.ExpenseResponse, error) {
	e, err := uc.find(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	file, err := uc.files.Upload(ctx, storage.UploadInput{
		TenantID:     tenantID,
		UserID:       userID,
		Bucket:       entity.BucketReceipts,
		OriginalName: in.Filename,
		ContentType:  in.ContentType,
		Data:         in.Data,
	})
	if err != nil {
		return nil, err
	}

	text := ""
	if strings.HasPrefix(file.ContentType, "image/") {
		text, err = uc.ocr.Extract(ctx, in.Data)
		if err != nil {
			uc.log.Warn().Err(err).Str("expense_id", id).Msg("no se pudo leer el texto del recibo")
			text = ""
		}
	}

	previous := e.ReceiptFileID
	e.ReceiptFileID = file.ID
	e.OCRText = strings.TrimSpace(text)
	e.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, e); err != nil {
		uc.dropReceipt(ctx, tenantID, file.ID)
		return nil, err
	}
	uc.dropReceipt(ctx, tenantID, previous)
	return toResponse(e), nil
}

func (uc *UseCase) dropReceipt(ctx context.Context, tenantID, fileID string) {
	if fileID == "" {
		return
	}
	if err := uc.files.Delete(ctx, tenantID, fileID); err != nil {
		uc.log.Error().Err(err).Str("file_id", fileID).Msg("no se pudo borrar el recibo")
	}
}

func (uc *UseCase) find(ctx context.Context, tenantID, id string) (*entity.Expense, error) {
	e, err := uc.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func apply(e *entity.Expense, in dto.ExpenseRequest, now time.Time) error {
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		return fmt.Errorf("%w: category es obligatoria", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if category == entity.ExpenseCategoryMileage && (in.MileageKm == nil || !in.MileageKm.IsPositive()) {
		return fmt.Errorf("%w: mileage_km es obligatorio para kilometraje", domain.ErrInvalidInput)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return fmt.Errorf("%w: latitude y longitude van juntas", domain.ErrInvalidInput)
	}
	if in.Latitude != nil && (*in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180) {
		return fmt.Errorf("%w: coordenadas fuera de rango", domain.ErrInvalidInput)
	}
	date, err := dto.ParseDate(in.ExpenseDate)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if date.IsZero() {
		y, m, d := now.UTC().Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	code := currency.Normalize(in.Currency)
	if !currency.IsISOCode(code) {
		return fmt.Errorf("%w: currency debe ser un código ISO de 3 letras", domain.ErrInvalidInput)
	}

	e.Amount = in.Amount
	e.Currency = code
	e.Category = category
	e.Description = strings.TrimSpace(in.Description)
	e.Vendor = strings.TrimSpace(in.Vendor)
	e.ExpenseDate = date
	e.Latitude, e.Longitude = in.Latitude, in.Longitude
	e.MileageKm = in.MileageKm
	return nil
}

func toResponse(e *entity.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:            e.ID,
		TenantID:      e.TenantID,
		UserID:        e.UserID,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Category:      e.Category,
		Description:   e.Description,
		Vendor:        e.Vendor,
		ExpenseDate:   dto.FormatDate(e.ExpenseDate),
		ReceiptFileID: e.ReceiptFileID,
		OCRText:       e.OCRText,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		MileageKm:     e.MileageKm,
		CreatedAt:     e.CreatedAt,
	}
}
