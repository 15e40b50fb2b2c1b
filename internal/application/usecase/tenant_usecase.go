package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/notification"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/currency"
)

// Notifier puerto de envío de emails transaccionales.
type Notifier interface {
	Notify(ctx context.Context, to string, kind notification.Kind, data notification.Data, attachments ...notification.Attachment) error
}

// planPrices precio mensual de referencia por plan, en USD.
var planPrices = map[string]decimal.Decimal{
	entity.TierFree:    decimal.Zero,
	entity.TierStarter: decimal.NewFromInt(15),
	entity.TierPro:     decimal.NewFromInt(39),
}

// TenantUseCase datos del tenant, preferencias de facturación y suscripción.
type TenantUseCase struct {
	repo      repository.TenantRepository
	users     repository.UserRepository
	notifier  Notifier
	publicURL string
	log       zerolog.Logger
}

// NewTenantUseCase construye el caso de uso.
func NewTenantUseCase(repo repository.TenantRepository, users repository.UserRepository, notifier Notifier, publicURL string, log zerolog.Logger) *TenantUseCase {
	return &TenantUseCase{repo: repo, users: users, notifier: notifier, publicURL: publicURL, log: log}
}

// Get obtiene el tenant.
func (uc *TenantUseCase) Get(ctx context.Context, tenantID string) (*dto.TenantResponse, error) {
	t, err := uc.find(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToTenantResponse(t), nil
}

// Update actualiza los datos de contacto del tenant. El slug no cambia.
func (uc *TenantUseCase) Update(ctx context.Context, tenantID string, in dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.find(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(in.Name)
	t.Email = in.Email
	t.Phone = in.Phone
	t.Address = in.Address
	t.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return ToTenantResponse(t), nil
}

// List lista todos los tenants (solo super_admin).
func (uc *TenantUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TenantListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TenantResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *ToTenantResponse(t))
	}
	return &dto.TenantListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// GetSettings devuelve las preferencias de facturación.
func (uc *TenantUseCase) GetSettings(ctx context.Context, tenantID string) (*dto.TenantSettingsResponse, error) {
	s, err := uc.repo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSettingsResponse(s), nil
}

// UpdateSettings aplica los campos informados.
func (uc *TenantUseCase) UpdateSettings(ctx context.Context, tenantID string, in dto.UpdateTenantSettingsRequest) (*dto.TenantSettingsResponse, error) {
	s, err := uc.repo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.BaseCurrency != "" {
		code := currency.Normalize(in.BaseCurrency)
		if !currency.IsISOCode(code) {
			return nil, fmt.Errorf("%w: base_currency debe ser un código ISO de 3 letras", domain.ErrInvalidInput)
		}
		s.BaseCurrency = code
	}
	if in.DefaultTaxRate != nil {
		if in.DefaultTaxRate.IsNegative() || in.DefaultTaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: default_tax_rate fuera de rango", domain.ErrInvalidInput)
		}
		s.DefaultTaxRate = *in.DefaultTaxRate
	}
	if in.InvoicePrefix != nil {
		s.InvoicePrefix = strings.TrimSpace(*in.InvoicePrefix)
	}
	if in.DefaultNotes != nil {
		s.DefaultNotes = *in.DefaultNotes
	}
	if in.LogoFileID != nil {
		s.LogoFileID = *in.LogoFileID
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.UpdateSettings(ctx, s); err != nil {
		return nil, err
	}
	return toSettingsResponse(s), nil
}

// UpdateSubscription cambia el plan y envía la confirmación al dueño de la cuenta.
// Un fallo del email no revierte el cambio.
func (uc *TenantUseCase) UpdateSubscription(ctx context.Context, tenantID, userID string, in dto.UpdateSubscriptionRequest) (*dto.TenantResponse, error) {
	if !entity.ValidTier(in.Tier) {
		return nil, fmt.Errorf("%w: plan %q", domain.ErrInvalidInput, in.Tier)
	}
	status := in.Status
	if status == "" {
		status = entity.SubscriptionActive
	}
	if !entity.ValidSubscriptionStatus(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	t, err := uc.find(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	t.SubscriptionTier = in.Tier
	t.SubscriptionStatus = status
	t.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	if status == entity.SubscriptionActive {
		uc.sendConfirmation(ctx, t, userID)
	}
	return ToTenantResponse(t), nil
}

func (uc *TenantUseCase) sendConfirmation(ctx context.Context, t *entity.Tenant, userID string) {
	to, name := t.Email, t.Name
	if u, err := uc.users.GetByID(ctx, userID); err == nil && u != nil {
		to, name = u.Email, u.Name
	}
	if to == "" {
		return
	}
	amount := ""
	if price, ok := planPrices[t.SubscriptionTier]; ok && price.IsPositive() {
		amount = currency.Format(price, currency.DefaultCode) + " / mes"
	}
	err := uc.notifier.Notify(ctx, to, notification.KindSubscriptionConfirmation, notification.Data{
		RecipientName: name,
		BusinessName:  t.Name,
		PlanName:      t.SubscriptionTier,
		Amount:        amount,
		ActionURL:     uc.publicURL + "/settings/billing",
	})
	if err != nil {
		uc.log.Error().Err(err).Str("tenant_id", t.ID).Msg("no se pudo enviar la confirmación de suscripción")
	}
}

func (uc *TenantUseCase) find(ctx context.Context, tenantID string) (*entity.Tenant, error) {
	t, err := uc.repo.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// ToTenantResponse convierte la entidad a DTO.
func ToTenantResponse(t *entity.Tenant) *dto.TenantResponse {
	return &dto.TenantResponse{
		ID:                 t.ID,
		Name:               t.Name,
		Slug:               t.Slug,
		Email:              t.Email,
		Phone:              t.Phone,
		Address:            t.Address,
		SubscriptionTier:   t.SubscriptionTier,
		SubscriptionStatus: t.SubscriptionStatus,
		Status:             t.Status,
		CreatedAt:          t.CreatedAt,
	}
}

func toSettingsResponse(s *entity.TenantSettings) *dto.TenantSettingsResponse {
	return &dto.TenantSettingsResponse{
		BaseCurrency:   s.BaseCurrency,
		DefaultTaxRate: s.DefaultTaxRate,
		InvoicePrefix:  s.InvoicePrefix,
		NextInvoiceSeq: s.NextInvoiceSeq,
		DefaultNotes:   s.DefaultNotes,
		LogoFileID:     s.LogoFileID,
	}
}
