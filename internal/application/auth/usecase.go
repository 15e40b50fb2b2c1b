package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/application/usecase"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/currency"
	"github.com/jhoicas/Facturo-api/pkg/jwt"
)

const (
	minPasswordLen       = 8
	defaultInvoicePrefix = "INV-"
	statusActive         = "active"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de cuenta, login y perfil.
type AuthUseCase struct {
	txRunner   repository.TxRunner
	userRepo   repository.UserRepository
	tenantRepo repository.TenantRepository
	jwtCfg     JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(txRunner repository.TxRunner, userRepo repository.UserRepository, tenantRepo repository.TenantRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{txRunner: txRunner, userRepo: userRepo, tenantRepo: tenantRepo, jwtCfg: jwtCfg}
}

// Signup crea el tenant, sus preferencias y el usuario dueño (sme_owner) en una
// sola transacción, y devuelve el token de sesión.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	business := strings.TrimSpace(in.BusinessName)
	if email == "" || !strings.Contains(email, "@") || business == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, minPasswordLen)
	}
	base := currency.Normalize(in.BaseCurrency)
	if !currency.IsISOCode(base) {
		return nil, fmt.Errorf("%w: base_currency debe ser un código ISO de 3 letras", domain.ErrInvalidInput)
	}

	existing, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	tenantSlug, err := uc.uniqueSlug(ctx, business)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tenant := &entity.Tenant{
		ID:                 uuid.New().String(),
		Name:               business,
		Slug:               tenantSlug,
		Email:              email,
		SubscriptionTier:   entity.TierFree,
		SubscriptionStatus: entity.SubscriptionTrialing,
		Status:             statusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	settings := &entity.TenantSettings{
		TenantID:       tenant.ID,
		BaseCurrency:   base,
		DefaultTaxRate: decimal.Zero,
		InvoicePrefix:  defaultInvoicePrefix,
		NextInvoiceSeq: 1,
		UpdatedAt:      now,
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         entity.RoleSMEOwner,
		Status:       statusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.txRunner.Run(ctx, tenant.ID, func(r repository.TxRepos) error {
		if err := r.Tenants.Create(ctx, tenant); err != nil {
			return fmt.Errorf("crear tenant: %w", err)
		}
		if err := r.Tenants.CreateSettings(ctx, settings); err != nil {
			return fmt.Errorf("crear preferencias: %w", err)
		}
		if err := r.Users.Create(ctx, user); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.ErrEmailAlreadyExists
			}
			return fmt.Errorf("crear usuario: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.session(user, tenant)
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != statusActive {
		return nil, domain.ErrForbidden
	}
	var tenant *entity.Tenant
	if user.TenantID != "" {
		if tenant, err = uc.tenantRepo.GetByID(ctx, user.TenantID); err != nil {
			return nil, err
		}
		if tenant != nil && tenant.Status != statusActive {
			return nil, domain.ErrForbidden
		}
	}
	return uc.session(user, tenant)
}

// Me devuelve el perfil del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	out := &dto.LoginResponse{User: *toUserResponse(user)}
	if user.TenantID != "" {
		tenant, err := uc.tenantRepo.GetByID(ctx, user.TenantID)
		if err != nil {
			return nil, err
		}
		if tenant != nil {
			out.Tenant = usecase.ToTenantResponse(tenant)
		}
	}
	return out, nil
}

// uniqueSlug deriva el slug del nombre comercial y le agrega un sufijo si ya existe.
func (uc *AuthUseCase) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "empresa"
	}
	candidate := base
	for i := 0; i < 5; i++ {
		t, err := uc.tenantRepo.GetBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if t == nil {
			return candidate, nil
		}
		candidate = base + "-" + uuid.New().String()[:6]
	}
	return "", fmt.Errorf("%w: no se pudo generar un slug único", domain.ErrConflict)
}

func (uc *AuthUseCase) session(user *entity.User, tenant *entity.Tenant) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.TenantID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	out := &dto.LoginResponse{Token: token, User: *toUserResponse(user)}
	if tenant != nil {
		out.Tenant = usecase.ToTenantResponse(tenant)
	}
	return out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:        u.ID,
		TenantID:  u.TenantID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
