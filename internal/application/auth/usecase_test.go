package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturo-api/internal/application/auth"
	"github.com/jhoicas/Facturo-api/internal/application/dto"
	"github.com/jhoicas/Facturo-api/internal/domain"
	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/domain/repository"
	"github.com/jhoicas/Facturo-api/pkg/jwt"
)

const secret = "test-secret"

type memUsers struct{ users map[string]*entity.User }

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.users[id], nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memTenants struct {
	repository.TenantRepository
	tenants  map[string]*entity.Tenant
	settings map[string]*entity.TenantSettings
}

func (r *memTenants) Create(_ context.Context, t *entity.Tenant) error {
	r.tenants[t.ID] = t
	return nil
}

func (r *memTenants) GetByID(_ context.Context, id string) (*entity.Tenant, error) {
	return r.tenants[id], nil
}

func (r *memTenants) GetBySlug(_ context.Context, s string) (*entity.Tenant, error) {
	for _, t := range r.tenants {
		if t.Slug == s {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTenants) CreateSettings(_ context.Context, s *entity.TenantSettings) error {
	r.settings[s.TenantID] = s
	return nil
}

type fakeTx struct {
	users   *memUsers
	tenants *memTenants
	runs    []string
}

func (tx *fakeTx) Run(_ context.Context, tenantID string, fn func(repository.TxRepos) error) error {
	tx.runs = append(tx.runs, tenantID)
	return fn(repository.TxRepos{Users: tx.users, Tenants: tx.tenants})
}

func newUseCase() (*auth.AuthUseCase, *memUsers, *memTenants, *fakeTx) {
	users := &memUsers{users: map[string]*entity.User{}}
	tenants := &memTenants{tenants: map[string]*entity.Tenant{}, settings: map[string]*entity.TenantSettings{}}
	tx := &fakeTx{users: users, tenants: tenants}
	uc := auth.NewAuthUseCase(tx, users, tenants, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "facturo"})
	return uc, users, tenants, tx
}

func signup() dto.SignupRequest {
	return dto.SignupRequest{
		BusinessName: "Kofi Designs & Co.",
		Name:         "Kofi",
		Email:        " Kofi@Example.com ",
		Password:     "s3cret-pass",
		BaseCurrency: "ghs",
	}
}

func TestSignup_CreaTenantPreferenciasYDueno(t *testing.T) {
	uc, users, tenants, tx := newUseCase()

	out, err := uc.Signup(context.Background(), signup())
	require.NoError(t, err)

	require.NotNil(t, out.Tenant)
	assert.Equal(t, "kofi-designs-and-co", out.Tenant.Slug)
	assert.Equal(t, entity.TierFree, out.Tenant.SubscriptionTier)
	assert.Equal(t, "kofi@example.com", out.User.Email)
	assert.Equal(t, entity.RoleSMEOwner, out.User.Role)
	assert.Equal(t, []string{out.Tenant.ID}, tx.runs)

	settings := tenants.settings[out.Tenant.ID]
	require.NotNil(t, settings)
	assert.Equal(t, "GHS", settings.BaseCurrency)
	assert.Equal(t, "INV-", settings.InvoicePrefix)
	assert.Equal(t, int64(1), settings.NextInvoiceSeq)

	stored := users.users[out.User.ID]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	userID, tenantID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, userID)
	assert.Equal(t, out.Tenant.ID, tenantID)
	assert.Equal(t, entity.RoleSMEOwner, role)
}

func TestSignup_EmailRepetido(t *testing.T) {
	uc, _, _, _ := newUseCase()
	_, err := uc.Signup(context.Background(), signup())
	require.NoError(t, err)

	in := signup()
	in.BusinessName = "Otra empresa"
	_, err = uc.Signup(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestSignup_SlugRepetidoLlevaSufijo(t *testing.T) {
	uc, _, _, _ := newUseCase()
	first, err := uc.Signup(context.Background(), signup())
	require.NoError(t, err)

	in := signup()
	in.Email = "otra@example.com"
	second, err := uc.Signup(context.Background(), in)
	require.NoError(t, err)

	assert.NotEqual(t, first.Tenant.Slug, second.Tenant.Slug)
	assert.Contains(t, second.Tenant.Slug, "kofi-designs-and-co-")
}

func TestSignup_Validaciones(t *testing.T) {
	cases := map[string]func(*dto.SignupRequest){
		"sin empresa":      func(r *dto.SignupRequest) { r.BusinessName = " " },
		"email inválido":   func(r *dto.SignupRequest) { r.Email = "kofi" },
		"contraseña corta": func(r *dto.SignupRequest) { r.Password = "123" },
		"moneda no ISO":    func(r *dto.SignupRequest) { r.BaseCurrency = "cedis" },
		"moneda no ASCII":  func(r *dto.SignupRequest) { r.BaseCurrency = "€" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			uc, _, _, tx := newUseCase()
			in := signup()
			mutate(&in)
			_, err := uc.Signup(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, tx.runs)
		})
	}
}

func TestLogin(t *testing.T) {
	uc, users, _, _ := newUseCase()
	out, err := uc.Signup(context.Background(), signup())
	require.NoError(t, err)

	logged, err := uc.Login(context.Background(), dto.LoginRequest{Email: "KOFI@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, logged.Token)
	assert.Equal(t, out.Tenant.ID, logged.Tenant.ID)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "kofi@example.com", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users.users[out.User.ID].Status = "suspended"
	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "kofi@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe(t *testing.T) {
	uc, _, _, _ := newUseCase()
	out, err := uc.Signup(context.Background(), signup())
	require.NoError(t, err)

	me, err := uc.Me(context.Background(), out.User.ID)
	require.NoError(t, err)
	assert.Empty(t, me.Token)
	assert.Equal(t, "Kofi", me.User.Name)
	assert.Equal(t, "Kofi Designs & Co.", me.Tenant.Name)

	_, err = uc.Me(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
