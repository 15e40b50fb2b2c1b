package entity

import "time"

// Roles válidos para User.
const (
	RoleSuperAdmin = "super_admin"
	RoleSMEOwner   = "sme_owner"
	RoleClient     = "client"
)

// User representa un usuario del sistema. TenantID vacío solo para super_admin.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // super_admin, sme_owner, client
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol existe.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleSMEOwner, RoleClient:
		return true
	}
	return false
}
