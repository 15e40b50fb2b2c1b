// Package authz permisos por rol (rol, objeto, acción) evaluados con casbin.
package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
)

//go:embed model.conf
var modelText string

// Objetos protegidos.
const (
	ObjectTenant   = "tenant"
	ObjectCustomer = "customer"
	ObjectProduct  = "product"
	ObjectInvoice  = "invoice"
	ObjectExpense  = "expense"
	ObjectFile     = "file"
	ObjectAdmin    = "admin"
)

// Acciones.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionSend   = "send"
	ActionPay    = "pay"
	ActionCancel = "cancel"
	ActionExport = "export"
	ActionPDF    = "pdf"
)

// Enforcer envuelve el SyncedEnforcer con las políticas sembradas en código.
type Enforcer struct {
	e *casbin.SyncedEnforcer
}

// NewEnforcer carga el modelo embebido y siembra las políticas por rol.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: modelo: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}
	if err := seedPolicies(e); err != nil {
		return nil, fmt.Errorf("authz: políticas: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed indica si role puede ejecutar action sobre object. Un rol desconocido no puede nada.
func (a *Enforcer) Allowed(role, object, action string) (bool, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return false, nil
	}
	return a.e.Enforce(subject(role), object, action)
}

func subject(role string) string { return "role:" + role }

func seedPolicies(e *casbin.SyncedEnforcer) error {
	owner := subject(entity.RoleSMEOwner)
	client := subject(entity.RoleClient)
	admin := subject(entity.RoleSuperAdmin)

	policies := [][]string{
		{admin, "*", "*"},

		{owner, ObjectTenant, "*"},
		{owner, ObjectCustomer, "*"},
		{owner, ObjectProduct, "*"},
		{owner, ObjectInvoice, "*"},
		{owner, ObjectExpense, "*"},
		{owner, ObjectFile, "*"},

		// Solo lectura de facturas, clientes y productos del tenant.
		{client, ObjectInvoice, ActionView},
		{client, ObjectInvoice, ActionPDF},
		{client, ObjectCustomer, ActionView},
		{client, ObjectProduct, ActionView},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return err
	}
	// El dueño hereda lo que puede ver un cliente (jerarquía explícita para g()).
	if _, err := e.AddGroupingPolicy(owner, client); err != nil {
		return err
	}
	return nil
}
