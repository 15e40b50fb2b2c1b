package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Facturo-api/internal/domain/entity"
	"github.com/jhoicas/Facturo-api/internal/infrastructure/authz"
)

func TestEnforcer_PermisosPorRol(t *testing.T) {
	e, err := authz.NewEnforcer()
	require.NoError(t, err)

	cases := []struct {
		role, obj, act string
		want           bool
	}{
		{entity.RoleSuperAdmin, authz.ObjectAdmin, authz.ActionView, true},
		{entity.RoleSuperAdmin, authz.ObjectInvoice, authz.ActionDelete, true},
		{entity.RoleSMEOwner, authz.ObjectInvoice, authz.ActionSend, true},
		{entity.RoleSMEOwner, authz.ObjectExpense, authz.ActionCreate, true},
		{entity.RoleSMEOwner, authz.ObjectAdmin, authz.ActionView, false},
		{entity.RoleClient, authz.ObjectInvoice, authz.ActionView, true},
		{entity.RoleClient, authz.ObjectInvoice, authz.ActionPDF, true},
		{entity.RoleClient, authz.ObjectInvoice, authz.ActionCreate, false},
		{entity.RoleClient, authz.ObjectExpense, authz.ActionView, false},
		{entity.RoleClient, authz.ObjectTenant, authz.ActionUpdate, false},
		{"desconocido", authz.ObjectInvoice, authz.ActionView, false},
		{"", authz.ObjectInvoice, authz.ActionView, false},
	}
	for _, c := range cases {
		got, err := e.Allowed(c.role, c.obj, c.act)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s %s %s", c.role, c.obj, c.act)
	}
}
