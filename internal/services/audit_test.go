package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
)

func TestAuditRecordJoinsCallerTransaction(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)
	rd := ctxutil.GetRequestData(as(admin))
	id := uint(7)

	tx := env.db.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, env.audit.Record(dbctx.Context{Ctx: context.Background(), Tx: tx}, rd, AuditEntry{
		Action:       audit.ActionUpdateProperty,
		ResourceType: audit.ResourceProperty,
		ResourceID:   &id,
		Details:      "rolled back",
	}))
	require.NoError(t, tx.Rollback().Error)
	assert.Empty(t, env.auditActions(t))

	require.NoError(t, env.audit.Record(dbctx.New(context.Background()), rd, AuditEntry{
		Action:       audit.ActionUpdatePrice,
		ResourceType: audit.ResourceProperty,
		ResourceID:   &id,
		Changes:      map[string]any{"preco": 10},
	}))
	var row types.AuditLog
	require.NoError(t, env.db.First(&row).Error)
	assert.Equal(t, admin.ID, row.UserID)
	assert.Equal(t, "admin@crm.com", row.UserEmail)
	assert.JSONEq(t, `{"preco":10}`, string(row.Changes))
}

func TestAuditRecordValidates(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.New(context.Background())
	require.Error(t, env.audit.Record(dbc, nil, AuditEntry{Action: "X", ResourceType: "Y"}))
	require.Error(t, env.audit.Record(dbc, &ctxutil.RequestData{}, AuditEntry{Action: "X"}))
}

func TestAuditListAdminOnlyWithFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)
	seller := testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)
	rd := ctxutil.GetRequestData(as(admin))
	dbc := dbctx.New(context.Background())

	for _, e := range []AuditEntry{
		{Action: audit.ActionCreateUser, ResourceType: audit.ResourceUser},
		{Action: audit.ActionDeleteLead, ResourceType: audit.ResourceLead},
		{Action: audit.ActionAssignLead, ResourceType: audit.ResourceLead},
	} {
		require.NoError(t, env.audit.Record(dbc, rd, e))
	}

	_, err := env.audit.List(dbctx.New(as(seller)), repos.AuditLogFilter{})
	requireStatus(t, err, http.StatusForbidden)

	all, err := env.audit.List(dbctx.New(as(admin)), repos.AuditLogFilter{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, audit.ActionAssignLead, all[0].Action, "newest first")

	leads, err := env.audit.List(dbctx.New(as(admin)), repos.AuditLogFilter{ResourceType: audit.ResourceLead})
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	deletes, err := env.audit.List(dbctx.New(as(admin)), repos.AuditLogFilter{Action: " DELETE_LEAD "})
	require.NoError(t, err)
	assert.Len(t, deletes, 1)
}
