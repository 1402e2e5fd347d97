package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/pkg/pointers"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

func TestSiteConfigGetUnseeded(t *testing.T) {
	env := newTestEnv(t)
	svc := env.siteConfigService()

	_, err := svc.Get(context.Background())
	requireStatus(t, err, http.StatusNotFound)
	assert.Equal(t, "Configuration not found", apierr.Message(err))
}

func TestSiteConfigEnsureDefaultIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	svc := env.siteConfigService()

	created, err := svc.EnsureDefault(context.Background(), DefaultSiteConfig())
	require.NoError(t, err)
	assert.True(t, created)

	again, err := svc.EnsureDefault(context.Background(), &types.SiteConfig{HeroTitle: "outro"})
	require.NoError(t, err)
	assert.False(t, again)

	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ADÃO SILVA", cfg.HeroTitle)
	assert.Equal(t, "556436713590", cfg.FooterWhatsApp)
}

func TestSiteConfigUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := env.siteConfigService()
	admin := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)
	seller := testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)

	_, err := svc.Update(as(admin), SiteConfigInput{HeroTitle: pointers.Ptr("x")})
	requireStatus(t, err, http.StatusNotFound)

	_, err = svc.EnsureDefault(context.Background(), DefaultSiteConfig())
	require.NoError(t, err)

	_, err = svc.Update(as(seller), SiteConfigInput{HeroTitle: pointers.Ptr("x")})
	requireStatus(t, err, http.StatusForbidden)

	cfg, err := svc.Update(as(admin), SiteConfigInput{
		HeroSubtitle: pointers.Ptr("  Novos lançamentos "),
		FooterHours:  pointers.Ptr("Seg - Sáb: 08:00 - 12:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ADÃO SILVA", cfg.HeroTitle, "fields not sent stay untouched")
	assert.Equal(t, "Novos lançamentos", cfg.HeroSubtitle)
	assert.Equal(t, "Seg - Sáb: 08:00 - 12:00", cfg.FooterHours)

	assert.Equal(t, []string{audit.ActionUpdateSiteConfig}, env.auditActions(t))
	assert.Equal(t,
		[]string{realtime.ChannelPublic, realtime.ChannelCRM},
		env.emit.channels(realtime.EventSiteConfigUpdated))
}
