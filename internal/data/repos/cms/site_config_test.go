package cms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
)

func TestSiteConfigRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSiteConfigRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	got, err := repo.Get(dbc)
	require.NoError(t, err)
	assert.Nil(t, got, "unseeded config")

	created, err := repo.Create(dbc, &types.SiteConfig{HeroTitle: "ADÃO SILVA", FooterPhone: "64 3671-3590"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateFields(dbc, created.ID, map[string]interface{}{"hero_title": "Novo Título"}))
	got, err = repo.Get(dbc)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Novo Título", got.HeroTitle)
	assert.Equal(t, "64 3671-3590", got.FooterPhone)
}
