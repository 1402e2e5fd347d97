package listing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/pkg/pointers"
)

func TestPropertyRepoCreateWithImagesAndGet(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPropertyRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	created, err := repo.Create(dbc, []*types.Property{{
		Title:  "Casa no Setor Montes Belos",
		Status: "ATIVO",
		Images: []types.PropertyImage{
			{ImageURL: "b.jpg", Order: 1},
			{ImageURL: "a.jpg", Order: 0},
		},
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)

	got, err := repo.GetByID(dbc, created[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "a.jpg", got.Images[0].ImageURL, "images ordered by ordem")

	missing, err := repo.GetByID(dbc, created[0].ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPropertyRepoListFilters(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPropertyRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	testutil.SeedProperty(t, db, &types.Property{Title: "Apartamento Centro", Location: "Centro, Goiânia - GO", Type: "Apartamento", IsFeatured: 1})
	testutil.SeedProperty(t, db, &types.Property{Title: "Casa Térrea", Location: "Setor Sul, São Luís de Montes Belos - GO", Type: "Casa", Status: "VENDIDO"})
	testutil.SeedProperty(t, db, &types.Property{Title: "Lote Comercial", Location: "CENTRO, Iporá - GO", Type: "LOTE"})

	bySearch, err := repo.List(dbc, PropertyFilter{Search: "centro"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2, "search matches title or location case-insensitively")

	byStatus, err := repo.List(dbc, PropertyFilter{Status: "VENDIDO"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Casa Térrea", byStatus[0].Title)

	byType, err := repo.List(dbc, PropertyFilter{Type: "lote"})
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	featured, err := repo.List(dbc, PropertyFilter{Featured: pointers.Ptr(true)})
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "Apartamento Centro", featured[0].Title)

	limited, err := repo.List(dbc, PropertyFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "Lote Comercial", limited[0].Title, "newest first")
}

func TestPropertyRepoViewsAndRanking(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPropertyRepo(db, testutil.Logger(t))
	views := NewPropertyViewRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	a := testutil.SeedProperty(t, db, &types.Property{Title: "A"})
	b := testutil.SeedProperty(t, db, &types.Property{Title: "B", Status: "INATIVO"})

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementViews(dbc, b.ID))
	}
	require.NoError(t, repo.IncrementViews(dbc, a.ID))

	sum, err := repo.SumViews(dbc)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum)

	active, err := repo.CountByStatus(dbc, "ATIVO")
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	top, err := repo.TopViewed(dbc, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].Title)
	assert.Equal(t, 3, top[0].Views)

	_, err = views.Create(dbc, []*types.PropertyView{{PropertyID: a.ID}, {PropertyID: b.ID, ViewedAt: time.Now().AddDate(0, 0, -10)}})
	require.NoError(t, err)
	n, err := views.Count(dbc)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	recent, err := views.ListSince(dbc, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestPropertyImageRepoReplaceAndDelete(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPropertyRepo(db, testutil.Logger(t))
	images := NewPropertyImageRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	p := testutil.SeedProperty(t, db, &types.Property{
		Title:  "Cobertura",
		Images: []types.PropertyImage{{ImageURL: "old.jpg"}},
	})

	replaced, err := images.ReplaceForProperty(dbc, p.ID, []*types.PropertyImage{
		{ImageURL: "n1.jpg", Order: 0},
		{ImageURL: "n2.jpg", Order: 1},
	})
	require.NoError(t, err)
	require.Len(t, replaced, 2)

	list, err := images.ListByProperty(dbc, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n1.jpg", list[0].ImageURL)

	require.NoError(t, images.UpdateOrder(dbc, list[0].ID, 5))
	list, err = images.ListByProperty(dbc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "n2.jpg", list[0].ImageURL)

	require.NoError(t, repo.Delete(dbc, p.ID))
	list, err = images.ListByProperty(dbc, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPropertyRepoDeleteKeepsViewHistory(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPropertyRepo(db, testutil.Logger(t))
	views := NewPropertyViewRepo(db, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	p := testutil.SeedProperty(t, db, &types.Property{Title: "Sobrado"})
	_, err := views.Create(dbc, []*types.PropertyView{{PropertyID: p.ID}})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(dbc, p.ID))

	gone, err := repo.GetByID(dbc, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	n, err := views.Count(dbc)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	recent, err := views.ListSince(dbc, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
