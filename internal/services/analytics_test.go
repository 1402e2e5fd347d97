package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/listing"
)

func newAnalytics(env *testEnv, now time.Time) AnalyticsService {
	svc := NewAnalyticsService(env.log, env.leadRepo, env.propertyRepo, env.viewRepo)
	svc.(*analyticsService).now = func() time.Time { return now }
	return svc
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	svc := newAnalytics(env, now)
	user := testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)

	testutil.SeedProperty(t, env.db, &types.Property{Title: "A", ViewsCount: 10})
	testutil.SeedProperty(t, env.db, &types.Property{Title: "B", ViewsCount: 5})
	testutil.SeedProperty(t, env.db, &types.Property{Title: "C", Status: listing.StatusVendido, ViewsCount: 1})

	testutil.SeedLead(t, env.db, &types.Lead{Name: "hoje", WhatsApp: "64999990001"})
	old := testutil.SeedLead(t, env.db, &types.Lead{Name: "semana", WhatsApp: "64999990002"})
	require.NoError(t, env.db.Model(old).Update("created_at", startOfDay(now).AddDate(0, 0, -3)).Error)
	ancient := testutil.SeedLead(t, env.db, &types.Lead{Name: "antigo", WhatsApp: "64999990003"})
	require.NoError(t, env.db.Model(ancient).Update("created_at", now.AddDate(0, -1, 0)).Error)

	_, err := svc.Dashboard(context.Background())
	requireStatus(t, err, http.StatusUnauthorized)

	stats, err := svc.Dashboard(as(user))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.LeadsToday)
	assert.Equal(t, int64(2), stats.LeadsWeek)
	assert.Equal(t, int64(2), stats.ActiveProperties)
	assert.Equal(t, int64(16), stats.TotalViews)
}

func TestAnalyticsStats(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.Local)
	svc := newAnalytics(env, now)
	user := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)

	prop := testutil.SeedProperty(t, env.db, &types.Property{Title: "Casa", ViewsCount: 9})
	testutil.SeedProperty(t, env.db, &types.Property{Title: "", ViewsCount: 3})
	for _, ts := range []time.Time{
		now,
		now.Add(-time.Hour),
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -6),
		now.AddDate(0, 0, -7),
	} {
		require.NoError(t, env.db.Create(&types.PropertyView{PropertyID: prop.ID, ViewedAt: ts}).Error)
	}
	testutil.SeedLead(t, env.db, &types.Lead{Name: "Ana", WhatsApp: "64999990001"})
	testutil.SeedLead(t, env.db, &types.Lead{Name: "Bia", WhatsApp: "64999990002"})

	stats, err := svc.Analytics(as(user))
	require.NoError(t, err)

	require.Len(t, stats.ViewsChart, 7)
	assert.Equal(t, DayViews{Date: "04/03", Views: 1}, stats.ViewsChart[0])
	assert.Equal(t, DayViews{Date: "09/03", Views: 1}, stats.ViewsChart[5])
	assert.Equal(t, DayViews{Date: "10/03", Views: 2}, stats.ViewsChart[6])

	require.Len(t, stats.TopProperties, 2)
	assert.Equal(t, TopProperty{Title: "Casa", Views: 9}, stats.TopProperties[0])
	assert.Equal(t, TopProperty{Title: "Sem Título", Views: 3}, stats.TopProperties[1])

	assert.Equal(t, int64(2), stats.TotalLeads)
	assert.Equal(t, int64(5), stats.TotalViews)
	assert.Equal(t, 40.0, stats.ConversionRate)
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0.0, conversionRate(3, 0))
	assert.Equal(t, 33.33, conversionRate(1, 3))
	assert.Equal(t, 66.67, conversionRate(2, 3))
}
