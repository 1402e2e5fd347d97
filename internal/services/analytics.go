package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	"github.com/adaosilva/imoveis-backend/internal/domain/listing"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const (
	chartDays        = 7
	topPropertyCount = 5
	untitledProperty = "Sem Título"
)

type DashboardStats struct {
	LeadsToday       int64 `json:"leads_today"`
	LeadsWeek        int64 `json:"leads_week"`
	ActiveProperties int64 `json:"active_properties"`
	TotalViews       int64 `json:"total_views"`
}

type DayViews struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

type TopProperty struct {
	Title string `json:"titulo"`
	Views int    `json:"views"`
}

type AnalyticsStats struct {
	ViewsChart     []DayViews    `json:"views_chart"`
	TopProperties  []TopProperty `json:"top_properties"`
	ConversionRate float64       `json:"conversion_rate"`
	TotalLeads     int64         `json:"total_leads"`
	TotalViews     int64         `json:"total_views"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	Analytics(ctx context.Context) (*AnalyticsStats, error)
}

type analyticsService struct {
	log          *logger.Logger
	leadRepo     repos.LeadRepo
	propertyRepo repos.PropertyRepo
	viewRepo     repos.PropertyViewRepo
	now          func() time.Time
}

func NewAnalyticsService(log *logger.Logger, leadRepo repos.LeadRepo, propertyRepo repos.PropertyRepo, viewRepo repos.PropertyViewRepo) AnalyticsService {
	return &analyticsService{
		log:          log.With("service", "AnalyticsService"),
		leadRepo:     leadRepo,
		propertyRepo: propertyRepo,
		viewRepo:     viewRepo,
		now:          time.Now,
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (as *analyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if ctxutil.GetRequestData(ctx) == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	today := startOfDay(as.now())
	weekStart := today.AddDate(0, 0, -chartDays)

	var out DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		out.LeadsToday, err = as.leadRepo.CountSince(dbc, today)
		return err
	})
	g.Go(func() (err error) {
		out.LeadsWeek, err = as.leadRepo.CountSince(dbc, weekStart)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveProperties, err = as.propertyRepo.CountByStatus(dbc, listing.StatusAtivo)
		return err
	})
	g.Go(func() (err error) {
		out.TotalViews, err = as.propertyRepo.SumViews(dbc)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &out, nil
}

func (as *analyticsService) Analytics(ctx context.Context) (*AnalyticsStats, error) {
	if ctxutil.GetRequestData(ctx) == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	now := as.now()
	firstDay := startOfDay(now).AddDate(0, 0, -(chartDays - 1))

	var (
		viewTimes []time.Time
		top       []repos.PropertyViews
		out       AnalyticsStats
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() (err error) {
		viewTimes, err = as.viewRepo.ListSince(dbc, firstDay)
		return err
	})
	g.Go(func() (err error) {
		top, err = as.propertyRepo.TopViewed(dbc, topPropertyCount)
		return err
	})
	g.Go(func() (err error) {
		out.TotalLeads, err = as.leadRepo.Count(dbc)
		return err
	})
	g.Go(func() (err error) {
		out.TotalViews, err = as.viewRepo.Count(dbc)
		return err
	})
	if err := g.Wait(); err != nil {
		as.log.Error("analytics query failed", "error", err)
		return nil, fmt.Errorf("analytics stats: %w", err)
	}

	out.ViewsChart = viewsChart(firstDay, viewTimes, now.Location())
	out.TopProperties = make([]TopProperty, 0, len(top))
	for _, p := range top {
		title := p.Title
		if title == "" {
			title = untitledProperty
		}
		out.TopProperties = append(out.TopProperties, TopProperty{Title: title, Views: p.Views})
	}
	out.ConversionRate = conversionRate(out.TotalLeads, out.TotalViews)
	return &out, nil
}

// viewsChart buckets view timestamps into chartDays calendar days starting at
// firstDay, oldest first.
func viewsChart(firstDay time.Time, views []time.Time, loc *time.Location) []DayViews {
	chart := make([]DayViews, chartDays)
	index := make(map[string]int, chartDays)
	for i := range chart {
		day := firstDay.AddDate(0, 0, i)
		chart[i].Date = day.Format("02/01")
		index[day.Format(time.DateOnly)] = i
	}
	for _, ts := range views {
		if i, ok := index[ts.In(loc).Format(time.DateOnly)]; ok {
			chart[i].Views++
		}
	}
	return chart
}

func conversionRate(leads, views int64) float64 {
	if views <= 0 {
		return 0
	}
	return math.Round(float64(leads)/float64(views)*100*100) / 100
}
