package app

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http"
	httpH "github.com/adaosilva/imoveis-backend/internal/http/handlers"
	httpMW "github.com/adaosilva/imoveis-backend/internal/http/middleware"
	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

const serviceName = "imoveis"

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Metrics    *httpH.MetricsHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	Lead       *httpH.LeadHandler
	Property   *httpH.PropertyHandler
	Media      *httpH.MediaHandler
	CEP        *httpH.CEPHandler
	SiteConfig *httpH.SiteConfigHandler
	Analytics  *httpH.AnalyticsHandler
	Audit      *httpH.AuditHandler
	Realtime   *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, hub *realtime.Hub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	h := Handlers{
		Health:     httpH.NewHealthHandler(),
		Auth:       httpH.NewAuthHandler(services.Auth),
		User:       httpH.NewUserHandler(services.User),
		Lead:       httpH.NewLeadHandler(services.Lead),
		Property:   httpH.NewPropertyHandler(services.Property),
		Media:      httpH.NewMediaHandler(services.Media),
		CEP:        httpH.NewCEPHandler(services.CEP),
		SiteConfig: httpH.NewSiteConfigHandler(services.SiteConfig),
		Analytics:  httpH.NewAnalyticsHandler(services.Analytics),
		Audit:      httpH.NewAuditHandler(services.Audit),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
	}
	if metrics != nil {
		h.Metrics = httpH.NewMetricsHandler(metrics)
	}
	return h
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	rc := http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		MetricsHandler:    handlers.Metrics,
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		LeadHandler:       handlers.Lead,
		PropertyHandler:   handlers.Property,
		MediaHandler:      handlers.Media,
		CEPHandler:        handlers.CEP,
		SiteConfigHandler: handlers.SiteConfig,
		AnalyticsHandler:  handlers.Analytics,
		AuditHandler:      handlers.Audit,
		RealtimeHandler:   handlers.Realtime,
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = serviceName
	}
	return http.NewRouter(rc)
}
