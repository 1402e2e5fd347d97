package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/adaosilva/imoveis-backend/internal/http/handlers"
	httpMW "github.com/adaosilva/imoveis-backend/internal/http/middleware"
	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const roleAdmin = "admin"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler       *httpH.AuthHandler
	UserHandler       *httpH.UserHandler
	LeadHandler       *httpH.LeadHandler
	PropertyHandler   *httpH.PropertyHandler
	MediaHandler      *httpH.MediaHandler
	CEPHandler        *httpH.CEPHandler
	SiteConfigHandler *httpH.SiteConfigHandler
	AnalyticsHandler  *httpH.AnalyticsHandler
	AuditHandler      *httpH.AuditHandler
	RealtimeHandler   *httpH.RealtimeHandler

	HealthHandler  *httpH.HealthHandler
	MetricsHandler *httpH.MetricsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", cfg.MetricsHandler.Serve)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/token", cfg.AuthHandler.Login)
		}

		// Public site
		if cfg.LeadHandler != nil {
			api.POST("/leads", cfg.LeadHandler.Create)
		}
		if cfg.PropertyHandler != nil {
			api.GET("/properties", cfg.PropertyHandler.List)
			api.GET("/properties/:id", cfg.PropertyHandler.Get)
			api.GET("/public/featured", cfg.PropertyHandler.Featured)
		}
		if cfg.SiteConfigHandler != nil {
			api.GET("/public/config", cfg.SiteConfigHandler.Get)
		}
		if cfg.RealtimeHandler != nil {
			api.GET("/public/stream", cfg.RealtimeHandler.PublicStream)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/realtime/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/realtime/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}

		// Leads
		if cfg.LeadHandler != nil {
			protected.GET("/leads", cfg.LeadHandler.List)
			protected.GET("/leads/board", cfg.LeadHandler.Board)
			protected.PATCH("/leads/:id", cfg.LeadHandler.Update)
			protected.DELETE("/leads/:id", cfg.LeadHandler.Delete)
			protected.GET("/leads/:id/whatsapp", cfg.LeadHandler.WhatsAppLink)
		}

		// Properties
		if cfg.PropertyHandler != nil {
			protected.POST("/properties", cfg.PropertyHandler.Create)
			protected.PATCH("/properties/:id", cfg.PropertyHandler.Update)
			protected.PUT("/properties/:id", cfg.PropertyHandler.Update)
			protected.DELETE("/properties/:id", cfg.PropertyHandler.Delete)
			protected.PUT("/properties/:id/images/order", cfg.PropertyHandler.ReorderImages)
		}

		if cfg.MediaHandler != nil {
			protected.POST("/media/images", cfg.MediaHandler.UploadImages)
		}
		if cfg.CEPHandler != nil {
			protected.GET("/cep/:cep", cfg.CEPHandler.Lookup)
		}
		if cfg.SiteConfigHandler != nil {
			protected.PATCH("/admin/config", cfg.SiteConfigHandler.Update)
		}

		// Dashboard
		if cfg.AnalyticsHandler != nil {
			protected.GET("/stats", cfg.AnalyticsHandler.Dashboard)
			protected.GET("/analytics/stats", cfg.AnalyticsHandler.Analytics)
		}
	}

	admin := protected.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireRole(roleAdmin))
		}

		if cfg.UserHandler != nil {
			admin.GET("/users", cfg.UserHandler.List)
			admin.POST("/users", cfg.UserHandler.Create)
			admin.PATCH("/users/:id/role", cfg.UserHandler.UpdateRole)
			admin.DELETE("/users/:id", cfg.UserHandler.Delete)
		}
		if cfg.AuditHandler != nil {
			admin.GET("/audit-logs", cfg.AuditHandler.List)
		}
	}

	return r
}
