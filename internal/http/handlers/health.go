package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/observability"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type MetricsHandler struct {
	metrics *observability.Metrics
}

func NewMetricsHandler(m *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// GET /metrics
func (h *MetricsHandler) Serve(c *gin.Context) {
	h.metrics.WriteHTTP(c.Writer, c.Request)
}
