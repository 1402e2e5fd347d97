package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /api/stats
func (ah *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := ah.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/analytics/stats
func (ah *AnalyticsHandler) Analytics(c *gin.Context) {
	stats, err := ah.analyticsService.Analytics(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}
