package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type SiteConfigHandler struct {
	siteConfigService services.SiteConfigService
}

func NewSiteConfigHandler(siteConfigService services.SiteConfigService) *SiteConfigHandler {
	return &SiteConfigHandler{siteConfigService: siteConfigService}
}

// GET /api/public/config
func (sh *SiteConfigHandler) Get(c *gin.Context) {
	cfg, err := sh.siteConfigService.Get(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, cfg)
}

// PATCH /api/admin/config
func (sh *SiteConfigHandler) Update(c *gin.Context) {
	var req services.SiteConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	cfg, err := sh.siteConfigService.Update(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, cfg)
}
