package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type AuditHandler struct {
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GET /api/audit-logs?limit=&acao=&recurso_tipo=
func (ah *AuditHandler) List(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	logs, err := ah.auditService.List(dbctx.New(c.Request.Context()), repos.AuditLogFilter{
		Limit:        limit,
		Action:       c.Query("acao"),
		ResourceType: c.Query("recurso_tipo"),
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, logs)
}
