package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type CEPHandler struct {
	cepService services.CEPService
}

func NewCEPHandler(cepService services.CEPService) *CEPHandler {
	return &CEPHandler{cepService: cepService}
}

// GET /api/cep/:cep
func (ch *CEPHandler) Lookup(c *gin.Context) {
	res, err := ch.cepService.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
