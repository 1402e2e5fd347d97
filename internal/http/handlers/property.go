package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

const defaultFeaturedLimit = 6

type PropertyHandler struct {
	propertyService services.PropertyService
}

func NewPropertyHandler(propertyService services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// GET /api/properties?search=&status=&tipo=&destaque=&skip=&limit=
func (ph *PropertyHandler) List(c *gin.Context) {
	skip, err := intQuery(c, "skip", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	featured, err := boolQuery(c, "destaque")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	props, err := ph.propertyService.List(c.Request.Context(), services.ListPropertiesInput{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Type:     c.Query("tipo"),
		Featured: featured,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, props)
}

// GET /api/public/featured?limit=
func (ph *PropertyHandler) Featured(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultFeaturedLimit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	props, err := ph.propertyService.Featured(c.Request.Context(), limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, props)
}

// GET /api/properties/:id
func (ph *PropertyHandler) Get(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do imóvel")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	prop, err := ph.propertyService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, prop)
}

// POST /api/properties
func (ph *PropertyHandler) Create(c *gin.Context) {
	var req services.PropertyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Dados do imóvel inválidos"))
		return
	}
	prop, err := ph.propertyService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, prop)
}

// PATCH /api/properties/:id
func (ph *PropertyHandler) Update(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do imóvel")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req services.PropertyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Dados do imóvel inválidos"))
		return
	}
	prop, err := ph.propertyService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, prop)
}

// DELETE /api/properties/:id
func (ph *PropertyHandler) Delete(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do imóvel")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := ph.propertyService.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /api/properties/:id/images/order
func (ph *PropertyHandler) ReorderImages(c *gin.Context) {
	id, err := uintParam(c, "id", "ID do imóvel")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		ImageIDs []uint `json:"image_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	prop, err := ph.propertyService.ReorderImages(c.Request.Context(), id, req.ImageIDs)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, prop)
}
