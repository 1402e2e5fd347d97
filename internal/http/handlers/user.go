package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users
func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, users)
}

// POST /api/users
func (uh *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, user)
}

// PATCH /api/users/:id/role
func (uh *UserHandler) UpdateRole(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	user, err := uh.userService.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, user)
}

// DELETE /api/users/:id
func (uh *UserHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if err := uh.userService.Delete(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
