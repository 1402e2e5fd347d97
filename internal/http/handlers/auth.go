package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/http/response"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// POST /api/login
//
// Accepts JSON {email, password} or the OAuth2 password form
// (username, password).
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" form:"email"`
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	var err error
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil {
		response.RespondErr(c, apierr.Invalid("Requisição inválida"))
		return
	}
	email := req.Email
	if email == "" {
		email = req.Username
	}
	res, err := ah.authService.Login(c.Request.Context(), email, req.Password)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/me
func (ah *AuthHandler) Me(c *gin.Context) {
	me, err := ah.authService.Me(dbctx.New(c.Request.Context()))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, me)
}
