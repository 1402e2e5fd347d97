package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
)

func uintParam(c *gin.Context, name, what string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 0)
	if err != nil || n == 0 {
		return 0, apierr.Invalid(what + " inválido")
	}
	return uint(n), nil
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apierr.Invalid("ID de usuário inválido")
	}
	return id, nil
}

// intQuery returns def when the parameter is absent.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apierr.Invalid("Parâmetro " + name + " inválido")
	}
	return n, nil
}

// boolQuery accepts true/false and 1/0; nil when absent.
func boolQuery(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apierr.Invalid("Parâmetro " + name + " inválido")
	}
	return &b, nil
}
