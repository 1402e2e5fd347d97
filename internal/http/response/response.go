package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope carries the error twice: the structured object and the flat
// detail string older clients display.
type ErrorEnvelope struct {
	Error  APIError `json:"error"`
	Detail string   `json:"detail"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = apierr.Message(err)
	}
	if status >= http.StatusInternalServerError {
		if err != nil {
			_ = c.Error(err)
		}
		msg = "Erro interno do servidor"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error:  APIError{Message: msg, Code: code},
		Detail: msg,
	})
}

// RespondErr maps err onto its HTTP status and machine code.
func RespondErr(c *gin.Context, err error) {
	status, code := apierr.StatusOf(err)
	RespondError(c, status, code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
