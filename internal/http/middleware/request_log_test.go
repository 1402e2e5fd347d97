package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

func TestRequestLoggerAreas(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	seller := uuid.New()

	r := gin.New()
	r.Use(RequestLogger(log))
	r.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			rd := &ctxutil.RequestData{UserID: seller, Role: "vendedor"}
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		}
	})
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/leads", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/api/leads", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/public/stream", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/api/properties/:id", func(c *gin.Context) { c.Status(http.StatusForbidden) })

	send := func(method, path string, authed bool) {
		req := httptest.NewRequest(method, path, nil)
		if authed {
			req.Header.Set("Authorization", "Bearer x")
		}
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	send(http.MethodGet, "/healthcheck", false)
	send(http.MethodPost, "/api/leads", false)
	send(http.MethodGet, "/api/leads", true)
	send(http.MethodGet, "/api/public/stream", false)
	send(http.MethodDelete, "/api/properties/9", true)

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)

	health := entries[0]
	assert.Equal(t, zapcore.DebugLevel, health.Level)
	assert.Equal(t, AreaOps, health.ContextMap()["area"])

	lead := entries[1].ContextMap()
	assert.Equal(t, AreaPublic, lead["area"])
	assert.Contains(t, lead, "client_ip")
	assert.NotContains(t, lead, "user_id")

	board := entries[2]
	assert.Equal(t, zapcore.InfoLevel, board.Level)
	assert.Equal(t, AreaCRM, board.ContextMap()["area"])
	assert.Equal(t, "vendedor", board.ContextMap()["role"])
	assert.Equal(t, seller.String(), board.ContextMap()["user_id"])
	assert.NotContains(t, board.ContextMap(), "client_ip")

	assert.Equal(t, "SSE stream closed", entries[3].Message)
	assert.Equal(t, AreaStream, entries[3].ContextMap()["area"])

	denied := entries[4]
	assert.Equal(t, zapcore.WarnLevel, denied.Level)
	assert.Equal(t, "/api/properties/:id", denied.ContextMap()["path"])
	assert.Equal(t, int64(http.StatusForbidden), denied.ContextMap()["status"])
}

func TestRequestLoggerNilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(nil))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
