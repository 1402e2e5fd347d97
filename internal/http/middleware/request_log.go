package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

// Request areas reported in the "area" log field.
const (
	AreaPublic = "site"
	AreaCRM    = "crm"
	AreaStream = "stream"
	AreaOps    = "ops"
)

// requestArea classifies a request: probes and scrapes are ops, SSE
// connections are stream, authenticated calls are crm, the rest is the
// public site.
func requestArea(route string, rd *ctxutil.RequestData) string {
	switch {
	case route == "/healthcheck" || route == "/metrics":
		return AreaOps
	case strings.HasSuffix(route, "/stream"):
		return AreaStream
	case rd != nil && rd.UserID != uuid.Nil:
		return AreaCRM
	default:
		return AreaPublic
	}
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		path := route
		if path == "" {
			path = c.Request.URL.Path
		}
		td := ctxutil.GetTraceData(c.Request.Context())
		rd := ctxutil.GetRequestData(c.Request.Context())
		area := requestArea(route, rd)

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"area", area,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if td != nil {
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String(), "role", rd.Role)
		}
		if area == AreaPublic && c.Request.Method != http.MethodGet {
			// Anonymous writes: lead capture and login.
			fields = append(fields, "client_ip", c.ClientIP())
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		msg := "HTTP request"
		if area == AreaStream {
			msg = "SSE stream closed"
		}
		switch {
		case status >= 500:
			log.Error(msg, fields...)
		case status >= 400:
			log.Warn(msg, fields...)
		case area == AreaOps:
			log.Debug(msg, fields...)
		default:
			log.Info(msg, fields...)
		}
	}
}
