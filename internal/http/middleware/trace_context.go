package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	// Client supplied ids longer than this are replaced.
	maxClientIDLen = 128
)

// AttachTraceContext assigns trace and request ids, preferring the caller's
// headers, then the active span, then a fresh uuid. Both are echoed back.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := clientID(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		traceID := clientID(c.GetHeader(headerTraceID))
		if traceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			} else {
				traceID = uuid.NewString()
			}
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Header(headerTraceID, traceID)
		c.Header(headerRequestID, reqID)
		c.Next()
	}
}

func clientID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxClientIDLen || strings.ContainsAny(id, "\r\n") {
		return ""
	}
	return id
}
