package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaosilva/imoveis-backend/internal/observability"
)

const unmatchedRoute = "unmatched"

// Metrics records request counts and latency per route template. Event
// streams and the scrape endpoint itself are left out so long-lived
// connections do not skew the latency histogram.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if skipMetrics(route) {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}

		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func skipMetrics(route string) bool {
	return route == "/metrics" || strings.HasSuffix(route, "/stream")
}
