package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows origins; an entry of "*" allows any origin without
// credentials.
func CORS(origins []string) gin.HandlerFunc {
	cleaned := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if len(cleaned) == 0 {
		cleaned = DefaultCORSOrigins
	}
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With", "X-Request-Id"},
		ExposeHeaders: []string{headerTraceID, headerRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range cleaned {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = cleaned
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
