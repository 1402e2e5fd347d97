package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func corsEngine(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(CORS(origins))
	r.OPTIONS("/api/login", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestCORSAllowsLocalDevOriginsByDefault(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:3000"} {
		origin := origin
		t.Run(origin, func(t *testing.T) {
			t.Parallel()
			rec := preflight(corsEngine(nil), origin)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSConfiguredOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := corsEngine([]string{"https://adaosilva.com.br/", " "})

	rec := preflight(r, "https://adaosilva.com.br")
	assert.Equal(t, "https://adaosilva.com.br", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight(r, "http://localhost:5173")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := preflight(corsEngine([]string{"*"}), "https://qualquer.site")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
