package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

// fakeAuth accepts the tokens in users and rejects everything else.
type fakeAuth struct {
	users map[string]*ctxutil.RequestData
}

func (f *fakeAuth) Login(context.Context, string, string) (*services.LoginResult, error) {
	return nil, apierr.Unauthorized("Email ou senha incorretos")
}

func (f *fakeAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	rd, ok := f.users[token]
	if !ok {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (f *fakeAuth) Me(dbctx.Context) (*types.User, error) { return nil, nil }
func (f *fakeAuth) AccessTTL() time.Duration { return time.Hour }

func authEngine(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(testutil.Logger(t), &fakeAuth{users: map[string]*ctxutil.RequestData{
		"admin-token":  {UserID: uuid.New(), Email: "admin@crm.com", Role: "admin"},
		"seller-token": {UserID: uuid.New(), Email: "vendedor@crm.com", Role: "vendedor"},
		"anon-token":   {},
	}})
	r := gin.New()
	protected := r.Group("/", am.RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetRequestData(c.Request.Context()).Email)
	})
	protected.GET("/admin", am.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r := authEngine(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "Bearer nope").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/me", "Bearer anon-token").Code)

	rec := do(r, "/me", "bearer admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@crm.com", rec.Body.String())

	rec = do(r, "/me?token=seller-token", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vendedor@crm.com", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := authEngine(t)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer admin-token").Code)

	rec := do(r, "/admin", "Bearer seller-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acesso negado")
}
