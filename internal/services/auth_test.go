package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/testutil"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
)

func newAuth(t *testing.T, env *testEnv) AuthService {
	t.Helper()
	svc, err := NewAuthService(env.db, env.log, env.userRepo, AuthConfig{Secret: "test-secret", AccessTTL: time.Hour})
	require.NoError(t, err)
	return svc
}

func TestNewAuthServiceRejectsNonHMAC(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewAuthService(env.db, env.log, env.userRepo, AuthConfig{Secret: "x", Algorithm: "RS256"})
	require.Error(t, err)
	_, err = NewAuthService(env.db, env.log, env.userRepo, AuthConfig{Algorithm: "HS256"})
	require.Error(t, err)

	svc, err := NewAuthService(env.db, env.log, env.userRepo, AuthConfig{Secret: "x", Algorithm: "hs512"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTTL, svc.AccessTTL())
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuth(t, env)
	user := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)

	res, err := svc.Login(context.Background(), "  ADMIN@crm.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	ctx, err := svc.SetContextFromToken(context.Background(), res.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, user.ID, rd.UserID)
	assert.Equal(t, "admin@crm.com", rd.Email)
	assert.True(t, rd.IsAdmin())

	me, err := svc.Me(dbctx.New(ctx))
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuth(t, env)
	testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)

	for _, tc := range []struct{ email, password string }{
		{"vendedor@crm.com", "wrong"},
		{"ninguem@crm.com", "secret123"},
		{"", ""},
	} {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		requireStatus(t, err, http.StatusUnauthorized)
		_, code := apierr.StatusOf(err)
		assert.Equal(t, "invalid_credentials", code)
		assert.Equal(t, "Email ou senha incorretos", apierr.Message(err))
	}
}

func TestTokenRejectedForDeletedUserAndExpiry(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuth(t, env)
	user := testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)

	res, err := svc.Login(context.Background(), user.Email, "secret123")
	require.NoError(t, err)

	impl := svc.(*authService)
	impl.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.SetContextFromToken(context.Background(), res.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
	impl.now = time.Now

	require.NoError(t, env.userRepo.Delete(dbctx.New(context.Background()), user.ID))
	_, err = svc.SetContextFromToken(context.Background(), res.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestTokenRejectsOtherAlgorithmAndRecreatedAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuth(t, env)
	user := testutil.SeedUser(t, env.db, "admin@crm.com", types.RoleAdmin)

	claims := JWTClaims{
		Role: user.Role,
		UID:  user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	other, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(context.Background(), other)
	requireStatus(t, err, http.StatusUnauthorized)

	claims.UID = "00000000-0000-0000-0000-000000000001"
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.SetContextFromToken(context.Background(), stale)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.SetContextFromToken(context.Background(), "")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestTokenRoleComesFromDatabase(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuth(t, env)
	user := testutil.SeedUser(t, env.db, "vendedor@crm.com", types.RoleVendedor)

	claims := JWTClaims{
		Role: types.RoleAdmin,
		UID:  user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.False(t, ctxutil.GetRequestData(ctx).IsAdmin())
}
