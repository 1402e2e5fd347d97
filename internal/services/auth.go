package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/textutil"
)

const (
	DefaultJWTAlgorithm = "HS256"
	DefaultAccessTTL    = 24 * time.Hour
)

type AuthConfig struct {
	Secret    string
	Algorithm string
	AccessTTL time.Duration
}

// JWTClaims: sub is the user's email, uid the user id. Role is informational.
type JWTClaims struct {
	Role string `json:"role,omitempty"`
	UID  string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Me(dbc dbctx.Context) (*types.User, error)
	AccessTTL() time.Duration
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	secret   []byte
	method   jwt.SigningMethod
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, cfg AuthConfig) (AuthService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	alg := strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	if alg == "" {
		alg = DefaultJWTAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q (want HS256, HS384 or HS512)", cfg.Algorithm)
	}
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return &authService{
		db:       db,
		log:      log.With("service", "AuthService"),
		userRepo: userRepo,
		secret:   []byte(cfg.Secret),
		method:   method,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func invalidCredentials() error {
	return apierr.Coded(http.StatusUnauthorized, "invalid_credentials", "Email ou senha incorretos", apierr.ErrUnauthorized)
}

func (as *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = textutil.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalidCredentials()
	}
	found, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		as.log.Info("login rejected", "reason", "unknown_email")
		return nil, invalidCredentials()
	}
	user := found[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		as.log.Info("login rejected", "reason", "bad_password", "user_id", user.ID.String())
		return nil, invalidCredentials()
	}
	token, err := as.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	as.log.Info("login ok", "user_id", user.ID.String())
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(as.ttl.Seconds()),
	}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Role: user.Role,
		UID:  user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			ExpiresAt: jwt.NewNumericDate(now.Add(as.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(as.method, claims).SignedString(as.secret)
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthorized("Could not validate credentials")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.secret, nil
	}, jwt.WithValidMethods([]string{as.method.Alg()}), jwt.WithTimeFunc(as.now))
	if err != nil {
		return ctx, apierr.Unauthorized("Could not validate credentials")
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return ctx, apierr.Unauthorized("Could not validate credentials")
	}

	found, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{claims.Subject})
	if err != nil {
		return ctx, fmt.Errorf("load token user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return ctx, apierr.Unauthorized("Could not validate credentials")
	}
	user := found[0]
	if claims.UID != "" {
		if uid, perr := uuid.Parse(claims.UID); perr != nil || uid != user.ID {
			// Email was re-registered under a new account since issue.
			return ctx, apierr.Unauthorized("Could not validate credentials")
		}
	}
	rd := &ctxutil.RequestData{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Token:  tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) Me(dbc dbctx.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	found, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	return found[0], nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.ttl
}

var passwordCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash stored for a new password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
