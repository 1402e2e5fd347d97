package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
)

func TestSeedDefaultsAreIdempotent(t *testing.T) {
	env := newTestEnv(t)
	seed := NewSeedService(env.db, env.log, env.userRepo, env.siteConfigService())

	report, err := seed.Run(context.Background(), SeedOptions{SecondaryAdminEmail: "Socio@crm.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultAdminEmail, "socio@crm.com"}, report.UsersCreated)
	assert.True(t, report.SiteConfigCreated)

	again, err := seed.Run(context.Background(), SeedOptions{SecondaryAdminEmail: "socio@crm.com"})
	require.NoError(t, err)
	assert.Empty(t, again.UsersCreated)
	assert.False(t, again.SiteConfigCreated)

	auth := newAuth(t, env)
	_, err = auth.Login(context.Background(), "socio@crm.com", DefaultAdminPassword)
	require.NoError(t, err, "secondary admin shares the admin password")

	users, err := env.userRepo.List(dbctx.New(context.Background()))
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, types.RoleAdmin, u.Role)
	}
}

func TestSeedWithoutSecondaryAdmin(t *testing.T) {
	env := newTestEnv(t)
	seed := NewSeedService(env.db, env.log, env.userRepo, env.siteConfigService())

	report, err := seed.Run(context.Background(), SeedOptions{SecondaryAdminEmail: "  "})
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultAdminEmail}, report.UsersCreated)

	users, err := env.userRepo.List(dbctx.New(context.Background()))
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSeedFileOverridesDefaults(t *testing.T) {
	env := newTestEnv(t)
	seed := NewSeedService(env.db, env.log, env.userRepo, env.siteConfigService())

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - email: corretor@crm.com
    password: corretor1
  - email: gerente@crm.com
    password: gerente1
    role: admin
site_config:
  hero_title: "IMÓVEIS GO"
  footer_phone: "64 3000-0000"
`), 0o600))

	file, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, file.Users, 2)

	report, err := seed.Run(context.Background(), SeedOptions{
		AdminEmail:    "dono@crm.com",
		AdminPassword: "dono1234",
		File:          file,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"dono@crm.com", "corretor@crm.com", "gerente@crm.com"}, report.UsersCreated)

	found, err := env.userRepo.GetByEmails(dbctx.New(context.Background()), []string{"corretor@crm.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, types.RoleVendedor, found[0].Role)

	cfg, err := env.siteConfigService().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "IMÓVEIS GO", cfg.HeroTitle)
	assert.Equal(t, "64 3000-0000", cfg.FooterPhone)
	assert.Equal(t, "Imóveis de Luxo & Investimentos Exclusivos", cfg.HeroSubtitle)
}

func TestSeedRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	seed := NewSeedService(env.db, env.log, env.userRepo, env.siteConfigService())

	_, err := seed.Run(context.Background(), SeedOptions{File: &SeedFile{
		Users: []SeedUser{{Email: "x@crm.com", Password: "123456", Role: "gerente"}},
	}})
	require.Error(t, err)

	users, err := env.userRepo.List(dbctx.New(context.Background()))
	require.NoError(t, err)
	assert.Empty(t, users, "the whole user seed rolls back")
}

func TestLoadSeedFileErrors(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [unterminated"), 0o600))
	_, err = LoadSeedFile(path)
	require.Error(t, err)
}
