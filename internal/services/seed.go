package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	domainuser "github.com/adaosilva/imoveis-backend/internal/domain/user"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const (
	DefaultAdminEmail    = "admin@crm.com"
	DefaultAdminPassword = "admin123"
)

// DefaultSiteConfig is the content the public site starts with.
func DefaultSiteConfig() *types.SiteConfig {
	return &types.SiteConfig{
		HeroTitle:      "ADÃO SILVA",
		HeroSubtitle:   "Imóveis de Luxo & Investimentos Exclusivos",
		FooterPhone:    "64 3671-3590",
		FooterWhatsApp: "556436713590",
		FooterAddress:  "Rua Rio Verde, esq. Rua Serra Dourada, Qd. 71, Lt. 01 - St. Montes Belos - São Luís de Montes Belos - GO",
		FooterHours:    "Seg - Sex: 08:00 - 18:00",
		FooterEmail:    "adaocandidosilva@hotmail.com",
	}
}

type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// SeedFile is the YAML document accepted by `imoveis seed --file`.
type SeedFile struct {
	Users      []SeedUser      `yaml:"users"`
	SiteConfig SiteConfigInput `yaml:"site_config"`
}

func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

type SeedOptions struct {
	AdminEmail          string
	AdminPassword       string
	SecondaryAdminEmail string
	// File, when set, is merged over the defaults.
	File *SeedFile
}

type SeedReport struct {
	UsersCreated      []string
	SiteConfigCreated bool
}

type SeedService interface {
	Run(ctx context.Context, opts SeedOptions) (*SeedReport, error)
}

type seedService struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	siteConfig SiteConfigService
}

func NewSeedService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, siteConfig SiteConfigService) SeedService {
	return &seedService{
		db:         db,
		log:        log.With("service", "SeedService"),
		userRepo:   userRepo,
		siteConfig: siteConfig,
	}
}

func (opts SeedOptions) users() []SeedUser {
	email := strings.TrimSpace(opts.AdminEmail)
	if email == "" {
		email = DefaultAdminEmail
	}
	password := opts.AdminPassword
	if password == "" {
		password = DefaultAdminPassword
	}
	out := []SeedUser{{Email: email, Password: password, Role: types.RoleAdmin}}
	// The secondary admin shares the primary admin password.
	if secondary := strings.TrimSpace(opts.SecondaryAdminEmail); secondary != "" {
		out = append(out, SeedUser{Email: secondary, Password: password, Role: types.RoleAdmin})
	}
	if opts.File != nil {
		out = append(out, opts.File.Users...)
	}
	return out
}

func (ss *seedService) Run(ctx context.Context, opts SeedOptions) (*SeedReport, error) {
	report := &SeedReport{}
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		seen := map[string]bool{}
		for _, u := range opts.users() {
			email := strings.ToLower(strings.TrimSpace(u.Email))
			if email == "" || seen[email] {
				continue
			}
			seen[email] = true
			exists, err := ss.userRepo.EmailExists(dbc, email)
			if err != nil {
				return fmt.Errorf("check %s: %w", email, err)
			}
			if exists {
				ss.log.Debug("seed user already exists", "email", email)
				continue
			}
			role := u.Role
			if role == "" {
				role = types.RoleVendedor
			}
			if !domainuser.IsValidRole(role) {
				return fmt.Errorf("seed user %s: invalid role %q", email, role)
			}
			hash, err := HashPassword(u.Password)
			if err != nil {
				return err
			}
			if _, err := ss.userRepo.Create(dbc, []*types.User{{Email: email, PasswordHash: hash, Role: role}}); err != nil {
				return fmt.Errorf("create seed user %s: %w", email, err)
			}
			report.UsersCreated = append(report.UsersCreated, email)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cfg := DefaultSiteConfig()
	if opts.File != nil {
		overlaySiteConfig(cfg, opts.File.SiteConfig)
	}
	created, err := ss.siteConfig.EnsureDefault(ctx, cfg)
	if err != nil {
		return nil, err
	}
	report.SiteConfigCreated = created
	ss.log.Info("seed finished", "users_created", len(report.UsersCreated), "site_config_created", created)
	return report, nil
}

func overlaySiteConfig(cfg *types.SiteConfig, in SiteConfigInput) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&cfg.HeroTitle, in.HeroTitle)
	set(&cfg.HeroSubtitle, in.HeroSubtitle)
	set(&cfg.HeroImageURL, in.HeroImageURL)
	set(&cfg.FooterPhone, in.FooterPhone)
	set(&cfg.FooterWhatsApp, in.FooterWhatsApp)
	set(&cfg.FooterAddress, in.FooterAddress)
	set(&cfg.FooterHours, in.FooterHours)
	set(&cfg.FooterEmail, in.FooterEmail)
}
