package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

type SiteConfigInput struct {
	HeroTitle      *string `json:"hero_title" yaml:"hero_title"`
	HeroSubtitle   *string `json:"hero_subtitle" yaml:"hero_subtitle"`
	HeroImageURL   *string `json:"hero_image_url" yaml:"hero_image_url"`
	FooterPhone    *string `json:"footer_phone" yaml:"footer_phone"`
	FooterWhatsApp *string `json:"footer_whatsapp" yaml:"footer_whatsapp"`
	FooterAddress  *string `json:"footer_address" yaml:"footer_address"`
	FooterHours    *string `json:"footer_hours" yaml:"footer_hours"`
	FooterEmail    *string `json:"footer_email" yaml:"footer_email"`
}

func (in SiteConfigInput) updates() map[string]interface{} {
	u := map[string]interface{}{}
	for col, v := range map[string]*string{
		"hero_title":      in.HeroTitle,
		"hero_subtitle":   in.HeroSubtitle,
		"hero_image_url":  in.HeroImageURL,
		"footer_phone":    in.FooterPhone,
		"footer_whatsapp": in.FooterWhatsApp,
		"footer_address":  in.FooterAddress,
		"footer_hours":    in.FooterHours,
		"footer_email":    in.FooterEmail,
	} {
		if v != nil {
			u[col] = strings.TrimSpace(*v)
		}
	}
	return u
}

type SiteConfigService interface {
	Get(ctx context.Context) (*types.SiteConfig, error)
	Update(ctx context.Context, in SiteConfigInput) (*types.SiteConfig, error)
	// EnsureDefault creates the config row from def when none exists and
	// reports whether it did.
	EnsureDefault(ctx context.Context, def *types.SiteConfig) (bool, error)
}

type siteConfigService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.SiteConfigRepo
	audit AuditService
	emit  Emitter
}

func NewSiteConfigService(db *gorm.DB, log *logger.Logger, repo repos.SiteConfigRepo, audit AuditService, emit Emitter) SiteConfigService {
	return &siteConfigService{
		db:    db,
		log:   log.With("service", "SiteConfigService"),
		repo:  repo,
		audit: audit,
		emit:  emit,
	}
}

func (ss *siteConfigService) Get(ctx context.Context) (*types.SiteConfig, error) {
	cfg, err := ss.repo.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	if cfg == nil {
		return nil, apierr.NotFound("Configuration not found")
	}
	return cfg, nil
}

func (ss *siteConfigService) Update(ctx context.Context, in SiteConfigInput) (*types.SiteConfig, error) {
	rd, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	var out *types.SiteConfig
	err = ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cfg, err := ss.repo.Get(dbc)
		if err != nil {
			return fmt.Errorf("load site config: %w", err)
		}
		if cfg == nil {
			return apierr.NotFound("Configuration not found")
		}
		updates := in.updates()
		if len(updates) == 0 {
			out = cfg
			return nil
		}
		if err := ss.repo.UpdateFields(dbc, cfg.ID, updates); err != nil {
			return fmt.Errorf("update site config: %w", err)
		}
		if err := ss.audit.Record(dbc, rd, AuditEntry{
			Action:       audit.ActionUpdateSiteConfig,
			ResourceType: audit.ResourceSiteConfig,
			ResourceID:   &cfg.ID,
			Details:      "Configurações do site atualizadas",
			Changes:      auditableChanges(updates, false),
		}); err != nil {
			return err
		}
		fresh, err := ss.repo.Get(dbc)
		if err != nil {
			return fmt.Errorf("reload site config: %w", err)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	emitTo(ctx, ss.emit, realtime.EventSiteConfigUpdated, map[string]any{"config": out},
		realtime.ChannelPublic, realtime.ChannelCRM)
	return out, nil
}

func (ss *siteConfigService) EnsureDefault(ctx context.Context, def *types.SiteConfig) (bool, error) {
	created := false
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := ss.repo.Get(dbc)
		if err != nil {
			return fmt.Errorf("load site config: %w", err)
		}
		if existing != nil {
			return nil
		}
		row := *def
		row.ID = 0
		if _, err := ss.repo.Create(dbc, &row); err != nil {
			return fmt.Errorf("create site config: %w", err)
		}
		created = true
		return nil
	})
	return created, err
}
