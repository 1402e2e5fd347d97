package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/platform/imaging"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	User       services.UserService
	Lead       services.LeadService
	Property   services.PropertyService
	Media      services.MediaService
	CEP        services.CEPService
	SiteConfig services.SiteConfigService
	Analytics  services.AnalyticsService
	Audit      services.AuditService
	Seed       services.SeedService
	Notifier   *services.AlertNotifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, emit services.Emitter, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	auth, err := services.NewAuthService(db, log, repos.User, services.AuthConfig{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		AccessTTL: cfg.JWT.AccessTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	watermark, err := imaging.NewWatermarker(cfg.Media.WatermarkText, cfg.Media.WatermarkFont, cfg.Media.WatermarkSize)
	if err != nil {
		return Services{}, fmt.Errorf("init watermark: %w", err)
	}
	var store services.ObjectStore
	if clients.Bucket != nil {
		store = clients.Bucket
	}
	media := services.NewMediaService(log, store, services.MediaConfig{
		Desktop:        imaging.Variant{Width: cfg.Media.DesktopWidth, Quality: cfg.Media.DesktopQuality},
		Mobile:         imaging.Variant{Width: cfg.Media.MobileWidth, Quality: cfg.Media.MobileQuality},
		Watermark:      watermark,
		MaxUploadBytes: int64(cfg.Media.MaxUploadMB) << 20,
		MaxPixels:      cfg.Media.MaxPixels,
	})

	audit := services.NewAuditService(db, log, repos.AuditLog)
	notifier := services.NewAlertNotifier(log, clients.SendGrid, clients.Twilio, services.AlertConfig{
		ToEmails: cfg.Notify.ToEmails,
		ToPhones: cfg.Notify.ToPhones,
	})
	siteConfig := services.NewSiteConfigService(db, log, repos.SiteConfig, audit, emit)

	return Services{
		Auth:       auth,
		User:       services.NewUserService(db, log, repos.User, repos.Lead, audit),
		Lead:       services.NewLeadService(db, log, repos.Lead, repos.User, repos.Property, audit, notifier, emit, metrics),
		Property:   services.NewPropertyService(db, log, repos.Property, repos.PropertyImage, repos.PropertyView, audit, emit, metrics),
		Media:      media,
		CEP:        services.NewCEPService(log, clients.CEP),
		SiteConfig: siteConfig,
		Analytics:  services.NewAnalyticsService(log, repos.Lead, repos.Property, repos.PropertyView),
		Audit:      audit,
		Seed:       services.NewSeedService(db, log, repos.User, siteConfig),
		Notifier:   notifier,
	}, nil
}
