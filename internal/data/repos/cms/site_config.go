package cms

import (
	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type SiteConfigRepo interface {
	// Get returns the first (and only) config row, or nil when unseeded.
	Get(dbc dbctx.Context) (*types.SiteConfig, error)
	Create(dbc dbctx.Context, cfg *types.SiteConfig) (*types.SiteConfig, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
}

type siteConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSiteConfigRepo(db *gorm.DB, baseLog *logger.Logger) SiteConfigRepo {
	repoLog := baseLog.With("repo", "SiteConfigRepo")
	return &siteConfigRepo{db: db, log: repoLog}
}

func (r *siteConfigRepo) Get(dbc dbctx.Context) (*types.SiteConfig, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.SiteConfig
	if err := transaction.WithContext(dbc.Ctx).
		Order("id ASC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *siteConfigRepo) Create(dbc dbctx.Context, cfg *types.SiteConfig) (*types.SiteConfig, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *siteConfigRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.SiteConfig{}).
		Where("id = ?", id).
		Updates(updates).Error
}
