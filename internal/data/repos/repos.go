package repos

import (
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos/audit"
	"github.com/adaosilva/imoveis-backend/internal/data/repos/cms"
	"github.com/adaosilva/imoveis-backend/internal/data/repos/crm"
	"github.com/adaosilva/imoveis-backend/internal/data/repos/listing"
	"github.com/adaosilva/imoveis-backend/internal/data/repos/user"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type LeadRepo = crm.LeadRepo
type LeadFilter = crm.LeadFilter

type PropertyRepo = listing.PropertyRepo
type PropertyImageRepo = listing.PropertyImageRepo
type PropertyViewRepo = listing.PropertyViewRepo
type PropertyFilter = listing.PropertyFilter
type PropertyViews = listing.PropertyViews

type SiteConfigRepo = cms.SiteConfigRepo

type AuditLogRepo = audit.AuditLogRepo
type AuditLogFilter = audit.AuditLogFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewLeadRepo(db *gorm.DB, baseLog *logger.Logger) LeadRepo {
	return crm.NewLeadRepo(db, baseLog)
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
	return listing.NewPropertyRepo(db, baseLog)
}

func NewPropertyImageRepo(db *gorm.DB, baseLog *logger.Logger) PropertyImageRepo {
	return listing.NewPropertyImageRepo(db, baseLog)
}

func NewPropertyViewRepo(db *gorm.DB, baseLog *logger.Logger) PropertyViewRepo {
	return listing.NewPropertyViewRepo(db, baseLog)
}

func NewSiteConfigRepo(db *gorm.DB, baseLog *logger.Logger) SiteConfigRepo {
	return cms.NewSiteConfigRepo(db, baseLog)
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return audit.NewAuditLogRepo(db, baseLog)
}
