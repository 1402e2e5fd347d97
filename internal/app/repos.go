package app

import (
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	Lead          repos.LeadRepo
	Property      repos.PropertyRepo
	PropertyImage repos.PropertyImageRepo
	PropertyView  repos.PropertyViewRepo
	SiteConfig    repos.SiteConfigRepo
	AuditLog      repos.AuditLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		Lead:          repos.NewLeadRepo(db, log),
		Property:      repos.NewPropertyRepo(db, log),
		PropertyImage: repos.NewPropertyImageRepo(db, log),
		PropertyView:  repos.NewPropertyViewRepo(db, log),
		SiteConfig:    repos.NewSiteConfigRepo(db, log),
		AuditLog:      repos.NewAuditLogRepo(db, log),
	}
}
