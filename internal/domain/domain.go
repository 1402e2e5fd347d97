package domain

import (
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/domain/cms"
	"github.com/adaosilva/imoveis-backend/internal/domain/crm"
	"github.com/adaosilva/imoveis-backend/internal/domain/listing"
	"github.com/adaosilva/imoveis-backend/internal/domain/user"
)

const (
	RoleAdmin    = user.RoleAdmin
	RoleVendedor = user.RoleVendedor
)

type User = user.User

type Lead = crm.Lead
type BoardColumn = crm.BoardColumn

type Property = listing.Property
type PropertyImage = listing.PropertyImage
type PropertyView = listing.PropertyView

type SiteConfig = cms.SiteConfig

type AuditLog = audit.AuditLog

// Models returns every persisted type, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Property{},
		&PropertyImage{},
		&PropertyView{},
		&Lead{},
		&SiteConfig{},
		&AuditLog{},
	}
}
