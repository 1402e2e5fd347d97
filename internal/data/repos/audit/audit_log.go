package audit

import (
	"gorm.io/gorm"

	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

type AuditLogFilter struct {
	Limit        int
	Action       string
	ResourceType string
}

type AuditLogRepo interface {
	Create(dbc dbctx.Context, logs []*types.AuditLog) ([]*types.AuditLog, error)
	List(dbc dbctx.Context, filter AuditLogFilter) ([]*types.AuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	repoLog := baseLog.With("repo", "AuditLogRepo")
	return &auditLogRepo{db: db, log: repoLog}
}

func (r *auditLogRepo) Create(dbc dbctx.Context, logs []*types.AuditLog) ([]*types.AuditLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.AuditLog{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepo) List(dbc dbctx.Context, filter AuditLogFilter) ([]*types.AuditLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.AuditLog{})
	if filter.Action != "" {
		q = q.Where("acao = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		q = q.Where("recurso_tipo = ?", filter.ResourceType)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var results []*types.AuditLog
	if err := q.Order("created_at DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
