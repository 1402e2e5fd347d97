package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const maxAuditLimit = 100

// AuditEntry describes one back-office action.
type AuditEntry struct {
	Action       string
	ResourceType string
	ResourceID   *uint
	Details      string
	Changes      any
}

type AuditService interface {
	// Record writes an entry for actor. When dbc.Tx is set the write joins
	// the caller's transaction.
	Record(dbc dbctx.Context, actor *ctxutil.RequestData, entry AuditEntry) error
	List(dbc dbctx.Context, filter repos.AuditLogFilter) ([]*types.AuditLog, error)
}

type auditService struct {
	db       *gorm.DB
	log      *logger.Logger
	auditLog repos.AuditLogRepo
}

func NewAuditService(db *gorm.DB, log *logger.Logger, auditLog repos.AuditLogRepo) AuditService {
	return &auditService{
		db:       db,
		log:      log.With("service", "AuditService"),
		auditLog: auditLog,
	}
}

func (as *auditService) Record(dbc dbctx.Context, actor *ctxutil.RequestData, entry AuditEntry) error {
	if actor == nil {
		return fmt.Errorf("audit: actor required")
	}
	if strings.TrimSpace(entry.Action) == "" || strings.TrimSpace(entry.ResourceType) == "" {
		return fmt.Errorf("audit: action and resource type required")
	}
	row := &types.AuditLog{
		UserID:       actor.UserID,
		UserEmail:    actor.Email,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
	}
	if entry.Changes != nil {
		raw, err := json.Marshal(entry.Changes)
		if err != nil {
			return fmt.Errorf("audit: encode changes: %w", err)
		}
		row.Changes = datatypes.JSON(raw)
	}
	if _, err := as.auditLog.Create(dbc, []*types.AuditLog{row}); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	as.log.Debug("audit recorded", "action", entry.Action, "resource", entry.ResourceType, "user_id", actor.UserID.String())
	return nil
}

func (as *auditService) List(dbc dbctx.Context, filter repos.AuditLogFilter) ([]*types.AuditLog, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if !rd.IsAdmin() {
		return nil, apierr.Forbidden("Acesso negado")
	}
	if filter.Limit <= 0 || filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	filter.Action = strings.TrimSpace(filter.Action)
	filter.ResourceType = strings.TrimSpace(filter.ResourceType)
	return as.auditLog.List(dbc, filter)
}
