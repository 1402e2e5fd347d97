package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUserRole   = "UPDATE_USER_ROLE"
	ActionDeleteUser       = "DELETE_USER"
	ActionUpdateLeadStatus = "UPDATE_LEAD_STATUS"
	ActionAssignLead       = "ASSIGN_LEAD"
	ActionDeleteLead       = "DELETE_LEAD"
	ActionCreateProperty   = "CREATE_PROPERTY"
	ActionUpdateProperty   = "UPDATE_PROPERTY"
	ActionUpdatePrice      = "UPDATE_PRICE"
	ActionDeleteProperty   = "DELETE_PROPERTY"
	ActionUpdateSiteConfig = "UPDATE_SITE_CONFIG"

	ResourceUser       = "USER"
	ResourceLead       = "LEAD"
	ResourceProperty   = "PROPERTY"
	ResourceSiteConfig = "SITE_CONFIG"
)

type AuditLog struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;column:user_id;index" json:"user_id"`
	UserEmail    string         `gorm:"column:user_email" json:"user_email"`
	Action       string         `gorm:"column:acao;not null;index" json:"acao"`
	ResourceType string         `gorm:"column:recurso_tipo;not null;index" json:"recurso_tipo"`
	ResourceID   *uint          `gorm:"column:recurso_id" json:"recurso_id"`
	Details      string         `gorm:"column:detalhes" json:"detalhes"`
	Changes      datatypes.JSON `gorm:"column:changes" json:"changes,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"timestamp"`
}

func (AuditLog) TableName() string { return "audit_logs" }
