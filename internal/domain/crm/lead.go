package crm

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusNovo          = "NOVO"
	StatusContato       = "CONTATO"
	StatusAgendouVisita = "AGENDOU VISITA"
	StatusProposta      = "PROPOSTA"
	StatusGanho         = "GANHO"
	StatusPerdido       = "PERDIDO"

	DefaultOrigin = "Site"
)

// LeadStatuses lists the pipeline stages in board column order.
var LeadStatuses = []string{
	StatusNovo,
	StatusContato,
	StatusAgendouVisita,
	StatusProposta,
	StatusGanho,
	StatusPerdido,
}

func IsValidLeadStatus(s string) bool {
	for _, st := range LeadStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Lead struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"column:nome;not null" json:"nome"`
	Email          string     `gorm:"column:email" json:"email"`
	WhatsApp       string     `gorm:"column:whatsapp;not null" json:"whatsapp"`
	Origin         string     `gorm:"column:origem;not null;default:Site" json:"origem"`
	Status         string     `gorm:"column:status;not null;default:NOVO;index" json:"status"`
	Notes          string     `gorm:"column:anotacoes" json:"anotacoes"`
	AssignedUserID *uuid.UUID `gorm:"type:uuid;column:usuario_id;index" json:"usuario_id"`
	PropertyID     *uint      `gorm:"column:property_id;index" json:"property_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

// BoardColumn is one Kanban column of the lead pipeline.
type BoardColumn struct {
	Status string  `json:"status"`
	Leads  []*Lead `json:"leads"`
}
