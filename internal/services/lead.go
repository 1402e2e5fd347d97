package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adaosilva/imoveis-backend/internal/data/repos"
	types "github.com/adaosilva/imoveis-backend/internal/domain"
	"github.com/adaosilva/imoveis-backend/internal/domain/audit"
	"github.com/adaosilva/imoveis-backend/internal/domain/crm"
	"github.com/adaosilva/imoveis-backend/internal/observability"
	"github.com/adaosilva/imoveis-backend/internal/pkg/ctxutil"
	"github.com/adaosilva/imoveis-backend/internal/pkg/dbctx"
	"github.com/adaosilva/imoveis-backend/internal/platform/apierr"
	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
	"github.com/adaosilva/imoveis-backend/internal/platform/textutil"
	"github.com/adaosilva/imoveis-backend/internal/realtime"
)

const (
	defaultListLimit  = 100
	maxListLimit      = 500
	minWhatsAppDigits = 10
)

// CreateLeadInput is the public contact form. Assignment is never taken
// from it.
type CreateLeadInput struct {
	Name       string `json:"nome"`
	Email      string `json:"email"`
	WhatsApp   string `json:"whatsapp"`
	Origin     string `json:"origem"`
	Notes      string `json:"anotacoes"`
	PropertyID *uint  `json:"property_id"`
}

type ListLeadsInput struct {
	Skip   int
	Limit  int
	Status string
}

// UpdateLeadInput carries only the fields the caller sent. ClearAssignment
// unassigns the lead (an explicit null usuario_id).
type UpdateLeadInput struct {
	Status          *string
	Notes           *string
	AssignedUserID  *uuid.UUID
	ClearAssignment bool
}

func (in UpdateLeadInput) reassigns() bool {
	return in.AssignedUserID != nil || in.ClearAssignment
}

type LeadService interface {
	Create(ctx context.Context, in CreateLeadInput) (*types.Lead, error)
	List(ctx context.Context, in ListLeadsInput) ([]*types.Lead, error)
	Board(ctx context.Context) ([]types.BoardColumn, error)
	Update(ctx context.Context, id uint, in UpdateLeadInput) (*types.Lead, error)
	Delete(ctx context.Context, id uint) error
	WhatsAppLink(ctx context.Context, id uint) (string, error)
}

type leadService struct {
	db           *gorm.DB
	log          *logger.Logger
	leadRepo     repos.LeadRepo
	userRepo     repos.UserRepo
	propertyRepo repos.PropertyRepo
	audit        AuditService
	notifier     LeadNotifier
	emit         Emitter
	metrics      *observability.Metrics
}

func NewLeadService(
	db *gorm.DB,
	log *logger.Logger,
	leadRepo repos.LeadRepo,
	userRepo repos.UserRepo,
	propertyRepo repos.PropertyRepo,
	audit AuditService,
	notifier LeadNotifier,
	emit Emitter,
	metrics *observability.Metrics,
) LeadService {
	return &leadService{
		db:           db,
		log:          log.With("service", "LeadService"),
		leadRepo:     leadRepo,
		userRepo:     userRepo,
		propertyRepo: propertyRepo,
		audit:        audit,
		notifier:     notifier,
		emit:         emit,
		metrics:      metrics,
	}
}

func (ls *leadService) Create(ctx context.Context, in CreateLeadInput) (*types.Lead, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Invalid("Nome é obrigatório")
	}
	whatsapp := strings.TrimSpace(in.WhatsApp)
	if len(textutil.Digits(whatsapp)) < minWhatsAppDigits {
		return nil, apierr.Invalid("WhatsApp inválido")
	}
	email := textutil.NormalizeEmail(in.Email)
	if email != "" && !textutil.IsValidEmail(email) {
		return nil, apierr.Invalid("Email inválido")
	}
	origin := strings.TrimSpace(in.Origin)
	if origin == "" {
		origin = crm.DefaultOrigin
	}

	dbc := dbctx.Context{Ctx: ctx}
	if in.PropertyID != nil {
		prop, err := ls.propertyRepo.GetByID(dbc, *in.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("load property: %w", err)
		}
		if prop == nil {
			return nil, apierr.Invalid("Imóvel não encontrado")
		}
	}

	lead := &types.Lead{
		Name:       name,
		Email:      email,
		WhatsApp:   whatsapp,
		Origin:     origin,
		Status:     crm.StatusNovo,
		Notes:      strings.TrimSpace(in.Notes),
		PropertyID: in.PropertyID,
	}
	if _, err := ls.leadRepo.Create(dbc, []*types.Lead{lead}); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	ls.metrics.IncLeadCreated(origin)
	emitTo(ctx, ls.emit, realtime.EventLeadCreated, map[string]any{"lead": lead}, realtime.ChannelCRM)
	if ls.notifier != nil {
		ls.notifier.NewLead(ctx, lead)
	}
	return lead, nil
}

// visibleTo narrows filter for vendedores, who only see their own leads.
func visibleTo(rd *ctxutil.RequestData, filter *repos.LeadFilter) {
	if rd.IsAdmin() {
		return
	}
	uid := rd.UserID
	filter.AssignedUserID = &uid
}

func (ls *leadService) List(ctx context.Context, in ListLeadsInput) ([]*types.Lead, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	status := strings.TrimSpace(in.Status)
	if status != "" && !crm.IsValidLeadStatus(status) {
		return nil, apierr.Invalid("Status inválido")
	}
	filter := repos.LeadFilter{Skip: in.Skip, Limit: clampLimit(in.Limit), Status: status}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	visibleTo(rd, &filter)
	return ls.leadRepo.List(dbctx.Context{Ctx: ctx}, filter)
}

func (ls *leadService) Board(ctx context.Context) ([]types.BoardColumn, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	filter := repos.LeadFilter{}
	visibleTo(rd, &filter)
	leads, err := ls.leadRepo.List(dbctx.Context{Ctx: ctx}, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	byStatus := make(map[string][]*types.Lead, len(crm.LeadStatuses))
	for _, l := range leads {
		byStatus[l.Status] = append(byStatus[l.Status], l)
	}
	board := make([]types.BoardColumn, 0, len(crm.LeadStatuses))
	for _, st := range crm.LeadStatuses {
		col := types.BoardColumn{Status: st, Leads: byStatus[st]}
		if col.Leads == nil {
			col.Leads = []*types.Lead{}
		}
		board = append(board, col)
	}
	return board, nil
}

// loadVisible returns the lead when the caller may act on it.
func (ls *leadService) loadVisible(dbc dbctx.Context, rd *ctxutil.RequestData, id uint) (*types.Lead, error) {
	lead, err := ls.leadRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load lead: %w", err)
	}
	if lead == nil {
		return nil, apierr.NotFound("Lead not found")
	}
	if !rd.IsAdmin() && (lead.AssignedUserID == nil || *lead.AssignedUserID != rd.UserID) {
		return nil, apierr.Forbidden("Acesso negado")
	}
	return lead, nil
}

func (ls *leadService) Update(ctx context.Context, id uint, in UpdateLeadInput) (*types.Lead, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return nil, apierr.Unauthorized("Could not validate credentials")
	}
	if in.Status != nil {
		st := strings.TrimSpace(*in.Status)
		if !crm.IsValidLeadStatus(st) {
			return nil, apierr.Invalid("Status inválido")
		}
		in.Status = &st
	}
	if in.reassigns() && !rd.IsAdmin() {
		return nil, apierr.Forbidden("Apenas administradores podem atribuir leads")
	}

	var (
		out          *types.Lead
		prevAssignee *uuid.UUID
	)
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		lead, err := ls.loadVisible(dbc, rd, id)
		if err != nil {
			return err
		}
		prevAssignee = lead.AssignedUserID

		updates := map[string]interface{}{}
		var entries []AuditEntry
		if in.Status != nil && *in.Status != lead.Status {
			updates["status"] = *in.Status
			entries = append(entries, AuditEntry{
				Action:       audit.ActionUpdateLeadStatus,
				ResourceType: audit.ResourceLead,
				ResourceID:   &lead.ID,
				Details:      fmt.Sprintf("Status do lead '%s' alterado de %s para %s", lead.Name, lead.Status, *in.Status),
				Changes:      map[string]any{"old_status": lead.Status, "new_status": *in.Status},
			})
			lead.Status = *in.Status
		}
		if in.Notes != nil {
			updates["anotacoes"] = *in.Notes
			lead.Notes = *in.Notes
		}
		if in.reassigns() {
			entry, changed, err := ls.assignment(dbc, lead, in)
			if err != nil {
				return err
			}
			if changed {
				if lead.AssignedUserID == nil {
					updates["usuario_id"] = nil
				} else {
					updates["usuario_id"] = *lead.AssignedUserID
				}
				entries = append(entries, entry)
			}
		}
		if err := ls.leadRepo.UpdateFields(dbc, id, updates); err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
		for _, e := range entries {
			if err := ls.audit.Record(dbc, rd, e); err != nil {
				return err
			}
		}
		fresh, err := ls.leadRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("reload lead: %w", err)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	channels := []string{realtime.ChannelCRM}
	if out.AssignedUserID != nil {
		channels = append(channels, realtime.UserChannel(out.AssignedUserID.String()))
	}
	if prevAssignee != nil && (out.AssignedUserID == nil || *prevAssignee != *out.AssignedUserID) {
		channels = append(channels, realtime.UserChannel(prevAssignee.String()))
	}
	emitTo(ctx, ls.emit, realtime.EventLeadUpdated, map[string]any{"lead": out}, channels...)
	return out, nil
}

// assignment applies the reassignment in `in` to lead and returns its audit entry.
func (ls *leadService) assignment(dbc dbctx.Context, lead *types.Lead, in UpdateLeadInput) (AuditEntry, bool, error) {
	if in.ClearAssignment {
		if lead.AssignedUserID == nil {
			return AuditEntry{}, false, nil
		}
		lead.AssignedUserID = nil
		return AuditEntry{
			Action:       audit.ActionAssignLead,
			ResourceType: audit.ResourceLead,
			ResourceID:   &lead.ID,
			Details:      fmt.Sprintf("Lead '%s' sem responsável", lead.Name),
			Changes:      map[string]any{"usuario_id": nil},
		}, true, nil
	}
	target := *in.AssignedUserID
	if lead.AssignedUserID != nil && *lead.AssignedUserID == target {
		return AuditEntry{}, false, nil
	}
	found, err := ls.userRepo.GetByIDs(dbc, []uuid.UUID{target})
	if err != nil {
		return AuditEntry{}, false, fmt.Errorf("load assignee: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return AuditEntry{}, false, apierr.Invalid("Usuário responsável não encontrado")
	}
	lead.AssignedUserID = &target
	return AuditEntry{
		Action:       audit.ActionAssignLead,
		ResourceType: audit.ResourceLead,
		ResourceID:   &lead.ID,
		Details:      fmt.Sprintf("Lead '%s' atribuído a %s", lead.Name, found[0].Email),
		Changes:      map[string]any{"usuario_id": target.String()},
	}, true, nil
}

func (ls *leadService) Delete(ctx context.Context, id uint) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return apierr.Unauthorized("Could not validate credentials")
	}
	if !rd.IsAdmin() {
		return apierr.Forbidden("Apenas administradores podem excluir leads")
	}
	err := ls.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		lead, err := ls.leadRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load lead: %w", err)
		}
		if lead == nil {
			return apierr.NotFound("Lead not found")
		}
		if err := ls.leadRepo.Delete(dbc, id); err != nil {
			return fmt.Errorf("delete lead: %w", err)
		}
		return ls.audit.Record(dbc, rd, AuditEntry{
			Action:       audit.ActionDeleteLead,
			ResourceType: audit.ResourceLead,
			ResourceID:   &id,
			Details:      fmt.Sprintf("Lead '%s' excluído", lead.Name),
		})
	})
	if err != nil {
		return err
	}
	emitTo(ctx, ls.emit, realtime.EventLeadDeleted, map[string]any{"id": id}, realtime.ChannelCRM)
	return nil
}

func (ls *leadService) WhatsAppLink(ctx context.Context, id uint) (string, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return "", apierr.Unauthorized("Could not validate credentials")
	}
	lead, err := ls.loadVisible(dbctx.Context{Ctx: ctx}, rd, id)
	if err != nil {
		return "", err
	}
	return WhatsAppURL(lead.WhatsApp, lead.Name), nil
}

// WhatsAppURL builds the wa.me click-to-chat link with the default greeting.
func WhatsAppURL(phone, name string) string {
	greeting := fmt.Sprintf("Olá %s, vi seu interesse no imóvel e gostaria de conversar!", strings.TrimSpace(name))
	text := strings.ReplaceAll(url.QueryEscape(greeting), "+", "%20")
	return "https://wa.me/" + textutil.Digits(phone) + "?text=" + text
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
